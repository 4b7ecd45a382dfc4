package apperr

import (
	"errors"
	"fmt"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, ""},
		{"plain", errors.New("boom"), CodeUnknown},
		{"direct", NotFound("friend not found"), CodeNotFound},
		{"wrapped", fmt.Errorf("loading: %w", InvalidArg("bad")), CodeInvalidArgument},
		{"storage", Storage("insert friend", errors.New("disk full")), CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestSentinelSurvivesWrapping(t *testing.T) {
	sentinel := InvalidArg("name is required")
	wrapped := fmt.Errorf("create friend: %w", sentinel)

	assert.True(t, errors.Is(wrapped, sentinel))
	assert.True(t, errors.Is(wrapped, InvalidArg("name is required")))
	assert.False(t, errors.Is(wrapped, InvalidArg("title is required")))
	assert.True(t, IsValidation(wrapped))
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := Malformed("data.json missing", errors.New("file does not exist"))
	assert.Equal(t, "malformed archive: data.json missing: file does not exist", err.Error())
	assert.False(t, IsNotFound(err))
}

func TestToConnect(t *testing.T) {
	tests := []struct {
		err  error
		want connect.Code
	}{
		{InvalidArg("bad"), connect.CodeInvalidArgument},
		{fmt.Errorf("friend 3: %w", NotFound("friend not found")), connect.CodeNotFound},
		{FailedPrecondition("confirm"), connect.CodeFailedPrecondition},
		{Unauthorized("who"), connect.CodeUnauthenticated},
		{Forbidden("no"), connect.CodePermissionDenied},
		{Storage("failed to insert", errors.New("disk full")), connect.CodeInternal},
		{errors.New("plain"), connect.CodeInternal},
		{connect.NewError(connect.CodeAborted, errors.New("x")), connect.CodeAborted},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, connect.CodeOf(ToConnect(tt.err)), tt.err.Error())
	}
	assert.NoError(t, ToConnect(nil))
}
