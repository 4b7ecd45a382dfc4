package apperr

import (
	"errors"

	"connectrpc.com/connect"
)

var connectCodes = map[Code]connect.Code{
	CodeInvalidArgument:    connect.CodeInvalidArgument,
	CodeNotFound:           connect.CodeNotFound,
	CodeFailedPrecondition: connect.CodeFailedPrecondition,
	CodePermissionDenied:   connect.CodePermissionDenied,
	CodeUnauthenticated:    connect.CodeUnauthenticated,
	CodeInternal:           connect.CodeInternal,
}

// ToConnect converts err into a *connect.Error carrying the matching code.
// Errors outside the taxonomy become CodeInternal; connect errors pass through.
func ToConnect(err error) error {
	if err == nil {
		return nil
	}
	var ce *connect.Error
	if errors.As(err, &ce) {
		return err
	}
	code, ok := connectCodes[CodeOf(err)]
	if !ok {
		code = connect.CodeInternal
	}
	return connect.NewError(code, err)
}
