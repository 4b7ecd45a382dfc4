package service

import (
	"context"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mmynk/kinship/internal/apperr"
	"github.com/mmynk/kinship/internal/auth"
)

// AuthService implements the app lock: an optional owner passcode that,
// once set, must be exchanged for a session token before other calls pass.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		logger:        logger,
	}
}

// NewAuthServiceHandler mounts every AuthService procedure under one path prefix.
func NewAuthServiceHandler(svc *AuthService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(opts, connect.WithCodec(jsonCodec{}))
	mux := http.NewServeMux()
	mux.Handle(AuthServiceStatusProcedure, connect.NewUnaryHandler(AuthServiceStatusProcedure, svc.Status, opts...))
	mux.Handle(AuthServiceSetPasscodeProcedure, connect.NewUnaryHandler(AuthServiceSetPasscodeProcedure, svc.SetPasscode, opts...))
	mux.Handle(AuthServiceClearPasscodeProcedure, connect.NewUnaryHandler(AuthServiceClearPasscodeProcedure, svc.ClearPasscode, opts...))
	mux.Handle(AuthServiceUnlockProcedure, connect.NewUnaryHandler(AuthServiceUnlockProcedure, svc.Unlock, opts...))
	return "/" + AuthServiceName + "/", mux
}

// Status reports whether a passcode is set.
func (s *AuthService) Status(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[AuthStatus], error) {
	configured, err := s.authenticator.Configured(ctx)
	if err != nil {
		s.logger.Error("Failed to read passcode", "error", err)
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&AuthStatus{Configured: configured}), nil
}

// SetPasscode sets or changes the passcode. Changing it requires the current one.
func (s *AuthService) SetPasscode(ctx context.Context, req *connect.Request[SetPasscodeRequest]) (*connect.Response[AuthStatus], error) {
	s.logger.Info("SetPasscode request")

	if err := s.authenticator.SetCredential(ctx, req.Msg.Current, req.Msg.Passcode); err != nil {
		s.logger.Warn("SetPasscode failed", "error", err)
		return nil, apperr.ToConnect(err)
	}

	s.logger.Info("Passcode set")
	return connect.NewResponse(&AuthStatus{Configured: true}), nil
}

// ClearPasscode removes the passcode, unlocking the app for good.
func (s *AuthService) ClearPasscode(ctx context.Context, req *connect.Request[ClearPasscodeRequest]) (*connect.Response[AuthStatus], error) {
	s.logger.Info("ClearPasscode request")

	if err := s.authenticator.ClearCredential(ctx, req.Msg.Current); err != nil {
		s.logger.Warn("ClearPasscode failed", "error", err)
		return nil, apperr.ToConnect(err)
	}

	s.logger.Info("Passcode cleared")
	return connect.NewResponse(&AuthStatus{Configured: false}), nil
}

// Unlock exchanges the passcode for a session token.
func (s *AuthService) Unlock(ctx context.Context, req *connect.Request[UnlockRequest]) (*connect.Response[UnlockResponse], error) {
	if err := s.authenticator.Authenticate(ctx, req.Msg.Passcode); err != nil {
		s.logger.Warn("Unlock failed", "error", err)
		return nil, apperr.ToConnect(err)
	}

	sessionID := uuid.NewString()
	token, expiresAt, err := s.jwtManager.Generate(sessionID)
	if err != nil {
		s.logger.Error("Failed to generate token", "error", err)
		return nil, apperr.ToConnect(err)
	}

	s.logger.Info("Unlocked", "session_id", sessionID)
	return connect.NewResponse(&UnlockResponse{Token: token, ExpiresAt: expiresAt}), nil
}
