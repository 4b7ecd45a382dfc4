package middleware

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/kinship/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// SessionIDKey is the context key for storing the unlocked session ID.
const SessionIDKey contextKey = "session_id"

// GetSessionID extracts the session ID from the context.
// Returns empty string if not found.
func GetSessionID(ctx context.Context) string {
	id, _ := ctx.Value(SessionIDKey).(string)
	return id
}

// Lock guards RPCs and HTTP routes behind the app lock. While no passcode is
// configured every request passes.
type Lock struct {
	jwtManager    *auth.JWTManager
	authenticator auth.Authenticator
	public        map[string]bool
}

// NewLock creates a Lock. Procedures in public are always reachable.
func NewLock(jwtManager *auth.JWTManager, authenticator auth.Authenticator, public ...string) *Lock {
	l := &Lock{
		jwtManager:    jwtManager,
		authenticator: authenticator,
		public:        make(map[string]bool, len(public)),
	}
	for _, p := range public {
		l.public[p] = true
	}
	return l
}

// check validates the Authorization header and returns ctx enriched with
// the session ID.
func (l *Lock) check(ctx context.Context, procedure string, header http.Header) (context.Context, error) {
	if l.public[procedure] {
		return ctx, nil
	}
	configured, err := l.authenticator.Configured(ctx)
	if err != nil {
		return ctx, connect.NewError(connect.CodeInternal, err)
	}
	if !configured {
		return ctx, nil
	}

	// Extract Authorization header
	authHeader := header.Get("Authorization")
	if authHeader == "" {
		return ctx, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}

	// Parse Bearer token
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ctx, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
	}

	claims, err := l.jwtManager.Validate(parts[1])
	if err != nil {
		return ctx, connect.NewError(connect.CodeUnauthenticated, err)
	}

	return context.WithValue(ctx, SessionIDKey, claims.SessionID), nil
}

// WrapUnary implements connect.Interceptor.
func (l *Lock) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		ctx, err := l.check(ctx, req.Spec().Procedure, req.Header())
		if err != nil {
			return nil, err
		}
		return next(ctx, req)
	}
}

// WrapStreamingClient implements connect.Interceptor.
func (l *Lock) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

// WrapStreamingHandler implements connect.Interceptor.
func (l *Lock) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		ctx, err := l.check(ctx, conn.Spec().Procedure, conn.RequestHeader())
		if err != nil {
			return err
		}
		return next(ctx, conn)
	}
}

// HTTP guards a plain HTTP handler. Failures are answered with 401.
func (l *Lock) HTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, err := l.check(r.Context(), r.URL.Path, r.Header)
		if err != nil {
			status := http.StatusUnauthorized
			if connect.CodeOf(err) == connect.CodeInternal {
				status = http.StatusInternalServerError
			}
			http.Error(w, err.Error(), status)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
