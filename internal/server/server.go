// Package server assembles the HTTP surface: Connect services, REST
// endpoints, metrics and the static web client on one router.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/kinship/internal/auth"
	"github.com/mmynk/kinship/internal/backup"
	"github.com/mmynk/kinship/internal/config"
	"github.com/mmynk/kinship/internal/events"
	"github.com/mmynk/kinship/internal/metrics"
	"github.com/mmynk/kinship/internal/middleware"
	"github.com/mmynk/kinship/internal/reminder"
	"github.com/mmynk/kinship/internal/service"
	"github.com/mmynk/kinship/internal/storage"
	"github.com/mmynk/kinship/internal/theme"
)

// Deps are the long-lived components the handlers run on.
type Deps struct {
	Store         storage.Store
	Broker        *events.Broker
	Syncer        *reminder.Syncer
	Appearance    *theme.Cell
	Backups       *backup.Service
	Authenticator auth.Authenticator
	JWT           *auth.JWTManager
	Logger        *slog.Logger
}

// NewHandler builds the full HTTP handler. When lock is set, every call
// outside service.PublicProcedures needs an unlock token once a passcode exists.
func NewHandler(cfg config.ServerConfig, lock bool, deps Deps) http.Handler {
	// The lock runs first so logged calls carry the session ID.
	var interceptors []connect.Interceptor
	var restMiddleware []mux.MiddlewareFunc
	if lock {
		l := middleware.NewLock(deps.JWT, deps.Authenticator, service.PublicProcedures...)
		interceptors = append(interceptors, l)
		restMiddleware = append(restMiddleware, l.HTTP)
	}
	interceptors = append(interceptors, middleware.LoggingInterceptor())
	opts := connect.WithInterceptors(interceptors...)

	r := mux.NewRouter()

	mount := func(path string, h http.Handler) {
		r.PathPrefix(path).Handler(h)
	}
	mount(service.NewFriendServiceHandler(service.NewFriendService(deps.Store), opts))
	mount(service.NewInteractionServiceHandler(service.NewInteractionService(deps.Store), opts))
	mount(service.NewSettingsServiceHandler(service.NewSettingsService(deps.Store, deps.Appearance), opts))
	mount(service.NewReminderServiceHandler(service.NewReminderService(deps.Syncer), opts))
	mount(service.NewAuthServiceHandler(service.NewAuthService(deps.Authenticator, deps.JWT, deps.Logger), opts))
	mount(service.NewChangeServiceHandler(service.NewChangeService(deps.Broker), opts))

	service.NewREST(deps.Store, deps.Backups).Register(r, restMiddleware...)

	r.HandleFunc("/healthz", service.Healthz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	if cfg.StaticDir != "" {
		r.PathPrefix("/").Handler(staticHandler(cfg.StaticDir))
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "Connect-Protocol-Version", "Connect-Timeout-Ms"},
		ExposedHeaders: []string{"Connect-Protocol-Version", "Connect-Timeout-Ms", "Content-Disposition"},
	}).Handler(r)

	// h2c for HTTP/2 without TLS, required for Connect streaming
	return h2c.NewHandler(middleware.HTTPLogging(corsHandler), &http2.Server{})
}

// staticHandler serves the web client. Unknown paths fall back to index.html.
func staticHandler(dir string) http.Handler {
	staticDir, err := filepath.Abs(dir)
	if err != nil {
		staticDir = dir
	}
	slog.Info("Serving static files", "path", staticDir)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/kinship.v1.") {
			http.NotFound(w, r)
			return
		}

		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}
		filePath := filepath.Join(staticDir, filepath.Clean("/"+urlPath))

		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
			return
		}
		http.ServeFile(w, r, filePath)
	})
}

// Serve runs handler on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Kinship server starting", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
