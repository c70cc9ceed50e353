// Package server runs the HTTP API and the periodic control loop that ties
// the source selector, controller, storage, and notifier together.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/levenlabs/go-lflag"
	"github.com/sunwarden/sunwarden/pkg/controller"
	"github.com/sunwarden/sunwarden/pkg/device"
	"github.com/sunwarden/sunwarden/pkg/log"
	"github.com/sunwarden/sunwarden/pkg/notify"
	"github.com/sunwarden/sunwarden/pkg/source"
	"github.com/sunwarden/sunwarden/pkg/status"
	"github.com/sunwarden/sunwarden/pkg/storage"
)

// tokenVerifier is a function that validates a Google ID token.
type tokenVerifier func(ctx context.Context, rawIDToken string) (*oidc.IDToken, error)

// Server handles the HTTP API and the control loop for the automation
// system.
type Server struct {
	selector   *source.Selector
	registry   *device.Registry
	controller *controller.Controller
	reporter   *status.Reporter
	storage    storage.Database
	notifier   *notify.Notifier

	listenAddr   string
	tickInterval time.Duration
	httpServer   *http.Server

	adminEmails  []string
	oidcVerifier tokenVerifier
	bypassAuth   bool
}

// Configured initializes the Server with dependencies.
// It uses lflag to register command-line flags for configuration.
func Configured(sel *source.Selector, reg *device.Registry, db storage.Database, n *notify.Notifier) *Server {
	ctrl := controller.NewController()
	srv := &Server{
		selector:   sel,
		registry:   reg,
		controller: ctrl,
		reporter:   status.NewReporter(sel, reg, ctrl),
		storage:    db,
		notifier:   n,
	}

	// get the port from PORT when running in cloud run
	port := os.Getenv("PORT")
	if port == "" {
		// otherwise default to 8080
		port = "8080"
	}

	listenAddr := lflag.String("http-listen", ":"+port, "HTTP server listen address")
	tickInterval := lflag.Duration("tick-interval", 5*time.Second, "How often to sample power and reconcile devices")
	adminEmails := lflag.String("admin-emails", "", "comma-delimited list of email addresses allowed to mutate state")
	oidcAudience := lflag.String("oidc-audience", "", "audience/client ID to validate for id tokens")

	lflag.Do(func() {
		srv.listenAddr = *listenAddr
		srv.tickInterval = *tickInterval
		if *adminEmails != "" {
			srv.adminEmails = strings.Split(*adminEmails, ",")
			for i, email := range srv.adminEmails {
				srv.adminEmails[i] = strings.TrimSpace(email)
			}
		}
		if *oidcAudience != "" {
			provider, err := oidc.NewProvider(context.Background(), "https://accounts.google.com")
			if err != nil {
				log.Ctx(context.Background()).Error("failed to initialize Google OIDC provider", slog.Any("error", err))
				os.Exit(1)
			}
			srv.oidcVerifier = provider.Verifier(&oidc.Config{ClientID: *oidcAudience}).Verify
		}
		if srv.oidcVerifier == nil && len(srv.adminEmails) == 0 {
			srv.bypassAuth = true
		}
	})

	return srv
}

func (s *Server) setupHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/history/samples", s.handleSampleHistory)
	mux.HandleFunc("GET /api/history/events", s.handleEventHistory)
	mux.Handle("POST /api/devices", s.authMiddleware(http.HandlerFunc(s.handleRegisterDevice)))
	mux.Handle("DELETE /api/devices/{name}", s.authMiddleware(http.HandlerFunc(s.handleRemoveDevice)))
	mux.Handle("POST /api/source/force", s.authMiddleware(http.HandlerFunc(s.handleForceSource)))
	mux.HandleFunc("/healthz", s.handleHealthz)
	return gziphandler.GzipHandler(mux)
}

// Run restores persisted devices, starts the control loop and HTTP server,
// and blocks until the context is canceled or the server fails.
func (s *Server) Run(ctx context.Context) error {
	s.restoreDevices(ctx)

	s.httpServer = &http.Server{
		Addr:         s.listenAddr,
		Handler:      s.setupHandler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	// use a channel to capture server errors
	errChan := make(chan error, 1)
	go func() {
		defer close(errChan)
		log.Ctx(ctx).InfoContext(ctx, "starting server", slog.String("addr", s.listenAddr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	go s.runLoop(ctx)

	select {
	case <-ctx.Done():
		log.Ctx(ctx).InfoContext(ctx, "shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

// restoreDevices loads persisted device definitions into the registry.
// Devices already registered (e.g. from the devices file) win.
func (s *Server) restoreDevices(ctx context.Context) {
	configs, err := s.storage.ListDevices(ctx)
	if err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to load persisted devices", slog.Any("error", err))
		return
	}
	for _, config := range configs {
		if _, err := s.registry.Register(config.Name, config.RatedPowerWatts, config.Priority); err != nil {
			var dup *device.DuplicateDeviceError
			if errors.As(err, &dup) {
				continue
			}
			log.Ctx(ctx).WarnContext(ctx, "skipping invalid persisted device",
				slog.String("device", config.Name),
				slog.Any("error", err),
			)
		}
	}
}

func writeJSONError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: msg}); err != nil {
		slog.Warn("failed to write error response", slog.Any("error", err))
		panic(http.ErrAbortHandler)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", slog.Any("error", err))
		panic(http.ErrAbortHandler)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		panic(http.ErrAbortHandler)
	}
}
