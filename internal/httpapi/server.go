package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/danielpatrickdp/trustlens/internal/content"
	"github.com/danielpatrickdp/trustlens/internal/engine"
	"github.com/danielpatrickdp/trustlens/internal/store"
)

// maxBodyBytes bounds a prediction request body.
const maxBodyBytes = 1 << 20

// #region collaborators

// Evaluator is the scoring engine as seen by the HTTP layer.
type Evaluator interface {
	Evaluate(ctx context.Context, sub content.Submission) (engine.Result, error)
	Available() []content.Domain
	FactCheckProviders() []string
}

// History reads stored predictions.
type History interface {
	Ping(ctx context.Context) error
	Get(ctx context.Context, id string) (store.Prediction, error)
	Recent(ctx context.Context, domain content.Domain, limit int) ([]store.Prediction, error)
}

// #endregion collaborators

// #region server

// Options wires a Server. History may be nil; the /predictions routes then
// answer 404.
type Options struct {
	Engine  Evaluator
	History History
	Tokens  []string
	Logger  *slog.Logger
}

// Server is the TrustLens HTTP API.
type Server struct {
	engine  Evaluator
	history History
	auth    *tokenAuth
	logger  *slog.Logger
	router  *mux.Router
}

// NewServer builds the router.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Server{
		engine:  opts.Engine,
		history: opts.History,
		auth:    newTokenAuth(opts.Tokens),
		logger:  opts.Logger,
		router:  mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.logRequests)
	s.router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := s.router.NewRoute().Subrouter()
	api.Use(s.auth.middleware)
	api.HandleFunc("/predict/{domain}", s.handlePredict).Methods(http.MethodPost)
	api.HandleFunc("/predictions", s.handleRecent).Methods(http.MethodGet)
	api.HandleFunc("/predictions/{id}", s.handleGetPrediction).Methods(http.MethodGet)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondWithError(w, http.StatusNotFound, "not found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then drains
// in-flight requests for up to 10 seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	s.logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// #endregion server

// #region middleware

// statusRecorder captures the response code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// #endregion middleware
