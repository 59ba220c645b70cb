// Package server implements the storyline HTTP service.
//
// The service holds a single editing session. Clients edit its event table
// and style through a JSON API and download the rendered mockup as PNG.
// Rendering is synchronous: every image request runs the pipeline on a
// snapshot of the session, with results cached by content.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/storyline/pkg/cache"
	"github.com/matzehuels/storyline/pkg/fonts"
	"github.com/matzehuels/storyline/pkg/pipeline"
	"github.com/matzehuels/storyline/pkg/session"
)

// DefaultMaxUploadBytes bounds background image uploads.
const DefaultMaxUploadBytes = 10 << 20

// Server serves the HTTP API.
type Server struct {
	runner    *pipeline.Runner
	store     session.Store
	logger    *log.Logger
	fonts     *fonts.Resolver
	maxUpload int64

	mu        sync.Mutex
	sessionID string
	initial   *session.Session

	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the session store. The default is a [session.MemoryStore].
func WithStore(st session.Store) Option {
	return func(s *Server) {
		if st != nil {
			s.store = st
		}
	}
}

// WithSession makes sess the service's session, e.g. one preloaded from a
// timeline document.
func WithSession(sess *session.Session) Option {
	return func(s *Server) { s.initial = sess }
}

// WithFonts sets the font resolver used for rendering.
func WithFonts(r *fonts.Resolver) Option {
	return func(s *Server) { s.fonts = r }
}

// WithMaxUploadBytes bounds background uploads.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// New creates a server rendering with runner. A nil runner renders without
// a cache.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, nil)
	}
	s := &Server{
		runner:    runner,
		store:     session.NewMemoryStore(),
		logger:    log.NewWithOptions(io.Discard, log.Options{}),
		maxUpload: DefaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.initial != nil {
		_ = s.store.Set(context.Background(), s.initial)
		s.sessionID = s.initial.ID
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/mockup.png", s.handleMockup)
	r.Get("/chart.png", s.handleChart)

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", s.handleVersion)
		r.Get("/formats", s.handleFormats)

		r.Route("/events", func(r chi.Router) {
			r.Get("/", s.handleListEvents)
			r.Post("/", s.handleAddEvent)
			r.Delete("/", s.handleClearEvents)
			r.Delete("/{id}", s.handleDeleteEvent)
		})

		r.Route("/style", func(r chi.Router) {
			r.Get("/", s.handleGetStyle)
			r.Put("/", s.handleUpdateStyle)
			r.Post("/reset", s.handleResetStyle)
			r.Put("/background", s.handleUploadBackground)
			r.Delete("/background", s.handleDeleteBackground)
		})

		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handleUpdateSettings)
	})
	return r
}

// session returns the current session, replacing it if it has expired.
func (s *Server) session(ctx context.Context) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sessionID != "" {
		sess, err := s.store.Get(ctx, s.sessionID)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, session.ErrNotFound) && !errors.Is(err, session.ErrExpired) {
			return nil, err
		}
		s.logger.Info("starting new session", "previous", s.sessionID, "reason", err)
	}

	sess := session.New(0)
	if err := s.store.Set(ctx, sess); err != nil {
		return nil, err
	}
	s.sessionID = sess.ID
	return sess, nil
}

// runnerFor scopes cache keys to one session.
func (s *Server) runnerFor(sess *session.Session) *pipeline.Runner {
	return &pipeline.Runner{
		Cache:  s.runner.Cache,
		Keyer:  cache.NewScopedKeyer(s.runner.Keyer, "session:"+sess.ID+":"),
		Logger: s.logger,
		TTL:    s.runner.TTL,
	}
}

// Timeouts configures [Server.ListenAndServe].
type Timeouts struct {
	Read     time.Duration
	Write    time.Duration
	Shutdown time.Duration
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully within t.Shutdown.
func (s *Server) ListenAndServe(ctx context.Context, addr string, t Timeouts) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  t.Read,
		WriteTimeout: t.Write,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
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

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), t.Shutdown)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return s.runner.Close()
}
