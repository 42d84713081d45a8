// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package web serves the InternScout landing page and its JSON and
// Server-Sent Events API.
//
// Each page load starts a new session with an empty result list. Searches
// run in the background; the page and API read the session's results while
// they stream in.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pdiddy/internscout/internal/form"
	"github.com/pdiddy/internscout/internal/session"
	"github.com/pdiddy/internscout/pkg/types"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const shutdownTimeout = 10 * time.Second

// Server holds the page sessions and the gin engine that serves them.
type Server struct {
	cfg            types.ServerConfig
	defaultDomains []string
	backend        session.Backend
	history        session.History
	log            zerolog.Logger

	// baseCtx parents every search and request; cancelled on shutdown.
	baseCtx context.Context
	cancel  context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*session.Session

	limiter *ipLimiter
	engine  *gin.Engine

	// pollInterval bounds how long the result stream waits before
	// rechecking whether the search has finished.
	pollInterval time.Duration
}

// Options configures a Server.
type Options struct {
	Config         types.ServerConfig
	DefaultDomains []string
	Backend        session.Backend
	History        session.History
	Logger         zerolog.Logger
}

// NewServer builds the gin engine and routes.
func NewServer(opts Options) (*Server, error) {
	ctx, cancel := context.WithCancel(opts.Logger.WithContext(context.Background()))
	s := &Server{
		cfg:            opts.Config,
		defaultDomains: opts.DefaultDomains,
		backend:        opts.Backend,
		history:        opts.History,
		log:            opts.Logger,
		baseCtx:        ctx,
		cancel:         cancel,
		sessions:       make(map[string]*session.Session),
		limiter:        newIPLimiter(opts.Config.SubmitRate, opts.Config.SubmitBurst),
		pollInterval:   500 * time.Millisecond,
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		cancel()
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log))
	r.Use(cors.New(corsConfig(opts.Config.AllowedOrigins)))
	r.SetHTMLTemplate(tmpl)

	r.GET("/", s.handleNewPage)
	r.GET("/s/:id", s.handlePage)
	r.POST("/s/:id/search", s.limiter.middleware(s.rejectPage), s.handleFormSubmit)
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := r.Group("/api")
	api.POST("/sessions", s.handleCreateSession)
	api.GET("/sessions/:id", s.handleStatus)
	api.POST("/sessions/:id/search", s.limiter.middleware(rejectJSON), s.handleAPISearch)
	api.GET("/sessions/:id/results", s.handleResults)
	api.GET("/sessions/:id/stream", s.handleStream)

	s.engine = r
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is cancelled, then cancels running searches
// and shuts down.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return s.baseCtx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("InternScout server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.cancel()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.cancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Close cancels every running search.
func (s *Server) Close() { s.cancel() }

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	return cfg
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Str("ip", c.ClientIP()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}

// newSession registers a fresh session and evicts idle ones.
func (s *Server) newSession(ip string) *session.Session {
	sess := session.New(s.backend, session.Options{
		History:        s.history,
		Notifier:       form.LogNotifier{Logger: s.log},
		DefaultDomains: s.defaultDomains,
		RequesterIP:    ip,
	})

	now := time.Now()
	s.limiter.prune(now)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(now)
	s.sessions[sess.ID] = sess
	return sess
}

func (s *Server) session(id string) (*session.Session, bool) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if ok {
		sess.Touch()
	}
	return sess, ok
}

// sweepLocked drops sessions idle longer than the TTL with no search running.
func (s *Server) sweepLocked(now time.Time) {
	if s.cfg.SessionTTL <= 0 {
		return
	}
	for id, sess := range s.sessions {
		if !sess.Busy() && now.Sub(sess.IdleSince()) > s.cfg.SessionTTL {
			delete(s.sessions, id)
		}
	}
}
