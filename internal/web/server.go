// Package web serves the box generator as a single-page browser form
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/philipparndt/gobox/internal/config"
	"github.com/philipparndt/gobox/internal/pipeline"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Server is the HTTP adapter around a pipeline
type Server struct {
	cfg      *config.Config
	pipeline *pipeline.Pipeline
	sessions *sessionStore
	router   *gin.Engine
}

// NewServer wires the routes
func NewServer(cfg *config.Config, p *pipeline.Pipeline) *Server {
	s := &Server{
		cfg:      cfg,
		pipeline: p,
		sessions: newSessionStore(cfg.SessionTTL),
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))

	router.GET("/", s.handleIndex)
	router.POST("/", s.handleIndex)
	router.GET("/download/:session", s.handleDownload)
	router.GET("/preview/:session", s.handlePreview)
	router.POST("/api/render", s.handleRender)
	router.GET("/healthz", s.handleHealth)

	s.router = router
	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down and removes all
// remaining session files.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go s.sessions.janitor(janitorCtx, sweepInterval(s.cfg.SessionTTL))

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[web] listening on %s", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = srv.Shutdown(shutdownCtx)
	}

	s.sessions.releaseAll()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func sweepInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}
