// Package web serves the profiling pipeline over HTTP with gin.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/KaramelBytes/csvprof/internal/config"
	"github.com/KaramelBytes/csvprof/internal/dataset"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Server is a stateless HTTP front end: every request loads and profiles its
// own upload.
type Server struct {
	router    *gin.Engine
	templates *template.Template
	log       *logrus.Logger

	addr      string
	maxUpload int64
	bins      int
	charts    bool
	dataset   dataset.Options
}

// NewServer builds the router from the loaded configuration.
func NewServer(cfg *config.Global, logger *logrus.Logger) (*Server, error) {
	if logger == nil {
		logger = logrus.New()
	}
	opt, err := cfg.DatasetOptions()
	if err != nil {
		return nil, err
	}
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	maxMB := cfg.MaxUploadMB
	if maxMB <= 0 {
		maxMB = 32
	}
	s := &Server{
		router:    gin.New(),
		templates: tmpl,
		log:       logger,
		addr:      cfg.ListenAddr,
		maxUpload: int64(maxMB) << 20,
		bins:      cfg.HistogramBins,
		charts:    cfg.Charts,
		dataset:   opt,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery(), s.requestLogger())
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.POST("/report", s.handleReport)

	api := s.router.Group("/api/profile")
	api.POST("", s.handleProfileJSON)
	api.POST("/markdown", s.handleProfileMarkdown)
	api.POST("/pdf", s.handleProfilePDF)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		entry := s.log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"bytes":   c.Writer.Size(),
		})
		if len(c.Errors) > 0 {
			entry.WithField("errors", c.Errors.String()).Warn("request failed")
			return
		}
		entry.Info("request")
	}
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
