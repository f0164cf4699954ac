// Package web serves the task list as an HTML page backed by the task API.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/nibzard/tasklist-go/internal/app"
	"github.com/nibzard/tasklist-go/internal/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server is the task list web server.
type Server struct {
	api    app.TaskAPI
	router *gin.Engine
	logger *log.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server and controller logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new web server.
func NewServer(api app.TaskAPI, opts ...Option) *Server {
	s := &Server{
		api:    api,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.logRequests)
	router.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))
	s.router = router

	router.GET("/", s.handleIndex)
	router.POST("/tasks", s.handleCreate)
	router.POST("/tasks/:id/toggle", s.handleToggle)
	router.POST("/tasks/:id/delete", s.handleDelete)

	return s
}

// Handler returns the HTTP handler for the page.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving web page", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.logger.Debug("request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"elapsed", time.Since(start),
	)
}
