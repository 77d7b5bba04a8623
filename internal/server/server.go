// Package server exposes the examprep workspace over HTTP with gin.
// Every client-id cookie behaves like one browser: its own session and history.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"examprep/internal/logger"
	"examprep/internal/services"
	"examprep/pkg/preptypes"
)

const shutdownTimeout = 10 * time.Second

// NamespaceProvider hands out isolated storage per client id.
type NamespaceProvider interface {
	Namespace(namespace string) (preptypes.Storage, error)
}

// WorkspaceFactory builds the Workspace for one client's storage.
type WorkspaceFactory func(store preptypes.Storage) *services.Workspace

// Config wires a Server.
type Config struct {
	Namespaces   NamespaceProvider
	NewWorkspace WorkspaceFactory
	CodeTTL      time.Duration
	TestMode     bool

	// Logger receives request and lifecycle logs. Nil selects a styled
	// "HTTPServer" logger on the global output.
	Logger *log.Logger
}

// Server is the HTTP front end.
type Server struct {
	engine       *gin.Engine
	namespaces   NamespaceProvider
	newWorkspace WorkspaceFactory
	codeTTL      time.Duration
	testMode     bool
	log          *log.Logger
}

// New builds a Server and its routes.
func New(cfg Config) (*Server, error) {
	if cfg.Namespaces == nil || cfg.NewWorkspace == nil {
		return nil, fmt.Errorf("server requires storage namespaces and a workspace factory")
	}
	if cfg.CodeTTL <= 0 {
		cfg.CodeTTL = services.DefaultCodeTTL
	}

	s := &Server{
		namespaces:   cfg.Namespaces,
		newWorkspace: cfg.NewWorkspace,
		codeTTL:      cfg.CodeTTL,
		testMode:     cfg.TestMode,
		log:          cfg.Logger,
	}
	if s.log == nil {
		s.log = logger.NewStyledLogger("HTTPServer")
	}
	s.engine = s.routes()
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestContext())

	router.GET("/healthcheck", healthCheck)

	api := router.Group("/api")
	api.Use(s.clientWorkspace())
	{
		auth := api.Group("/auth")
		auth.POST("/signup", s.signUp)
		auth.POST("/confirm", s.confirmSignUp)
		auth.POST("/login", s.logIn)
		auth.POST("/logout", s.logOut)
		auth.GET("/me", s.currentUser)

		api.POST("/framework", s.generateFramework)
		api.POST("/followup", s.askFollowUp)
		api.GET("/history", s.listHistory)
		api.DELETE("/history", s.clearHistory)
	}

	return router
}

// Handler returns the gin engine as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("HTTP server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
