// Package httpapi is the HTTP adapter over the request pipeline. It parses
// routes and bodies, hands typed operations to the pipeline and writes the
// pipeline's response verbatim.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/jmross14/PelaghiSoftwareWebServer/internal/logging"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/pipeline"
)

type Server struct {
	address  string
	pipeline *pipeline.Pipeline
	logger   logging.Logger
}

func NewServer(address string, p *pipeline.Pipeline, logger logging.Logger) *Server {
	return &Server{
		address:  address,
		pipeline: p,
		logger:   logger.With("module", "http_server"),
	}
}

// Handler returns the root http.Handler with all user-directory routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /user", s.handleGetAllUsers)
	mux.HandleFunc("GET /user/{name}", s.handleGetUser)
	mux.HandleFunc("POST /user/add", s.handleAddUser)
	mux.HandleFunc("PUT /user/update", s.handleUpdateUser)
	mux.HandleFunc("DELETE /user/delete", s.handleDeleteUser)
	mux.HandleFunc("POST /auth", s.handleLogin)

	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}
