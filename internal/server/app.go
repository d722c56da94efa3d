// Package server initializes and runs the user-directory application: it
// wires the store, the actors and the HTTP adapter together and handles
// graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmross14/PelaghiSoftwareWebServer/internal/logging"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/actors"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/auth"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/config"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/hashing"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/httpapi"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/pipeline"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/store"
)

type App struct {
	config *config.Config
	logger logging.Logger
}

func NewApp(cfg *config.Config) (*App, error) {
	s := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(s)

	return &App{config: cfg, logger: logger}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	secret, err := auth.DecodeSecret(app.config.SecretKey)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	manager, err := store.NewPostgresManager(ctx, app.config.DatabaseDSN, app.config.StatementTimeout)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer manager.Close()

	hasher := hashing.NewBcryptHasher(0)

	accessor := actors.NewDataAccessor(manager.Users(), hasher, app.config.AskTimeout, app.logger)
	accessor.Start(ctx)

	responder := actors.NewResponseResolver(app.config.AskTimeout, app.logger)
	responder.Start(ctx)

	// A nil resolver runs the service in the unauthenticated variant.
	var resolver *actors.AuthResolver
	if !app.config.AuthDisabled {
		resolver = actors.NewAuthResolver(accessor, hasher, secret,
			app.config.TokenValidityDuration, app.config.AskTimeout, app.logger)
		resolver.Start(ctx)
	} else {
		app.logger.Warn(ctx, "authentication disabled, all requests pass through")
	}

	p := pipeline.New(accessor, resolver, responder, app.logger)

	srv := httpapi.NewServer(app.config.EndpointAddr, p, app.logger)
	return srv.Run(ctx)
}
