package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdugdh24/sparkchat-backend/internal/config"
	"github.com/gdugdh24/sparkchat-backend/internal/infrastructure/container"
	"github.com/gdugdh24/sparkchat-backend/internal/infrastructure/logger"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to configure logging: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize dependency injection container
	app, err := container.NewContainer(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize application")
	}

	err = run(ctx, app)
	app.Close()
	if err != nil {
		log.WithError(err).Error("server exited with error")
		os.Exit(1)
	}
	log.Info("server exited properly")
}

// run serves HTTP and drives the realtime gateway until ctx is cancelled or
// either of them fails.
func run(ctx context.Context, app *container.Container) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(app.Server.Start)
	g.Go(func() error {
		return app.Gateway.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		return app.Server.Shutdown(context.Background())
	})

	return g.Wait()
}
