package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-dynform/internal/app"
	"github.com/goliatone/go-dynform/internal/server"
)

func newServeCommand(flags *globalFlags) *cobra.Command {
	var (
		addr          string
		basePath      string
		shutdownGrace time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the form over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := flags.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("base-path") {
				cfg.BasePath = basePath
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.Build(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			// The page shows the loading state until the schema settles.
			a.Orchestrator.Composer().MountAsync(ctx)

			srv := server.New(a.Orchestrator,
				server.WithTitle(cfg.Title),
				server.WithBasePath(cfg.BasePath),
				server.WithLogger(logger),
			)
			httpServer := &http.Server{
				Addr:              cfg.Addr,
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errChan := make(chan error, 1)
			go func() {
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errChan <- err
				}
			}()
			logger.Info("listening", "addr", cfg.Addr, "base_path", cfg.BasePath, "schema", cfg.Schema.Source)

			select {
			case err := <-errChan:
				return fmt.Errorf("listen: %w", err)
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("shutdown", "error", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "", "mount the form under this path")
	cmd.Flags().DurationVar(&shutdownGrace, "shutdown-grace", 5*time.Second, "graceful shutdown timeout")
	return cmd
}
