package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hGPhillies/Project-NNTP-Niklas/internal/api"
	"github.com/labstack/echo/v5"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func (c *cli) serveCmd() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the operations and history over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("listen") {
				c.app.Config.API.Listen = listen
			}
			return c.serve(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address, overrides api.listen")
	return cmd
}

func (c *cli) serve(ctx context.Context) error {
	e := echo.New()
	api.RegisterRoutes(e, c.app)

	server := &http.Server{
		Addr:    c.app.Config.API.Listen,
		Handler: e,
	}

	c.app.Logger.Info("Listening on %s (upstream %s)", server.Addr, c.app.Config.Session().Addr())
	return runServer(ctx, server, c.app.Logger)
}

type serverLogger interface {
	Info(f string, v ...any)
	Warn(f string, v ...any)
}

// runServer serves until ctx is done, then shuts down gracefully. It
// returns only after the shutdown watcher has exited, including when the
// listener fails to start.
func runServer(ctx context.Context, server *http.Server, log serverLogger) error {
	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		select {
		case <-ctx.Done():
		case <-done:
			return
		}
		log.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn("Error shutting down HTTP server: %v", err)
		}
	}()

	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		// Shutdown is draining; wait for it.
		<-stopped
		return nil
	}
	close(done)
	<-stopped
	return fmt.Errorf("HTTP server failed: %w", err)
}
