package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/layer-3/walletauth/internal/logging"
	transport "github.com/layer-3/walletauth/transport/http"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the sign-in handshake over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			logger := logging.New(serviceName, version, cfg.LogFormat, cfg.LogLevel, cmd.ErrOrStderr())

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			d, err := buildDeps(ctx, cfg, logger)
			if err != nil {
				logging.LogError(ctx, logger, "failed to start", err)
				return err
			}
			defer d.Close()

			gin.SetMode(gin.ReleaseMode)
			srv := &http.Server{
				Addr:              cfg.HTTPAddr,
				Handler:           transport.SetupRouter(d.orchestrator, d.sessions, d.registry),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				defer close(errCh)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			logger.Info("server started", "addr", cfg.HTTPAddr, "wallet", d.wallet.Address())

			select {
			case err := <-errCh:
				logging.LogError(ctx, logger, "server failed", err)
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			logger.Info("server stopped")
			return nil
		},
	}
}
