package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/internal/logging"
)

func newLoginCmd(root *rootOptions) *cobra.Command {
	var origin string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Run one sign-in handshake with the configured wallet and print the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if origin == "" {
				origin = cfg.Origin
			}
			logger := logging.New(serviceName, version, cfg.LogFormat, cfg.LogLevel, cmd.ErrOrStderr())

			ctx := cmd.Context()
			d, err := buildDeps(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer d.Close()

			if env, ok := core.EnvironmentFromOrigin(origin); ok {
				ctx = core.WithEnvironment(ctx, env)
			}

			session, err := d.orchestrator.PerformAuth(ctx, d.sessions)
			if err != nil {
				if core.IsClassified(err) {
					return fmt.Errorf("%s: %w", core.CodeOf(err), err)
				}
				return fmt.Errorf("authentication failed: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(session)
		},
	}
	cmd.Flags().StringVar(&origin, "origin", "", "origin to sign in to (defaults to WALLETAUTH_ORIGIN)")

	return cmd
}
