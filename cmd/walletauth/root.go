package main

import (
	"github.com/spf13/cobra"

	"github.com/layer-3/walletauth/internal/config"
)

const (
	serviceName = "walletauth"
	version     = "0.1.0"
)

type rootOptions struct {
	envFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           serviceName,
		Short:         "Wallet sign-in handshake service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newLoginCmd(opts))

	return cmd
}

func (o *rootOptions) loadConfig() (config.Config, error) {
	return config.Load(o.envFile)
}
