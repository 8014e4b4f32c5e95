package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/hellologin/internal/config"
	"github.com/dropDatabas3/hellologin/internal/observability/logger"
)

func main() {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	configPath := envOr("CONFIG_PATH", "configs/config.yaml")
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "hellologin",
		Short:         "Local and social login service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = c
			logger.Init(logger.Config{Env: c.App.Env, Level: c.Log.Level, ServiceName: "hellologin"})
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", configPath, "config file (env CONFIG_PATH)")

	loaded := func() *config.Config { return cfg }
	root.AddCommand(newServeCmd(loaded), newMigrateCmd(loaded), newUserCmd(loaded), newSealCmd())
	return root
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
