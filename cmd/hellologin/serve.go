package main

import (
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/hellologin/internal/app"
	"github.com/dropDatabas3/hellologin/internal/config"
)

func newServeCmd(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := app.New(ctx, cfg(), app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Run(ctx)
		},
	}
}
