package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/hellologin/internal/config"
	"github.com/dropDatabas3/hellologin/internal/store"
)

func newMigrateCmd(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending PostgreSQL migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg()
			if c.Storage.Driver != "postgres" {
				return errors.New("migrate requires storage.driver=postgres")
			}
			dir, err := store.Open(cmd.Context(), storeConfig(c, false))
			if err != nil {
				return err
			}
			defer dir.Close()

			res, err := dir.Migrate(cmd.Context())
			if err != nil {
				return err
			}
			for _, v := range res.Applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied migration %04d\n", v)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d applied, %d already current\n", len(res.Applied), len(res.Skipped))
			return nil
		},
	}
}

func storeConfig(c *config.Config, migrate bool) store.Config {
	return store.Config{
		Driver:        c.Storage.Driver,
		DSN:           c.Storage.DSN,
		MaxConns:      c.Storage.MaxConns,
		LookupTimeout: c.Storage.LookupTimeout,
		Migrate:       migrate,
	}
}
