package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/hellologin/internal/config"
	"github.com/dropDatabas3/hellologin/internal/security/secretbox"
)

// newSealCmd prints a value usable as storage.dsn when the DSN must not be
// stored in clear text.
func newSealCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seal-dsn <dsn>",
		Short: "Encrypt a DSN with " + secretbox.EnvKey,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := secretbox.ParseKey(os.Getenv(secretbox.EnvKey))
			if err != nil {
				return fmt.Errorf("%s: %w", secretbox.EnvKey, err)
			}
			box, err := secretbox.New(key)
			if err != nil {
				return err
			}
			sealed, err := box.Seal(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), config.SealedPrefix+sealed)
			return nil
		},
	}
}
