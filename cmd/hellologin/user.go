package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/hellologin/internal/config"
	"github.com/dropDatabas3/hellologin/internal/domain/repository"
	"github.com/dropDatabas3/hellologin/internal/domain/types"
	"github.com/dropDatabas3/hellologin/internal/security/password"
	"github.com/dropDatabas3/hellologin/internal/store"
	"github.com/dropDatabas3/hellologin/internal/validation"
)

func newUserCmd(cfg func() *config.Config) *cobra.Command {
	user := &cobra.Command{Use: "user", Short: "Manage users"}

	var in repository.CreateUserInput
	var plain string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a user with a local password and/or linked provider ids",
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Email = strings.TrimSpace(in.Email)
			if in.Email == "" && len(in.ExternalIDs) == 0 {
				return errors.New("--email or --external-id is required")
			}
			if in.Email != "" && !validation.ValidEmail(in.Email) {
				return fmt.Errorf("invalid email %q", in.Email)
			}
			for _, id := range in.ExternalIDs {
				if _, _, ok := types.ParseExternalID(id); !ok {
					return fmt.Errorf("external id %q must look like provider://id", id)
				}
			}
			if plain != "" {
				h, err := password.Hash(password.Default, plain)
				if err != nil {
					return err
				}
				in.PasswordHash = h
			}

			c := cfg()
			dir, err := store.Open(cmd.Context(), storeConfig(c, c.Storage.Migrate))
			if err != nil {
				return err
			}
			defer dir.Close()

			u, err := dir.Users.Create(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", u.ID, u.DisplayName())
			return nil
		},
	}
	f := create.Flags()
	f.StringVar(&in.Email, "email", "", "email address")
	f.StringVar(&plain, "password", "", "local password (optional)")
	f.StringVar(&in.FirstName, "first-name", "", "first name")
	f.StringVar(&in.LastName, "last-name", "", "last name")
	f.StringVar(&in.Language, "language", "", "language code, e.g. en")
	f.StringSliceVar(&in.ExternalIDs, "external-id", nil, "linked identifier, e.g. twitter://12345 (repeatable)")

	user.AddCommand(create)
	return user
}
