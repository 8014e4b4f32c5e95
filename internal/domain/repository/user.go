package repository

import (
	"context"

	"github.com/dropDatabas3/hellologin/internal/domain/types"
)

// CreateUserInput carries the data for a new account. PasswordHash is
// already derived; plaintext passwords never reach the repository.
type CreateUserInput struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Language     string
	ExternalIDs  []string
}

// UserRepository is the user directory.
type UserRepository interface {
	// GetByEmail finds a user by email, case-insensitively.
	// Returns ErrNotFound if there is none.
	GetByEmail(ctx context.Context, email string) (*types.User, error)

	// GetByExternalID finds the user linked to a provider-qualified identifier.
	// Returns ErrNotFound if there is none.
	GetByExternalID(ctx context.Context, identifier string) (*types.User, error)

	// Create stores a new user and links its external identifiers.
	// Returns ErrConflict if the email or an identifier is taken.
	Create(ctx context.Context, in CreateUserInput) (*types.User, error)
}
