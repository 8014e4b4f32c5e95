// Package memory is an in-process user directory for dev mode and tests.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dropDatabas3/hellologin/internal/domain/repository"
	"github.com/dropDatabas3/hellologin/internal/domain/types"
)

// Users implements repository.UserRepository over two indexes.
type Users struct {
	mu         sync.RWMutex
	byID       map[string]types.UserData
	byEmail    map[string]string // lower(email) -> id
	byExternal map[string]string // external id -> user id
}

var _ repository.UserRepository = (*Users)(nil)

// New returns an empty directory.
func New() *Users {
	return &Users{
		byID:       make(map[string]types.UserData),
		byEmail:    make(map[string]string),
		byExternal: make(map[string]string),
	}
}

func (s *Users) GetByEmail(ctx context.Context, email string) (*types.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[emailKey(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return types.NewUser(s.byID[id]), nil
}

func (s *Users) GetByExternalID(ctx context.Context, identifier string) (*types.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byExternal[identifier]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return types.NewUser(s.byID[id]), nil
}

func (s *Users) Create(ctx context.Context, in repository.CreateUserInput) (*types.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Email) == "" && len(in.ExternalIDs) == 0 {
		return nil, repository.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ek := emailKey(in.Email)
	if ek != "" {
		if _, taken := s.byEmail[ek]; taken {
			return nil, repository.ErrConflict
		}
	}
	for _, ext := range in.ExternalIDs {
		if _, taken := s.byExternal[ext]; taken {
			return nil, repository.ErrConflict
		}
	}

	d := types.UserData{
		ID:           uuid.NewString(),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: in.PasswordHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Language:     in.Language,
		ExternalIDs:  append([]string(nil), in.ExternalIDs...),
	}
	s.byID[d.ID] = d
	if ek != "" {
		s.byEmail[ek] = d.ID
	}
	for _, ext := range d.ExternalIDs {
		s.byExternal[ext] = d.ID
	}
	return types.NewUser(d), nil
}

// Len returns the number of stored users.
func (s *Users) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
