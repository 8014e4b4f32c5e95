// Package pg is the PostgreSQL user directory. It uses pgxpool directly.
package pg

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/hellologin/internal/domain/repository"
	"github.com/dropDatabas3/hellologin/internal/domain/types"
)

// Config holds connection settings.
type Config struct {
	DSN      string
	MaxConns int32
}

// Store owns the pool and exposes the user repository.
type Store struct {
	pool  *pgxpool.Pool
	users *userRepo
}

// Open connects and pings the database.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pg: parse DSN: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	} else {
		poolCfg.MaxConns = 10
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}

	return &Store{pool: pool, users: &userRepo{pool: pool}}, nil
}

// Users returns the user repository.
func (s *Store) Users() repository.UserRepository { return s.users }

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Close releases the pool.
func (s *Store) Close() { s.pool.Close() }

// Migrate applies pending embedded migrations.
func (s *Store) Migrate(ctx context.Context) (*MigrationResult, error) {
	return NewMigrator(nil, "").Run(ctx, s.pool)
}

// nullIfEmpty returns nil for "", so optional columns store NULL.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ─── UserRepository ───

type userRepo struct{ pool *pgxpool.Pool }

const selectUser = `
	SELECT u.id::text,
	       COALESCE(u.email, ''),
	       COALESCE(u.password_hash, ''),
	       COALESCE(u.first_name, ''),
	       COALESCE(u.last_name, ''),
	       COALESCE(u.language, ''),
	       COALESCE(array_agg(e.identifier ORDER BY e.identifier)
	                FILTER (WHERE e.identifier IS NOT NULL), '{}')
	FROM app_user u
	LEFT JOIN user_external_id e ON e.user_id = u.id
`

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*types.User, error) {
	const query = selectUser + `
	WHERE LOWER(u.email) = LOWER($1)
	GROUP BY u.id`
	return r.queryOne(ctx, query, strings.TrimSpace(email))
}

func (r *userRepo) GetByExternalID(ctx context.Context, identifier string) (*types.User, error) {
	const query = selectUser + `
	WHERE u.id = (SELECT user_id FROM user_external_id WHERE identifier = $1)
	GROUP BY u.id`
	return r.queryOne(ctx, query, identifier)
}

func (r *userRepo) queryOne(ctx context.Context, query string, arg any) (*types.User, error) {
	var d types.UserData
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&d.ID, &d.Email, &d.PasswordHash, &d.FirstName, &d.LastName, &d.Language, &d.ExternalIDs,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: query user: %w", err)
	}
	return types.NewUser(d), nil
}

func (r *userRepo) Create(ctx context.Context, in repository.CreateUserInput) (*types.User, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" && len(in.ExternalIDs) == 0 {
		return nil, repository.ErrInvalidInput
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("pg: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	id := uuid.NewString()
	_, err = tx.Exec(ctx, `
		INSERT INTO app_user (id, email, password_hash, first_name, last_name, language)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, nullIfEmpty(email), nullIfEmpty(in.PasswordHash),
		nullIfEmpty(in.FirstName), nullIfEmpty(in.LastName), nullIfEmpty(in.Language),
	)
	if isUniqueViolation(err) {
		return nil, repository.ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("pg: insert user: %w", err)
	}

	for _, ext := range in.ExternalIDs {
		_, err = tx.Exec(ctx, `INSERT INTO user_external_id (identifier, user_id) VALUES ($1, $2)`, ext, id)
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		if err != nil {
			return nil, fmt.Errorf("pg: link external id: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("pg: commit: %w", err)
	}

	return types.NewUser(types.UserData{
		ID:           id,
		Email:        email,
		PasswordHash: in.PasswordHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Language:     in.Language,
		ExternalIDs:  in.ExternalIDs,
	}), nil
}
