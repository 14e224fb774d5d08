// Package persistence implements the identity repositories against the
// shared database abstraction, so one SQL set serves Postgres and SQLite.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/daybreakhq/daybreak/internal/identity/domain"
	"github.com/daybreakhq/daybreak/internal/shared/infrastructure/database"
)

// UserRepository stores users.
type UserRepository struct {
	conn database.Connection
}

// NewUserRepository creates a user repository on the given connection.
func NewUserRepository(conn database.Connection) *UserRepository {
	return &UserRepository{conn: conn}
}

// Save inserts the user or updates an existing row.
func (r *UserRepository) Save(ctx context.Context, user *domain.User) error {
	exec := database.ExecutorFromContext(ctx, r.conn)

	query := `
		INSERT INTO users (id, email, name, profile, timezone, api_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			email = excluded.email,
			name = excluded.name,
			profile = excluded.profile,
			timezone = excluded.timezone,
			api_token = excluded.api_token,
			updated_at = excluded.updated_at`

	token := sql.NullString{String: user.APIToken(), Valid: user.APIToken() != ""}

	_, err := exec.Exec(ctx, query,
		user.ID(),
		user.Email(),
		user.Name(),
		string(user.Profile()),
		user.Timezone(),
		token,
		user.CreatedAt(),
		user.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// FindByID retrieves a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.findOne(ctx, `WHERE id = ?`, id)
}

// FindByEmail retrieves a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, `WHERE email = ?`, email)
}

// FindByAPIToken resolves the user owning the given token.
func (r *UserRepository) FindByAPIToken(ctx context.Context, token string) (*domain.User, error) {
	return r.findOne(ctx, `WHERE api_token = ?`, token)
}

func (r *UserRepository) findOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)

	query := `
		SELECT id, email, name, profile, timezone, api_token, created_at, updated_at
		FROM users ` + where

	var (
		id                   uuid.UUID
		email, name          string
		profile, timezone    string
		apiToken             sql.NullString
		createdAt, updatedAt time.Time
	)
	err := exec.QueryRow(ctx, query, arg).Scan(
		&id, &email, &name, &profile, &timezone, &apiToken, &createdAt, &updatedAt,
	)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return domain.RehydrateUser(
		id, email, name,
		domain.Profile(profile),
		timezone, apiToken.String,
		createdAt, updatedAt,
	), nil
}
