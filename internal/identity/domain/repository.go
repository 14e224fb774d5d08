package domain

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository provides access to stored users.
type UserRepository interface {
	// Save persists a user (insert or update).
	Save(ctx context.Context, user *User) error

	// FindByID retrieves a user by identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail retrieves a user by email address.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByAPIToken resolves the user owning the given token.
	FindByAPIToken(ctx context.Context, token string) (*User, error)
}

// SettingsRepository provides access to per-user planning settings.
type SettingsRepository interface {
	// Save persists settings (insert or update).
	Save(ctx context.Context, settings *UserSettings) error

	// FindByUserID retrieves the settings row for a user.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*UserSettings, error)
}
