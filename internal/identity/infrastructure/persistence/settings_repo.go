package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/daybreakhq/daybreak/internal/identity/domain"
	"github.com/daybreakhq/daybreak/internal/shared/infrastructure/database"
)

// SettingsRepository stores per-user planning settings.
type SettingsRepository struct {
	conn database.Connection
}

// NewSettingsRepository creates a settings repository on the given connection.
func NewSettingsRepository(conn database.Connection) *SettingsRepository {
	return &SettingsRepository{conn: conn}
}

// Save inserts the settings or updates an existing row.
func (r *SettingsRepository) Save(ctx context.Context, settings *domain.UserSettings) error {
	exec := database.ExecutorFromContext(ctx, r.conn)

	query := `
		INSERT INTO user_settings (id, user_id, working_hours_start, working_hours_end, work_days_mask, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			working_hours_start = excluded.working_hours_start,
			working_hours_end = excluded.working_hours_end,
			work_days_mask = excluded.work_days_mask,
			updated_at = excluded.updated_at`

	_, err := exec.Exec(ctx, query,
		settings.ID(),
		settings.UserID(),
		settings.WorkingHoursStart(),
		settings.WorkingHoursEnd(),
		settings.WorkDaysMask(),
		settings.CreatedAt(),
		settings.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save user settings: %w", err)
	}
	return nil
}

// FindByUserID retrieves the settings row for a user.
func (r *SettingsRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserSettings, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)

	query := `
		SELECT id, user_id, working_hours_start, working_hours_end, work_days_mask, created_at, updated_at
		FROM user_settings
		WHERE user_id = ?`

	var (
		id, owner            uuid.UUID
		start, end, mask     string
		createdAt, updatedAt time.Time
	)
	err := exec.QueryRow(ctx, query, userID).Scan(
		&id, &owner, &start, &end, &mask, &createdAt, &updatedAt,
	)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("failed to query user settings: %w", err)
	}

	return domain.RehydrateUserSettings(id, owner, start, end, mask, createdAt, updatedAt), nil
}
