package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/daybreakhq/daybreak/internal/planning/domain"
	"github.com/daybreakhq/daybreak/internal/shared/infrastructure/database"
)

// FeedbackRepository stores feedback logs.
type FeedbackRepository struct {
	conn database.Connection
}

// NewFeedbackRepository creates a feedback repository on the given
// connection.
func NewFeedbackRepository(conn database.Connection) *FeedbackRepository {
	return &FeedbackRepository{conn: conn}
}

// Save inserts a feedback log. Logs are immutable, so there is no update
// path.
func (r *FeedbackRepository) Save(ctx context.Context, log *domain.FeedbackLog) error {
	exec := database.ExecutorFromContext(ctx, r.conn)

	note := sql.NullString{String: log.Note(), Valid: log.Note() != ""}

	_, err := exec.Exec(ctx,
		`INSERT INTO feedback_logs (id, user_id, task_id, outcome, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		log.ID(),
		log.UserID(),
		log.TaskID(),
		log.Outcome(),
		note,
		log.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save feedback log: %w", err)
	}
	return nil
}

// FindRecentWithTasks returns up to limit most-recent logs for the user,
// each joined with its linked task when one exists.
func (r *FeedbackRepository) FindRecentWithTasks(ctx context.Context, userID uuid.UUID, limit int) ([]domain.FeedbackWithTask, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)

	query := `
		SELECT f.id, f.user_id, f.task_id, f.outcome, f.note, f.created_at,
		       t.id, t.user_id, t.title, t.description, t.duration_minutes, t.deadline,
		       t.category, t.importance, t.preferred_time, t.energy, t.status, t.created_at, t.updated_at
		FROM feedback_logs f
		LEFT JOIN tasks t ON t.id = f.task_id
		WHERE f.user_id = ?
		ORDER BY f.created_at DESC
		LIMIT ?`

	rows, err := exec.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback logs: %w", err)
	}
	defer rows.Close()

	var result []domain.FeedbackWithTask
	for rows.Next() {
		var (
			id, owner uuid.UUID
			taskID    uuid.NullUUID
			outcome   int
			note      sql.NullString
			createdAt time.Time

			tID, tUserID          uuid.NullUUID
			tTitle, tDesc         sql.NullString
			tDuration             sql.NullInt64
			tDeadline             sql.NullTime
			tCategory, tImp       sql.NullString
			tPref, tEnergy        sql.NullString
			tStatus               sql.NullString
			tCreatedAt, tUpdated  sql.NullTime
		)
		err := rows.Scan(
			&id, &owner, &taskID, &outcome, &note, &createdAt,
			&tID, &tUserID, &tTitle, &tDesc, &tDuration, &tDeadline,
			&tCategory, &tImp, &tPref, &tEnergy, &tStatus, &tCreatedAt, &tUpdated,
		)
		if err != nil {
			return nil, err
		}

		entry := domain.FeedbackWithTask{
			Log: domain.RehydrateFeedbackLog(id, owner, taskID, outcome, note.String, createdAt),
		}
		if tID.Valid {
			entry.Task = domain.RehydrateTask(
				tID.UUID, tUserID.UUID, tTitle.String, tDesc.String,
				int(tDuration.Int64), tDeadline.Time,
				domain.Category(tCategory.String),
				domain.Importance(tImp.String),
				domain.PreferredTime(tPref.String),
				domain.Energy(tEnergy.String),
				domain.TaskStatus(tStatus.String),
				tCreatedAt.Time, tUpdated.Time,
			)
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

// ListByUser returns up to limit most-recent logs for the user.
func (r *FeedbackRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.FeedbackLog, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)

	rows, err := exec.Query(ctx,
		`SELECT id, user_id, task_id, outcome, note, created_at
		 FROM feedback_logs
		 WHERE user_id = ?
		 ORDER BY created_at DESC
		 LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback logs: %w", err)
	}
	defer rows.Close()

	var logs []*domain.FeedbackLog
	for rows.Next() {
		var (
			id, owner uuid.UUID
			taskID    uuid.NullUUID
			outcome   int
			note      sql.NullString
			createdAt time.Time
		)
		if err := rows.Scan(&id, &owner, &taskID, &outcome, &note, &createdAt); err != nil {
			return nil, err
		}
		logs = append(logs, domain.RehydrateFeedbackLog(id, owner, taskID, outcome, note.String, createdAt))
	}
	return logs, rows.Err()
}
