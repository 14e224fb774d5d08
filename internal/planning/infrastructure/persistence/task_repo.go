// Package persistence implements the planning repositories against the
// shared database abstraction.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/daybreakhq/daybreak/internal/planning/domain"
	"github.com/daybreakhq/daybreak/internal/shared/infrastructure/database"
)

const taskColumns = `id, user_id, title, description, duration_minutes, deadline,
	category, importance, preferred_time, energy, status, created_at, updated_at`

// TaskRepository stores tasks.
type TaskRepository struct {
	conn database.Connection
}

// NewTaskRepository creates a task repository on the given connection.
func NewTaskRepository(conn database.Connection) *TaskRepository {
	return &TaskRepository{conn: conn}
}

// Save inserts the task or updates an existing row.
func (r *TaskRepository) Save(ctx context.Context, task *domain.Task) error {
	exec := database.ExecutorFromContext(ctx, r.conn)

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			duration_minutes = excluded.duration_minutes,
			deadline = excluded.deadline,
			category = excluded.category,
			importance = excluded.importance,
			preferred_time = excluded.preferred_time,
			energy = excluded.energy,
			status = excluded.status,
			updated_at = excluded.updated_at`

	desc := sql.NullString{String: task.Description(), Valid: task.Description() != ""}

	_, err := exec.Exec(ctx, query,
		task.ID(),
		task.UserID(),
		task.Title(),
		desc,
		task.DurationMinutes(),
		task.Deadline(),
		string(task.Category()),
		string(task.Importance()),
		string(task.PreferredTime()),
		string(task.Energy()),
		string(task.Status()),
		task.CreatedAt(),
		task.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	return nil
}

// FindByID retrieves a task by identifier.
func (r *TaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)

	row := exec.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to query task: %w", err)
	}
	return task, nil
}

// FindByIDs retrieves multiple tasks keyed by id.
func (r *TaskRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Task, error) {
	result := make(map[uuid.UUID]*domain.Task, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	exec := database.ExecutorFromContext(ctx, r.conn)

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := exec.Query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		result[task.ID()] = task
	}
	return result, rows.Err()
}

// FindEligible returns the user's pending or unscheduled tasks with a
// deadline within [from, to].
func (r *TaskRepository) FindEligible(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Task, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)

	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = ?
		  AND status IN (?, ?)
		  AND deadline >= ?
		  AND deadline <= ?
		ORDER BY deadline ASC, created_at ASC`

	rows, err := exec.Query(ctx, query,
		userID,
		string(domain.TaskStatusPending),
		string(domain.TaskStatusUnscheduled),
		from,
		to,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query eligible tasks: %w", err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

// FindUnscheduled returns the user's unscheduled tasks with deadline at or
// after the given instant.
func (r *TaskRepository) FindUnscheduled(ctx context.Context, userID uuid.UUID, deadlineAfter time.Time) ([]*domain.Task, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)

	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = ?
		  AND status = ?
		  AND deadline >= ?
		ORDER BY deadline ASC, created_at ASC`

	rows, err := exec.Query(ctx, query, userID, string(domain.TaskStatusUnscheduled), deadlineAfter)
	if err != nil {
		return nil, fmt.Errorf("failed to query unscheduled tasks: %w", err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*domain.Task, error) {
	var (
		id, userID            uuid.UUID
		title                 string
		desc                  sql.NullString
		durationMinutes       int
		deadline              time.Time
		category, importance  string
		preferred, energy     string
		status                string
		createdAt, updatedAt  time.Time
	)
	err := row.Scan(
		&id, &userID, &title, &desc, &durationMinutes, &deadline,
		&category, &importance, &preferred, &energy, &status,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	return domain.RehydrateTask(
		id, userID, title, desc.String, durationMinutes, deadline,
		domain.Category(category),
		domain.Importance(importance),
		domain.PreferredTime(preferred),
		domain.Energy(energy),
		domain.TaskStatus(status),
		createdAt, updatedAt,
	), nil
}

func collectTasks(rows database.Rows) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}
