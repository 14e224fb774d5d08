package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/daybreakhq/daybreak/internal/planning/domain"
	"github.com/daybreakhq/daybreak/internal/shared/infrastructure/database"
)

const planColumns = `id, user_id, plan_date, model_version, status, summary, created_at, updated_at`

const itemColumns = `id, plan_id, task_id, start_time, end_time, explanation, position, source, created_at, updated_at`

// PlanRepository stores plans and their items.
type PlanRepository struct {
	conn database.Connection
}

// NewPlanRepository creates a plan repository on the given connection.
func NewPlanRepository(conn database.Connection) *PlanRepository {
	return &PlanRepository{conn: conn}
}

// Save upserts the plan row and all of its items, and removes item rows
// the aggregate no longer holds.
func (r *PlanRepository) Save(ctx context.Context, plan *domain.Plan) error {
	exec := database.ExecutorFromContext(ctx, r.conn)

	planQuery := `
		INSERT INTO plans (` + planColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			model_version = excluded.model_version,
			status = excluded.status,
			summary = excluded.summary,
			updated_at = excluded.updated_at`

	summary := sql.NullString{String: plan.Summary(), Valid: plan.Summary() != ""}

	_, err := exec.Exec(ctx, planQuery,
		plan.ID(),
		plan.UserID(),
		plan.PlanDate(),
		plan.ModelVersion(),
		string(plan.Status()),
		summary,
		plan.CreatedAt(),
		plan.UpdatedAt(),
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrPlanExists
		}
		return fmt.Errorf("failed to save plan: %w", err)
	}

	items := plan.Items()
	itemQuery := `
		INSERT INTO plan_items (` + itemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			plan_id = excluded.plan_id,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			explanation = excluded.explanation,
			position = excluded.position,
			source = excluded.source,
			updated_at = excluded.updated_at`

	for _, item := range items {
		explanation := sql.NullString{String: item.Explanation(), Valid: item.Explanation() != ""}
		_, err := exec.Exec(ctx, itemQuery,
			item.ID(),
			item.PlanID(),
			item.TaskID(),
			item.Start(),
			item.End(),
			explanation,
			item.Position(),
			string(item.Source()),
			item.CreatedAt(),
			item.UpdatedAt(),
		)
		if err != nil {
			return fmt.Errorf("failed to save plan item: %w", err)
		}
	}

	if len(items) == 0 {
		_, err = exec.Exec(ctx, `DELETE FROM plan_items WHERE plan_id = ?`, plan.ID())
	} else {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(items)), ", ")
		args := make([]any, 0, len(items)+1)
		args = append(args, plan.ID())
		for _, item := range items {
			args = append(args, item.ID())
		}
		_, err = exec.Exec(ctx,
			`DELETE FROM plan_items WHERE plan_id = ? AND id NOT IN (`+placeholders+`)`,
			args...,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to prune plan items: %w", err)
	}
	return nil
}

// FindByUserAndDate retrieves a plan with its items.
func (r *PlanRepository) FindByUserAndDate(ctx context.Context, userID uuid.UUID, planDate time.Time) (*domain.Plan, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)

	row := exec.QueryRow(ctx,
		`SELECT `+planColumns+` FROM plans WHERE user_id = ? AND plan_date = ?`,
		userID, domain.NormalizeDate(planDate),
	)
	return r.scanPlanWithItems(ctx, exec, row)
}

// FindRange retrieves all plans for a user in [start, end], ordered by
// date, items included.
func (r *PlanRepository) FindRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*domain.Plan, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)

	rows, err := exec.Query(ctx,
		`SELECT `+planColumns+` FROM plans
		 WHERE user_id = ? AND plan_date >= ? AND plan_date <= ?
		 ORDER BY plan_date ASC`,
		userID, domain.NormalizeDate(start), domain.NormalizeDate(end),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}

	type planRow struct {
		id, userID           uuid.UUID
		planDate             time.Time
		modelVersion, status string
		summary              sql.NullString
		createdAt, updatedAt time.Time
	}
	var headers []planRow
	for rows.Next() {
		var h planRow
		if err := rows.Scan(&h.id, &h.userID, &h.planDate, &h.modelVersion, &h.status, &h.summary, &h.createdAt, &h.updatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		headers = append(headers, h)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	plans := make([]*domain.Plan, 0, len(headers))
	for _, h := range headers {
		items, err := r.loadItems(ctx, exec, h.id)
		if err != nil {
			return nil, err
		}
		plans = append(plans, domain.RehydratePlan(
			h.id, h.userID, h.planDate, h.modelVersion,
			domain.PlanStatus(h.status), h.summary.String,
			items, h.createdAt, h.updatedAt,
		))
	}
	return plans, nil
}

// FindPlanByItemID retrieves the plan containing the given item, scoped to
// the owning user.
func (r *PlanRepository) FindPlanByItemID(ctx context.Context, userID, itemID uuid.UUID) (*domain.Plan, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)

	row := exec.QueryRow(ctx,
		`SELECT p.id, p.user_id, p.plan_date, p.model_version, p.status, p.summary, p.created_at, p.updated_at
		 FROM plans p
		 JOIN plan_items i ON i.plan_id = p.id
		 WHERE i.id = ? AND p.user_id = ?`,
		itemID, userID,
	)
	plan, err := r.scanPlanWithItems(ctx, exec, row)
	if err != nil {
		if errors.Is(err, domain.ErrPlanNotFound) {
			return nil, domain.ErrPlanItemNotFound
		}
		return nil, err
	}
	return plan, nil
}

// DeleteItem removes a single item row.
func (r *PlanRepository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `DELETE FROM plan_items WHERE id = ?`, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete plan item: %w", err)
	}
	return nil
}

// CountItemsForTask counts items referencing the task across all plans.
func (r *PlanRepository) CountItemsForTask(ctx context.Context, taskID uuid.UUID) (int, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)

	var count int
	err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM plan_items WHERE task_id = ?`, taskID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count plan items: %w", err)
	}
	return count, nil
}

func (r *PlanRepository) scanPlanWithItems(ctx context.Context, exec database.Executor, row database.Row) (*domain.Plan, error) {
	var (
		id, owner            uuid.UUID
		planDate             time.Time
		modelVersion, status string
		summary              sql.NullString
		createdAt, updatedAt time.Time
	)
	err := row.Scan(&id, &owner, &planDate, &modelVersion, &status, &summary, &createdAt, &updatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to query plan: %w", err)
	}

	items, err := r.loadItems(ctx, exec, id)
	if err != nil {
		return nil, err
	}

	return domain.RehydratePlan(
		id, owner, planDate, modelVersion,
		domain.PlanStatus(status), summary.String,
		items, createdAt, updatedAt,
	), nil
}

func (r *PlanRepository) loadItems(ctx context.Context, exec database.Executor, planID uuid.UUID) ([]*domain.PlanItem, error) {
	rows, err := exec.Query(ctx,
		`SELECT `+itemColumns+` FROM plan_items WHERE plan_id = ? ORDER BY position ASC`,
		planID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query plan items: %w", err)
	}
	defer rows.Close()

	var items []*domain.PlanItem
	for rows.Next() {
		var (
			id, pid, taskID      uuid.UUID
			start, end           time.Time
			explanation          sql.NullString
			position             int
			source               string
			createdAt, updatedAt time.Time
		)
		err := rows.Scan(&id, &pid, &taskID, &start, &end, &explanation, &position, &source, &createdAt, &updatedAt)
		if err != nil {
			return nil, err
		}
		items = append(items, domain.RehydratePlanItem(
			id, pid, taskID, start, end, explanation.String, position,
			domain.ItemSource(source), createdAt, updatedAt,
		))
	}
	return items, rows.Err()
}
