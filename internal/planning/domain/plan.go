package domain

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/daybreakhq/daybreak/internal/shared/domain"
)

var (
	// ErrPlanNotFound is returned when no plan exists for a user and date.
	ErrPlanNotFound = errors.New("plan not found")

	// ErrPlanItemNotFound is returned when a plan item does not exist or is
	// not owned by the requesting user.
	ErrPlanItemNotFound = errors.New("plan item not found")

	// ErrInvalidInterval is returned when an item's end does not come after
	// its start.
	ErrInvalidInterval = errors.New("item end must be after start")

	// ErrPlanExists signals a racing duplicate insert on (user, plan date).
	ErrPlanExists = errors.New("plan already exists for this date")
)

// ModelVersion tags plans with the predictor artifact generation that
// produced them.
const ModelVersion = "priority_model_v1"

// PlanStatus tracks whether a plan is machine-generated or user-adjusted.
type PlanStatus string

const (
	PlanStatusGenerated PlanStatus = "generated"
	PlanStatusAdjusted  PlanStatus = "adjusted"
	PlanStatusArchived  PlanStatus = "archived"
)

// ItemSource records who placed an item.
type ItemSource string

const (
	SourceAI     ItemSource = "ai"
	SourceManual ItemSource = "manual"
)

// ConflictError reports that a requested interval overlaps an existing item.
type ConflictError struct {
	Title string
	Start time.Time
	End   time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("Time slot already occupied by '%s' from %s to %s",
		e.Title, e.Start.Format("15:04"), e.End.Format("15:04"))
}

// PlanItem is a placed block of time belonging to one plan and one task.
// It references its task by id only; task fields are resolved at response
// assembly.
type PlanItem struct {
	sharedDomain.BaseEntity
	planID      uuid.UUID
	taskID      uuid.UUID
	start       time.Time
	end         time.Time
	explanation string
	position    int
	source      ItemSource
}

// NewPlanItem creates a machine-placed item.
func NewPlanItem(planID, taskID uuid.UUID, start, end time.Time, explanation string, position int) (*PlanItem, error) {
	start = NormalizeInstant(start)
	end = NormalizeInstant(end)
	if !end.After(start) {
		return nil, ErrInvalidInterval
	}
	return &PlanItem{
		BaseEntity:  sharedDomain.NewBaseEntity(),
		planID:      planID,
		taskID:      taskID,
		start:       start,
		end:         end,
		explanation: explanation,
		position:    position,
		source:      SourceAI,
	}, nil
}

// RehydratePlanItem reconstructs an item from persistence.
func RehydratePlanItem(
	id, planID, taskID uuid.UUID,
	start, end time.Time,
	explanation string,
	position int,
	source ItemSource,
	createdAt, updatedAt time.Time,
) *PlanItem {
	return &PlanItem{
		BaseEntity:  sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		planID:      planID,
		taskID:      taskID,
		start:       start,
		end:         end,
		explanation: explanation,
		position:    position,
		source:      source,
	}
}

func (i *PlanItem) PlanID() uuid.UUID   { return i.planID }
func (i *PlanItem) TaskID() uuid.UUID   { return i.taskID }
func (i *PlanItem) Start() time.Time    { return i.start }
func (i *PlanItem) End() time.Time      { return i.end }
func (i *PlanItem) Explanation() string { return i.explanation }
func (i *PlanItem) Position() int       { return i.position }
func (i *PlanItem) Source() ItemSource  { return i.source }

// Overlaps reports whether this item's [start, end) intersects the given
// interval.
func (i *PlanItem) Overlaps(start, end time.Time) bool {
	return i.start.Before(end) && start.Before(i.end)
}

// Move updates the item's interval and marks it user-edited.
func (i *PlanItem) Move(start, end time.Time) error {
	start = NormalizeInstant(start)
	end = NormalizeInstant(end)
	if !end.After(start) {
		return ErrInvalidInterval
	}
	i.start = start
	i.end = end
	i.source = SourceManual
	i.Touch()
	return nil
}

// Reassign moves the item to a different plan at the given position. Used
// for cross-day migration by the mutator.
func (i *PlanItem) Reassign(planID uuid.UUID, position int) {
	i.planID = planID
	i.position = position
	i.Touch()
}

// Plan is the aggregate root for one user's day: it owns its items and
// enforces that their intervals stay disjoint.
type Plan struct {
	sharedDomain.BaseEntity
	userID       uuid.UUID
	planDate     time.Time
	modelVersion string
	status       PlanStatus
	summary      string
	items        []*PlanItem
}

// NewPlan creates an empty generated plan for a user and date.
func NewPlan(userID uuid.UUID, planDate time.Time) *Plan {
	return &Plan{
		BaseEntity:   sharedDomain.NewBaseEntity(),
		userID:       userID,
		planDate:     NormalizeDate(planDate),
		modelVersion: ModelVersion,
		status:       PlanStatusGenerated,
	}
}

// RehydratePlan reconstructs a plan and its items from persistence.
func RehydratePlan(
	id, userID uuid.UUID,
	planDate time.Time,
	modelVersion string,
	status PlanStatus,
	summary string,
	items []*PlanItem,
	createdAt, updatedAt time.Time,
) *Plan {
	return &Plan{
		BaseEntity:   sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		userID:       userID,
		planDate:     planDate,
		modelVersion: modelVersion,
		status:       status,
		summary:      summary,
		items:        items,
	}
}

func (p *Plan) UserID() uuid.UUID    { return p.userID }
func (p *Plan) PlanDate() time.Time  { return p.planDate }
func (p *Plan) ModelVersion() string { return p.modelVersion }
func (p *Plan) Status() PlanStatus   { return p.status }
func (p *Plan) Summary() string      { return p.summary }

// Items returns the plan's items sorted by start time.
func (p *Plan) Items() []*PlanItem {
	sorted := make([]*PlanItem, len(p.items))
	copy(sorted, p.items)
	sort.Slice(sorted, func(a, b int) bool {
		return sorted[a].start.Before(sorted[b].start)
	})
	return sorted
}

// ItemByID returns the item with the given id, or nil.
func (p *Plan) ItemByID(id uuid.UUID) *PlanItem {
	for _, item := range p.items {
		if item.ID() == id {
			return item
		}
	}
	return nil
}

// HasTask reports whether any item references the given task.
func (p *Plan) HasTask(taskID uuid.UUID) bool {
	for _, item := range p.items {
		if item.taskID == taskID {
			return true
		}
	}
	return false
}

// NextPosition returns max(existing position) + 1, or 0 for an empty plan.
func (p *Plan) NextPosition() int {
	next := 0
	for _, item := range p.items {
		if item.position >= next {
			next = item.position + 1
		}
	}
	return next
}

// FindConflict returns the earliest-starting item (other than excludeID)
// whose interval overlaps [start, end), or nil.
func (p *Plan) FindConflict(start, end time.Time, excludeID uuid.UUID) *PlanItem {
	var earliest *PlanItem
	for _, item := range p.items {
		if item.ID() == excludeID {
			continue
		}
		if item.Overlaps(start, end) {
			if earliest == nil || item.start.Before(earliest.start) {
				earliest = item
			}
		}
	}
	return earliest
}

// AddItem attaches an item after checking it does not overlap any existing
// item.
func (p *Plan) AddItem(item *PlanItem) error {
	if !item.end.After(item.start) {
		return ErrInvalidInterval
	}
	if conflict := p.FindConflict(item.start, item.end, item.ID()); conflict != nil {
		return &ConflictError{Title: "", Start: conflict.start, End: conflict.end}
	}
	item.planID = p.ID()
	p.items = append(p.items, item)
	p.Touch()
	return nil
}

// AttachItem adds an item that was validated elsewhere, for cross-day
// migration and rehydration paths.
func (p *Plan) AttachItem(item *PlanItem) {
	item.planID = p.ID()
	p.items = append(p.items, item)
	p.Touch()
}

// RemoveItem detaches the item with the given id.
func (p *Plan) RemoveItem(id uuid.UUID) bool {
	for idx, item := range p.items {
		if item.ID() == id {
			p.items = append(p.items[:idx], p.items[idx+1:]...)
			p.Touch()
			return true
		}
	}
	return false
}

// UpdateSummary sets the human summary from placement counts.
func (p *Plan) UpdateSummary(scheduled, unscheduled int) {
	p.summary = fmt.Sprintf("%d scheduled, %d unscheduled", scheduled, unscheduled)
	p.Touch()
}

// MarkAdjusted records that a user edited this plan.
func (p *Plan) MarkAdjusted() {
	p.status = PlanStatusAdjusted
	p.Touch()
}

// OccupiedMinutes sums the durations of all items.
func (p *Plan) OccupiedMinutes() int {
	total := 0
	for _, item := range p.items {
		total += int(item.end.Sub(item.start).Minutes())
	}
	return total
}
