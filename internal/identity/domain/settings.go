package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/daybreakhq/daybreak/internal/shared/domain"
)

var (
	// ErrSettingsNotFound is returned when a user has no settings row yet.
	ErrSettingsNotFound = errors.New("user settings not found")

	// ErrInvalidWorkDaysMask is returned when the mask is not seven '0'/'1'
	// characters.
	ErrInvalidWorkDaysMask = errors.New("work days mask must be seven characters of '0' or '1'")
)

// Default working hours and mask applied when settings are created on demand.
const (
	DefaultWorkingHoursStart = "08:00"
	DefaultWorkingHoursEnd   = "18:00"
	DefaultWorkDaysMask      = "1111111"
)

// UserSettings holds the per-user planning configuration: working hours as
// HH:MM strings and a Monday-first seven-day working mask.
type UserSettings struct {
	sharedDomain.BaseEntity
	userID            uuid.UUID
	workingHoursStart string
	workingHoursEnd   string
	workDaysMask      string
}

// NewUserSettings creates settings with the Daybreak defaults.
func NewUserSettings(userID uuid.UUID) *UserSettings {
	return &UserSettings{
		BaseEntity:        sharedDomain.NewBaseEntity(),
		userID:            userID,
		workingHoursStart: DefaultWorkingHoursStart,
		workingHoursEnd:   DefaultWorkingHoursEnd,
		workDaysMask:      DefaultWorkDaysMask,
	}
}

// RehydrateUserSettings reconstructs settings from persistence.
func RehydrateUserSettings(
	id, userID uuid.UUID,
	start, end, mask string,
	createdAt, updatedAt time.Time,
) *UserSettings {
	return &UserSettings{
		BaseEntity:        sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		userID:            userID,
		workingHoursStart: start,
		workingHoursEnd:   end,
		workDaysMask:      mask,
	}
}

func (s *UserSettings) UserID() uuid.UUID         { return s.userID }
func (s *UserSettings) WorkingHoursStart() string { return s.workingHoursStart }
func (s *UserSettings) WorkingHoursEnd() string   { return s.workingHoursEnd }
func (s *UserSettings) WorkDaysMask() string      { return s.workDaysMask }

// UpdateWorkingHours sets the HH:MM bounds after validating their format.
func (s *UserSettings) UpdateWorkingHours(start, end string) error {
	if _, err := ParseHourMinute(start); err != nil {
		return err
	}
	if _, err := ParseHourMinute(end); err != nil {
		return err
	}
	s.workingHoursStart = start
	s.workingHoursEnd = end
	s.Touch()
	return nil
}

// UpdateWorkDaysMask sets the Monday-first working mask.
func (s *UserSettings) UpdateWorkDaysMask(mask string) error {
	if len(mask) != 7 {
		return ErrInvalidWorkDaysMask
	}
	for _, c := range mask {
		if c != '0' && c != '1' {
			return ErrInvalidWorkDaysMask
		}
	}
	s.workDaysMask = mask
	s.Touch()
	return nil
}

// IsWorkDay reports whether the mask marks the given weekday as working.
// Go's time.Weekday is Sunday-first; the mask is Monday-first.
func (s *UserSettings) IsWorkDay(day time.Weekday) bool {
	idx := (int(day) + 6) % 7
	if len(s.workDaysMask) != 7 {
		return true
	}
	return s.workDaysMask[idx] == '1'
}

// WorkingHours are the effective start/end hours for a day, in whole hours.
type WorkingHours struct {
	Start int
	End   int
}

// EffectiveWorkingHours parses the stored HH:MM bounds and applies the
// end-after-start rule: when end <= start, end becomes min(start+12, 23).
// Unparseable values fall back to the defaults.
func (s *UserSettings) EffectiveWorkingHours() WorkingHours {
	start, err := ParseHourMinute(s.workingHoursStart)
	if err != nil {
		start = 8
	}
	end, err := ParseHourMinute(s.workingHoursEnd)
	if err != nil {
		end = 18
	}
	if end <= start {
		end = start + 12
		if end > 23 {
			end = 23
		}
	}
	return WorkingHours{Start: start, End: end}
}

// ParseHourMinute extracts the hour component from an HH:MM string.
func ParseHourMinute(value string) (int, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(value, "%d:%d", &hour, &minute); err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", value, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time %q out of range", value)
	}
	return hour, nil
}
