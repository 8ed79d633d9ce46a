package scheduling

import (
	"errors"
	"fmt"
	"time"

	"github.com/fitversal/coach-scheduler/internal/models"
)

var ErrInvalidInput = errors.New("invalid input")

// DefaultWeeklyOccurrences is how many instances a weekly proposal expands to
// when no explicit policy is configured.
const DefaultWeeklyOccurrences = 4

// Instance is one concrete, dated occurrence derived from a proposed session.
type Instance struct {
	ScheduledAt     time.Time
	DurationMinutes int
	SessionType     string
	Notes           *string
}

// Expand turns a proposal into its concrete instances: one for a one-off,
// weeklyOccurrences one week apart for a weekly proposal. Output order is
// generation order; downstream code numbers instances by position, so the
// order must be preserved.
func Expand(proposed models.ProposedSession, weeklyOccurrences int) ([]Instance, error) {
	if weeklyOccurrences <= 0 {
		weeklyOccurrences = DefaultWeeklyOccurrences
	}

	count := 1
	switch proposed.Recurrence {
	case models.RecurrenceOnce, "":
	case models.RecurrenceWeekly:
		count = weeklyOccurrences
	default:
		return nil, fmt.Errorf("%w: unknown recurrence %q", ErrInvalidInput, proposed.Recurrence)
	}

	instances := make([]Instance, 0, count)
	for i := 0; i < count; i++ {
		instances = append(instances, Instance{
			ScheduledAt:     proposed.ScheduledAt.AddDate(0, 0, 7*i),
			DurationMinutes: proposed.DurationMinutes,
			SessionType:     proposed.SessionType,
			Notes:           proposed.Notes,
		})
	}
	return instances, nil
}
