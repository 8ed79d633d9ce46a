package scheduling

import (
	"time"

	"github.com/fitversal/coach-scheduler/internal/models"
)

// SlotPolicy bounds the slot search: candidates start at DayStartHour, end
// strictly before DayEndHour, stepped by StepMinutes.
type SlotPolicy struct {
	DayStartHour int
	DayEndHour   int
	StepMinutes  int
}

func DefaultSlotPolicy() SlotPolicy {
	return SlotPolicy{DayStartHour: 6, DayEndHour: 22, StepMinutes: 30}
}

const (
	reasonSameTime  = "Same time"
	reasonClosest   = "Closest available time"
	reasonSameDay   = "Available slot on same day"
	slotLabelLayout = "3:04 PM"
)

// FindAvailableSlots scans the proposed calendar day for open slots of the
// given duration and returns them in chronological order, labeled by
// proximity to the proposed time. The search never leaves the proposed day:
// the coach asked about this day, so no other day is suggested.
//
// When clientID is positive and that client already has a non-cancelled
// session on the day, no slot qualifies at all — a second same-day session
// for the same client is handled as an update, not a new booking.
func FindAvailableSlots(
	policy SlotPolicy,
	proposed time.Time,
	durationMinutes int,
	existing []models.Session,
	clientID int64,
) []models.TimeSlotRecommendation {
	if durationMinutes <= 0 {
		return nil
	}
	if policy.StepMinutes <= 0 || policy.DayEndHour <= policy.DayStartHour {
		policy = DefaultSlotPolicy()
	}

	if clientID > 0 {
		for _, session := range existing {
			if session.ClientID != clientID || session.Status == models.StatusCancelled {
				continue
			}
			if SameDay(session.ScheduledAt, proposed) {
				return []models.TimeSlotRecommendation{}
			}
		}
	}

	dayStart := time.Date(
		proposed.Year(), proposed.Month(), proposed.Day(),
		policy.DayStartHour, 0, 0, 0, proposed.Location(),
	)
	dayEnd := time.Date(
		proposed.Year(), proposed.Month(), proposed.Day(),
		policy.DayEndHour, 0, 0, 0, proposed.Location(),
	)
	step := time.Duration(policy.StepMinutes) * time.Minute
	duration := sessionDuration(durationMinutes)

	slots := make([]models.TimeSlotRecommendation, 0)
	for candidate := dayStart; candidate.Before(dayEnd); candidate = candidate.Add(step) {
		if dayBooked(candidate, duration, proposed, existing) {
			continue
		}
		slots = append(slots, recommendSlot(candidate, proposed))
	}
	return slots
}

func dayBooked(candidate time.Time, duration time.Duration, proposed time.Time, existing []models.Session) bool {
	for _, session := range existing {
		if session.Status == models.StatusCancelled {
			continue
		}
		if !SameDay(session.ScheduledAt, proposed) {
			continue
		}
		if Overlaps(candidate, duration, session.ScheduledAt, sessionDuration(session.DurationMinutes)) {
			return true
		}
	}
	return false
}

func recommendSlot(candidate, proposed time.Time) models.TimeSlotRecommendation {
	distance := candidate.Sub(proposed)
	if distance < 0 {
		distance = -distance
	}

	priority := models.PriorityLow
	switch {
	case distance <= time.Hour:
		priority = models.PriorityHigh
	case distance <= 3*time.Hour:
		priority = models.PriorityMedium
	}

	reason := reasonSameDay
	switch {
	case distance == 0:
		reason = reasonSameTime
	case distance <= time.Hour:
		reason = reasonClosest
	}

	return models.TimeSlotRecommendation{
		Time:     candidate,
		Label:    candidate.Format(slotLabelLayout),
		Reason:   reason,
		Priority: priority,
	}
}
