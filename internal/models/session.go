package models

import "time"

type SessionStatus string

const (
	StatusScheduled         SessionStatus = "scheduled"
	StatusPendingResolution SessionStatus = "pending_resolution"
	StatusCancelled         SessionStatus = "cancelled"
)

type Recurrence string

const (
	RecurrenceOnce   Recurrence = "once"
	RecurrenceWeekly Recurrence = "weekly"
)

type SlotPriority string

const (
	PriorityHigh   SlotPriority = "high"
	PriorityMedium SlotPriority = "medium"
	PriorityLow    SlotPriority = "low"
)

// Session timestamps are naive local wall-clock values: same-day and overlap
// checks compare local calendar fields and never convert between zones.
type Session struct {
	ID              int64         `json:"id"`
	CoachID         int64         `json:"coach_id"`
	ClientID        int64         `json:"client_id"`
	ScheduledAt     time.Time     `json:"scheduled_at"`
	DurationMinutes int           `json:"duration_minutes"`
	SessionType     string        `json:"session_type"`
	Notes           *string       `json:"notes"`
	Status          SessionStatus `json:"status"`
	IsLocked        bool          `json:"is_locked"`
	AIGenerated     bool          `json:"ai_generated"`
	MeetingLink     string        `json:"meeting_link"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

type ProposedSession struct {
	ScheduledAt     time.Time  `json:"scheduled_at"`
	DurationMinutes int        `json:"duration_minutes"`
	SessionType     string     `json:"session_type"`
	Notes           *string    `json:"notes"`
	Recurrence      Recurrence `json:"recurrence"`
}

type TimeSlotRecommendation struct {
	Time     time.Time    `json:"time"`
	Label    string       `json:"label"`
	Reason   string       `json:"reason"`
	Priority SlotPriority `json:"priority"`
}
