package scheduling

import (
	"fmt"

	"github.com/fitversal/coach-scheduler/internal/models"
)

// LinkFactory produces meeting links for freshly inserted sessions. Distinct
// occurrence indices within one batch must yield distinct links.
type LinkFactory interface {
	GenerateLink(coachID, clientID int64, occurrence int) string
}

// SessionUpdate is a write against an existing session, keyed by its id.
type SessionUpdate struct {
	ID   int64          `json:"id"`
	Data models.Session `json:"data"`
}

// Resolution is the classified outcome of a batch of instances. Every
// instance lands in exactly one bucket, preserving its original order.
type Resolution struct {
	Inserts []models.Session
	Updates []SessionUpdate
}

// Conflicts counts instances that were flagged pending_resolution.
func (r *Resolution) Conflicts() int {
	count := 0
	for _, row := range r.Inserts {
		if row.Status == models.StatusPendingResolution {
			count++
		}
	}
	for _, update := range r.Updates {
		if update.Data.Status == models.StatusPendingResolution {
			count++
		}
	}
	return count
}

// Resolve classifies each instance against the existing-session snapshot.
//
// An instance that shares a calendar day with a non-cancelled session of the
// same client becomes an update of that session, keeping its meeting link. An
// instance whose interval overlaps a non-cancelled session of a different
// client is flagged pending_resolution; the two checks are independent, so a
// same-day update can still carry a conflict status. Everything else becomes
// a scheduled insert with a fresh link.
//
// Instances are only checked against the snapshot, never against each other:
// two instances of the same batch can land on the same day without either one
// seeing the other. Callers that need stricter semantics must re-resolve
// against the committed state.
func Resolve(
	coachID int64,
	clientID int64,
	instances []Instance,
	existing []models.Session,
	links LinkFactory,
) (*Resolution, error) {
	if coachID <= 0 {
		return nil, fmt.Errorf("%w: coach id is required", ErrInvalidInput)
	}
	if clientID <= 0 {
		return nil, fmt.Errorf("%w: client id is required", ErrInvalidInput)
	}
	for _, instance := range instances {
		if instance.DurationMinutes <= 0 {
			return nil, fmt.Errorf("%w: duration must be positive", ErrInvalidInput)
		}
	}

	resolution := &Resolution{
		Inserts: make([]models.Session, 0, len(instances)),
		Updates: make([]SessionUpdate, 0),
	}

	for i, instance := range instances {
		var matched *models.Session
		for j := range existing {
			candidate := &existing[j]
			if candidate.ClientID != clientID || candidate.Status == models.StatusCancelled {
				continue
			}
			if SameDay(candidate.ScheduledAt, instance.ScheduledAt) {
				matched = candidate
				break
			}
		}

		conflicted := false
		for j := range existing {
			candidate := &existing[j]
			if candidate.ClientID == clientID || candidate.Status == models.StatusCancelled {
				continue
			}
			if Overlaps(
				instance.ScheduledAt, sessionDuration(instance.DurationMinutes),
				candidate.ScheduledAt, sessionDuration(candidate.DurationMinutes),
			) {
				conflicted = true
				break
			}
		}

		status := models.StatusScheduled
		if conflicted {
			status = models.StatusPendingResolution
		}

		row := models.Session{
			CoachID:         coachID,
			ClientID:        clientID,
			ScheduledAt:     instance.ScheduledAt,
			DurationMinutes: instance.DurationMinutes,
			SessionType:     instance.SessionType,
			Notes:           instance.Notes,
			Status:          status,
			IsLocked:        true,
			AIGenerated:     true,
		}

		if matched != nil {
			// Reuse the existing link, never regenerate it.
			row.MeetingLink = matched.MeetingLink
			resolution.Updates = append(resolution.Updates, SessionUpdate{ID: matched.ID, Data: row})
		} else {
			row.MeetingLink = links.GenerateLink(coachID, clientID, i)
			resolution.Inserts = append(resolution.Inserts, row)
		}
	}

	return resolution, nil
}
