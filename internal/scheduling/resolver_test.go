package scheduling

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/fitversal/coach-scheduler/internal/models"
)

type stubLinkFactory struct {
	calls int
}

func (f *stubLinkFactory) GenerateLink(coachID, clientID int64, occurrence int) string {
	f.calls++
	return fmt.Sprintf("https://meet.test/%d-%d-%d", coachID, clientID, occurrence)
}

func buildSession(id, clientID int64, scheduledAt time.Time, durationMinutes int, status models.SessionStatus) models.Session {
	return models.Session{
		ID:              id,
		CoachID:         1,
		ClientID:        clientID,
		ScheduledAt:     scheduledAt,
		DurationMinutes: durationMinutes,
		Status:          status,
		MeetingLink:     fmt.Sprintf("https://meet.test/existing-%d", id),
	}
}

func TestResolveEmitsOneRowPerInstance(t *testing.T) {
	day := time.Date(2024, 6, 3, 9, 0, 0, 0, time.Local)
	existing := []models.Session{
		buildSession(1, 2, day, 60, models.StatusScheduled),
	}
	instances := []Instance{
		{ScheduledAt: day.Add(2 * time.Hour), DurationMinutes: 60},
		{ScheduledAt: day.AddDate(0, 0, 1), DurationMinutes: 60},
		{ScheduledAt: day.AddDate(0, 0, 2), DurationMinutes: 60},
	}

	resolution, err := Resolve(1, 2, instances, existing, &stubLinkFactory{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := len(resolution.Inserts) + len(resolution.Updates); got != len(instances) {
		t.Fatalf("expected %d rows total, got %d", len(instances), got)
	}
}

func TestResolveUpdatesSameClientSameDay(t *testing.T) {
	existingAt := time.Date(2024, 6, 3, 14, 0, 0, 0, time.Local)
	existing := []models.Session{
		buildSession(42, 2, existingAt, 60, models.StatusScheduled),
	}
	instances := []Instance{
		{ScheduledAt: existingAt.Add(time.Hour), DurationMinutes: 60, SessionType: "mobility"},
	}

	resolution, err := Resolve(1, 2, instances, existing, &stubLinkFactory{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if len(resolution.Inserts) != 0 || len(resolution.Updates) != 1 {
		t.Fatalf("expected exactly one update, got %d inserts and %d updates",
			len(resolution.Inserts), len(resolution.Updates))
	}
	update := resolution.Updates[0]
	if update.ID != 42 {
		t.Fatalf("expected update keyed by session 42, got %d", update.ID)
	}
	if !update.Data.ScheduledAt.Equal(existingAt.Add(time.Hour)) {
		t.Fatalf("expected rescheduled time 15:00, got %v", update.Data.ScheduledAt)
	}
	if update.Data.MeetingLink != "https://meet.test/existing-42" {
		t.Fatalf("expected existing meeting link to be carried forward, got %q", update.Data.MeetingLink)
	}
	if update.Data.Status != models.StatusScheduled {
		t.Fatalf("expected scheduled status, got %q", update.Data.Status)
	}
}

func TestResolveCollapsesTwoProposalsOntoOneExistingSession(t *testing.T) {
	existingAt := time.Date(2024, 6, 3, 9, 0, 0, 0, time.Local)
	existing := []models.Session{
		buildSession(7, 2, existingAt, 60, models.StatusScheduled),
	}
	instances := []Instance{
		{ScheduledAt: existingAt.Add(2 * time.Hour), DurationMinutes: 60},
		{ScheduledAt: existingAt.Add(5 * time.Hour), DurationMinutes: 60},
	}

	resolution, err := Resolve(1, 2, instances, existing, &stubLinkFactory{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if len(resolution.Updates) != 2 || len(resolution.Inserts) != 0 {
		t.Fatalf("expected both proposals to update the existing session, got %d updates and %d inserts",
			len(resolution.Updates), len(resolution.Inserts))
	}
	for _, update := range resolution.Updates {
		if update.ID != 7 {
			t.Fatalf("expected every update keyed by session 7, got %d", update.ID)
		}
	}
	// The later proposal wins: both updates touch the same row in order.
	last := resolution.Updates[len(resolution.Updates)-1]
	if !last.Data.ScheduledAt.Equal(existingAt.Add(5 * time.Hour)) {
		t.Fatalf("expected the second proposal to land last, got %v", last.Data.ScheduledAt)
	}
}

func TestResolveFlagsCrossClientOverlap(t *testing.T) {
	existingAt := time.Date(2024, 6, 10, 14, 0, 0, 0, time.Local)
	existing := []models.Session{
		buildSession(3, 9, existingAt, 60, models.StatusScheduled),
	}
	instances := []Instance{
		{ScheduledAt: existingAt.Add(30 * time.Minute), DurationMinutes: 60},
	}

	resolution, err := Resolve(1, 2, instances, existing, &stubLinkFactory{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if len(resolution.Inserts) != 1 {
		t.Fatalf("expected one insert, got %d", len(resolution.Inserts))
	}
	if resolution.Inserts[0].Status != models.StatusPendingResolution {
		t.Fatalf("expected pending_resolution, got %q", resolution.Inserts[0].Status)
	}
	if resolution.Conflicts() != 1 {
		t.Fatalf("expected 1 conflict, got %d", resolution.Conflicts())
	}
}

func TestResolveConflictStatusSurvivesSameDayUpdate(t *testing.T) {
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.Local)
	existing := []models.Session{
		buildSession(5, 2, day.Add(9*time.Hour), 60, models.StatusScheduled),
		buildSession(6, 9, day.Add(14*time.Hour), 60, models.StatusScheduled),
	}
	instances := []Instance{
		{ScheduledAt: day.Add(14*time.Hour + 30*time.Minute), DurationMinutes: 60},
	}

	resolution, err := Resolve(1, 2, instances, existing, &stubLinkFactory{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if len(resolution.Updates) != 1 {
		t.Fatalf("expected the same-day match to win the write path, got %d updates", len(resolution.Updates))
	}
	if resolution.Updates[0].Data.Status != models.StatusPendingResolution {
		t.Fatalf("expected the overlap with another client to still flag the update, got %q",
			resolution.Updates[0].Data.Status)
	}
}

func TestResolveIgnoresCancelledSessions(t *testing.T) {
	day := time.Date(2024, 6, 10, 9, 0, 0, 0, time.Local)
	existing := []models.Session{
		buildSession(1, 2, day, 60, models.StatusCancelled),
		buildSession(2, 9, day, 60, models.StatusCancelled),
	}
	instances := []Instance{
		{ScheduledAt: day.Add(15 * time.Minute), DurationMinutes: 60},
	}

	resolution, err := Resolve(1, 2, instances, existing, &stubLinkFactory{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if len(resolution.Inserts) != 1 || len(resolution.Updates) != 0 {
		t.Fatalf("expected a plain insert, got %d inserts and %d updates",
			len(resolution.Inserts), len(resolution.Updates))
	}
	if resolution.Inserts[0].Status != models.StatusScheduled {
		t.Fatalf("cancelled sessions must not cause conflicts, got %q", resolution.Inserts[0].Status)
	}
}

func TestResolveBackToBackSessionsAreNotConflicts(t *testing.T) {
	existingAt := time.Date(2024, 6, 10, 9, 0, 0, 0, time.Local)
	existing := []models.Session{
		buildSession(3, 9, existingAt, 30, models.StatusScheduled),
	}
	instances := []Instance{
		{ScheduledAt: existingAt.Add(30 * time.Minute), DurationMinutes: 30},
	}

	resolution, err := Resolve(1, 2, instances, existing, &stubLinkFactory{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolution.Inserts[0].Status != models.StatusScheduled {
		t.Fatalf("expected back-to-back proposal to schedule cleanly, got %q", resolution.Inserts[0].Status)
	}
}

func TestResolveStampsInsertMetadata(t *testing.T) {
	links := &stubLinkFactory{}
	instances := []Instance{
		{ScheduledAt: time.Date(2024, 6, 10, 9, 0, 0, 0, time.Local), DurationMinutes: 60},
		{ScheduledAt: time.Date(2024, 6, 11, 9, 0, 0, 0, time.Local), DurationMinutes: 60},
	}

	resolution, err := Resolve(1, 2, instances, nil, links)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if links.calls != 2 {
		t.Fatalf("expected one fresh link per insert, got %d calls", links.calls)
	}
	seen := map[string]bool{}
	for _, row := range resolution.Inserts {
		if !row.IsLocked || !row.AIGenerated {
			t.Fatalf("expected locked, ai-generated rows, got %+v", row)
		}
		if seen[row.MeetingLink] {
			t.Fatalf("duplicate meeting link %q within one batch", row.MeetingLink)
		}
		seen[row.MeetingLink] = true
	}
}

func TestResolveRejectsMissingIdentifiers(t *testing.T) {
	instances := []Instance{{ScheduledAt: time.Now(), DurationMinutes: 60}}

	if _, err := Resolve(0, 2, instances, nil, &stubLinkFactory{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing coach id, got %v", err)
	}
	if _, err := Resolve(1, 0, instances, nil, &stubLinkFactory{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing client id, got %v", err)
	}
}

func TestResolveRejectsNonPositiveDuration(t *testing.T) {
	instances := []Instance{{ScheduledAt: time.Now(), DurationMinutes: 0}}
	if _, err := Resolve(1, 2, instances, nil, &stubLinkFactory{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
