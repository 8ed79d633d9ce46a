package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fitversal/coach-scheduler/internal/models"
	"github.com/fitversal/coach-scheduler/internal/observability"
	"github.com/fitversal/coach-scheduler/internal/scheduling"
)

var (
	ErrInvalidInput = scheduling.ErrInvalidInput
	ErrForbidden    = errors.New("forbidden")
)

// PersistenceError wraps a store failure mid-batch. Updated and Created count
// the writes committed before the failure; nothing is rolled back.
type PersistenceError struct {
	Op      string
	Updated int
	Created int
	Err     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf(
		"persist %s after %d updates and %d inserts: %v",
		e.Op, e.Updated, e.Created, e.Err,
	)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

type sessionStore interface {
	ListByCoach(ctx context.Context, coachID int64) ([]models.Session, error)
	GetByID(ctx context.Context, id int64) (*models.Session, error)
	Insert(ctx context.Context, row models.Session) (*models.Session, error)
	Update(ctx context.Context, id int64, row models.Session) (*models.Session, error)
	Cancel(ctx context.Context, id int64) (*models.Session, error)
}

type scheduleNotifier interface {
	NotifySessionChange(coachID int64, event string, session models.Session)
}

// SchedulingPolicy carries the tunable scheduling constants. They are policy,
// not invariants, so they come from configuration.
type SchedulingPolicy struct {
	WeeklyOccurrences int
	Slots             scheduling.SlotPolicy
}

type SchedulingService struct {
	store    sessionStore
	links    scheduling.LinkFactory
	notifier scheduleNotifier
	metrics  *observability.Metrics
	policy   SchedulingPolicy
}

func NewSchedulingService(
	store sessionStore,
	links scheduling.LinkFactory,
	notifier scheduleNotifier,
	metrics *observability.Metrics,
	policy SchedulingPolicy,
) *SchedulingService {
	if policy.WeeklyOccurrences <= 0 {
		policy.WeeklyOccurrences = scheduling.DefaultWeeklyOccurrences
	}
	if policy.Slots.StepMinutes <= 0 {
		policy.Slots = scheduling.DefaultSlotPolicy()
	}
	return &SchedulingService{
		store:    store,
		links:    links,
		notifier: notifier,
		metrics:  metrics,
		policy:   policy,
	}
}

// ScheduleOutcome summarizes one committed proposal batch.
type ScheduleOutcome struct {
	Created   int              `json:"created"`
	Updated   int              `json:"updated"`
	Conflicts int              `json:"conflicts"`
	Sessions  []models.Session `json:"sessions"`
}

// ProposeSessions expands, classifies, and persists a batch of proposed
// sessions for one coach/client pair. Classification runs entirely before any
// write; updates are persisted before inserts so a rescheduled day cannot
// race a row inserted later in the same batch. The first store failure stops
// the batch and reports progress through a PersistenceError.
func (s *SchedulingService) ProposeSessions(
	ctx context.Context,
	coachID int64,
	clientID int64,
	proposals []models.ProposedSession,
) (*ScheduleOutcome, error) {
	if coachID <= 0 || clientID <= 0 {
		return nil, fmt.Errorf("%w: coach and client ids are required", ErrInvalidInput)
	}
	if len(proposals) == 0 {
		return nil, fmt.Errorf("%w: no sessions proposed", ErrInvalidInput)
	}
	for _, proposal := range proposals {
		if proposal.DurationMinutes <= 0 {
			return nil, fmt.Errorf("%w: duration must be positive", ErrInvalidInput)
		}
	}

	existing, err := s.store.ListByCoach(ctx, coachID)
	if err != nil {
		return nil, err
	}

	instances := make([]scheduling.Instance, 0, len(proposals))
	for _, proposal := range proposals {
		expanded, err := scheduling.Expand(proposal, s.policy.WeeklyOccurrences)
		if err != nil {
			return nil, err
		}
		instances = append(instances, expanded...)
	}

	resolution, err := scheduling.Resolve(coachID, clientID, instances, existing, s.links)
	if err != nil {
		return nil, err
	}

	outcome := &ScheduleOutcome{
		Conflicts: resolution.Conflicts(),
		Sessions:  make([]models.Session, 0, len(instances)),
	}

	for _, update := range resolution.Updates {
		row, err := s.store.Update(ctx, update.ID, update.Data)
		if err != nil {
			return nil, &PersistenceError{Op: "update", Updated: outcome.Updated, Created: 0, Err: err}
		}
		outcome.Updated++
		outcome.Sessions = append(outcome.Sessions, *row)
		s.notify(coachID, "session_updated", *row)
	}
	for _, insert := range resolution.Inserts {
		row, err := s.store.Insert(ctx, insert)
		if err != nil {
			return nil, &PersistenceError{Op: "insert", Updated: outcome.Updated, Created: outcome.Created, Err: err}
		}
		outcome.Created++
		outcome.Sessions = append(outcome.Sessions, *row)
		s.notify(coachID, "session_created", *row)
	}

	if s.metrics != nil {
		s.metrics.RecordResolution(outcome.Created, outcome.Updated, outcome.Conflicts)
	}
	return outcome, nil
}

// RecommendSlots returns the open slots on the proposed calendar day, ranked
// by proximity to the proposed time. clientID is optional; pass 0 to skip the
// per-client same-day check.
func (s *SchedulingService) RecommendSlots(
	ctx context.Context,
	coachID int64,
	proposedTime time.Time,
	durationMinutes int,
	clientID int64,
) ([]models.TimeSlotRecommendation, error) {
	if coachID <= 0 {
		return nil, fmt.Errorf("%w: coach id is required", ErrInvalidInput)
	}
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", ErrInvalidInput)
	}

	existing, err := s.store.ListByCoach(ctx, coachID)
	if err != nil {
		return nil, err
	}
	return scheduling.FindAvailableSlots(s.policy.Slots, proposedTime, durationMinutes, existing, clientID), nil
}

// ParseText runs the heuristic scheduling-text parser. Empty extraction is a
// valid result, never an error.
func (s *SchedulingService) ParseText(input string) scheduling.ParsedSchedule {
	return scheduling.ParseSchedulingText(input)
}

func (s *SchedulingService) ListSessions(ctx context.Context, coachID int64) ([]models.Session, error) {
	if coachID <= 0 {
		return nil, fmt.Errorf("%w: coach id is required", ErrInvalidInput)
	}
	return s.store.ListByCoach(ctx, coachID)
}

// CancelSession soft-deletes a session on its owner's behalf. Cancelled rows
// stay in the calendar but stop participating in overlap and same-day checks.
func (s *SchedulingService) CancelSession(ctx context.Context, coachID, sessionID int64) (*models.Session, error) {
	if coachID <= 0 || sessionID <= 0 {
		return nil, fmt.Errorf("%w: coach and session ids are required", ErrInvalidInput)
	}

	session, err := s.store.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.CoachID != coachID {
		return nil, ErrForbidden
	}

	cancelled, err := s.store.Cancel(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.notify(coachID, "session_cancelled", *cancelled)
	return cancelled, nil
}

func (s *SchedulingService) notify(coachID int64, event string, session models.Session) {
	if s.notifier != nil {
		s.notifier.NotifySessionChange(coachID, event, session)
	}
}
