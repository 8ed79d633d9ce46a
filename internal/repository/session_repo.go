package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fitversal/coach-scheduler/internal/models"
)

type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `
	id, coach_id, client_id, scheduled_at, duration_min, session_type,
	notes, status, is_locked, ai_generated, meeting_link, created_at, updated_at
`

func (r *SessionRepository) Insert(ctx context.Context, row models.Session) (*models.Session, error) {
	query := `
		INSERT INTO sessions (
			coach_id, client_id, scheduled_at, duration_min, session_type,
			notes, status, is_locked, ai_generated, meeting_link
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + sessionColumns

	var session models.Session
	err := r.db.QueryRow(
		ctx,
		query,
		row.CoachID,
		row.ClientID,
		row.ScheduledAt,
		row.DurationMinutes,
		row.SessionType,
		row.Notes,
		row.Status,
		row.IsLocked,
		row.AIGenerated,
		row.MeetingLink,
	).Scan(
		&session.ID,
		&session.CoachID,
		&session.ClientID,
		&session.ScheduledAt,
		&session.DurationMinutes,
		&session.SessionType,
		&session.Notes,
		&session.Status,
		&session.IsLocked,
		&session.AIGenerated,
		&session.MeetingLink,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Update overwrites the mutable fields of an existing session. The id and
// creation timestamp never change; the meeting link is whatever the resolver
// decided to carry.
func (r *SessionRepository) Update(ctx context.Context, sessionID int64, row models.Session) (*models.Session, error) {
	query := `
		UPDATE sessions
		SET scheduled_at = $2,
			duration_min = $3,
			session_type = $4,
			notes = $5,
			status = $6,
			is_locked = $7,
			ai_generated = $8,
			meeting_link = $9,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + sessionColumns

	var session models.Session
	err := r.db.QueryRow(
		ctx,
		query,
		sessionID,
		row.ScheduledAt,
		row.DurationMinutes,
		row.SessionType,
		row.Notes,
		row.Status,
		row.IsLocked,
		row.AIGenerated,
		row.MeetingLink,
	).Scan(
		&session.ID,
		&session.CoachID,
		&session.ClientID,
		&session.ScheduledAt,
		&session.DurationMinutes,
		&session.SessionType,
		&session.Notes,
		&session.Status,
		&session.IsLocked,
		&session.AIGenerated,
		&session.MeetingLink,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID int64) (*models.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE id = $1
	`
	var session models.Session
	err := r.db.QueryRow(ctx, query, sessionID).Scan(
		&session.ID,
		&session.CoachID,
		&session.ClientID,
		&session.ScheduledAt,
		&session.DurationMinutes,
		&session.SessionType,
		&session.Notes,
		&session.Status,
		&session.IsLocked,
		&session.AIGenerated,
		&session.MeetingLink,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ListByCoach returns the coach's full calendar, cancelled rows included:
// the resolver filters by status itself and needs the complete snapshot.
func (r *SessionRepository) ListByCoach(ctx context.Context, coachID int64) ([]models.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE coach_id = $1
		ORDER BY scheduled_at ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, coachID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		var session models.Session
		if err := rows.Scan(
			&session.ID,
			&session.CoachID,
			&session.ClientID,
			&session.ScheduledAt,
			&session.DurationMinutes,
			&session.SessionType,
			&session.Notes,
			&session.Status,
			&session.IsLocked,
			&session.AIGenerated,
			&session.MeetingLink,
			&session.CreatedAt,
			&session.UpdatedAt,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// Cancel soft-deletes a session; overlap and same-day logic ignores
// cancelled rows from then on.
func (r *SessionRepository) Cancel(ctx context.Context, sessionID int64) (*models.Session, error) {
	query := `
		UPDATE sessions
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1
		RETURNING ` + sessionColumns

	var session models.Session
	err := r.db.QueryRow(ctx, query, sessionID).Scan(
		&session.ID,
		&session.CoachID,
		&session.ClientID,
		&session.ScheduledAt,
		&session.DurationMinutes,
		&session.SessionType,
		&session.Notes,
		&session.Status,
		&session.IsLocked,
		&session.AIGenerated,
		&session.MeetingLink,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}
