package repository

import (
	"context"
	"time"

	"github.com/DevFelipeRT/EduMentorBack/internal/models"
)

type CreateSessionInput struct {
	MentorshipID    int64
	SessionDate     time.Time
	StartTime       string
	DurationMinutes int
	Status          models.SessionStatus
}

type UpdateSessionInput struct {
	SessionDate     time.Time
	StartTime       string
	DurationMinutes int
	Status          models.SessionStatus
}

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, input CreateSessionInput) (*models.MentorshipSession, error) {
	query := `
		INSERT INTO mentorship_sessions (mentorship_id, session_date, start_time, duration_minutes, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, mentorship_id, session_date, start_time, duration_minutes, status, created_at, updated_at
	`
	var session models.MentorshipSession
	err := r.db.QueryRow(
		ctx,
		query,
		input.MentorshipID,
		input.SessionDate,
		input.StartTime,
		input.DurationMinutes,
		string(input.Status),
	).Scan(
		&session.ID,
		&session.MentorshipID,
		&session.SessionDate,
		&session.StartTime,
		&session.DurationMinutes,
		&session.Status,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID int64) (*models.MentorshipSession, error) {
	query := `
		SELECT id, mentorship_id, session_date, start_time, duration_minutes, status, created_at, updated_at
		FROM mentorship_sessions
		WHERE id = $1
	`
	var session models.MentorshipSession
	err := r.db.QueryRow(ctx, query, sessionID).Scan(
		&session.ID,
		&session.MentorshipID,
		&session.SessionDate,
		&session.StartTime,
		&session.DurationMinutes,
		&session.Status,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) GetByIDForUpdate(ctx context.Context, sessionID int64) (*models.MentorshipSession, error) {
	query := `
		SELECT id, mentorship_id, session_date, start_time, duration_minutes, status, created_at, updated_at
		FROM mentorship_sessions
		WHERE id = $1
		FOR UPDATE
	`
	var session models.MentorshipSession
	err := r.db.QueryRow(ctx, query, sessionID).Scan(
		&session.ID,
		&session.MentorshipID,
		&session.SessionDate,
		&session.StartTime,
		&session.DurationMinutes,
		&session.Status,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) ListByMentorshipID(ctx context.Context, mentorshipID int64) ([]models.MentorshipSession, error) {
	query := `
		SELECT id, mentorship_id, session_date, start_time, duration_minutes, status, created_at, updated_at
		FROM mentorship_sessions
		WHERE mentorship_id = $1
		ORDER BY session_date ASC, start_time ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, mentorshipID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.MentorshipSession, 0)
	for rows.Next() {
		var session models.MentorshipSession
		if err := rows.Scan(
			&session.ID,
			&session.MentorshipID,
			&session.SessionDate,
			&session.StartTime,
			&session.DurationMinutes,
			&session.Status,
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

func (r *SessionRepository) Update(ctx context.Context, sessionID int64, input UpdateSessionInput) (*models.MentorshipSession, error) {
	query := `
		UPDATE mentorship_sessions
		SET session_date = $2, start_time = $3, duration_minutes = $4, status = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING id, mentorship_id, session_date, start_time, duration_minutes, status, created_at, updated_at
	`
	var session models.MentorshipSession
	err := r.db.QueryRow(
		ctx,
		query,
		sessionID,
		input.SessionDate,
		input.StartTime,
		input.DurationMinutes,
		string(input.Status),
	).Scan(
		&session.ID,
		&session.MentorshipID,
		&session.SessionDate,
		&session.StartTime,
		&session.DurationMinutes,
		&session.Status,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) UpdateStatus(ctx context.Context, sessionID int64, status models.SessionStatus) (*models.MentorshipSession, error) {
	query := `
		UPDATE mentorship_sessions
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, mentorship_id, session_date, start_time, duration_minutes, status, created_at, updated_at
	`
	var session models.MentorshipSession
	err := r.db.QueryRow(ctx, query, sessionID, string(status)).Scan(
		&session.ID,
		&session.MentorshipID,
		&session.SessionDate,
		&session.StartTime,
		&session.DurationMinutes,
		&session.Status,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM mentorship_sessions WHERE id = $1`, sessionID)
	return err
}
