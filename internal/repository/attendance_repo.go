package repository

import (
	"context"

	"github.com/DevFelipeRT/EduMentorBack/internal/models"
)

type UpsertAttendanceInput struct {
	SessionID       int64
	Status          models.AttendanceStatus
	AbsenceNotified bool
	Notes           *string
	RecordedBy      *string
}

type AttendanceRepository struct {
	db DBTX
}

func NewAttendanceRepository(db DBTX) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Upsert relies on the UNIQUE (session_id) constraint to keep the
// attendance/session relation 1:1.
func (r *AttendanceRepository) Upsert(ctx context.Context, input UpsertAttendanceInput) (*models.MentorshipAttendance, error) {
	query := `
		INSERT INTO mentorship_attendances (session_id, status, absence_notified, notes, recorded_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id) DO UPDATE
		SET status = EXCLUDED.status,
			absence_notified = EXCLUDED.absence_notified,
			notes = COALESCE(EXCLUDED.notes, mentorship_attendances.notes),
			recorded_by = COALESCE(EXCLUDED.recorded_by, mentorship_attendances.recorded_by),
			updated_at = NOW()
		RETURNING id, session_id, status, absence_notified, notes, recorded_by, created_at, updated_at
	`
	var attendance models.MentorshipAttendance
	err := r.db.QueryRow(
		ctx,
		query,
		input.SessionID,
		string(input.Status),
		input.AbsenceNotified,
		input.Notes,
		input.RecordedBy,
	).Scan(
		&attendance.ID,
		&attendance.SessionID,
		&attendance.Status,
		&attendance.AbsenceNotified,
		&attendance.Notes,
		&attendance.RecordedBy,
		&attendance.CreatedAt,
		&attendance.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &attendance, nil
}

func (r *AttendanceRepository) GetBySessionID(ctx context.Context, sessionID int64) (*models.MentorshipAttendance, error) {
	query := `
		SELECT id, session_id, status, absence_notified, notes, recorded_by, created_at, updated_at
		FROM mentorship_attendances
		WHERE session_id = $1
	`
	var attendance models.MentorshipAttendance
	err := r.db.QueryRow(ctx, query, sessionID).Scan(
		&attendance.ID,
		&attendance.SessionID,
		&attendance.Status,
		&attendance.AbsenceNotified,
		&attendance.Notes,
		&attendance.RecordedBy,
		&attendance.CreatedAt,
		&attendance.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &attendance, nil
}

func (r *AttendanceRepository) DeleteBySessionID(ctx context.Context, sessionID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM mentorship_attendances WHERE session_id = $1`, sessionID)
	return err
}
