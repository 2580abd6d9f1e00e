package services

import (
	"context"
	"errors"

	"github.com/DevFelipeRT/EduMentorBack/internal/models"
	"github.com/DevFelipeRT/EduMentorBack/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrInvalidAttendanceStatus = errors.New("attendance status must be present, late or absent")

// AttendanceExtra carries the optional supplementary fields an attendance
// record may set alongside the outcome.
type AttendanceExtra struct {
	Notes      *string
	RecordedBy *string
}

// AttendanceService is the single writer of attendance rows. It drives the
// ledger so the on-disk debit state is always a function of
// (session status, attendance status, absence notified).
type AttendanceService struct {
	db             *pgxpool.Pool
	attendanceRepo *repository.AttendanceRepository
	ledger         *LedgerService
}

func NewAttendanceService(
	db *pgxpool.Pool,
	attendanceRepo *repository.AttendanceRepository,
	ledger *LedgerService,
) *AttendanceService {
	return &AttendanceService{
		db:             db,
		attendanceRepo: attendanceRepo,
		ledger:         ledger,
	}
}

// SetSessionAttendance upserts the attendance outcome for a session,
// reconciles the debit to match the charge policy, and completes the session
// if it is not cancelled. The debit outcome is recomputed on every call, so
// correcting an entry (e.g. absent to present) creates or removes the debit
// as needed.
func (s *AttendanceService) SetSessionAttendance(
	ctx context.Context,
	sessionID int64,
	status string,
	absenceNotified bool,
	extra AttendanceExtra,
) (*models.MentorshipAttendance, error) {
	parsed, err := models.ParseAttendanceStatus(status)
	if err != nil {
		return nil, ErrInvalidAttendanceStatus
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessionRepo := repository.NewSessionRepository(tx)
	session, err := txSessionRepo.GetByIDForUpdate(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	txAttendanceRepo := repository.NewAttendanceRepository(tx)
	attendance, err := txAttendanceRepo.Upsert(ctx, repository.UpsertAttendanceInput{
		SessionID:       session.ID,
		Status:          parsed,
		AbsenceNotified: absenceNotified,
		Notes:           extra.Notes,
		RecordedBy:      extra.RecordedBy,
	})
	if err != nil {
		return nil, err
	}

	shouldDebit := shouldDebitFor(session.Status, parsed, absenceNotified)
	if err := s.ledger.syncDebit(ctx, tx, session, shouldDebit); err != nil {
		return nil, err
	}

	if session.Status != models.SessionCancelled && session.Status != models.SessionCompleted {
		if _, err := txSessionRepo.UpdateStatus(ctx, session.ID, models.SessionCompleted); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return attendance, nil
}

// FindAttendance looks up the attendance record for a session; absence is
// not an error.
func (s *AttendanceService) FindAttendance(ctx context.Context, sessionID int64) (*models.MentorshipAttendance, error) {
	attendance, err := s.attendanceRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return attendance, nil
}

// shouldDebitFor is the charge policy: cancellation always wins; present and
// late outcomes charge; an absence charges unless it was notified.
func shouldDebitFor(
	sessionStatus models.SessionStatus,
	attendanceStatus models.AttendanceStatus,
	absenceNotified bool,
) bool {
	if sessionStatus == models.SessionCancelled {
		return false
	}
	if attendanceStatus == models.AttendanceAbsent {
		return !absenceNotified
	}
	return true
}
