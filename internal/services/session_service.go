package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/DevFelipeRT/EduMentorBack/internal/models"
	"github.com/DevFelipeRT/EduMentorBack/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrInvalidSessionStatus = errors.New("session status must be scheduled, completed or cancelled")
)

// ValidationError names the field that failed validation so the handler can
// surface it.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// SessionService owns the session status state machine. On cancellation or
// an explicit reset it drives attendance and ledger cleanup so the debit
// invariant survives every write path.
type SessionService struct {
	db             *pgxpool.Pool
	sessionRepo    *repository.SessionRepository
	mentorshipRepo *repository.MentorshipRepository
	attendanceRepo *repository.AttendanceRepository
	ledger         *LedgerService
}

func NewSessionService(
	db *pgxpool.Pool,
	sessionRepo *repository.SessionRepository,
	mentorshipRepo *repository.MentorshipRepository,
	attendanceRepo *repository.AttendanceRepository,
	ledger *LedgerService,
) *SessionService {
	return &SessionService{
		db:             db,
		sessionRepo:    sessionRepo,
		mentorshipRepo: mentorshipRepo,
		attendanceRepo: attendanceRepo,
		ledger:         ledger,
	}
}

type CreateSessionInput struct {
	SessionDate     time.Time
	StartTime       string
	DurationMinutes int
	Status          string
}

type UpdateSessionInput struct {
	SessionDate     *time.Time
	StartTime       *string
	DurationMinutes *int
	Status          *string
}

func (s *SessionService) CreateSession(
	ctx context.Context,
	mentorshipID int64,
	input CreateSessionInput,
) (*models.MentorshipSession, error) {
	if input.SessionDate.IsZero() {
		return nil, &ValidationError{Field: "session_date", Message: "is required"}
	}
	startTime := strings.TrimSpace(input.StartTime)
	if startTime == "" {
		return nil, &ValidationError{Field: "start_time", Message: "must not be empty"}
	}
	if input.DurationMinutes <= 0 || input.DurationMinutes%60 != 0 {
		return nil, &ValidationError{Field: "duration_minutes", Message: "must be a positive multiple of 60"}
	}

	status := models.SessionScheduled
	if strings.TrimSpace(input.Status) != "" {
		parsed, err := models.ParseSessionStatus(input.Status)
		if err != nil {
			return nil, ErrInvalidSessionStatus
		}
		status = parsed
	}

	if _, err := s.mentorshipRepo.GetByID(ctx, mentorshipID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMentorshipNotFound
		}
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessionRepo := repository.NewSessionRepository(tx)
	session, err := txSessionRepo.Create(ctx, repository.CreateSessionInput{
		MentorshipID:    mentorshipID,
		SessionDate:     input.SessionDate,
		StartTime:       startTime,
		DurationMinutes: input.DurationMinutes,
		Status:          status,
	})
	if err != nil {
		return nil, err
	}

	// A session created directly as cancelled must not carry a debit.
	if status == models.SessionCancelled {
		if err := s.ledger.syncDebit(ctx, tx, session, false); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return session, nil
}

func (s *SessionService) UpdateSession(
	ctx context.Context,
	sessionID int64,
	input UpdateSessionInput,
) (*models.MentorshipSession, error) {
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

	next := repository.UpdateSessionInput{
		SessionDate:     session.SessionDate,
		StartTime:       session.StartTime,
		DurationMinutes: session.DurationMinutes,
		Status:          session.Status,
	}

	if input.SessionDate != nil {
		if input.SessionDate.IsZero() {
			return nil, &ValidationError{Field: "session_date", Message: "is required"}
		}
		next.SessionDate = *input.SessionDate
	}
	if input.StartTime != nil {
		startTime := strings.TrimSpace(*input.StartTime)
		if startTime == "" {
			return nil, &ValidationError{Field: "start_time", Message: "must not be empty"}
		}
		next.StartTime = startTime
	}
	if input.DurationMinutes != nil {
		if *input.DurationMinutes <= 0 || *input.DurationMinutes%60 != 0 {
			return nil, &ValidationError{Field: "duration_minutes", Message: "must be a positive multiple of 60"}
		}
		next.DurationMinutes = *input.DurationMinutes
	}
	if input.Status != nil {
		parsed, err := models.ParseSessionStatus(*input.Status)
		if err != nil {
			return nil, ErrInvalidSessionStatus
		}
		next.Status = parsed
	}

	updated, err := txSessionRepo.Update(ctx, sessionID, next)
	if err != nil {
		return nil, err
	}

	txAttendanceRepo := repository.NewAttendanceRepository(tx)
	switch {
	case next.Status == models.SessionCancelled:
		// Cancellation removes attendance and debit regardless of which
		// path it arrives through.
		if err := txAttendanceRepo.DeleteBySessionID(ctx, updated.ID); err != nil {
			return nil, err
		}
		if err := s.ledger.syncDebit(ctx, tx, updated, false); err != nil {
			return nil, err
		}
	case session.Status == models.SessionCompleted && next.Status == models.SessionScheduled:
		// Explicit reset: re-open the session for a fresh attendance cycle.
		if err := txAttendanceRepo.DeleteBySessionID(ctx, updated.ID); err != nil {
			return nil, err
		}
		if err := s.ledger.syncDebit(ctx, tx, updated, false); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return updated, nil
}

// CancelSession is the hard-cancel entry point: status becomes cancelled and
// both the attendance record and any debit are removed in one transaction.
func (s *SessionService) CancelSession(ctx context.Context, sessionID int64) (*models.MentorshipSession, error) {
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

	cancelled, err := txSessionRepo.UpdateStatus(ctx, session.ID, models.SessionCancelled)
	if err != nil {
		return nil, err
	}

	txAttendanceRepo := repository.NewAttendanceRepository(tx)
	if err := txAttendanceRepo.DeleteBySessionID(ctx, cancelled.ID); err != nil {
		return nil, err
	}
	if err := s.ledger.syncDebit(ctx, tx, cancelled, false); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return cancelled, nil
}

// DestroySession deletes the session row. Attendance and debit rows go with
// it through the storage-layer cascades.
func (s *SessionService) DestroySession(ctx context.Context, sessionID int64) error {
	if _, err := s.sessionRepo.GetByID(ctx, sessionID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSessionNotFound
		}
		return err
	}
	return s.sessionRepo.Delete(ctx, sessionID)
}

func (s *SessionService) GetSession(ctx context.Context, sessionID int64) (*models.SessionDetail, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	detail := &models.SessionDetail{MentorshipSession: *session}

	attendance, err := s.attendanceRepo.GetBySessionID(ctx, sessionID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err == nil {
		detail.Attendance = attendance
	}

	debitRepo := repository.NewDebitRepository(s.db)
	debit, err := debitRepo.GetBySessionID(ctx, session.MentorshipID, session.ID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err == nil {
		detail.Debit = debit
	}

	return detail, nil
}

func (s *SessionService) ListSessions(ctx context.Context, mentorshipID int64) ([]models.MentorshipSession, error) {
	if _, err := s.mentorshipRepo.GetByID(ctx, mentorshipID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMentorshipNotFound
		}
		return nil, err
	}
	return s.sessionRepo.ListByMentorshipID(ctx, mentorshipID)
}
