package services

import (
	"context"
	"errors"
	"time"

	"github.com/DevFelipeRT/EduMentorBack/internal/models"
	"github.com/DevFelipeRT/EduMentorBack/internal/repository"
	"github.com/DevFelipeRT/EduMentorBack/pkg/money"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrMentorshipNotFound = errors.New("mentorship not found")
	ErrInvalidHourlyRate  = errors.New("mentorship has no usable hourly rate")
	ErrInvalidAmount      = errors.New("amount must be a positive decimal")
	ErrNonExactConversion = errors.New("amount does not convert to a whole number of hours at the current rate")
	ErrInvalidDuration    = errors.New("session duration must be a positive multiple of 60 minutes")
	ErrAlreadyDebited     = errors.New("session already has a debit")
)

const uniqueViolationCode = "23505"

// LedgerService is the single writer of payment and debit rows. Every debit
// mutation funnels through syncDebit or RegisterDebitForAttendance, both of
// which lock the (mentorship, session) debit row inside one transaction.
type LedgerService struct {
	db             *pgxpool.Pool
	mentorshipRepo *repository.MentorshipRepository
	paymentRepo    *repository.PaymentRepository
	debitRepo      *repository.DebitRepository
}

func NewLedgerService(
	db *pgxpool.Pool,
	mentorshipRepo *repository.MentorshipRepository,
	paymentRepo *repository.PaymentRepository,
	debitRepo *repository.DebitRepository,
) *LedgerService {
	return &LedgerService{
		db:             db,
		mentorshipRepo: mentorshipRepo,
		paymentRepo:    paymentRepo,
		debitRepo:      debitRepo,
	}
}

// RegisterPayment converts a decimal amount into whole credit hours at the
// mentorship rate and records the payment. The conversion must be exact;
// partial-hour credits are refused.
func (s *LedgerService) RegisterPayment(
	ctx context.Context,
	mentorshipID int64,
	amount string,
) (*models.MentorshipPayment, error) {
	mentorship, err := s.mentorshipRepo.GetByID(ctx, mentorshipID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMentorshipNotFound
		}
		return nil, err
	}

	rateCents, err := money.ToMinorUnits(mentorship.HourlyRate)
	if err != nil || rateCents <= 0 {
		return nil, ErrInvalidHourlyRate
	}

	amountCents, err := money.ToMinorUnits(amount)
	if err != nil || amountCents <= 0 {
		return nil, ErrInvalidAmount
	}

	if amountCents%rateCents != 0 {
		return nil, ErrNonExactConversion
	}
	hours := int(amountCents / rateCents)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txPaymentRepo := repository.NewPaymentRepository(tx)
	payment, err := txPaymentRepo.Create(ctx, repository.CreatePaymentInput{
		MentorshipID: mentorshipID,
		Amount:       money.FromMinorUnits(amountCents),
		Hours:        hours,
		PaidAt:       time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return payment, nil
}

// SyncAttendanceDebit reconciles the debit state for a session in its own
// transaction. It is idempotent: repeated calls converge on the same row
// state and removing an absent debit is a no-op.
func (s *LedgerService) SyncAttendanceDebit(
	ctx context.Context,
	session *models.MentorshipSession,
	shouldDebit bool,
) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := s.syncDebit(ctx, tx, session, shouldDebit); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// syncDebit runs the lock-branch-write sequence on a caller-owned
// transaction so attendance and session services can compose it with their
// own writes atomically.
func (s *LedgerService) syncDebit(
	ctx context.Context,
	tx pgx.Tx,
	session *models.MentorshipSession,
	shouldDebit bool,
) error {
	debitRepo := repository.NewDebitRepository(tx)

	if !shouldDebit {
		return debitRepo.DeleteBySessionID(ctx, session.MentorshipID, session.ID)
	}

	mentorshipRepo := repository.NewMentorshipRepository(tx)
	mentorship, err := mentorshipRepo.GetByID(ctx, session.MentorshipID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrMentorshipNotFound
		}
		return err
	}
	if rateCents, err := money.ToMinorUnits(mentorship.HourlyRate); err != nil || rateCents <= 0 {
		return ErrInvalidHourlyRate
	}

	hours, err := sessionHours(session.DurationMinutes)
	if err != nil {
		return err
	}

	existing, err := debitRepo.GetBySessionIDForUpdate(ctx, session.MentorshipID, session.ID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		// The insert runs under a savepoint: a unique violation would
		// otherwise abort the caller's whole transaction and make the
		// convergence re-read below fail with "transaction aborted".
		sp, err := tx.Begin(ctx)
		if err != nil {
			return err
		}
		_, err = repository.NewDebitRepository(sp).Create(ctx, repository.CreateDebitInput{
			MentorshipID: session.MentorshipID,
			SessionID:    session.ID,
			Hours:        hours,
			DebitedAt:    time.Now().UTC(),
		})
		if err == nil {
			return sp.Commit(ctx)
		}
		if !isUniqueViolation(err) {
			_ = sp.Rollback(ctx)
			return err
		}
		if err := sp.Rollback(ctx); err != nil {
			return err
		}
		// A concurrent reconciler inserted between our lookup and
		// insert; converge on its row instead of failing.
		existing, err = debitRepo.GetBySessionIDForUpdate(ctx, session.MentorshipID, session.ID)
		if err != nil {
			return err
		}
		if existing.Hours != hours {
			_, err = debitRepo.UpdateHours(ctx, existing.ID, hours)
		}
		return err
	}

	// Session duration may have changed after the debit was recorded.
	if existing.Hours != hours {
		_, err = debitRepo.UpdateHours(ctx, existing.ID, hours)
		return err
	}
	return nil
}

// RegisterDebitForAttendance is the direct creation path used outside the
// reconciliation flow. Unlike syncDebit it treats an existing debit as an
// error: the caller asserts the session has not been debited yet.
func (s *LedgerService) RegisterDebitForAttendance(
	ctx context.Context,
	sessionID int64,
) (*models.MentorshipDebit, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessionRepo := repository.NewSessionRepository(tx)
	session, err := txSessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	txMentorshipRepo := repository.NewMentorshipRepository(tx)
	mentorship, err := txMentorshipRepo.GetByID(ctx, session.MentorshipID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMentorshipNotFound
		}
		return nil, err
	}
	if rateCents, err := money.ToMinorUnits(mentorship.HourlyRate); err != nil || rateCents <= 0 {
		return nil, ErrInvalidHourlyRate
	}

	hours, err := sessionHours(session.DurationMinutes)
	if err != nil {
		return nil, err
	}

	txDebitRepo := repository.NewDebitRepository(tx)
	if _, err := txDebitRepo.GetBySessionIDForUpdate(ctx, session.MentorshipID, session.ID); err == nil {
		return nil, ErrAlreadyDebited
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	debit, err := txDebitRepo.Create(ctx, repository.CreateDebitInput{
		MentorshipID: session.MentorshipID,
		SessionID:    session.ID,
		Hours:        hours,
		DebitedAt:    time.Now().UTC(),
	})
	if err != nil {
		// Duplicate submissions race past the empty-row lock; the unique
		// constraint resolves the loser.
		if isUniqueViolation(err) {
			return nil, ErrAlreadyDebited
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return debit, nil
}

// GetBalance aggregates credited and debited hours on demand. Read-only, no
// locks.
func (s *LedgerService) GetBalance(ctx context.Context, mentorshipID int64) (*models.MentorshipBalance, error) {
	if _, err := s.mentorshipRepo.GetByID(ctx, mentorshipID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMentorshipNotFound
		}
		return nil, err
	}

	credits, err := s.paymentRepo.SumHoursByMentorshipID(ctx, mentorshipID)
	if err != nil {
		return nil, err
	}
	debits, err := s.debitRepo.SumHoursByMentorshipID(ctx, mentorshipID)
	if err != nil {
		return nil, err
	}

	return &models.MentorshipBalance{
		CreditsHours: credits,
		DebitsHours:  debits,
		BalanceHours: credits - debits,
	}, nil
}

func sessionHours(durationMinutes int) (int, error) {
	if durationMinutes <= 0 || durationMinutes%60 != 0 {
		return 0, ErrInvalidDuration
	}
	return durationMinutes / 60, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
