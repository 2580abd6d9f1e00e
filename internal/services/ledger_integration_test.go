package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/DevFelipeRT/EduMentorBack/internal/models"
	"github.com/DevFelipeRT/EduMentorBack/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

var (
	testDBOnce sync.Once
	testDBPool *pgxpool.Pool
	testDBErr  error
)

func integrationTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	testDBOnce.Do(func() {
		_ = godotenv.Load(".env")
		_ = godotenv.Load(filepath.Join("..", "..", ".env"))

		dbURL := os.Getenv("DB_URL")
		if dbURL == "" {
			testDBErr = fmt.Errorf("DB_URL is not set")
			return
		}

		cfg, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			testDBErr = err
			return
		}

		testDBPool, testDBErr = pgxpool.NewWithConfig(context.Background(), cfg)
		if testDBErr != nil {
			return
		}
		testDBErr = testDBPool.Ping(context.Background())
	})

	if testDBErr != nil {
		t.Skipf("skipping integration test: %v", testDBErr)
	}
	return testDBPool
}

func newIntegrationLedgerService(pool *pgxpool.Pool) *LedgerService {
	return NewLedgerService(
		pool,
		repository.NewMentorshipRepository(pool),
		repository.NewPaymentRepository(pool),
		repository.NewDebitRepository(pool),
	)
}

func newIntegrationAttendanceService(pool *pgxpool.Pool) *AttendanceService {
	return NewAttendanceService(
		pool,
		repository.NewAttendanceRepository(pool),
		newIntegrationLedgerService(pool),
	)
}

func newIntegrationSessionService(pool *pgxpool.Pool) *SessionService {
	return NewSessionService(
		pool,
		repository.NewSessionRepository(pool),
		repository.NewMentorshipRepository(pool),
		repository.NewAttendanceRepository(pool),
		newIntegrationLedgerService(pool),
	)
}

func createTestMentorship(t *testing.T, ctx context.Context, pool *pgxpool.Pool, hourlyRate string) *models.Mentorship {
	t.Helper()

	suffix := time.Now().UnixNano()

	student, err := repository.NewStudentRepository(pool).Create(ctx, repository.CreateStudentInput{
		FullName: fmt.Sprintf("Ledger Test Student %d", suffix),
	})
	if err != nil {
		t.Fatalf("create student: %v", err)
	}

	teacher, err := repository.NewTeacherRepository(pool).Create(ctx, repository.CreateTeacherInput{
		FullName: fmt.Sprintf("Ledger Test Teacher %d", suffix),
	})
	if err != nil {
		t.Fatalf("create teacher: %v", err)
	}

	mentorship, err := repository.NewMentorshipRepository(pool).Create(ctx, repository.CreateMentorshipInput{
		StudentID:  student.ID,
		TeacherID:  teacher.ID,
		HourlyRate: hourlyRate,
		Status:     "active",
	})
	if err != nil {
		t.Fatalf("create mentorship: %v", err)
	}

	t.Cleanup(func() {
		cleanupTestMentorship(t, ctx, pool, mentorship.ID, student.ID, teacher.ID)
	})

	return mentorship
}

func cleanupTestMentorship(t *testing.T, ctx context.Context, pool *pgxpool.Pool, mentorshipID, studentID, teacherID int64) {
	t.Helper()

	// Sessions, attendances, payments and debits cascade from the
	// mentorship row.
	if _, err := pool.Exec(ctx, "DELETE FROM mentorships WHERE id = $1", mentorshipID); err != nil {
		t.Fatalf("cleanup mentorship: %v", err)
	}
	if _, err := pool.Exec(ctx, "DELETE FROM students WHERE id = $1", studentID); err != nil {
		t.Fatalf("cleanup student: %v", err)
	}
	if _, err := pool.Exec(ctx, "DELETE FROM teachers WHERE id = $1", teacherID); err != nil {
		t.Fatalf("cleanup teacher: %v", err)
	}
}

func createTestSession(t *testing.T, ctx context.Context, pool *pgxpool.Pool, mentorshipID int64, durationMinutes int) *models.MentorshipSession {
	t.Helper()

	service := newIntegrationSessionService(pool)
	session, err := service.CreateSession(ctx, mentorshipID, CreateSessionInput{
		SessionDate:     time.Date(2030, 3, 15, 0, 0, 0, 0, time.UTC),
		StartTime:       "09:00",
		DurationMinutes: durationMinutes,
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	return session
}

func countDebits(t *testing.T, ctx context.Context, pool *pgxpool.Pool, mentorshipID, sessionID int64) int {
	t.Helper()

	var count int
	err := pool.QueryRow(
		ctx,
		"SELECT COUNT(*) FROM mentorship_debits WHERE mentorship_id = $1 AND session_id = $2",
		mentorshipID,
		sessionID,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count debits: %v", err)
	}
	return count
}

func TestRegisterPaymentCreditsExactHours(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	ledger := newIntegrationLedgerService(pool)

	mentorship := createTestMentorship(t, ctx, pool, "50.00")

	payment, err := ledger.RegisterPayment(ctx, mentorship.ID, "100.00")
	if err != nil {
		t.Fatalf("RegisterPayment: %v", err)
	}
	if payment.Hours != 2 {
		t.Fatalf("expected 2 credit hours, got %d", payment.Hours)
	}
	if payment.Amount != "100.00" {
		t.Fatalf("expected normalized amount 100.00, got %q", payment.Amount)
	}

	if _, err := ledger.RegisterPayment(ctx, mentorship.ID, "75.00"); !errors.Is(err, ErrNonExactConversion) {
		t.Fatalf("expected ErrNonExactConversion, got %v", err)
	}
}

func TestSyncAttendanceDebitIsIdempotent(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	ledger := newIntegrationLedgerService(pool)

	mentorship := createTestMentorship(t, ctx, pool, "50.00")
	session := createTestSession(t, ctx, pool, mentorship.ID, 120)

	if err := ledger.SyncAttendanceDebit(ctx, session, true); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if err := ledger.SyncAttendanceDebit(ctx, session, true); err != nil {
		t.Fatalf("second sync: %v", err)
	}

	if count := countDebits(t, ctx, pool, mentorship.ID, session.ID); count != 1 {
		t.Fatalf("expected exactly one debit, got %d", count)
	}

	debit, err := repository.NewDebitRepository(pool).GetBySessionID(ctx, mentorship.ID, session.ID)
	if err != nil {
		t.Fatalf("load debit: %v", err)
	}
	if debit.Hours != 2 {
		t.Fatalf("expected 2 debited hours, got %d", debit.Hours)
	}

	if err := ledger.SyncAttendanceDebit(ctx, session, false); err != nil {
		t.Fatalf("sync false: %v", err)
	}
	if count := countDebits(t, ctx, pool, mentorship.ID, session.ID); count != 0 {
		t.Fatalf("expected debit removed, got %d", count)
	}

	// Removing an absent debit is a no-op, never an error.
	if err := ledger.SyncAttendanceDebit(ctx, session, false); err != nil {
		t.Fatalf("second sync false: %v", err)
	}
}

func TestSyncAttendanceDebitFixesStaleHours(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	ledger := newIntegrationLedgerService(pool)
	sessions := newIntegrationSessionService(pool)

	mentorship := createTestMentorship(t, ctx, pool, "50.00")
	session := createTestSession(t, ctx, pool, mentorship.ID, 60)

	if err := ledger.SyncAttendanceDebit(ctx, session, true); err != nil {
		t.Fatalf("sync: %v", err)
	}

	longer := 180
	updated, err := sessions.UpdateSession(ctx, session.ID, UpdateSessionInput{DurationMinutes: &longer})
	if err != nil {
		t.Fatalf("UpdateSession: %v", err)
	}

	if err := ledger.SyncAttendanceDebit(ctx, updated, true); err != nil {
		t.Fatalf("resync: %v", err)
	}

	debit, err := repository.NewDebitRepository(pool).GetBySessionID(ctx, mentorship.ID, session.ID)
	if err != nil {
		t.Fatalf("load debit: %v", err)
	}
	if debit.Hours != 3 {
		t.Fatalf("expected debit updated to 3 hours, got %d", debit.Hours)
	}
}

func TestSetSessionAttendanceChargePolicyTable(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	attendance := newIntegrationAttendanceService(pool)

	cases := []struct {
		name            string
		status          string
		absenceNotified bool
		wantDebit       bool
	}{
		{"present debits", "present", false, true},
		{"late debits", "late", false, true},
		{"notified absence does not debit", "absent", true, false},
		{"unnotified absence debits", "absent", false, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mentorship := createTestMentorship(t, ctx, pool, "40.00")
			session := createTestSession(t, ctx, pool, mentorship.ID, 60)

			record, err := attendance.SetSessionAttendance(ctx, session.ID, tc.status, tc.absenceNotified, AttendanceExtra{})
			if err != nil {
				t.Fatalf("SetSessionAttendance: %v", err)
			}
			if record.SessionID != session.ID {
				t.Fatalf("attendance bound to session %d, want %d", record.SessionID, session.ID)
			}

			wantCount := 0
			if tc.wantDebit {
				wantCount = 1
			}
			if count := countDebits(t, ctx, pool, mentorship.ID, session.ID); count != wantCount {
				t.Fatalf("expected %d debit rows, got %d", wantCount, count)
			}

			reloaded, err := repository.NewSessionRepository(pool).GetByID(ctx, session.ID)
			if err != nil {
				t.Fatalf("reload session: %v", err)
			}
			if reloaded.Status != models.SessionCompleted {
				t.Fatalf("expected session completed after attendance, got %q", reloaded.Status)
			}
		})
	}
}

func TestAttendanceCorrectionReconcilesDebit(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	attendance := newIntegrationAttendanceService(pool)

	mentorship := createTestMentorship(t, ctx, pool, "40.00")
	session := createTestSession(t, ctx, pool, mentorship.ID, 60)

	if _, err := attendance.SetSessionAttendance(ctx, session.ID, "absent", true, AttendanceExtra{}); err != nil {
		t.Fatalf("set notified absence: %v", err)
	}
	if count := countDebits(t, ctx, pool, mentorship.ID, session.ID); count != 0 {
		t.Fatalf("notified absence must not debit, got %d rows", count)
	}

	// Correcting absent -> present creates the missing debit.
	if _, err := attendance.SetSessionAttendance(ctx, session.ID, "present", false, AttendanceExtra{}); err != nil {
		t.Fatalf("correct to present: %v", err)
	}
	if count := countDebits(t, ctx, pool, mentorship.ID, session.ID); count != 1 {
		t.Fatalf("expected debit after correction, got %d rows", count)
	}

	// And the reverse removes it again.
	if _, err := attendance.SetSessionAttendance(ctx, session.ID, "absent", true, AttendanceExtra{}); err != nil {
		t.Fatalf("correct back to notified absence: %v", err)
	}
	if count := countDebits(t, ctx, pool, mentorship.ID, session.ID); count != 0 {
		t.Fatalf("expected debit removed after reverse correction, got %d rows", count)
	}
}

func TestCancellationDominatesChargePolicy(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	attendance := newIntegrationAttendanceService(pool)
	sessions := newIntegrationSessionService(pool)

	mentorship := createTestMentorship(t, ctx, pool, "40.00")
	session := createTestSession(t, ctx, pool, mentorship.ID, 60)

	cancelled, err := sessions.CancelSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("CancelSession: %v", err)
	}

	if _, err := attendance.SetSessionAttendance(ctx, cancelled.ID, "present", false, AttendanceExtra{}); err != nil {
		t.Fatalf("SetSessionAttendance on cancelled session: %v", err)
	}

	if count := countDebits(t, ctx, pool, mentorship.ID, session.ID); count != 0 {
		t.Fatalf("cancelled session must carry no debit, got %d rows", count)
	}

	reloaded, err := repository.NewSessionRepository(pool).GetByID(ctx, session.ID)
	if err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if reloaded.Status != models.SessionCancelled {
		t.Fatalf("attendance must not resurrect a cancelled session, got %q", reloaded.Status)
	}
}

func TestGetBalanceArithmetic(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	ledger := newIntegrationLedgerService(pool)
	attendance := newIntegrationAttendanceService(pool)

	mentorship := createTestMentorship(t, ctx, pool, "50.00")

	// 5 credited hours across two payments.
	if _, err := ledger.RegisterPayment(ctx, mentorship.ID, "150.00"); err != nil {
		t.Fatalf("first payment: %v", err)
	}
	if _, err := ledger.RegisterPayment(ctx, mentorship.ID, "100.00"); err != nil {
		t.Fatalf("second payment: %v", err)
	}

	// 2 debited hours from one attended session.
	session := createTestSession(t, ctx, pool, mentorship.ID, 120)
	if _, err := attendance.SetSessionAttendance(ctx, session.ID, "present", false, AttendanceExtra{}); err != nil {
		t.Fatalf("SetSessionAttendance: %v", err)
	}

	balance, err := ledger.GetBalance(ctx, mentorship.ID)
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if balance.CreditsHours != 5 || balance.DebitsHours != 2 || balance.BalanceHours != 3 {
		t.Fatalf("expected {5 2 3}, got %+v", balance)
	}
}

func TestConcurrentDirectDebitsResolveToOneRow(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	ledger := newIntegrationLedgerService(pool)

	mentorship := createTestMentorship(t, ctx, pool, "50.00")
	session := createTestSession(t, ctx, pool, mentorship.ID, 60)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = ledger.RegisterDebitForAttendance(ctx, session.ID)
		}(i)
	}
	wg.Wait()

	var successes, duplicates int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrAlreadyDebited):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || duplicates != 1 {
		t.Fatalf("expected one winner and one ErrAlreadyDebited, got %d/%d", successes, duplicates)
	}

	if count := countDebits(t, ctx, pool, mentorship.ID, session.ID); count != 1 {
		t.Fatalf("expected exactly one persisted debit, got %d", count)
	}
}

func TestConcurrentSyncsConvergeWithoutError(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	ledger := newIntegrationLedgerService(pool)

	mentorship := createTestMentorship(t, ctx, pool, "50.00")
	session := createTestSession(t, ctx, pool, mentorship.ID, 60)

	// Unlike the direct registration path, reconciliation must not surface
	// the losing insert: the loser re-reads the winner's row and converges.
	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = ledger.SyncAttendanceDebit(ctx, session, true)
		}(i)
	}
	wg.Wait()

	for i, err := range results {
		if err != nil {
			t.Fatalf("reconciler %d: unexpected error: %v", i, err)
		}
	}

	if count := countDebits(t, ctx, pool, mentorship.ID, session.ID); count != 1 {
		t.Fatalf("expected exactly one persisted debit, got %d", count)
	}
}

func TestRegisterDebitForAttendanceRejectsExistingDebit(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	ledger := newIntegrationLedgerService(pool)

	mentorship := createTestMentorship(t, ctx, pool, "50.00")
	session := createTestSession(t, ctx, pool, mentorship.ID, 60)

	if _, err := ledger.RegisterDebitForAttendance(ctx, session.ID); err != nil {
		t.Fatalf("first debit: %v", err)
	}
	if _, err := ledger.RegisterDebitForAttendance(ctx, session.ID); !errors.Is(err, ErrAlreadyDebited) {
		t.Fatalf("expected ErrAlreadyDebited, got %v", err)
	}
}

func TestCancelSessionClearsAttendanceAndDebit(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	attendance := newIntegrationAttendanceService(pool)
	sessions := newIntegrationSessionService(pool)

	mentorship := createTestMentorship(t, ctx, pool, "40.00")
	session := createTestSession(t, ctx, pool, mentorship.ID, 60)

	if _, err := attendance.SetSessionAttendance(ctx, session.ID, "present", false, AttendanceExtra{}); err != nil {
		t.Fatalf("SetSessionAttendance: %v", err)
	}
	if count := countDebits(t, ctx, pool, mentorship.ID, session.ID); count != 1 {
		t.Fatalf("expected debit before cancel, got %d", count)
	}

	cancelled, err := sessions.CancelSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("CancelSession: %v", err)
	}
	if cancelled.Status != models.SessionCancelled {
		t.Fatalf("expected cancelled status, got %q", cancelled.Status)
	}

	if count := countDebits(t, ctx, pool, mentorship.ID, session.ID); count != 0 {
		t.Fatalf("expected debit removed on cancel, got %d", count)
	}

	record, err := attendance.FindAttendance(ctx, session.ID)
	if err != nil {
		t.Fatalf("FindAttendance: %v", err)
	}
	if record != nil {
		t.Fatalf("expected attendance removed on cancel, got %+v", record)
	}
}

func TestUpdateSessionResetReopensSession(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	attendance := newIntegrationAttendanceService(pool)
	sessions := newIntegrationSessionService(pool)

	mentorship := createTestMentorship(t, ctx, pool, "40.00")
	session := createTestSession(t, ctx, pool, mentorship.ID, 60)

	if _, err := attendance.SetSessionAttendance(ctx, session.ID, "present", false, AttendanceExtra{}); err != nil {
		t.Fatalf("SetSessionAttendance: %v", err)
	}

	scheduled := string(models.SessionScheduled)
	reset, err := sessions.UpdateSession(ctx, session.ID, UpdateSessionInput{Status: &scheduled})
	if err != nil {
		t.Fatalf("UpdateSession reset: %v", err)
	}
	if reset.Status != models.SessionScheduled {
		t.Fatalf("expected scheduled after reset, got %q", reset.Status)
	}

	if count := countDebits(t, ctx, pool, mentorship.ID, session.ID); count != 0 {
		t.Fatalf("expected debit removed on reset, got %d", count)
	}
	record, err := attendance.FindAttendance(ctx, session.ID)
	if err != nil {
		t.Fatalf("FindAttendance: %v", err)
	}
	if record != nil {
		t.Fatalf("expected attendance removed on reset, got %+v", record)
	}
}

func TestDestroySessionCascades(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	attendance := newIntegrationAttendanceService(pool)
	sessions := newIntegrationSessionService(pool)

	mentorship := createTestMentorship(t, ctx, pool, "40.00")
	session := createTestSession(t, ctx, pool, mentorship.ID, 60)

	if _, err := attendance.SetSessionAttendance(ctx, session.ID, "present", false, AttendanceExtra{}); err != nil {
		t.Fatalf("SetSessionAttendance: %v", err)
	}

	if err := sessions.DestroySession(ctx, session.ID); err != nil {
		t.Fatalf("DestroySession: %v", err)
	}

	if _, err := repository.NewSessionRepository(pool).GetByID(ctx, session.ID); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected session gone, got %v", err)
	}
	if count := countDebits(t, ctx, pool, mentorship.ID, session.ID); count != 0 {
		t.Fatalf("expected debit cascade-deleted, got %d", count)
	}
	record, err := attendance.FindAttendance(ctx, session.ID)
	if err != nil {
		t.Fatalf("FindAttendance: %v", err)
	}
	if record != nil {
		t.Fatalf("expected attendance cascade-deleted, got %+v", record)
	}
}
