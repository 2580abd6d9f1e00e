package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DevFelipeRT/EduMentorBack/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type stubRow struct {
	values []any
	err    error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i := range dest {
		switch target := dest[i].(type) {
		case *int64:
			*target = r.values[i].(int64)
		case **int64:
			*target = r.values[i].(*int64)
		case *int:
			*target = r.values[i].(int)
		case *string:
			*target = r.values[i].(string)
		case **string:
			*target = r.values[i].(*string)
		case *time.Time:
			*target = r.values[i].(time.Time)
		case **time.Time:
			*target = r.values[i].(*time.Time)
		default:
			return errors.New("unsupported scan target")
		}
	}
	return nil
}

type stubDBTX struct {
	queryRowFn func(ctx context.Context, query string, args ...any) stubRow
}

func (db *stubDBTX) Exec(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (db *stubDBTX) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (db *stubDBTX) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	return db.queryRowFn(ctx, query, args...)
}

var stubTime = time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

func mentorshipRow(rate string) stubRow {
	return stubRow{values: []any{
		int64(1),        // id
		int64(10),       // student_id
		int64(20),       // teacher_id
		(*int64)(nil),   // subject_id
		rate,            // hourly_rate
		"active",        // status
		(*time.Time)(nil),
		(*time.Time)(nil),
		stubTime,
		stubTime,
	}}
}

func ledgerWithMentorshipRate(rate string) *LedgerService {
	db := &stubDBTX{
		queryRowFn: func(_ context.Context, _ string, _ ...any) stubRow {
			return mentorshipRow(rate)
		},
	}
	return &LedgerService{mentorshipRepo: repository.NewMentorshipRepository(db)}
}

func TestRegisterPaymentRejectsMissingMentorship(t *testing.T) {
	db := &stubDBTX{
		queryRowFn: func(_ context.Context, _ string, _ ...any) stubRow {
			return stubRow{err: pgx.ErrNoRows}
		},
	}
	service := &LedgerService{mentorshipRepo: repository.NewMentorshipRepository(db)}

	_, err := service.RegisterPayment(context.Background(), 1, "50.00")
	if !errors.Is(err, ErrMentorshipNotFound) {
		t.Fatalf("expected ErrMentorshipNotFound, got %v", err)
	}
}

func TestRegisterPaymentRejectsUnusableRate(t *testing.T) {
	for _, rate := range []string{"0.00", "-50.00", "free"} {
		service := ledgerWithMentorshipRate(rate)
		_, err := service.RegisterPayment(context.Background(), 1, "50.00")
		if !errors.Is(err, ErrInvalidHourlyRate) {
			t.Errorf("rate %q: expected ErrInvalidHourlyRate, got %v", rate, err)
		}
	}
}

func TestRegisterPaymentRejectsInvalidAmount(t *testing.T) {
	service := ledgerWithMentorshipRate("50.00")
	for _, amount := range []string{"", "abc", "0.00", "-50.00"} {
		_, err := service.RegisterPayment(context.Background(), 1, amount)
		if !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("amount %q: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}

func TestRegisterPaymentRequiresExactConversion(t *testing.T) {
	service := ledgerWithMentorshipRate("50.00")

	for _, amount := range []string{"75.00", "49.99", "101.00"} {
		_, err := service.RegisterPayment(context.Background(), 1, amount)
		if !errors.Is(err, ErrNonExactConversion) {
			t.Errorf("amount %q: expected ErrNonExactConversion, got %v", amount, err)
		}
	}
}

func TestSessionHours(t *testing.T) {
	cases := []struct {
		minutes int
		hours   int
		wantErr bool
	}{
		{60, 1, false},
		{120, 2, false},
		{180, 3, false},
		{0, 0, true},
		{-60, 0, true},
		{90, 0, true},
		{45, 0, true},
	}

	for _, tc := range cases {
		hours, err := sessionHours(tc.minutes)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidDuration) {
				t.Errorf("sessionHours(%d): expected ErrInvalidDuration, got %v", tc.minutes, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("sessionHours(%d): %v", tc.minutes, err)
			continue
		}
		if hours != tc.hours {
			t.Errorf("sessionHours(%d) = %d, want %d", tc.minutes, hours, tc.hours)
		}
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Errorf("expected 23505 to be a unique violation")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Errorf("foreign key violation misreported as unique violation")
	}
	if isUniqueViolation(errors.New("boom")) {
		t.Errorf("plain error misreported as unique violation")
	}
	if isUniqueViolation(nil) {
		t.Errorf("nil misreported as unique violation")
	}
}
