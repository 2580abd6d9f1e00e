package repository

import (
	"context"
	"time"

	"github.com/DevFelipeRT/EduMentorBack/internal/models"
)

type CreatePaymentInput struct {
	MentorshipID int64
	Amount       string
	Hours        int
	PaidAt       time.Time
}

type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, input CreatePaymentInput) (*models.MentorshipPayment, error) {
	query := `
		INSERT INTO mentorship_payments (mentorship_id, amount, hours, paid_at)
		VALUES ($1, $2::numeric, $3, $4)
		RETURNING id, mentorship_id, amount::text, hours, paid_at, created_at
	`
	var payment models.MentorshipPayment
	err := r.db.QueryRow(
		ctx,
		query,
		input.MentorshipID,
		input.Amount,
		input.Hours,
		input.PaidAt,
	).Scan(
		&payment.ID,
		&payment.MentorshipID,
		&payment.Amount,
		&payment.Hours,
		&payment.PaidAt,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) ListByMentorshipID(ctx context.Context, mentorshipID int64) ([]models.MentorshipPayment, error) {
	query := `
		SELECT id, mentorship_id, amount::text, hours, paid_at, created_at
		FROM mentorship_payments
		WHERE mentorship_id = $1
		ORDER BY paid_at ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, mentorshipID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]models.MentorshipPayment, 0)
	for rows.Next() {
		var payment models.MentorshipPayment
		if err := rows.Scan(
			&payment.ID,
			&payment.MentorshipID,
			&payment.Amount,
			&payment.Hours,
			&payment.PaidAt,
			&payment.CreatedAt,
		); err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *PaymentRepository) SumHoursByMentorshipID(ctx context.Context, mentorshipID int64) (int, error) {
	query := `
		SELECT COALESCE(SUM(hours), 0)
		FROM mentorship_payments
		WHERE mentorship_id = $1
	`
	var hours int
	if err := r.db.QueryRow(ctx, query, mentorshipID).Scan(&hours); err != nil {
		return 0, err
	}
	return hours, nil
}

func (r *PaymentRepository) Delete(ctx context.Context, paymentID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM mentorship_payments WHERE id = $1`, paymentID)
	return err
}
