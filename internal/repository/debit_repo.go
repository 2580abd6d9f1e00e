package repository

import (
	"context"
	"time"

	"github.com/DevFelipeRT/EduMentorBack/internal/models"
)

type CreateDebitInput struct {
	MentorshipID int64
	SessionID    int64
	Hours        int
	DebitedAt    time.Time
}

type DebitRepository struct {
	db DBTX
}

func NewDebitRepository(db DBTX) *DebitRepository {
	return &DebitRepository{db: db}
}

func (r *DebitRepository) Create(ctx context.Context, input CreateDebitInput) (*models.MentorshipDebit, error) {
	query := `
		INSERT INTO mentorship_debits (mentorship_id, session_id, hours, debited_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, mentorship_id, session_id, hours, debited_at
	`
	var debit models.MentorshipDebit
	err := r.db.QueryRow(
		ctx,
		query,
		input.MentorshipID,
		input.SessionID,
		input.Hours,
		input.DebitedAt,
	).Scan(
		&debit.ID,
		&debit.MentorshipID,
		&debit.SessionID,
		&debit.Hours,
		&debit.DebitedAt,
	)
	if err != nil {
		return nil, err
	}
	return &debit, nil
}

func (r *DebitRepository) GetBySessionID(ctx context.Context, mentorshipID, sessionID int64) (*models.MentorshipDebit, error) {
	query := `
		SELECT id, mentorship_id, session_id, hours, debited_at
		FROM mentorship_debits
		WHERE mentorship_id = $1 AND session_id = $2
	`
	var debit models.MentorshipDebit
	err := r.db.QueryRow(ctx, query, mentorshipID, sessionID).Scan(
		&debit.ID,
		&debit.MentorshipID,
		&debit.SessionID,
		&debit.Hours,
		&debit.DebitedAt,
	)
	if err != nil {
		return nil, err
	}
	return &debit, nil
}

// GetBySessionIDForUpdate locks the debit row for the (mentorship, session)
// pair so a check-then-write sequence is atomic relative to other
// reconcilers running in their own transactions.
func (r *DebitRepository) GetBySessionIDForUpdate(ctx context.Context, mentorshipID, sessionID int64) (*models.MentorshipDebit, error) {
	query := `
		SELECT id, mentorship_id, session_id, hours, debited_at
		FROM mentorship_debits
		WHERE mentorship_id = $1 AND session_id = $2
		FOR UPDATE
	`
	var debit models.MentorshipDebit
	err := r.db.QueryRow(ctx, query, mentorshipID, sessionID).Scan(
		&debit.ID,
		&debit.MentorshipID,
		&debit.SessionID,
		&debit.Hours,
		&debit.DebitedAt,
	)
	if err != nil {
		return nil, err
	}
	return &debit, nil
}

func (r *DebitRepository) UpdateHours(ctx context.Context, debitID int64, hours int) (*models.MentorshipDebit, error) {
	query := `
		UPDATE mentorship_debits
		SET hours = $2
		WHERE id = $1
		RETURNING id, mentorship_id, session_id, hours, debited_at
	`
	var debit models.MentorshipDebit
	err := r.db.QueryRow(ctx, query, debitID, hours).Scan(
		&debit.ID,
		&debit.MentorshipID,
		&debit.SessionID,
		&debit.Hours,
		&debit.DebitedAt,
	)
	if err != nil {
		return nil, err
	}
	return &debit, nil
}

func (r *DebitRepository) DeleteBySessionID(ctx context.Context, mentorshipID, sessionID int64) error {
	_, err := r.db.Exec(
		ctx,
		`DELETE FROM mentorship_debits WHERE mentorship_id = $1 AND session_id = $2`,
		mentorshipID,
		sessionID,
	)
	return err
}

func (r *DebitRepository) ListByMentorshipID(ctx context.Context, mentorshipID int64) ([]models.MentorshipDebit, error) {
	query := `
		SELECT id, mentorship_id, session_id, hours, debited_at
		FROM mentorship_debits
		WHERE mentorship_id = $1
		ORDER BY debited_at ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, mentorshipID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	debits := make([]models.MentorshipDebit, 0)
	for rows.Next() {
		var debit models.MentorshipDebit
		if err := rows.Scan(
			&debit.ID,
			&debit.MentorshipID,
			&debit.SessionID,
			&debit.Hours,
			&debit.DebitedAt,
		); err != nil {
			return nil, err
		}
		debits = append(debits, debit)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return debits, nil
}

func (r *DebitRepository) SumHoursByMentorshipID(ctx context.Context, mentorshipID int64) (int, error) {
	query := `
		SELECT COALESCE(SUM(hours), 0)
		FROM mentorship_debits
		WHERE mentorship_id = $1
	`
	var hours int
	if err := r.db.QueryRow(ctx, query, mentorshipID).Scan(&hours); err != nil {
		return 0, err
	}
	return hours, nil
}
