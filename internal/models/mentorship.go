package models

import "time"

type Mentorship struct {
	ID        int64  `json:"id"`
	StudentID int64  `json:"student_id"`
	TeacherID int64  `json:"teacher_id"`
	SubjectID *int64 `json:"subject_id"`
	// HourlyRate is a decimal string with two fraction digits, e.g. "50.00".
	HourlyRate string     `json:"hourly_rate"`
	Status     string     `json:"status"`
	StartDate  *time.Time `json:"start_date"`
	EndDate    *time.Time `json:"end_date"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// MentorshipPayment is an append-only credit record: the paid amount and the
// whole-hour credit it bought at the mentorship rate.
type MentorshipPayment struct {
	ID           int64     `json:"id"`
	MentorshipID int64     `json:"mentorship_id"`
	Amount       string    `json:"amount"`
	Hours        int       `json:"hours"`
	PaidAt       time.Time `json:"paid_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// MentorshipDebit consumes credit hours for one chargeable session. At most
// one debit exists per (mentorship, session) pair.
type MentorshipDebit struct {
	ID           int64     `json:"id"`
	MentorshipID int64     `json:"mentorship_id"`
	SessionID    int64     `json:"session_id"`
	Hours        int       `json:"hours"`
	DebitedAt    time.Time `json:"debited_at"`
}

// MentorshipBalance is derived on demand, never stored.
type MentorshipBalance struct {
	CreditsHours int `json:"credits_hours"`
	DebitsHours  int `json:"debits_hours"`
	BalanceHours int `json:"balance_hours"`
}
