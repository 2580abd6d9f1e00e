package models

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrUnknownSessionStatus    = errors.New("unknown session status")
	ErrUnknownAttendanceStatus = errors.New("unknown attendance status")
)

type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// ParseSessionStatus is the only place a raw session-status string is
// interpreted; internal code compares the typed constants.
func ParseSessionStatus(status string) (SessionStatus, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "scheduled":
		return SessionScheduled, nil
	case "completed":
		return SessionCompleted, nil
	case "cancelled", "canceled":
		return SessionCancelled, nil
	default:
		return "", ErrUnknownSessionStatus
	}
}

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceAbsent  AttendanceStatus = "absent"
)

func ParseAttendanceStatus(status string) (AttendanceStatus, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "present":
		return AttendancePresent, nil
	case "late":
		return AttendanceLate, nil
	case "absent":
		return AttendanceAbsent, nil
	default:
		return "", ErrUnknownAttendanceStatus
	}
}

type MentorshipSession struct {
	ID              int64         `json:"id"`
	MentorshipID    int64         `json:"mentorship_id"`
	SessionDate     time.Time     `json:"session_date"`
	StartTime       string        `json:"start_time"`
	DurationMinutes int           `json:"duration_minutes"`
	Status          SessionStatus `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// MentorshipAttendance is the 1:1 attendance outcome for a session.
// AbsenceNotified is meaningful only when Status is absent.
type MentorshipAttendance struct {
	ID              int64            `json:"id"`
	SessionID       int64            `json:"session_id"`
	Status          AttendanceStatus `json:"status"`
	AbsenceNotified bool             `json:"absence_notified"`
	Notes           *string          `json:"notes"`
	RecordedBy      *string          `json:"recorded_by"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type SessionDetail struct {
	MentorshipSession
	Attendance *MentorshipAttendance `json:"attendance,omitempty"`
	Debit      *MentorshipDebit      `json:"debit,omitempty"`
}
