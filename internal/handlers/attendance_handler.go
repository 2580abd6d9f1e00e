package handlers

import (
	"context"
	"errors"

	"github.com/DevFelipeRT/EduMentorBack/internal/models"
	"github.com/DevFelipeRT/EduMentorBack/internal/services"
	"github.com/gofiber/fiber/v2"
)

type attendanceApplicationService interface {
	SetSessionAttendance(ctx context.Context, sessionID int64, status string, absenceNotified bool, extra services.AttendanceExtra) (*models.MentorshipAttendance, error)
	FindAttendance(ctx context.Context, sessionID int64) (*models.MentorshipAttendance, error)
}

type debitRegistrar interface {
	RegisterDebitForAttendance(ctx context.Context, sessionID int64) (*models.MentorshipDebit, error)
}

type AttendanceHandler struct {
	service attendanceApplicationService
	ledger  debitRegistrar
}

func NewAttendanceHandler(service *services.AttendanceService, ledger *services.LedgerService) *AttendanceHandler {
	return &AttendanceHandler{service: service, ledger: ledger}
}

type setAttendanceRequest struct {
	Status          string  `json:"status"`
	AbsenceNotified bool    `json:"absence_notified"`
	Notes           *string `json:"notes"`
	RecordedBy      *string `json:"recorded_by"`
}

func (h *AttendanceHandler) SetAttendance(c *fiber.Ctx) error {
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	var req setAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	attendance, err := h.service.SetSessionAttendance(
		c.Context(),
		sessionID,
		req.Status,
		req.AbsenceNotified,
		services.AttendanceExtra{Notes: req.Notes, RecordedBy: req.RecordedBy},
	)
	if err != nil {
		return mapAttendanceError(c, err)
	}

	return c.JSON(fiber.Map{"attendance": attendance})
}

func (h *AttendanceHandler) GetAttendance(c *fiber.Ctx) error {
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	attendance, err := h.service.FindAttendance(c.Context(), sessionID)
	if err != nil {
		return mapAttendanceError(c, err)
	}
	if attendance == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Attendance not recorded"})
	}

	return c.JSON(fiber.Map{"attendance": attendance})
}

// RegisterDebit is the direct debit entry point used by the admin surface
// when a charge must be recorded without an attendance round-trip.
func (h *AttendanceHandler) RegisterDebit(c *fiber.Ctx) error {
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	debit, err := h.ledger.RegisterDebitForAttendance(c.Context(), sessionID)
	if err != nil {
		return mapAttendanceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"debit": debit})
}

func mapAttendanceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidAttendanceStatus):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrSessionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
	case errors.Is(err, services.ErrMentorshipNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Mentorship not found"})
	case errors.Is(err, services.ErrAlreadyDebited):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidHourlyRate),
		errors.Is(err, services.ErrInvalidDuration):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process attendance request"})
	}
}
