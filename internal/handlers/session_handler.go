package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/DevFelipeRT/EduMentorBack/internal/models"
	"github.com/DevFelipeRT/EduMentorBack/internal/services"
	"github.com/gofiber/fiber/v2"
)

type sessionApplicationService interface {
	CreateSession(ctx context.Context, mentorshipID int64, input services.CreateSessionInput) (*models.MentorshipSession, error)
	UpdateSession(ctx context.Context, sessionID int64, input services.UpdateSessionInput) (*models.MentorshipSession, error)
	CancelSession(ctx context.Context, sessionID int64) (*models.MentorshipSession, error)
	DestroySession(ctx context.Context, sessionID int64) error
	GetSession(ctx context.Context, sessionID int64) (*models.SessionDetail, error)
	ListSessions(ctx context.Context, mentorshipID int64) ([]models.MentorshipSession, error)
}

type SessionHandler struct {
	service sessionApplicationService
}

func NewSessionHandler(service *services.SessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

type createSessionRequest struct {
	SessionDate     string `json:"session_date"`
	StartTime       string `json:"start_time"`
	DurationMinutes int    `json:"duration_minutes"`
	Status          string `json:"status"`
}

type updateSessionRequest struct {
	SessionDate     *string `json:"session_date"`
	StartTime       *string `json:"start_time"`
	DurationMinutes *int    `json:"duration_minutes"`
	Status          *string `json:"status"`
}

func (h *SessionHandler) CreateSession(c *fiber.Ctx) error {
	mentorshipID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid mentorship id"})
	}

	var req createSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	var sessionDate time.Time
	if raw := strings.TrimSpace(req.SessionDate); raw != "" {
		sessionDate, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "session_date must be YYYY-MM-DD"})
		}
	}

	session, err := h.service.CreateSession(c.Context(), mentorshipID, services.CreateSessionInput{
		SessionDate:     sessionDate,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Status:          req.Status,
	})
	if err != nil {
		return mapSessionError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"session": session})
}

func (h *SessionHandler) ListSessions(c *fiber.Ctx) error {
	mentorshipID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid mentorship id"})
	}

	sessions, err := h.service.ListSessions(c.Context(), mentorshipID)
	if err != nil {
		return mapSessionError(c, err)
	}
	return c.JSON(fiber.Map{"sessions": sessions})
}

func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	session, err := h.service.GetSession(c.Context(), sessionID)
	if err != nil {
		return mapSessionError(c, err)
	}
	return c.JSON(fiber.Map{"session": session})
}

func (h *SessionHandler) UpdateSession(c *fiber.Ctx) error {
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	var req updateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	input := services.UpdateSessionInput{
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Status:          req.Status,
	}
	if req.SessionDate != nil {
		parsed, err := time.Parse("2006-01-02", strings.TrimSpace(*req.SessionDate))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "session_date must be YYYY-MM-DD"})
		}
		input.SessionDate = &parsed
	}

	session, err := h.service.UpdateSession(c.Context(), sessionID, input)
	if err != nil {
		return mapSessionError(c, err)
	}
	return c.JSON(fiber.Map{"session": session})
}

func (h *SessionHandler) CancelSession(c *fiber.Ctx) error {
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	session, err := h.service.CancelSession(c.Context(), sessionID)
	if err != nil {
		return mapSessionError(c, err)
	}
	return c.JSON(fiber.Map{"session": session})
}

func (h *SessionHandler) DestroySession(c *fiber.Ctx) error {
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	if err := h.service.DestroySession(c.Context(), sessionID); err != nil {
		return mapSessionError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func mapSessionError(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": validationErr.Message,
			"field": validationErr.Field,
		})
	case errors.Is(err, services.ErrInvalidSessionStatus):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrSessionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
	case errors.Is(err, services.ErrMentorshipNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Mentorship not found"})
	case errors.Is(err, services.ErrInvalidHourlyRate),
		errors.Is(err, services.ErrInvalidDuration):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process session request"})
	}
}
