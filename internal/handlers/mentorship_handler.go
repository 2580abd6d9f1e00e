package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/DevFelipeRT/EduMentorBack/internal/models"
	"github.com/DevFelipeRT/EduMentorBack/internal/repository"
	"github.com/DevFelipeRT/EduMentorBack/internal/services"
	"github.com/DevFelipeRT/EduMentorBack/pkg/money"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type mentorshipLedgerService interface {
	RegisterPayment(ctx context.Context, mentorshipID int64, amount string) (*models.MentorshipPayment, error)
	GetBalance(ctx context.Context, mentorshipID int64) (*models.MentorshipBalance, error)
}

type MentorshipHandler struct {
	mentorshipRepo *repository.MentorshipRepository
	paymentRepo    *repository.PaymentRepository
	debitRepo      *repository.DebitRepository
	ledger         mentorshipLedgerService
}

func NewMentorshipHandler(
	mentorshipRepo *repository.MentorshipRepository,
	paymentRepo *repository.PaymentRepository,
	debitRepo *repository.DebitRepository,
	ledger *services.LedgerService,
) *MentorshipHandler {
	return &MentorshipHandler{
		mentorshipRepo: mentorshipRepo,
		paymentRepo:    paymentRepo,
		debitRepo:      debitRepo,
		ledger:         ledger,
	}
}

type mentorshipRequest struct {
	StudentID  int64   `json:"student_id"`
	TeacherID  int64   `json:"teacher_id"`
	SubjectID  *int64  `json:"subject_id"`
	HourlyRate string  `json:"hourly_rate"`
	Status     string  `json:"status"`
	StartDate  *string `json:"start_date"`
	EndDate    *string `json:"end_date"`
}

type registerPaymentRequest struct {
	Amount paymentAmount `json:"amount"`
}

// paymentAmount accepts both `"amount": "150.00"` and `"amount": 150.0`.
// Numeric amounts are normalized to the canonical decimal string before
// they reach the ledger.
type paymentAmount string

func (a *paymentAmount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = paymentAmount(s)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*a = paymentAmount(money.FromMinorUnits(money.Float64ToMinorUnits(f)))
	return nil
}

func (r mentorshipRequest) toInput() (repository.CreateMentorshipInput, error) {
	if r.StudentID <= 0 {
		return repository.CreateMentorshipInput{}, errors.New("student_id is required")
	}
	if r.TeacherID <= 0 {
		return repository.CreateMentorshipInput{}, errors.New("teacher_id is required")
	}
	if strings.TrimSpace(r.HourlyRate) == "" {
		return repository.CreateMentorshipInput{}, errors.New("hourly_rate is required")
	}

	status := strings.TrimSpace(r.Status)
	if status == "" {
		status = "active"
	}

	input := repository.CreateMentorshipInput{
		StudentID:  r.StudentID,
		TeacherID:  r.TeacherID,
		SubjectID:  r.SubjectID,
		HourlyRate: strings.TrimSpace(r.HourlyRate),
		Status:     status,
	}

	if r.StartDate != nil {
		parsed, err := time.Parse("2006-01-02", strings.TrimSpace(*r.StartDate))
		if err != nil {
			return repository.CreateMentorshipInput{}, errors.New("start_date must be YYYY-MM-DD")
		}
		input.StartDate = &parsed
	}
	if r.EndDate != nil {
		parsed, err := time.Parse("2006-01-02", strings.TrimSpace(*r.EndDate))
		if err != nil {
			return repository.CreateMentorshipInput{}, errors.New("end_date must be YYYY-MM-DD")
		}
		input.EndDate = &parsed
	}

	return input, nil
}

func (h *MentorshipHandler) Create(c *fiber.Ctx) error {
	var req mentorshipRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	input, err := req.toInput()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	mentorship, err := h.mentorshipRepo.Create(c.Context(), input)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return c.Status(fiber.StatusBadRequest).
				JSON(fiber.Map{"error": "Referenced student, teacher or subject does not exist"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create mentorship"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"mentorship": mentorship})
}

func (h *MentorshipHandler) List(c *fiber.Ctx) error {
	mentorships, err := h.mentorshipRepo.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list mentorships"})
	}
	return c.JSON(fiber.Map{"mentorships": mentorships})
}

func (h *MentorshipHandler) Get(c *fiber.Ctx) error {
	mentorshipID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid mentorship id"})
	}

	mentorship, err := h.mentorshipRepo.GetByID(c.Context(), mentorshipID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Mentorship not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load mentorship"})
	}
	return c.JSON(fiber.Map{"mentorship": mentorship})
}

func (h *MentorshipHandler) Update(c *fiber.Ctx) error {
	mentorshipID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid mentorship id"})
	}

	var req mentorshipRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	input, err := req.toInput()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	mentorship, err := h.mentorshipRepo.Update(c.Context(), mentorshipID, input)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Mentorship not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update mentorship"})
	}
	return c.JSON(fiber.Map{"mentorship": mentorship})
}

func (h *MentorshipHandler) Delete(c *fiber.Ctx) error {
	mentorshipID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid mentorship id"})
	}

	if err := h.mentorshipRepo.Delete(c.Context(), mentorshipID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete mentorship"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *MentorshipHandler) RegisterPayment(c *fiber.Ctx) error {
	mentorshipID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid mentorship id"})
	}

	var req registerPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	payment, err := h.ledger.RegisterPayment(c.Context(), mentorshipID, string(req.Amount))
	if err != nil {
		return mapLedgerError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"payment": payment})
}

func (h *MentorshipHandler) ListPayments(c *fiber.Ctx) error {
	mentorshipID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid mentorship id"})
	}

	payments, err := h.paymentRepo.ListByMentorshipID(c.Context(), mentorshipID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list payments"})
	}
	return c.JSON(fiber.Map{"payments": payments})
}

func (h *MentorshipHandler) DeletePayment(c *fiber.Ctx) error {
	paymentID, err := parseIDParam(c, "payment_id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment id"})
	}

	if err := h.paymentRepo.Delete(c.Context(), paymentID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete payment"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *MentorshipHandler) ListDebits(c *fiber.Ctx) error {
	mentorshipID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid mentorship id"})
	}

	debits, err := h.debitRepo.ListByMentorshipID(c.Context(), mentorshipID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list debits"})
	}
	return c.JSON(fiber.Map{"debits": debits})
}

func (h *MentorshipHandler) GetBalance(c *fiber.Ctx) error {
	mentorshipID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid mentorship id"})
	}

	balance, err := h.ledger.GetBalance(c.Context(), mentorshipID)
	if err != nil {
		return mapLedgerError(c, err)
	}
	return c.JSON(fiber.Map{"balance": balance})
}

func mapLedgerError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrMentorshipNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Mentorship not found"})
	case errors.Is(err, services.ErrInvalidAmount):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidHourlyRate),
		errors.Is(err, services.ErrNonExactConversion):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process payment request"})
	}
}
