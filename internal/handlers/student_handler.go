package handlers

import (
	"errors"
	"strings"

	"github.com/DevFelipeRT/EduMentorBack/internal/repository"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type StudentHandler struct {
	studentRepo *repository.StudentRepository
}

func NewStudentHandler(studentRepo *repository.StudentRepository) *StudentHandler {
	return &StudentHandler{studentRepo: studentRepo}
}

type studentRequest struct {
	FullName string  `json:"full_name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
}

func (r studentRequest) toInput() (repository.CreateStudentInput, error) {
	fullName := strings.TrimSpace(r.FullName)
	if fullName == "" {
		return repository.CreateStudentInput{}, errors.New("full_name must not be empty")
	}
	return repository.CreateStudentInput{
		FullName: fullName,
		Email:    r.Email,
		Phone:    r.Phone,
	}, nil
}

func (h *StudentHandler) Create(c *fiber.Ctx) error {
	var req studentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	input, err := req.toInput()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	student, err := h.studentRepo.Create(c.Context(), input)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create student"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"student": student})
}

func (h *StudentHandler) List(c *fiber.Ctx) error {
	students, err := h.studentRepo.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list students"})
	}
	return c.JSON(fiber.Map{"students": students})
}

func (h *StudentHandler) Get(c *fiber.Ctx) error {
	studentID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student id"})
	}

	student, err := h.studentRepo.GetByID(c.Context(), studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load student"})
	}
	return c.JSON(fiber.Map{"student": student})
}

func (h *StudentHandler) Update(c *fiber.Ctx) error {
	studentID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student id"})
	}

	var req studentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	input, err := req.toInput()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	student, err := h.studentRepo.Update(c.Context(), studentID, input)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update student"})
	}
	return c.JSON(fiber.Map{"student": student})
}

func (h *StudentHandler) Delete(c *fiber.Ctx) error {
	studentID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student id"})
	}

	if err := h.studentRepo.Delete(c.Context(), studentID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete student"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
