package handlers

import (
	"errors"
	"strings"

	"github.com/DevFelipeRT/EduMentorBack/internal/repository"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type TeacherHandler struct {
	teacherRepo *repository.TeacherRepository
}

func NewTeacherHandler(teacherRepo *repository.TeacherRepository) *TeacherHandler {
	return &TeacherHandler{teacherRepo: teacherRepo}
}

type teacherRequest struct {
	FullName string  `json:"full_name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
}

func (r teacherRequest) toInput() (repository.CreateTeacherInput, error) {
	fullName := strings.TrimSpace(r.FullName)
	if fullName == "" {
		return repository.CreateTeacherInput{}, errors.New("full_name must not be empty")
	}
	return repository.CreateTeacherInput{
		FullName: fullName,
		Email:    r.Email,
		Phone:    r.Phone,
	}, nil
}

func (h *TeacherHandler) Create(c *fiber.Ctx) error {
	var req teacherRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	input, err := req.toInput()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	teacher, err := h.teacherRepo.Create(c.Context(), input)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create teacher"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"teacher": teacher})
}

func (h *TeacherHandler) List(c *fiber.Ctx) error {
	teachers, err := h.teacherRepo.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list teachers"})
	}
	return c.JSON(fiber.Map{"teachers": teachers})
}

func (h *TeacherHandler) Get(c *fiber.Ctx) error {
	teacherID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid teacher id"})
	}

	teacher, err := h.teacherRepo.GetByID(c.Context(), teacherID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Teacher not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load teacher"})
	}
	return c.JSON(fiber.Map{"teacher": teacher})
}

func (h *TeacherHandler) Update(c *fiber.Ctx) error {
	teacherID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid teacher id"})
	}

	var req teacherRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	input, err := req.toInput()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	teacher, err := h.teacherRepo.Update(c.Context(), teacherID, input)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Teacher not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update teacher"})
	}
	return c.JSON(fiber.Map{"teacher": teacher})
}

func (h *TeacherHandler) Delete(c *fiber.Ctx) error {
	teacherID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid teacher id"})
	}

	if err := h.teacherRepo.Delete(c.Context(), teacherID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete teacher"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
