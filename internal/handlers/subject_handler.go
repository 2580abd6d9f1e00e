package handlers

import (
	"errors"
	"strings"

	"github.com/DevFelipeRT/EduMentorBack/internal/repository"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type SubjectHandler struct {
	subjectRepo *repository.SubjectRepository
}

func NewSubjectHandler(subjectRepo *repository.SubjectRepository) *SubjectHandler {
	return &SubjectHandler{subjectRepo: subjectRepo}
}

type subjectRequest struct {
	Name string `json:"name"`
}

func (h *SubjectHandler) Create(c *fiber.Ctx) error {
	var req subjectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name must not be empty"})
	}

	subject, err := h.subjectRepo.Create(c.Context(), name)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create subject"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"subject": subject})
}

func (h *SubjectHandler) List(c *fiber.Ctx) error {
	subjects, err := h.subjectRepo.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list subjects"})
	}
	return c.JSON(fiber.Map{"subjects": subjects})
}

func (h *SubjectHandler) Get(c *fiber.Ctx) error {
	subjectID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid subject id"})
	}

	subject, err := h.subjectRepo.GetByID(c.Context(), subjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Subject not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load subject"})
	}
	return c.JSON(fiber.Map{"subject": subject})
}

func (h *SubjectHandler) Update(c *fiber.Ctx) error {
	subjectID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid subject id"})
	}

	var req subjectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name must not be empty"})
	}

	subject, err := h.subjectRepo.Update(c.Context(), subjectID, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Subject not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update subject"})
	}
	return c.JSON(fiber.Map{"subject": subject})
}

func (h *SubjectHandler) Delete(c *fiber.Ctx) error {
	subjectID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid subject id"})
	}

	if err := h.subjectRepo.Delete(c.Context(), subjectID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete subject"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
