package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DevFelipeRT/EduMentorBack/internal/models"
	"github.com/DevFelipeRT/EduMentorBack/internal/services"
	"github.com/gofiber/fiber/v2"
)

type stubSessionService struct {
	createResult    *models.MentorshipSession
	createErr       error
	updateResult    *models.MentorshipSession
	updateErr       error
	cancelResult    *models.MentorshipSession
	cancelErr       error
	destroyErr      error
	getResult       *models.SessionDetail
	getErr          error
	listResult      []models.MentorshipSession
	listErr         error
	lastMentorship  int64
	lastSessionID   int64
	lastCreateInput services.CreateSessionInput
	lastUpdateInput services.UpdateSessionInput
}

func (s *stubSessionService) CreateSession(_ context.Context, mentorshipID int64, input services.CreateSessionInput) (*models.MentorshipSession, error) {
	s.lastMentorship = mentorshipID
	s.lastCreateInput = input
	return s.createResult, s.createErr
}

func (s *stubSessionService) UpdateSession(_ context.Context, sessionID int64, input services.UpdateSessionInput) (*models.MentorshipSession, error) {
	s.lastSessionID = sessionID
	s.lastUpdateInput = input
	return s.updateResult, s.updateErr
}

func (s *stubSessionService) CancelSession(_ context.Context, sessionID int64) (*models.MentorshipSession, error) {
	s.lastSessionID = sessionID
	return s.cancelResult, s.cancelErr
}

func (s *stubSessionService) DestroySession(_ context.Context, sessionID int64) error {
	s.lastSessionID = sessionID
	return s.destroyErr
}

func (s *stubSessionService) GetSession(_ context.Context, sessionID int64) (*models.SessionDetail, error) {
	s.lastSessionID = sessionID
	return s.getResult, s.getErr
}

func (s *stubSessionService) ListSessions(_ context.Context, mentorshipID int64) ([]models.MentorshipSession, error) {
	s.lastMentorship = mentorshipID
	return s.listResult, s.listErr
}

func TestCreateSessionReturnsCreatedSession(t *testing.T) {
	service := &stubSessionService{
		createResult: &models.MentorshipSession{
			ID:              15,
			MentorshipID:    4,
			SessionDate:     time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC),
			StartTime:       "14:00",
			DurationMinutes: 60,
			Status:          models.SessionScheduled,
		},
	}
	handler := &SessionHandler{service: service}

	app := fiber.New()
	app.Post("/api/v1/mentorships/:id/sessions", handler.CreateSession)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/mentorships/4/sessions", strings.NewReader(`{
		"session_date": "2026-04-10",
		"start_time": "14:00",
		"duration_minutes": 60
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastMentorship != 4 {
		t.Fatalf("expected mentorship 4, got %d", service.lastMentorship)
	}
	if service.lastCreateInput.DurationMinutes != 60 {
		t.Fatalf("expected 60 minutes, got %d", service.lastCreateInput.DurationMinutes)
	}
	if !service.lastCreateInput.SessionDate.Equal(time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected session date: %v", service.lastCreateInput.SessionDate)
	}
}

func TestCreateSessionRejectsMalformedDate(t *testing.T) {
	service := &stubSessionService{}
	handler := &SessionHandler{service: service}

	app := fiber.New()
	app.Post("/api/v1/mentorships/:id/sessions", handler.CreateSession)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/mentorships/4/sessions", strings.NewReader(`{
		"session_date": "10/04/2026",
		"start_time": "14:00",
		"duration_minutes": 60
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestUpdateSessionReportsValidationField(t *testing.T) {
	service := &stubSessionService{
		updateErr: &services.ValidationError{Field: "duration_minutes", Message: "must be positive"},
	}
	handler := &SessionHandler{service: service}

	app := fiber.New()
	app.Put("/api/v1/sessions/:id", handler.UpdateSession)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/sessions/15", strings.NewReader(`{"duration_minutes": -30}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body["field"] != "duration_minutes" {
		t.Fatalf("expected field name in body, got %+v", body)
	}
}

func TestCancelSessionReturnsCancelledSession(t *testing.T) {
	service := &stubSessionService{
		cancelResult: &models.MentorshipSession{ID: 15, Status: models.SessionCancelled},
	}
	handler := &SessionHandler{service: service}

	app := fiber.New()
	app.Post("/api/v1/sessions/:id/cancel", handler.CancelSession)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/15/cancel", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastSessionID != 15 {
		t.Fatalf("expected session 15, got %d", service.lastSessionID)
	}

	var body struct {
		Session models.MentorshipSession `json:"session"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.Session.Status != models.SessionCancelled {
		t.Fatalf("expected cancelled status, got %q", body.Session.Status)
	}
}

func TestGetSessionReturnsNotFound(t *testing.T) {
	service := &stubSessionService{getErr: services.ErrSessionNotFound}
	handler := &SessionHandler{service: service}

	app := fiber.New()
	app.Get("/api/v1/sessions/:id", handler.GetSession)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/999", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestMapSessionErrorDefaultsToInternalServerError(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return mapSessionError(c, errors.New("boom"))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
}
