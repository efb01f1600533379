package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/farhoud/yoga-guru/internal/models"
	"github.com/farhoud/yoga-guru/internal/services"
)

type stubEnrollmentService struct {
	enrollResult   *models.SessionEnrollment
	enrollErr      error
	cancelResult   *models.SessionEnrollment
	cancelErr      error
	noShowResult   *models.SessionEnrollment
	noShowErr      error
	listMineResult []models.SessionEnrollment
	listMineErr    error
	rosterResult   []models.SessionEnrollment
	rosterErr      error
	lastUserID     uuid.UUID
	lastRole       string
	lastSessionID  uuid.UUID
	lastEnrollID   uuid.UUID
}

func (s *stubEnrollmentService) Enroll(_ context.Context, userID, sessionID uuid.UUID) (*models.SessionEnrollment, error) {
	s.lastUserID = userID
	s.lastSessionID = sessionID
	return s.enrollResult, s.enrollErr
}

func (s *stubEnrollmentService) Cancel(_ context.Context, userID, enrollmentID uuid.UUID) (*models.SessionEnrollment, error) {
	s.lastUserID = userID
	s.lastEnrollID = enrollmentID
	return s.cancelResult, s.cancelErr
}

func (s *stubEnrollmentService) MarkNoShow(_ context.Context, actorID uuid.UUID, role string, enrollmentID uuid.UUID) (*models.SessionEnrollment, error) {
	s.lastUserID = actorID
	s.lastRole = role
	s.lastEnrollID = enrollmentID
	return s.noShowResult, s.noShowErr
}

func (s *stubEnrollmentService) ListMine(_ context.Context, userID uuid.UUID) ([]models.SessionEnrollment, error) {
	s.lastUserID = userID
	return s.listMineResult, s.listMineErr
}

func (s *stubEnrollmentService) ListForSession(_ context.Context, actorID uuid.UUID, role string, sessionID uuid.UUID) ([]models.SessionEnrollment, error) {
	s.lastUserID = actorID
	s.lastRole = role
	s.lastSessionID = sessionID
	return s.rosterResult, s.rosterErr
}

func authTestApp(userID uuid.UUID, role string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", userID.String())
		c.Locals("role", role)
		return c.Next()
	})
	return app
}

func TestEnrollReturnsCreatedEnrollment(t *testing.T) {
	userID := uuid.New()
	sessionID := uuid.New()
	service := &stubEnrollmentService{
		enrollResult: &models.SessionEnrollment{
			ID:        uuid.New(),
			UserID:    userID,
			SessionID: sessionID,
			Status:    "enrolled",
		},
	}
	handler := &EnrollmentHandler{service: service}

	app := authTestApp(userID, "student")
	app.Post("/api/v1/sessions/:id/enroll", handler.Enroll)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+sessionID.String()+"/enroll", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastUserID != userID {
		t.Fatalf("expected user id %s, got %s", userID, service.lastUserID)
	}
	if service.lastSessionID != sessionID {
		t.Fatalf("expected session id %s, got %s", sessionID, service.lastSessionID)
	}

	var body struct {
		Enrollment models.SessionEnrollment `json:"enrollment"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.Enrollment.Status != "enrolled" {
		t.Fatalf("expected enrolled status, got %q", body.Enrollment.Status)
	}
}

func TestEnrollReturnsUnprocessableWhenNotEligible(t *testing.T) {
	service := &stubEnrollmentService{enrollErr: services.ErrNotEligible}
	handler := &EnrollmentHandler{service: service}

	app := authTestApp(uuid.New(), "student")
	app.Post("/api/v1/sessions/:id/enroll", handler.Enroll)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+uuid.NewString()+"/enroll", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestEnrollReturnsConflictWhenAlreadyEnrolled(t *testing.T) {
	service := &stubEnrollmentService{enrollErr: services.ErrAlreadyEnrolled}
	handler := &EnrollmentHandler{service: service}

	app := authTestApp(uuid.New(), "student")
	app.Post("/api/v1/sessions/:id/enroll", handler.Enroll)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+uuid.NewString()+"/enroll", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestEnrollRejectsBadSessionID(t *testing.T) {
	service := &stubEnrollmentService{}
	handler := &EnrollmentHandler{service: service}

	app := authTestApp(uuid.New(), "student")
	app.Post("/api/v1/sessions/:id/enroll", handler.Enroll)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/not-a-uuid/enroll", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCancelEnrollmentReturnsUpdatedRecord(t *testing.T) {
	userID := uuid.New()
	enrollmentID := uuid.New()
	service := &stubEnrollmentService{
		cancelResult: &models.SessionEnrollment{
			ID:     enrollmentID,
			UserID: userID,
			Status: "cancelled",
		},
	}
	handler := &EnrollmentHandler{service: service}

	app := authTestApp(userID, "student")
	app.Post("/api/v1/enrollments/:id/cancel", handler.CancelEnrollment)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/enrollments/"+enrollmentID.String()+"/cancel", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastEnrollID != enrollmentID {
		t.Fatalf("expected enrollment id %s, got %s", enrollmentID, service.lastEnrollID)
	}
}

func TestCancelEnrollmentReturnsUnprocessableForTerminalState(t *testing.T) {
	service := &stubEnrollmentService{cancelErr: services.ErrInvalidStateTransition}
	handler := &EnrollmentHandler{service: service}

	app := authTestApp(uuid.New(), "student")
	app.Post("/api/v1/enrollments/:id/cancel", handler.CancelEnrollment)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/enrollments/"+uuid.NewString()+"/cancel", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestMarkNoShowForwardsRole(t *testing.T) {
	instructorID := uuid.New()
	enrollmentID := uuid.New()
	service := &stubEnrollmentService{
		noShowResult: &models.SessionEnrollment{
			ID:     enrollmentID,
			Status: "no_show",
		},
	}
	handler := &EnrollmentHandler{service: service}

	app := authTestApp(instructorID, "instructor")
	app.Post("/api/v1/enrollments/:id/no-show", handler.MarkNoShow)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/enrollments/"+enrollmentID.String()+"/no-show", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastRole != "instructor" {
		t.Fatalf("expected instructor role, got %q", service.lastRole)
	}
}

func TestMarkNoShowBeforeStartIsUnprocessable(t *testing.T) {
	service := &stubEnrollmentService{noShowErr: services.ErrSessionNotStarted}
	handler := &EnrollmentHandler{service: service}

	app := authTestApp(uuid.New(), "instructor")
	app.Post("/api/v1/enrollments/:id/no-show", handler.MarkNoShow)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/enrollments/"+uuid.NewString()+"/no-show", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestListMineReturnsEnrollments(t *testing.T) {
	userID := uuid.New()
	service := &stubEnrollmentService{
		listMineResult: []models.SessionEnrollment{
			{ID: uuid.New(), UserID: userID, Status: "enrolled", EnrollmentDate: time.Now()},
			{ID: uuid.New(), UserID: userID, Status: "waitlisted", EnrollmentDate: time.Now()},
		},
	}
	handler := &EnrollmentHandler{service: service}

	app := authTestApp(userID, "student")
	app.Get("/api/v1/enrollments", handler.ListMine)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/enrollments", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Enrollments []models.SessionEnrollment `json:"enrollments"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(body.Enrollments) != 2 {
		t.Fatalf("expected 2 enrollments, got %d", len(body.Enrollments))
	}
}

func TestListForSessionReturnsForbiddenForStudents(t *testing.T) {
	service := &stubEnrollmentService{rosterErr: services.ErrForbidden}
	handler := &EnrollmentHandler{service: service}

	app := authTestApp(uuid.New(), "student")
	app.Get("/api/v1/sessions/:id/enrollments", handler.ListForSession)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+uuid.NewString()+"/enrollments", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestMapEnrollmentErrorDefaultsToInternalServerError(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return mapEnrollmentError(c, errors.New("boom"))
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
