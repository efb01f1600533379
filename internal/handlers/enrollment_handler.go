package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/farhoud/yoga-guru/internal/models"
	"github.com/farhoud/yoga-guru/internal/services"
)

type enrollmentApplicationService interface {
	Enroll(ctx context.Context, userID uuid.UUID, sessionID uuid.UUID) (*models.SessionEnrollment, error)
	Cancel(ctx context.Context, userID uuid.UUID, enrollmentID uuid.UUID) (*models.SessionEnrollment, error)
	MarkNoShow(ctx context.Context, actorID uuid.UUID, role string, enrollmentID uuid.UUID) (*models.SessionEnrollment, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]models.SessionEnrollment, error)
	ListForSession(ctx context.Context, actorID uuid.UUID, role string, sessionID uuid.UUID) ([]models.SessionEnrollment, error)
}

type EnrollmentHandler struct {
	service enrollmentApplicationService
}

func NewEnrollmentHandler(service *services.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: service}
}

func (h *EnrollmentHandler) Enroll(c *fiber.Ctx) error {
	userID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	enrollment, err := h.service.Enroll(c.Context(), userID, sessionID)
	if err != nil {
		return mapEnrollmentError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"enrollment": enrollment})
}

func (h *EnrollmentHandler) ListMine(c *fiber.Ctx) error {
	userID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	enrollments, err := h.service.ListMine(c.Context(), userID)
	if err != nil {
		return mapEnrollmentError(c, err)
	}
	return c.JSON(fiber.Map{"enrollments": enrollments})
}

func (h *EnrollmentHandler) ListForSession(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	enrollments, err := h.service.ListForSession(c.Context(), actorID, actorRole(c), sessionID)
	if err != nil {
		return mapEnrollmentError(c, err)
	}
	return c.JSON(fiber.Map{"enrollments": enrollments})
}

func (h *EnrollmentHandler) CancelEnrollment(c *fiber.Ctx) error {
	userID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	enrollmentID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid enrollment id"})
	}

	enrollment, err := h.service.Cancel(c.Context(), userID, enrollmentID)
	if err != nil {
		return mapEnrollmentError(c, err)
	}
	return c.JSON(fiber.Map{"enrollment": enrollment})
}

func (h *EnrollmentHandler) MarkNoShow(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	enrollmentID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid enrollment id"})
	}

	enrollment, err := h.service.MarkNoShow(c.Context(), actorID, actorRole(c), enrollmentID)
	if err != nil {
		return mapEnrollmentError(c, err)
	}
	return c.JSON(fiber.Map{"enrollment": enrollment})
}

func mapEnrollmentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrSessionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
	case errors.Is(err, services.ErrEnrollmentNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Enrollment not found"})
	case errors.Is(err, services.ErrAlreadyEnrolled):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Already enrolled in this session"})
	case errors.Is(err, services.ErrNotEligible):
		return c.Status(fiber.StatusUnprocessableEntity).
			JSON(fiber.Map{"error": "No paid membership covers this session"})
	case errors.Is(err, services.ErrSessionCancelled):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "Session is cancelled"})
	case errors.Is(err, services.ErrSessionNotStarted):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "Session has not started yet"})
	case errors.Is(err, services.ErrInvalidStateTransition):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process enrollment request"})
	}
}
