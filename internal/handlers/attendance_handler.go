package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/farhoud/yoga-guru/internal/models"
	"github.com/farhoud/yoga-guru/internal/services"
)

type attendanceApplicationService interface {
	CheckIn(ctx context.Context, actorID uuid.UUID, role string, enrollmentID uuid.UUID) (*models.Attendance, error)
	UpdateAttendance(ctx context.Context, actorID uuid.UUID, role string, enrollmentID uuid.UUID, attended bool) (*models.Attendance, error)
	GetForEnrollment(ctx context.Context, actorID uuid.UUID, role string, enrollmentID uuid.UUID) (*models.Attendance, error)
}

type AttendanceHandler struct {
	service attendanceApplicationService
}

func NewAttendanceHandler(service *services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

type updateAttendanceRequest struct {
	Attended *bool `json:"attended"`
}

func (h *AttendanceHandler) CheckIn(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	enrollmentID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid enrollment id"})
	}

	attendance, err := h.service.CheckIn(c.Context(), actorID, actorRole(c), enrollmentID)
	if err != nil {
		return mapAttendanceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"attendance": attendance})
}

func (h *AttendanceHandler) UpdateAttendance(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	enrollmentID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid enrollment id"})
	}

	var req updateAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Attended == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "attended is required"})
	}

	attendance, err := h.service.UpdateAttendance(c.Context(), actorID, actorRole(c), enrollmentID, *req.Attended)
	if err != nil {
		return mapAttendanceError(c, err)
	}
	return c.JSON(fiber.Map{"attendance": attendance})
}

func (h *AttendanceHandler) GetAttendance(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	enrollmentID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid enrollment id"})
	}

	attendance, err := h.service.GetForEnrollment(c.Context(), actorID, actorRole(c), enrollmentID)
	if err != nil {
		return mapAttendanceError(c, err)
	}
	return c.JSON(fiber.Map{"attendance": attendance})
}

func mapAttendanceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrEnrollmentNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Enrollment not found"})
	case errors.Is(err, services.ErrSessionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
	case errors.Is(err, services.ErrAttendanceNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Attendance not found"})
	case errors.Is(err, services.ErrDuplicateAttendance):
		return c.Status(fiber.StatusConflict).
			JSON(fiber.Map{"error": "Attendance already recorded for this enrollment"})
	case errors.Is(err, services.ErrInvalidStateTransition):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process attendance request"})
	}
}
