package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/farhoud/yoga-guru/internal/models"
	"github.com/farhoud/yoga-guru/internal/services"
)

type scheduleApplicationService interface {
	CreatePattern(ctx context.Context, actorID uuid.UUID, role string, input services.CreatePatternInput) (*models.RecurringPattern, error)
	ListPatterns(ctx context.Context, classID uuid.UUID) ([]models.RecurringPattern, error)
	MaterializeSessions(ctx context.Context, actorID uuid.UUID, role string, patternID uuid.UUID, from, to time.Time) ([]models.ClassSession, error)
	ListSessions(ctx context.Context, classID uuid.UUID, timeframe string) ([]models.ClassSession, error)
	GetSession(ctx context.Context, sessionID uuid.UUID) (*models.ClassSession, error)
	CancelSession(ctx context.Context, actorID uuid.UUID, role string, sessionID uuid.UUID) (*models.ClassSession, error)
}

type ScheduleHandler struct {
	service     scheduleApplicationService
	horizonDays int
}

func NewScheduleHandler(service *services.ScheduleService, horizonDays int) *ScheduleHandler {
	return &ScheduleHandler{service: service, horizonDays: horizonDays}
}

type createPatternRequest struct {
	DayOfWeek         string  `json:"day_of_week"`
	StartTime         string  `json:"start_time"`
	DurationMinutes   int     `json:"duration_minutes"`
	EffectiveFromDate string  `json:"effective_from_date"`
	EffectiveToDate   *string `json:"effective_to_date"`
}

type materializeRequest struct {
	FromDate string  `json:"from_date"`
	ToDate   *string `json:"to_date"`
}

const dateLayout = "2006-01-02"

func (h *ScheduleHandler) CreatePattern(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	classID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class id"})
	}

	var req createPatternRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	from, err := time.Parse(dateLayout, strings.TrimSpace(req.EffectiveFromDate))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": "effective_from_date must be YYYY-MM-DD"})
	}
	var to *time.Time
	if req.EffectiveToDate != nil {
		parsed, err := time.Parse(dateLayout, strings.TrimSpace(*req.EffectiveToDate))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).
				JSON(fiber.Map{"error": "effective_to_date must be YYYY-MM-DD"})
		}
		to = &parsed
	}

	pattern, err := h.service.CreatePattern(c.Context(), actorID, actorRole(c), services.CreatePatternInput{
		ClassID:           classID,
		DayOfWeek:         strings.TrimSpace(req.DayOfWeek),
		StartTime:         strings.TrimSpace(req.StartTime),
		DurationMinutes:   req.DurationMinutes,
		EffectiveFromDate: from,
		EffectiveToDate:   to,
	})
	if err != nil {
		return mapScheduleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"pattern": pattern})
}

func (h *ScheduleHandler) ListPatterns(c *fiber.Ctx) error {
	classID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class id"})
	}

	patterns, err := h.service.ListPatterns(c.Context(), classID)
	if err != nil {
		return mapScheduleError(c, err)
	}
	return c.JSON(fiber.Map{"patterns": patterns})
}

func (h *ScheduleHandler) MaterializeSessions(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	patternID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid pattern id"})
	}

	var req materializeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	from, err := time.Parse(dateLayout, strings.TrimSpace(req.FromDate))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "from_date must be YYYY-MM-DD"})
	}
	to := from.AddDate(0, 0, h.horizonDays)
	if req.ToDate != nil {
		parsed, err := time.Parse(dateLayout, strings.TrimSpace(*req.ToDate))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "to_date must be YYYY-MM-DD"})
		}
		to = parsed
	}

	sessions, err := h.service.MaterializeSessions(c.Context(), actorID, actorRole(c), patternID, from, to)
	if err != nil {
		return mapScheduleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"sessions": sessions,
		"created":  len(sessions),
	})
}

func (h *ScheduleHandler) ListSessions(c *fiber.Ctx) error {
	classID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class id"})
	}

	timeframe := strings.TrimSpace(c.Query("timeframe"))
	switch timeframe {
	case "", "all", "upcoming", "past":
	default:
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": "timeframe must be upcoming, past or all"})
	}

	sessions, err := h.service.ListSessions(c.Context(), classID, timeframe)
	if err != nil {
		return mapScheduleError(c, err)
	}
	return c.JSON(fiber.Map{"sessions": sessions})
}

func (h *ScheduleHandler) GetSession(c *fiber.Ctx) error {
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	session, err := h.service.GetSession(c.Context(), sessionID)
	if err != nil {
		return mapScheduleError(c, err)
	}
	return c.JSON(fiber.Map{"session": session})
}

func (h *ScheduleHandler) CancelSession(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	session, err := h.service.CancelSession(c.Context(), actorID, actorRole(c), sessionID)
	if err != nil {
		return mapScheduleError(c, err)
	}
	return c.JSON(fiber.Map{"session": session})
}

func mapScheduleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidRange):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date range"})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrClassNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Class not found"})
	case errors.Is(err, services.ErrPatternNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Pattern not found"})
	case errors.Is(err, services.ErrSessionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process schedule request"})
	}
}
