package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/farhoud/yoga-guru/internal/models"
	"github.com/farhoud/yoga-guru/internal/repository"
)

type ClassHandler struct {
	classRepo   *repository.ClassRepository
	patternRepo *repository.PatternRepository
	sessionRepo *repository.SessionRepository
}

func NewClassHandler(
	classRepo *repository.ClassRepository,
	patternRepo *repository.PatternRepository,
	sessionRepo *repository.SessionRepository,
) *ClassHandler {
	return &ClassHandler{
		classRepo:   classRepo,
		patternRepo: patternRepo,
		sessionRepo: sessionRepo,
	}
}

type createClassRequest struct {
	Name            string   `json:"name"`
	Description     *string  `json:"description"`
	PricePerSession *float64 `json:"price_per_session"`
}

type updateClassRequest struct {
	Name            *string  `json:"name"`
	Description     *string  `json:"description"`
	PricePerSession *float64 `json:"price_per_session"`
}

func (h *ClassHandler) ListClasses(c *fiber.Ctx) error {
	page, limit := parsePagination(c)

	classes, err := h.classRepo.List(c.Context(), limit, (page-1)*limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list classes"})
	}
	total, err := h.classRepo.Count(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list classes"})
	}

	return c.JSON(fiber.Map{
		"classes":    classes,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *ClassHandler) GetClass(c *fiber.Ctx) error {
	classID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class id"})
	}

	class, err := h.classRepo.GetByID(c.Context(), classID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Class not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch class"})
	}

	patterns, err := h.patternRepo.ListByClassID(c.Context(), classID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch class"})
	}
	sessions, err := h.sessionRepo.List(c.Context(), repository.SessionListFilter{
		ClassID:   classID,
		Timeframe: "upcoming",
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch class"})
	}

	return c.JSON(fiber.Map{"class": models.ClassDetail{
		Class:            *class,
		Patterns:         patterns,
		UpcomingSessions: sessions,
	}})
}

func (h *ClassHandler) CreateClass(c *fiber.Ctx) error {
	if actorRole(c) != "instructor" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createClassRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}
	if req.PricePerSession == nil || *req.PricePerSession < 0 {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": "price_per_session must be zero or greater"})
	}

	class, err := h.classRepo.Create(c.Context(), repository.CreateClassInput{
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		PricePerSession: *req.PricePerSession,
		InstructorID:    actorID,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create class"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"class": class})
}

func (h *ClassHandler) UpdateClass(c *fiber.Ctx) error {
	if actorRole(c) != "instructor" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	classID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class id"})
	}

	class, err := h.classRepo.GetByID(c.Context(), classID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Class not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch class"})
	}
	if class.InstructorID == nil || *class.InstructorID != actorID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	var req updateClassRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name must not be empty"})
	}
	if req.PricePerSession != nil && *req.PricePerSession < 0 {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": "price_per_session must be zero or greater"})
	}

	updated, err := h.classRepo.Update(c.Context(), classID, repository.UpdateClassInput{
		Name:            req.Name,
		Description:     req.Description,
		PricePerSession: req.PricePerSession,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update class"})
	}

	return c.JSON(fiber.Map{"class": updated})
}
