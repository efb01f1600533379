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

type membershipApplicationService interface {
	CreateMembership(ctx context.Context, userID uuid.UUID, input services.CreateMembershipInput) (*models.Membership, error)
	MarkPaid(ctx context.Context, userID uuid.UUID, membershipID uuid.UUID, amountPaid float64, transactionID string) (*models.Membership, error)
	Refund(ctx context.Context, userID uuid.UUID, membershipID uuid.UUID) (*models.Membership, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]models.Membership, error)
}

type MembershipHandler struct {
	service membershipApplicationService
}

func NewMembershipHandler(service *services.MembershipService) *MembershipHandler {
	return &MembershipHandler{service: service}
}

type createMembershipRequest struct {
	ClassID   string `json:"class_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type payMembershipRequest struct {
	AmountPaid    float64 `json:"amount_paid"`
	TransactionID string  `json:"transaction_id"`
}

func (h *MembershipHandler) CreateMembership(c *fiber.Ctx) error {
	userID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createMembershipRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	classID, err := uuid.Parse(strings.TrimSpace(req.ClassID))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class id"})
	}
	startDate, err := time.Parse(dateLayout, strings.TrimSpace(req.StartDate))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "start_date must be YYYY-MM-DD"})
	}
	endDate, err := time.Parse(dateLayout, strings.TrimSpace(req.EndDate))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_date must be YYYY-MM-DD"})
	}

	membership, err := h.service.CreateMembership(c.Context(), userID, services.CreateMembershipInput{
		ClassID:   classID,
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		return mapMembershipError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"membership": membership})
}

func (h *MembershipHandler) ListMemberships(c *fiber.Ctx) error {
	userID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	memberships, err := h.service.ListMine(c.Context(), userID)
	if err != nil {
		return mapMembershipError(c, err)
	}
	return c.JSON(fiber.Map{"memberships": memberships})
}

func (h *MembershipHandler) PayMembership(c *fiber.Ctx) error {
	userID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	membershipID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid membership id"})
	}

	var req payMembershipRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.TransactionID) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "transaction_id is required"})
	}

	membership, err := h.service.MarkPaid(
		c.Context(),
		userID,
		membershipID,
		req.AmountPaid,
		strings.TrimSpace(req.TransactionID),
	)
	if err != nil {
		return mapMembershipError(c, err)
	}
	return c.JSON(fiber.Map{"membership": membership})
}

func (h *MembershipHandler) RefundMembership(c *fiber.Ctx) error {
	userID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	membershipID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid membership id"})
	}

	membership, err := h.service.Refund(c.Context(), userID, membershipID)
	if err != nil {
		return mapMembershipError(c, err)
	}
	return c.JSON(fiber.Map{"membership": membership})
}

func mapMembershipError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidRange):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date range"})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrClassNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Class not found"})
	case errors.Is(err, services.ErrMembershipNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Membership not found"})
	case errors.Is(err, services.ErrOverlappingMembership):
		return c.Status(fiber.StatusConflict).
			JSON(fiber.Map{"error": "Membership overlaps an existing one for this class"})
	case errors.Is(err, services.ErrInvalidStateTransition):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process membership request"})
	}
}
