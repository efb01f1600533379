package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/farhoud/yoga-guru/internal/models"
	"github.com/farhoud/yoga-guru/internal/services"
)

type stubMembershipService struct {
	createResult *models.Membership
	createErr    error
	payResult    *models.Membership
	payErr       error
	refundResult *models.Membership
	refundErr    error
	listResult   []models.Membership
	listErr      error
	lastUserID   uuid.UUID
	lastInput    services.CreateMembershipInput
	lastID       uuid.UUID
	lastAmount   float64
	lastTxID     string
}

func (s *stubMembershipService) CreateMembership(_ context.Context, userID uuid.UUID, input services.CreateMembershipInput) (*models.Membership, error) {
	s.lastUserID = userID
	s.lastInput = input
	return s.createResult, s.createErr
}

func (s *stubMembershipService) MarkPaid(_ context.Context, userID, membershipID uuid.UUID, amountPaid float64, transactionID string) (*models.Membership, error) {
	s.lastUserID = userID
	s.lastID = membershipID
	s.lastAmount = amountPaid
	s.lastTxID = transactionID
	return s.payResult, s.payErr
}

func (s *stubMembershipService) Refund(_ context.Context, userID, membershipID uuid.UUID) (*models.Membership, error) {
	s.lastUserID = userID
	s.lastID = membershipID
	return s.refundResult, s.refundErr
}

func (s *stubMembershipService) ListMine(_ context.Context, userID uuid.UUID) ([]models.Membership, error) {
	s.lastUserID = userID
	return s.listResult, s.listErr
}

func TestCreateMembershipReturnsPendingRecord(t *testing.T) {
	userID := uuid.New()
	classID := uuid.New()
	service := &stubMembershipService{
		createResult: &models.Membership{
			ID:            uuid.New(),
			UserID:        userID,
			ClassID:       classID,
			PaymentStatus: "pending",
		},
	}
	handler := &MembershipHandler{service: service}

	app := authTestApp(userID, "student")
	app.Post("/api/v1/memberships", handler.CreateMembership)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/memberships", strings.NewReader(`{
		"class_id": "`+classID.String()+`",
		"start_date": "2026-04-01",
		"end_date": "2026-04-30"
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
	if service.lastInput.ClassID != classID {
		t.Fatalf("expected class id %s, got %s", classID, service.lastInput.ClassID)
	}
	wantStart := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	if !service.lastInput.StartDate.Equal(wantStart) {
		t.Fatalf("expected start date %s, got %s", wantStart, service.lastInput.StartDate)
	}

	var body struct {
		Membership models.Membership `json:"membership"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.Membership.PaymentStatus != "pending" {
		t.Fatalf("expected pending status, got %q", body.Membership.PaymentStatus)
	}
}

func TestCreateMembershipRejectsBadDates(t *testing.T) {
	service := &stubMembershipService{}
	handler := &MembershipHandler{service: service}

	app := authTestApp(uuid.New(), "student")
	app.Post("/api/v1/memberships", handler.CreateMembership)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/memberships", strings.NewReader(`{
		"class_id": "`+uuid.NewString()+`",
		"start_date": "April 1st",
		"end_date": "2026-04-30"
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

func TestCreateMembershipReturnsConflictForOverlap(t *testing.T) {
	service := &stubMembershipService{createErr: services.ErrOverlappingMembership}
	handler := &MembershipHandler{service: service}

	app := authTestApp(uuid.New(), "student")
	app.Post("/api/v1/memberships", handler.CreateMembership)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/memberships", strings.NewReader(`{
		"class_id": "`+uuid.NewString()+`",
		"start_date": "2026-04-01",
		"end_date": "2026-04-30"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestPayMembershipForwardsAmountAndTransaction(t *testing.T) {
	userID := uuid.New()
	membershipID := uuid.New()
	amount := 120.0
	txID := "txn_8812"
	service := &stubMembershipService{
		payResult: &models.Membership{
			ID:            membershipID,
			UserID:        userID,
			PaymentStatus: "paid",
			AmountPaid:    &amount,
			TransactionID: &txID,
		},
	}
	handler := &MembershipHandler{service: service}

	app := authTestApp(userID, "student")
	app.Post("/api/v1/memberships/:id/pay", handler.PayMembership)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/memberships/"+membershipID.String()+"/pay",
		strings.NewReader(`{"amount_paid": 120, "transaction_id": "txn_8812"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastAmount != 120 {
		t.Fatalf("expected amount 120, got %v", service.lastAmount)
	}
	if service.lastTxID != "txn_8812" {
		t.Fatalf("expected transaction id txn_8812, got %q", service.lastTxID)
	}
}

func TestPayMembershipRequiresTransactionID(t *testing.T) {
	service := &stubMembershipService{}
	handler := &MembershipHandler{service: service}

	app := authTestApp(uuid.New(), "student")
	app.Post("/api/v1/memberships/:id/pay", handler.PayMembership)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/memberships/"+uuid.NewString()+"/pay",
		strings.NewReader(`{"amount_paid": 120}`))
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

func TestRefundMembershipReturnsUnprocessableWhenNotPaid(t *testing.T) {
	service := &stubMembershipService{refundErr: services.ErrInvalidStateTransition}
	handler := &MembershipHandler{service: service}

	app := authTestApp(uuid.New(), "student")
	app.Post("/api/v1/memberships/:id/refund", handler.RefundMembership)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/memberships/"+uuid.NewString()+"/refund", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestListMembershipsReturnsOwnRecords(t *testing.T) {
	userID := uuid.New()
	service := &stubMembershipService{
		listResult: []models.Membership{
			{ID: uuid.New(), UserID: userID, PaymentStatus: "paid"},
			{ID: uuid.New(), UserID: userID, PaymentStatus: "pending"},
		},
	}
	handler := &MembershipHandler{service: service}

	app := authTestApp(userID, "student")
	app.Get("/api/v1/memberships", handler.ListMemberships)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/memberships", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastUserID != userID {
		t.Fatalf("expected user id %s, got %s", userID, service.lastUserID)
	}

	var body struct {
		Memberships []models.Membership `json:"memberships"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(body.Memberships) != 2 {
		t.Fatalf("expected 2 memberships, got %d", len(body.Memberships))
	}
}
