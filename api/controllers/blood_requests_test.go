package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hemolink/bloodbank-backend/api/middleware"
	"github.com/hemolink/bloodbank-backend/internal/matching"
	"github.com/hemolink/bloodbank-backend/internal/requests"
	"github.com/hemolink/bloodbank-backend/pkg/enums"
	pkgerrors "github.com/hemolink/bloodbank-backend/pkg/errors"
	"github.com/hemolink/bloodbank-backend/pkg/pagination"
	"github.com/google/uuid"
)

type stubRequestsService struct {
	donationView   *requests.DonationRequestView
	bloodView      *requests.BloodRequestView
	donationResult *requests.DonationDecisionResult
	bloodResult    *requests.BloodDecisionResult
	lastDecision   requests.DecisionInput
	err            error
}

func (s *stubRequestsService) SubmitDonation(ctx context.Context, input requests.SubmitDonationInput) (*requests.DonationRequestView, error) {
	return s.donationView, s.err
}

func (s *stubRequestsService) SubmitBlood(ctx context.Context, input requests.SubmitBloodInput) (*requests.BloodRequestView, error) {
	return s.bloodView, s.err
}

func (s *stubRequestsService) DecideDonation(ctx context.Context, input requests.DecisionInput) (*requests.DonationDecisionResult, error) {
	s.lastDecision = input
	return s.donationResult, s.err
}

func (s *stubRequestsService) DecideBlood(ctx context.Context, input requests.DecisionInput) (*requests.BloodDecisionResult, error) {
	s.lastDecision = input
	return s.bloodResult, s.err
}

func (s *stubRequestsService) ListDonations(ctx context.Context, params pagination.Params, filters requests.ListFilters) ([]requests.DonationRequestView, error) {
	if s.donationView == nil {
		return nil, s.err
	}
	return []requests.DonationRequestView{*s.donationView}, s.err
}

func (s *stubRequestsService) ListBlood(ctx context.Context, params pagination.Params, filters requests.ListFilters) ([]requests.BloodRequestView, error) {
	if s.bloodView == nil {
		return nil, s.err
	}
	return []requests.BloodRequestView{*s.bloodView}, s.err
}

type stubMatchingService struct {
	result *matching.MatchResult
	err    error
}

func (s stubMatchingService) MatchDonors(ctx context.Context, requestID uuid.UUID) (*matching.MatchResult, error) {
	return s.result, s.err
}

func decideRequest(t *testing.T, handler http.HandlerFunc, requestID uuid.UUID, adminID uuid.UUID, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := chi.NewRouter()
	router.Post("/requests/blood/{requestID}/decision", handler)

	req := httptest.NewRequest(http.MethodPost, "/requests/blood/"+requestID.String()+"/decision", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	ctx := middleware.WithUserID(req.Context(), adminID.String())
	ctx = middleware.WithRole(ctx, string(enums.UserRoleAdmin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req.WithContext(ctx))
	return resp
}

func TestBloodRequestDecideApprove(t *testing.T) {
	requestID := uuid.New()
	adminID := uuid.New()
	svc := &stubRequestsService{bloodResult: &requests.BloodDecisionResult{
		Request: requests.BloodRequestView{ID: requestID, Status: enums.RequestStatusApproved},
	}}

	resp := decideRequest(t, BloodRequestDecide(svc, nil), requestID, adminID, `{"action":"approve"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastDecision.Action != enums.RequestActionApprove {
		t.Fatalf("expected approve action, got %s", svc.lastDecision.Action)
	}
	if svc.lastDecision.AdminID != adminID {
		t.Fatalf("expected admin id from context")
	}
	if svc.lastDecision.RequestID != requestID {
		t.Fatalf("expected request id from path")
	}
}

func TestBloodRequestDecideInsufficientStock(t *testing.T) {
	svc := &stubRequestsService{err: pkgerrors.New(
		pkgerrors.CodeInsufficientStock,
		"Rejected: Insufficient blood stock. Available: 2, Requested: 5",
	).WithDetails(map[string]any{"available": 2, "requested": 5})}

	resp := decideRequest(t, BloodRequestDecide(svc, nil), uuid.New(), uuid.New(), `{"action":"approve"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Code    string         `json:"code"`
			Message string         `json:"message"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock code, got %s", envelope.Error.Code)
	}
	if envelope.Error.Details["available"] != float64(2) || envelope.Error.Details["requested"] != float64(5) {
		t.Fatalf("expected stock details in payload, got %v", envelope.Error.Details)
	}
}

func TestBloodRequestDecideZeroUnits(t *testing.T) {
	svc := &stubRequestsService{err: pkgerrors.New(pkgerrors.CodeZeroUnitRequest, "Rejected: Cannot approve 0 units.")}

	resp := decideRequest(t, BloodRequestDecide(svc, nil), uuid.New(), uuid.New(), `{"action":"approve"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeZeroUnitRequest) {
		t.Fatalf("expected zero unit code, got %s", envelope.Error.Code)
	}
}

func TestBloodRequestDecideInvalidAction(t *testing.T) {
	resp := decideRequest(t, BloodRequestDecide(&stubRequestsService{}, nil), uuid.New(), uuid.New(), `{"action":"maybe"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestBloodRequestDecideAlreadyDecided(t *testing.T) {
	svc := &stubRequestsService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "request already decided")}
	resp := decideRequest(t, BloodRequestDecide(svc, nil), uuid.New(), uuid.New(), `{"action":"reject"}`)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestBloodRequestSubmitUsesSessionIdentity(t *testing.T) {
	requesterID := uuid.New()
	svc := &stubRequestsService{bloodView: &requests.BloodRequestView{ID: uuid.New()}}
	handler := BloodRequestSubmit(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/requests/blood", bytes.NewReader([]byte(`{"bloodGroup":"A+","unit":2}`)))
	req.Header.Set("Content-Type", "application/json")
	ctx := middleware.WithUserID(req.Context(), requesterID.String())
	ctx = middleware.WithRole(ctx, string(enums.UserRolePatient))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req.WithContext(ctx))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
}

func TestBloodRequestSubmitRejectsAdminRole(t *testing.T) {
	handler := BloodRequestSubmit(&stubRequestsService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/requests/blood", bytes.NewReader([]byte(`{"bloodGroup":"A+","unit":2}`)))
	req.Header.Set("Content-Type", "application/json")
	ctx := middleware.WithUserID(req.Context(), uuid.NewString())
	ctx = middleware.WithRole(ctx, string(enums.UserRoleAdmin))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req.WithContext(ctx))

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestBloodRequestMatchDonors(t *testing.T) {
	requestID := uuid.New()
	svc := stubMatchingService{result: &matching.MatchResult{RequestID: requestID, Matched: 1}}

	router := chi.NewRouter()
	router.Post("/requests/blood/{requestID}/match-donors", BloodRequestMatchDonors(svc, nil))

	req := httptest.NewRequest(http.MethodPost, "/requests/blood/"+requestID.String()+"/match-donors", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data matching.MatchResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Matched != 1 {
		t.Fatalf("expected one matched donor, got %d", envelope.Data.Matched)
	}
}

func TestBloodRequestMatchDonorsApprovedConflict(t *testing.T) {
	svc := stubMatchingService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "donors cannot be matched for an approved request")}

	router := chi.NewRouter()
	router.Post("/requests/blood/{requestID}/match-donors", BloodRequestMatchDonors(svc, nil))

	req := httptest.NewRequest(http.MethodPost, "/requests/blood/"+uuid.NewString()+"/match-donors", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}
