package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hemolink/bloodbank-backend/internal/inventory"
	"github.com/hemolink/bloodbank-backend/pkg/enums"
)

type stubInventoryService struct {
	levels []inventory.StockLevel
	level  *inventory.StockLevel
	lastIn inventory.SetStockInput
	err    error
}

func (s *stubInventoryService) ListStock(ctx context.Context) ([]inventory.StockLevel, error) {
	return s.levels, s.err
}

func (s *stubInventoryService) GetStock(ctx context.Context, group enums.BloodGroup) (*inventory.StockLevel, error) {
	return s.level, s.err
}

func (s *stubInventoryService) SetStock(ctx context.Context, input inventory.SetStockInput) (*inventory.StockLevel, error) {
	s.lastIn = input
	return s.level, s.err
}

func TestStockListReturnsLevels(t *testing.T) {
	svc := &stubInventoryService{levels: []inventory.StockLevel{
		{BloodGroup: enums.BloodGroupAPositive, Unit: 4, UpdatedAt: time.Now()},
		{BloodGroup: enums.BloodGroupONegative, Unit: 0, UpdatedAt: time.Now()},
	}}

	req := httptest.NewRequest(http.MethodGet, "/stock", nil)
	resp := httptest.NewRecorder()
	StockList(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data []inventory.StockLevel `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 2 {
		t.Fatalf("expected 2 levels got %d", len(envelope.Data))
	}
}

func TestStockGetAcceptsAliasPath(t *testing.T) {
	svc := &stubInventoryService{level: &inventory.StockLevel{BloodGroup: enums.BloodGroupOPositive, Unit: 7}}

	router := chi.NewRouter()
	router.Get("/stock/{bloodGroup}", StockGet(svc, nil))

	req := httptest.NewRequest(http.MethodGet, "/stock/oplus", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestStockGetRejectsUnknownGroup(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/stock/{bloodGroup}", StockGet(&stubInventoryService{}, nil))

	req := httptest.NewRequest(http.MethodGet, "/stock/xplus", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestStockSetPassesGroupAndUnit(t *testing.T) {
	svc := &stubInventoryService{level: &inventory.StockLevel{BloodGroup: enums.BloodGroupABNegative, Unit: 12}}

	router := chi.NewRouter()
	router.Put("/stock/{bloodGroup}", StockSet(svc, nil))

	req := httptest.NewRequest(http.MethodPut, "/stock/abminus", bytes.NewReader([]byte(`{"unit":12}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastIn.BloodGroup != enums.BloodGroupABNegative {
		t.Fatalf("expected AB- got %s", svc.lastIn.BloodGroup)
	}
	if svc.lastIn.Unit != 12 {
		t.Fatalf("expected unit 12 got %d", svc.lastIn.Unit)
	}
}
