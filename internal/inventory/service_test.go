package inventory

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/hemolink/bloodbank-backend/pkg/db/models"
	"github.com/hemolink/bloodbank-backend/pkg/enums"
	pkgerrors "github.com/hemolink/bloodbank-backend/pkg/errors"
	"github.com/hemolink/bloodbank-backend/pkg/logger"
	"gorm.io/gorm"
)

type stubStockRepo struct {
	rows    map[enums.BloodGroup]*models.BloodStock
	setErr  error
	findErr error
}

func newStubStockRepo() *stubStockRepo {
	return &stubStockRepo{rows: map[enums.BloodGroup]*models.BloodStock{}}
}

func (s *stubStockRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubStockRepo) ListStock(ctx context.Context) ([]models.BloodStock, error) {
	out := make([]models.BloodStock, 0, len(s.rows))
	for _, row := range s.rows {
		out = append(out, *row)
	}
	return out, nil
}

func (s *stubStockRepo) FindByGroup(ctx context.Context, group enums.BloodGroup) (*models.BloodStock, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	row, ok := s.rows[group]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (s *stubStockRepo) SetStock(ctx context.Context, group enums.BloodGroup, unit int) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.rows[group] = &models.BloodStock{BloodGroup: group, Unit: unit, UpdatedAt: time.Now()}
	return nil
}

func (s *stubStockRepo) TotalUnits(ctx context.Context) (int, error) {
	total := 0
	for _, row := range s.rows {
		total += row.Unit
	}
	return total, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestServiceSetStockValidatesInput(t *testing.T) {
	svc, err := NewService(newStubStockRepo(), testLogger(), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.SetStock(context.Background(), SetStockInput{BloodGroup: "Z+", Unit: 1})
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for bad group, got %v", err)
	}

	_, err = svc.SetStock(context.Background(), SetStockInput{BloodGroup: enums.BloodGroupAPositive, Unit: -1})
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for negative unit, got %v", err)
	}
}

func TestServiceSetStockOverrides(t *testing.T) {
	repo := newStubStockRepo()
	svc, err := NewService(repo, testLogger(), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	level, err := svc.SetStock(context.Background(), SetStockInput{
		BloodGroup: enums.BloodGroupONegative,
		Unit:       8,
	})
	if err != nil {
		t.Fatalf("set stock: %v", err)
	}
	if level.Unit != 8 {
		t.Fatalf("expected 8 units, got %d", level.Unit)
	}
	if repo.rows[enums.BloodGroupONegative].Unit != 8 {
		t.Fatalf("repo not updated")
	}
}

func TestServiceListStockCoversEveryGroup(t *testing.T) {
	repo := newStubStockRepo()
	repo.rows[enums.BloodGroupAPositive] = &models.BloodStock{BloodGroup: enums.BloodGroupAPositive, Unit: 4, UpdatedAt: time.Now()}
	svc, err := NewService(repo, testLogger(), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	levels, err := svc.ListStock(context.Background())
	if err != nil {
		t.Fatalf("list stock: %v", err)
	}

	groups := enums.BloodGroups()
	if len(levels) != len(groups) {
		t.Fatalf("expected %d groups, got %d", len(groups), len(levels))
	}
	for i, group := range groups {
		if levels[i].BloodGroup != group {
			t.Fatalf("expected %s at position %d, got %s", group, i, levels[i].BloodGroup)
		}
		want := 0
		if group == enums.BloodGroupAPositive {
			want = 4
		}
		if levels[i].Unit != want {
			t.Fatalf("expected %d units for %s, got %d", want, group, levels[i].Unit)
		}
	}
}

func TestServiceGetStockMissingRowMeansZero(t *testing.T) {
	svc, err := NewService(newStubStockRepo(), testLogger(), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	level, err := svc.GetStock(context.Background(), enums.BloodGroupABPositive)
	if err != nil {
		t.Fatalf("get stock: %v", err)
	}
	if level.Unit != 0 {
		t.Fatalf("expected zero units for unstocked group, got %d", level.Unit)
	}
	if level.BloodGroup != enums.BloodGroupABPositive {
		t.Fatalf("unexpected group %s", level.BloodGroup)
	}
}

func TestServiceGetStockRejectsInvalidGroup(t *testing.T) {
	svc, err := NewService(newStubStockRepo(), testLogger(), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.GetStock(context.Background(), "X-")
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
