package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/hemolink/bloodbank-backend/pkg/enums"
	pkgerrors "github.com/hemolink/bloodbank-backend/pkg/errors"
	"github.com/hemolink/bloodbank-backend/pkg/logger"
	"github.com/hemolink/bloodbank-backend/pkg/metrics"
	"gorm.io/gorm"
)

// Service exposes stock reads and admin-level overrides.
type Service interface {
	ListStock(ctx context.Context) ([]StockLevel, error)
	GetStock(ctx context.Context, group enums.BloodGroup) (*StockLevel, error)
	SetStock(ctx context.Context, input SetStockInput) (*StockLevel, error)
}

type service struct {
	repo    Repository
	logg    *logger.Logger
	metrics *metrics.DecisionMetrics
}

// NewService builds the stock service. Metrics may be nil in tests.
func NewService(repo Repository, logg *logger.Logger, m *metrics.DecisionMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg, metrics: m}, nil
}

func (s *service) ListStock(ctx context.Context) ([]StockLevel, error) {
	rows, err := s.repo.ListStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list blood stock")
	}

	byGroup := make(map[enums.BloodGroup]StockLevel, len(rows))
	for _, row := range rows {
		byGroup[row.BloodGroup] = StockLevel{
			BloodGroup: row.BloodGroup,
			Unit:       row.Unit,
			UpdatedAt:  row.UpdatedAt,
		}
	}

	// every group is reported, never-stocked ones as zero
	groups := enums.BloodGroups()
	levels := make([]StockLevel, 0, len(groups))
	for _, group := range groups {
		level, ok := byGroup[group]
		if !ok {
			level = StockLevel{BloodGroup: group}
		}
		s.metrics.SetStockUnits(group.String(), level.Unit)
		levels = append(levels, level)
	}
	return levels, nil
}

func (s *service) GetStock(ctx context.Context, group enums.BloodGroup) (*StockLevel, error) {
	if !group.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid blood group")
	}

	row, err := s.repo.FindByGroup(ctx, group)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// missing row means the group has never been stocked
			return &StockLevel{BloodGroup: group, Unit: 0}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load blood stock")
	}
	return &StockLevel{BloodGroup: row.BloodGroup, Unit: row.Unit, UpdatedAt: row.UpdatedAt}, nil
}

func (s *service) SetStock(ctx context.Context, input SetStockInput) (*StockLevel, error) {
	if !input.BloodGroup.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid blood group")
	}
	if input.Unit < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit must be zero or positive")
	}

	if err := s.repo.SetStock(ctx, input.BloodGroup, input.Unit); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set blood stock")
	}

	ctx = s.logg.WithBloodGroup(ctx, input.BloodGroup.String())
	s.logg.Info(s.logg.WithField(ctx, "unit", input.Unit), "blood stock overridden")
	s.metrics.SetStockUnits(input.BloodGroup.String(), input.Unit)

	row, err := s.repo.FindByGroup(ctx, input.BloodGroup)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload blood stock")
	}
	return &StockLevel{BloodGroup: row.BloodGroup, Unit: row.Unit, UpdatedAt: row.UpdatedAt}, nil
}
