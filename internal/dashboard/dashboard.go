package dashboard

import (
	"context"
	"fmt"

	"github.com/hemolink/bloodbank-backend/pkg/db/models"
	"github.com/hemolink/bloodbank-backend/pkg/enums"
	pkgerrors "github.com/hemolink/bloodbank-backend/pkg/errors"
	"github.com/hemolink/bloodbank-backend/pkg/logger"
	"gorm.io/gorm"
)

// StockSlice is one blood group's contribution to the summary.
type StockSlice struct {
	BloodGroup enums.BloodGroup `json:"bloodGroup"`
	Unit       int              `json:"unit"`
}

// StatusCounts breaks a request collection down by lifecycle state.
type StatusCounts struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

// Total sums every state.
func (c StatusCounts) Total() int64 {
	return c.Pending + c.Approved + c.Rejected
}

// Summary is the admin dashboard aggregation.
type Summary struct {
	Donors           int64        `json:"donors"`
	Patients         int64        `json:"patients"`
	TotalUnits       int          `json:"totalUnits"`
	Stock            []StockSlice `json:"stock"`
	DonationRequests StatusCounts `json:"donationRequests"`
	BloodRequests    StatusCounts `json:"bloodRequests"`
}

// Repository runs the aggregate queries backing the dashboard.
type Repository interface {
	CountDonors(ctx context.Context) (int64, error)
	CountPatients(ctx context.Context) (int64, error)
	StockByGroup(ctx context.Context) ([]StockSlice, error)
	DonationStatusCounts(ctx context.Context) (StatusCounts, error)
	BloodStatusCounts(ctx context.Context) (StatusCounts, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a dashboard repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CountDonors(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Donor{}).Count(&count).Error
	return count, err
}

func (r *repository) CountPatients(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Patient{}).Count(&count).Error
	return count, err
}

func (r *repository) StockByGroup(ctx context.Context) ([]StockSlice, error) {
	var slices []StockSlice
	err := r.db.WithContext(ctx).
		Model(&models.BloodStock{}).
		Select("blood_group, unit").
		Order("blood_group ASC").
		Scan(&slices).Error
	if err != nil {
		return nil, err
	}
	return slices, nil
}

func (r *repository) DonationStatusCounts(ctx context.Context) (StatusCounts, error) {
	return r.statusCounts(ctx, &models.DonationRequest{})
}

func (r *repository) BloodStatusCounts(ctx context.Context) (StatusCounts, error) {
	return r.statusCounts(ctx, &models.BloodRequest{})
}

func (r *repository) statusCounts(ctx context.Context, model any) (StatusCounts, error) {
	type row struct {
		Status enums.RequestStatus
		Count  int64
	}

	var rows []row
	err := r.db.WithContext(ctx).
		Model(model).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return StatusCounts{}, err
	}

	var counts StatusCounts
	for _, r := range rows {
		switch r.Status {
		case enums.RequestStatusPending:
			counts.Pending = r.Count
		case enums.RequestStatusApproved:
			counts.Approved = r.Count
		case enums.RequestStatusRejected:
			counts.Rejected = r.Count
		}
	}
	return counts, nil
}

// Service assembles the dashboard summary.
type Service interface {
	Summary(ctx context.Context) (*Summary, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the dashboard service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("dashboard repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Summary(ctx context.Context) (*Summary, error) {
	donors, err := s.repo.CountDonors(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count donors")
	}
	patients, err := s.repo.CountPatients(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count patients")
	}
	stock, err := s.repo.StockByGroup(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate stock")
	}
	donations, err := s.repo.DonationStatusCounts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count donation requests")
	}
	blood, err := s.repo.BloodStatusCounts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count blood requests")
	}

	total := 0
	for _, slice := range stock {
		total += slice.Unit
	}

	return &Summary{
		Donors:           donors,
		Patients:         patients,
		TotalUnits:       total,
		Stock:            stock,
		DonationRequests: donations,
		BloodRequests:    blood,
	}, nil
}
