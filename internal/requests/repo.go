package requests

import (
	"context"

	"github.com/hemolink/bloodbank-backend/pkg/db/models"
	dbtypes "github.com/hemolink/bloodbank-backend/pkg/db/types"
	"github.com/hemolink/bloodbank-backend/pkg/enums"
	"github.com/hemolink/bloodbank-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a requests repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateDonationRequest(ctx context.Context, request *models.DonationRequest) (*models.DonationRequest, error) {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

func (r *repository) FindDonationRequest(ctx context.Context, id uuid.UUID) (*models.DonationRequest, error) {
	var request models.DonationRequest
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) ListDonationRequests(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.DonationRequest, error) {
	query := r.db.WithContext(ctx).Model(&models.DonationRequest{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.RequesterID != nil {
		query = query.Where("donor_id = ?", *filters.RequesterID)
	}

	query, err := applyCursor(query, params)
	if err != nil {
		return nil, err
	}

	var rows []models.DonationRequest
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) UpdateDonationRequest(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.DonationRequest{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// DecideDonationRequest moves a donation request out of Pending. The status
// predicate makes the transition a single conditional statement, so only one
// of two concurrent decisions can claim the row.
func (r *repository) DecideDonationRequest(ctx context.Context, id uuid.UUID, updates map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.DonationRequest{}).
		Where("id = ? AND status = ?", id, enums.RequestStatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) DeleteDonationRequestsByDonor(ctx context.Context, donorID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("donor_id = ?", donorID).
		Delete(&models.DonationRequest{}).Error
}

func (r *repository) CreateBloodRequest(ctx context.Context, request *models.BloodRequest) (*models.BloodRequest, error) {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

func (r *repository) FindBloodRequest(ctx context.Context, id uuid.UUID) (*models.BloodRequest, error) {
	var request models.BloodRequest
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) ListBloodRequests(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.BloodRequest, error) {
	query := r.db.WithContext(ctx).Model(&models.BloodRequest{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.RequesterID != nil {
		query = query.Where("requester_id = ?", *filters.RequesterID)
	}
	if filters.RequesterType != nil {
		query = query.Where("requester_type = ?", *filters.RequesterType)
	}

	query, err := applyCursor(query, params)
	if err != nil {
		return nil, err
	}

	var rows []models.BloodRequest
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) UpdateBloodRequest(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.BloodRequest{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// DecideBloodRequest is the blood-request counterpart of
// DecideDonationRequest: Pending rows only, one winner.
func (r *repository) DecideBloodRequest(ctx context.Context, id uuid.UUID, updates map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.BloodRequest{}).
		Where("id = ? AND status = ?", id, enums.RequestStatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) UpdateMatchedDonors(ctx context.Context, id uuid.UUID, snapshots dbtypes.DonorSnapshotList) error {
	if snapshots == nil {
		snapshots = dbtypes.DonorSnapshotList{}
	}
	return r.db.WithContext(ctx).
		Model(&models.BloodRequest{}).
		Where("id = ?", id).
		Update("matched_donors_info", snapshots).Error
}

func (r *repository) DeleteBloodRequestsByRequester(ctx context.Context, requesterID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("requester_id = ?", requesterID).
		Delete(&models.BloodRequest{}).Error
}

func applyCursor(query *gorm.DB, params pagination.Params) (*gorm.DB, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}
	return query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)), nil
}
