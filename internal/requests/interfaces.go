package requests

import (
	"context"

	"github.com/hemolink/bloodbank-backend/pkg/db/models"
	dbtypes "github.com/hemolink/bloodbank-backend/pkg/db/types"
	"github.com/hemolink/bloodbank-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for donation and blood requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateDonationRequest(ctx context.Context, request *models.DonationRequest) (*models.DonationRequest, error)
	FindDonationRequest(ctx context.Context, id uuid.UUID) (*models.DonationRequest, error)
	ListDonationRequests(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.DonationRequest, error)
	UpdateDonationRequest(ctx context.Context, id uuid.UUID, updates map[string]any) error
	DecideDonationRequest(ctx context.Context, id uuid.UUID, updates map[string]any) (bool, error)
	DeleteDonationRequestsByDonor(ctx context.Context, donorID uuid.UUID) error

	CreateBloodRequest(ctx context.Context, request *models.BloodRequest) (*models.BloodRequest, error)
	FindBloodRequest(ctx context.Context, id uuid.UUID) (*models.BloodRequest, error)
	ListBloodRequests(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.BloodRequest, error)
	UpdateBloodRequest(ctx context.Context, id uuid.UUID, updates map[string]any) error
	DecideBloodRequest(ctx context.Context, id uuid.UUID, updates map[string]any) (bool, error)
	UpdateMatchedDonors(ctx context.Context, id uuid.UUID, snapshots dbtypes.DonorSnapshotList) error
	DeleteBloodRequestsByRequester(ctx context.Context, requesterID uuid.UUID) error
}
