package donors

import (
	"context"

	"github.com/hemolink/bloodbank-backend/pkg/db/models"
	"github.com/hemolink/bloodbank-backend/pkg/enums"
	"github.com/hemolink/bloodbank-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for donor accounts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, donor *models.Donor) (*models.Donor, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Donor, error)
	FindByEmail(ctx context.Context, email string) (*models.Donor, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Donor, error)
	FindVerifiedByGroup(ctx context.Context, group enums.BloodGroup) ([]models.Donor, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// RequestCleaner removes an account's request history during deletion.
type RequestCleaner interface {
	DeleteHistory(ctx context.Context, tx *gorm.DB, accountID uuid.UUID) error
}
