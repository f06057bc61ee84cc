package inventory

import (
	"context"

	"github.com/hemolink/bloodbank-backend/pkg/db/models"
	"github.com/hemolink/bloodbank-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the blood stock table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListStock(ctx context.Context) ([]models.BloodStock, error)
	FindByGroup(ctx context.Context, group enums.BloodGroup) (*models.BloodStock, error)
	SetStock(ctx context.Context, group enums.BloodGroup, unit int) error
	TotalUnits(ctx context.Context) (int, error)
}
