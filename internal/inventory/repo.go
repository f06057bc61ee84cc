package inventory

import (
	"context"

	"github.com/hemolink/bloodbank-backend/pkg/db/models"
	"github.com/hemolink/bloodbank-backend/pkg/enums"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a stock repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListStock(ctx context.Context) ([]models.BloodStock, error) {
	var rows []models.BloodStock
	err := r.db.WithContext(ctx).
		Order("blood_group ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindByGroup(ctx context.Context, group enums.BloodGroup) (*models.BloodStock, error) {
	var row models.BloodStock
	err := r.db.WithContext(ctx).
		Where("blood_group = ?", group).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) SetStock(ctx context.Context, group enums.BloodGroup, unit int) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO blood_stock (blood_group, unit, created_at, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (blood_group) DO UPDATE
		SET unit = excluded.unit, updated_at = CURRENT_TIMESTAMP
	`, group, unit).Error
}

func (r *repository) TotalUnits(ctx context.Context) (int, error) {
	var total int
	err := r.db.WithContext(ctx).
		Model(&models.BloodStock{}).
		Select("COALESCE(SUM(unit), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
