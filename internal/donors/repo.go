package donors

import (
	"context"
	"strings"

	"github.com/hemolink/bloodbank-backend/pkg/db/models"
	"github.com/hemolink/bloodbank-backend/pkg/enums"
	"github.com/hemolink/bloodbank-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a donors repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, donor *models.Donor) (*models.Donor, error) {
	if err := r.db.WithContext(ctx).Create(donor).Error; err != nil {
		return nil, err
	}
	return donor, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Donor, error) {
	var donor models.Donor
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&donor).Error
	if err != nil {
		return nil, err
	}
	return &donor, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.Donor, error) {
	var donor models.Donor
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&donor).Error
	if err != nil {
		return nil, err
	}
	return &donor, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Donor, error) {
	query := r.db.WithContext(ctx).Model(&models.Donor{})
	if filters.BloodGroup != nil {
		query = query.Where("blood_group = ?", *filters.BloodGroup)
	}
	if filters.VerifiedOnly {
		query = query.Where("email_verified = ?", true)
	}

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

	var rows []models.Donor
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindVerifiedByGroup(ctx context.Context, group enums.BloodGroup) ([]models.Donor, error) {
	var rows []models.Donor
	err := r.db.WithContext(ctx).
		Where("blood_group = ? AND email_verified = ?", group, true).
		Order("last_donation_date ASC NULLS FIRST").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Donor{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Donor{}).Error
}
