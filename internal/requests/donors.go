package requests

import (
	"context"
	"time"

	"github.com/hemolink/bloodbank-backend/pkg/db/models"
	pkgerrors "github.com/hemolink/bloodbank-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type donorReaderImpl struct{}

// NewDonorReader exposes the default donor lookup used during approvals.
func NewDonorReader() DonorReader {
	return donorReaderImpl{}
}

func (donorReaderImpl) FindDonor(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Donor, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for donor lookup")
	}

	var donor models.Donor
	err := tx.WithContext(ctx).
		Where("id = ?", id).
		First(&donor).Error
	if err != nil {
		return nil, err
	}
	return &donor, nil
}

func (donorReaderImpl) StampDonation(ctx context.Context, tx *gorm.DB, id uuid.UUID, when time.Time) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for donor update")
	}

	return tx.WithContext(ctx).
		Model(&models.Donor{}).
		Where("id = ?", id).
		Update("last_donation_date", when).Error
}
