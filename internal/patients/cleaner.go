package patients

import (
	"context"

	pkgerrors "github.com/hemolink/bloodbank-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type requestCleanerImpl struct{}

// NewRequestCleaner exposes the default history cleanup used on deletion.
// Patients only ever hold blood requests.
func NewRequestCleaner() RequestCleaner {
	return requestCleanerImpl{}
}

func (requestCleanerImpl) DeleteHistory(ctx context.Context, tx *gorm.DB, accountID uuid.UUID) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for history cleanup")
	}

	if err := tx.WithContext(ctx).Exec(
		`DELETE FROM blood_requests WHERE requester_id = ?`, accountID,
	).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete blood requests")
	}
	return nil
}
