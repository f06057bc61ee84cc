package requests

import (
	"context"
	"errors"

	"github.com/hemolink/bloodbank-backend/pkg/enums"
	pkgerrors "github.com/hemolink/bloodbank-backend/pkg/errors"
	"gorm.io/gorm"
)

// StockLedger moves units in and out of the blood stock table. Debit is
// conditional: it only applies when enough units are on hand, and reports
// whether it did.
type StockLedger interface {
	Credit(ctx context.Context, tx *gorm.DB, group enums.BloodGroup, units int) error
	Debit(ctx context.Context, tx *gorm.DB, group enums.BloodGroup, units int) (bool, error)
	Available(ctx context.Context, tx *gorm.DB, group enums.BloodGroup) (int, error)
}

type stockLedgerImpl struct{}

// NewStockLedger exposes the default stock ledger implementation.
func NewStockLedger() StockLedger {
	return stockLedgerImpl{}
}

func (stockLedgerImpl) Credit(ctx context.Context, tx *gorm.DB, group enums.BloodGroup, units int) error {
	if units <= 0 {
		return nil
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock credit")
	}

	err := tx.WithContext(ctx).Exec(`
		INSERT INTO blood_stock (blood_group, unit, created_at, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (blood_group) DO UPDATE
		SET unit = blood_stock.unit + excluded.unit, updated_at = CURRENT_TIMESTAMP
	`, group, units).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit blood stock")
	}
	return nil
}

func (stockLedgerImpl) Debit(ctx context.Context, tx *gorm.DB, group enums.BloodGroup, units int) (bool, error) {
	if units <= 0 {
		return false, pkgerrors.New(pkgerrors.CodeZeroUnitRequest, "debit units must be positive")
	}
	if tx == nil {
		return false, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock debit")
	}

	// single-statement compare and decrement keeps concurrent approvals
	// from driving the count negative
	res := tx.WithContext(ctx).Exec(`
		UPDATE blood_stock
		SET unit = unit - ?, updated_at = CURRENT_TIMESTAMP
		WHERE blood_group = ? AND unit >= ?
	`, units, group, units)
	if res.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "debit blood stock")
	}
	return res.RowsAffected > 0, nil
}

func (stockLedgerImpl) Available(ctx context.Context, tx *gorm.DB, group enums.BloodGroup) (int, error) {
	if tx == nil {
		return 0, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock read")
	}

	var unit int
	err := tx.WithContext(ctx).
		Raw(`SELECT unit FROM blood_stock WHERE blood_group = ?`, group).
		Scan(&unit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read blood stock")
	}
	return unit, nil
}
