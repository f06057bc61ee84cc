package inventory

import (
	"time"

	"github.com/hemolink/bloodbank-backend/pkg/enums"
)

// StockLevel is the API view of one blood group's inventory row.
type StockLevel struct {
	BloodGroup enums.BloodGroup `json:"bloodGroup"`
	Unit       int              `json:"unit"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// SetStockInput carries an absolute stock override from an admin.
type SetStockInput struct {
	BloodGroup enums.BloodGroup
	Unit       int
}
