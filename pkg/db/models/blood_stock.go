package models

import (
	"time"

	"github.com/hemolink/bloodbank-backend/pkg/enums"
)

// BloodStock tracks the available unit count for one blood group.
// Rows are created lazily on first credit or admin set and never deleted;
// unit is guarded by a CHECK (unit >= 0) constraint.
type BloodStock struct {
	BloodGroup enums.BloodGroup `gorm:"column:blood_group;type:text;primaryKey"`
	Unit       int              `gorm:"column:unit;not null;default:0"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the plural-free table name used by the migrations.
func (BloodStock) TableName() string {
	return "blood_stock"
}
