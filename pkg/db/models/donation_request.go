package models

import (
	"time"

	dbtypes "github.com/hemolink/bloodbank-backend/pkg/db/types"
	"github.com/hemolink/bloodbank-backend/pkg/enums"
	"github.com/google/uuid"
)

// DonationRequest is a donor's pending offer to contribute units.
type DonationRequest struct {
	ID            uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	DonorID       uuid.UUID           `gorm:"column:donor_id;type:uuid;not null;index"`
	Unit          int                 `gorm:"column:unit;not null"`
	Diseases      dbtypes.StringList  `gorm:"column:diseases;type:text[]"`
	Status        enums.RequestStatus `gorm:"column:status;type:text;not null;default:'Pending'"`
	ApprovedBy    *uuid.UUID          `gorm:"column:approved_by;type:uuid"`
	ApprovalDate  *time.Time          `gorm:"column:approval_date"`
	AdminComments *string             `gorm:"column:admin_comments"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
