package models

import (
	"time"

	dbtypes "github.com/hemolink/bloodbank-backend/pkg/db/types"
	"github.com/hemolink/bloodbank-backend/pkg/enums"
	"github.com/google/uuid"
)

// BloodRequest is a donor's or patient's ask for units from stock.
// RequesterType discriminates which collection RequesterID points at.
type BloodRequest struct {
	ID                uuid.UUID                 `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RequesterID       uuid.UUID                 `gorm:"column:requester_id;type:uuid;not null;index"`
	RequesterType     enums.RequesterType       `gorm:"column:requester_type;type:text;not null"`
	BloodGroup        enums.BloodGroup          `gorm:"column:blood_group;type:text;not null"`
	Unit              int                       `gorm:"column:unit;not null"`
	Status            enums.RequestStatus       `gorm:"column:status;type:text;not null;default:'Pending'"`
	ApprovedBy        *uuid.UUID                `gorm:"column:approved_by;type:uuid"`
	ApprovalDate      *time.Time                `gorm:"column:approval_date"`
	AdminComments     *string                   `gorm:"column:admin_comments"`
	MatchedDonorsInfo dbtypes.DonorSnapshotList `gorm:"column:matched_donors_info;type:jsonb"`
	CreatedAt         time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
