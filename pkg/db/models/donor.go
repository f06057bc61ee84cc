package models

import (
	"time"

	dbtypes "github.com/hemolink/bloodbank-backend/pkg/db/types"
	"github.com/hemolink/bloodbank-backend/pkg/enums"
	"github.com/google/uuid"
)

// Donor is a registered blood donor account.
type Donor struct {
	ID               uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	FullName         string             `gorm:"column:full_name;not null"`
	Age              int                `gorm:"column:age;not null"`
	Email            string             `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash     string             `gorm:"column:password_hash;not null"`
	BloodGroup       enums.BloodGroup   `gorm:"column:blood_group;type:text;not null"`
	Diseases         dbtypes.StringList `gorm:"column:diseases;type:text[]"`
	EmailVerified    bool               `gorm:"column:email_verified;not null;default:false"`
	LastDonationDate *time.Time         `gorm:"column:last_donation_date"`
	CreatedAt        time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// Snapshot copies the contact-safe fields published by donor matching.
// Password hash, age, and verification state never leave this boundary.
func (d Donor) Snapshot() dbtypes.DonorSnapshot {
	return dbtypes.DonorSnapshot{
		FullName:         d.FullName,
		Email:            d.Email,
		BloodGroup:       d.BloodGroup.String(),
		LastDonationDate: d.LastDonationDate,
		Diseases:         d.Diseases,
	}
}
