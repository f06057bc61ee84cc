package models

import (
	"time"

	dbtypes "github.com/hemolink/bloodbank-backend/pkg/db/types"
	"github.com/hemolink/bloodbank-backend/pkg/enums"
	"github.com/google/uuid"
)

// Patient is a registered patient account.
type Patient struct {
	ID            uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	FullName      string             `gorm:"column:full_name;not null"`
	Age           int                `gorm:"column:age;not null"`
	Email         string             `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash  string             `gorm:"column:password_hash;not null"`
	BloodGroup    enums.BloodGroup   `gorm:"column:blood_group;type:text;not null"`
	Diseases      dbtypes.StringList `gorm:"column:diseases;type:text[]"`
	EmailVerified bool               `gorm:"column:email_verified;not null;default:false"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
