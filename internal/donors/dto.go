package donors

import (
	"time"

	"github.com/hemolink/bloodbank-backend/pkg/enums"
	"github.com/google/uuid"
)

// RegisterInput captures a new donor account.
type RegisterInput struct {
	FullName   string
	Age        int
	Email      string
	Password   string
	BloodGroup enums.BloodGroup
	Diseases   []string
}

// UpdateInput carries the mutable profile fields. Nil means unchanged.
type UpdateInput struct {
	FullName *string
	Age      *int
	Diseases []string
}

// DonorView is the API shape of a donor account. The password hash never
// appears here.
type DonorView struct {
	ID               uuid.UUID        `json:"id"`
	FullName         string           `json:"fullName"`
	Age              int              `json:"age"`
	Email            string           `json:"email"`
	BloodGroup       enums.BloodGroup `json:"bloodGroup"`
	Diseases         []string         `json:"diseases"`
	EmailVerified    bool             `json:"emailVerified"`
	LastDonationDate *time.Time       `json:"lastDonationDate,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
}

// ListFilters narrows donor listings.
type ListFilters struct {
	BloodGroup   *enums.BloodGroup
	VerifiedOnly bool
}
