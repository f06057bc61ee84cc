package requests

import (
	"time"

	dbtypes "github.com/hemolink/bloodbank-backend/pkg/db/types"
	"github.com/hemolink/bloodbank-backend/pkg/enums"
	"github.com/google/uuid"
)

// SubmitDonationInput captures a donor's offer to contribute units.
type SubmitDonationInput struct {
	DonorID  uuid.UUID
	Unit     int
	Diseases []string
}

// SubmitBloodInput captures a donor's or patient's ask for units.
type SubmitBloodInput struct {
	RequesterID   uuid.UUID
	RequesterType enums.RequesterType
	BloodGroup    enums.BloodGroup
	Unit          int
}

// DecisionInput carries an admin's verdict on a pending request.
type DecisionInput struct {
	RequestID uuid.UUID
	Action    enums.RequestAction
	AdminID   uuid.UUID
	Comments  *string
}

// DonationRequestView is the API shape of a donation request.
type DonationRequestView struct {
	ID            uuid.UUID           `json:"id"`
	DonorID       uuid.UUID           `json:"donorId"`
	Unit          int                 `json:"unit"`
	Diseases      []string            `json:"diseases"`
	Status        enums.RequestStatus `json:"status"`
	ApprovedBy    *uuid.UUID          `json:"approvedBy,omitempty"`
	ApprovalDate  *time.Time          `json:"approvalDate,omitempty"`
	AdminComments *string             `json:"adminComments,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
}

// BloodRequestView is the API shape of a blood request.
type BloodRequestView struct {
	ID                uuid.UUID                 `json:"id"`
	RequesterID       uuid.UUID                 `json:"requesterId"`
	RequesterType     enums.RequesterType       `json:"requesterType"`
	BloodGroup        enums.BloodGroup          `json:"bloodGroup"`
	Unit              int                       `json:"unit"`
	Status            enums.RequestStatus       `json:"status"`
	ApprovedBy        *uuid.UUID                `json:"approvedBy,omitempty"`
	ApprovalDate      *time.Time                `json:"approvalDate,omitempty"`
	AdminComments     *string                   `json:"adminComments,omitempty"`
	MatchedDonorsInfo dbtypes.DonorSnapshotList `json:"matchedDonorsInfo,omitempty"`
	CreatedAt         time.Time                 `json:"createdAt"`
}

// DonationDecisionResult reports the outcome of a donation review.
type DonationDecisionResult struct {
	Request        DonationRequestView `json:"request"`
	DiseaseWarning bool                `json:"diseaseWarning"`
}

// BloodDecisionResult reports the outcome of a blood request review.
type BloodDecisionResult struct {
	Request BloodRequestView `json:"request"`
}

// ListFilters narrows request listings.
type ListFilters struct {
	Status        *enums.RequestStatus
	RequesterID   *uuid.UUID
	RequesterType *enums.RequesterType
}
