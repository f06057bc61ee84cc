package matching

import (
	"context"
	"errors"
	"fmt"

	"github.com/hemolink/bloodbank-backend/pkg/db/models"
	dbtypes "github.com/hemolink/bloodbank-backend/pkg/db/types"
	"github.com/hemolink/bloodbank-backend/pkg/enums"
	pkgerrors "github.com/hemolink/bloodbank-backend/pkg/errors"
	"github.com/hemolink/bloodbank-backend/pkg/logger"
	"github.com/hemolink/bloodbank-backend/pkg/metrics"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// requestStore is the slice of the requests repository matching needs.
type requestStore interface {
	FindBloodRequest(ctx context.Context, id uuid.UUID) (*models.BloodRequest, error)
	UpdateMatchedDonors(ctx context.Context, id uuid.UUID, snapshots dbtypes.DonorSnapshotList) error
}

// DonorFinder returns verified donors whose blood group matches the request.
type DonorFinder interface {
	FindVerifiedByGroup(ctx context.Context, group enums.BloodGroup) ([]models.Donor, error)
}

// MatchResult reports the donors published onto a blood request.
type MatchResult struct {
	RequestID uuid.UUID                 `json:"requestId"`
	Matched   int                       `json:"matched"`
	Donors    dbtypes.DonorSnapshotList `json:"donors"`
}

// Service runs the donor fallback when stock cannot satisfy a request.
type Service interface {
	MatchDonors(ctx context.Context, requestID uuid.UUID) (*MatchResult, error)
}

type service struct {
	requests requestStore
	donors   DonorFinder
	logg     *logger.Logger
	metrics  *metrics.DecisionMetrics
}

// NewService builds the matching service. Metrics may be nil in tests.
func NewService(requests requestStore, donors DonorFinder, logg *logger.Logger, m *metrics.DecisionMetrics) (Service, error) {
	if requests == nil {
		return nil, fmt.Errorf("request store required")
	}
	if donors == nil {
		return nil, fmt.Errorf("donor finder required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{requests: requests, donors: donors, logg: logg, metrics: m}, nil
}

func (s *service) MatchDonors(ctx context.Context, requestID uuid.UUID) (*MatchResult, error) {
	if requestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}

	request, err := s.requests.FindBloodRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "blood request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load blood request")
	}

	// an approved request was already served from stock
	if request.Status == enums.RequestStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "donors cannot be matched for an approved request")
	}

	candidates, err := s.donors.FindVerifiedByGroup(ctx, request.BloodGroup)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find candidate donors")
	}

	// eligibility is exactly group match plus a verified email; a donor
	// requesting blood for themselves is still a candidate
	snapshots := dbtypes.DonorSnapshotList{}
	for _, donor := range candidates {
		snapshots = append(snapshots, donor.Snapshot())
	}

	// each attempt replaces the stored list wholesale, so retries stay idempotent
	if err := s.requests.UpdateMatchedDonors(ctx, request.ID, snapshots); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "publish matched donors")
	}

	matchCtx := s.logg.WithField(s.logg.WithBloodGroup(ctx, request.BloodGroup.String()), "request_id", request.ID)
	if len(snapshots) == 0 {
		s.logg.Warn(matchCtx, "no verified donors available for request")
		s.metrics.IncMatchAttempt("none")
	} else {
		s.logg.Info(s.logg.WithField(matchCtx, "matched", len(snapshots)), "donors matched to request")
		s.metrics.IncMatchAttempt("matched")
	}

	return &MatchResult{
		RequestID: request.ID,
		Matched:   len(snapshots),
		Donors:    snapshots,
	}, nil
}
