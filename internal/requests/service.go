package requests

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hemolink/bloodbank-backend/pkg/db/models"
	dbtypes "github.com/hemolink/bloodbank-backend/pkg/db/types"
	"github.com/hemolink/bloodbank-backend/pkg/enums"
	pkgerrors "github.com/hemolink/bloodbank-backend/pkg/errors"
	"github.com/hemolink/bloodbank-backend/pkg/logger"
	"github.com/hemolink/bloodbank-backend/pkg/metrics"
	"github.com/hemolink/bloodbank-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	commentZeroUnits         = "Rejected: Cannot approve 0 units."
	commentInsufficientStock = "Rejected: Insufficient blood stock. Available: %d, Requested: %d"

	// diseaseNone is the sentinel donors report when they have nothing to declare.
	diseaseNone = "none"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// DonorReader loads and stamps donor rows during donation approval.
type DonorReader interface {
	FindDonor(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Donor, error)
	StampDonation(ctx context.Context, tx *gorm.DB, id uuid.UUID, when time.Time) error
}

// Service reviews donation and blood requests and keeps stock consistent
// with the decisions taken.
type Service interface {
	SubmitDonation(ctx context.Context, input SubmitDonationInput) (*DonationRequestView, error)
	SubmitBlood(ctx context.Context, input SubmitBloodInput) (*BloodRequestView, error)
	DecideDonation(ctx context.Context, input DecisionInput) (*DonationDecisionResult, error)
	DecideBlood(ctx context.Context, input DecisionInput) (*BloodDecisionResult, error)
	ListDonations(ctx context.Context, params pagination.Params, filters ListFilters) ([]DonationRequestView, error)
	ListBlood(ctx context.Context, params pagination.Params, filters ListFilters) ([]BloodRequestView, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	donors  DonorReader
	ledger  StockLedger
	logg    *logger.Logger
	metrics *metrics.DecisionMetrics
}

// NewService builds the request review service. Metrics may be nil in tests.
func NewService(repo Repository, tx txRunner, donors DonorReader, ledger StockLedger, logg *logger.Logger, m *metrics.DecisionMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("requests repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if donors == nil {
		return nil, fmt.Errorf("donor reader required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		donors:  donors,
		ledger:  ledger,
		logg:    logg,
		metrics: m,
	}, nil
}

func (s *service) SubmitDonation(ctx context.Context, input SubmitDonationInput) (*DonationRequestView, error) {
	if input.DonorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "donor id required")
	}
	if input.Unit < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit must be at least 1")
	}

	diseases := input.Diseases
	if len(diseases) == 0 {
		diseases = []string{diseaseNone}
	}

	request := &models.DonationRequest{
		DonorID:  input.DonorID,
		Unit:     input.Unit,
		Diseases: dbtypes.StringList(diseases),
		Status:   enums.RequestStatusPending,
	}
	created, err := s.repo.CreateDonationRequest(ctx, request)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create donation request")
	}

	view := donationView(created)
	return &view, nil
}

func (s *service) SubmitBlood(ctx context.Context, input SubmitBloodInput) (*BloodRequestView, error) {
	if input.RequesterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "requester id required")
	}
	if !input.RequesterType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid requester type")
	}
	if !input.BloodGroup.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid blood group")
	}
	if input.Unit < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit must be at least 1")
	}

	request := &models.BloodRequest{
		RequesterID:   input.RequesterID,
		RequesterType: input.RequesterType,
		BloodGroup:    input.BloodGroup,
		Unit:          input.Unit,
		Status:        enums.RequestStatusPending,
	}
	created, err := s.repo.CreateBloodRequest(ctx, request)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create blood request")
	}

	view := bloodView(created)
	return &view, nil
}

func (s *service) DecideDonation(ctx context.Context, input DecisionInput) (*DonationDecisionResult, error) {
	if err := validateDecision(input); err != nil {
		return nil, err
	}

	started := time.Now()
	var result DonationDecisionResult

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		request, err := repo.FindDonationRequest(ctx, input.RequestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "donation request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load donation request")
		}
		if request.Status.IsTerminal() {
			return alreadyDecided(request.Status)
		}

		now := time.Now().UTC()
		if input.Action == enums.RequestActionReject {
			claimed, err := repo.DecideDonationRequest(ctx, request.ID, decisionUpdates(enums.RequestStatusRejected, input, now))
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject donation request")
			}
			if !claimed {
				return s.donationConflict(ctx, repo, request.ID)
			}
			applyDecision(request, enums.RequestStatusRejected, input, now)
			result.Request = donationView(request)
			s.metrics.IncDecision("donation", "rejected")
			return nil
		}

		donor, err := s.donors.FindDonor(ctx, tx, request.DonorID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load donor for donation request")
		}

		if request.Diseases.ContainsOtherThan(diseaseNone) {
			result.DiseaseWarning = true
			warnCtx := s.logg.WithField(s.logg.WithBloodGroup(ctx, donor.BloodGroup.String()), "request_id", request.ID)
			s.logg.Warn(warnCtx, "approving donation with declared diseases")
		}

		if err := s.ledger.Credit(ctx, tx, donor.BloodGroup, request.Unit); err != nil {
			return err
		}

		// The status predicate in DecideDonationRequest is what arbitrates
		// concurrent decisions: losing the claim rolls the credit back.
		claimed, err := repo.DecideDonationRequest(ctx, request.ID, decisionUpdates(enums.RequestStatusApproved, input, now))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve donation request")
		}
		if !claimed {
			return s.donationConflict(ctx, repo, request.ID)
		}
		if err := s.donors.StampDonation(ctx, tx, donor.ID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stamp donor donation date")
		}

		applyDecision(request, enums.RequestStatusApproved, input, now)
		result.Request = donationView(request)
		s.metrics.IncDecision("donation", "approved")
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveDecision("donation", time.Since(started))
	return &result, nil
}

func (s *service) DecideBlood(ctx context.Context, input DecisionInput) (*BloodDecisionResult, error) {
	if err := validateDecision(input); err != nil {
		return nil, err
	}

	started := time.Now()
	var result BloodDecisionResult
	// Auto-rejections are persisted by the transaction but still reported
	// as errors to the caller, so the refusal is carried past the commit.
	var refusal error

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		request, err := repo.FindBloodRequest(ctx, input.RequestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "blood request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load blood request")
		}

		now := time.Now().UTC()
		if input.Action == enums.RequestActionReject {
			if request.Status.IsTerminal() {
				return alreadyDecided(request.Status)
			}
			claimed, err := repo.DecideBloodRequest(ctx, request.ID, decisionUpdates(enums.RequestStatusRejected, input, now))
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject blood request")
			}
			if !claimed {
				return s.bloodConflict(ctx, repo, request.ID)
			}
			applyBloodDecision(request, enums.RequestStatusRejected, input, now, input.Comments)
			result.Request = bloodView(request)
			s.metrics.IncDecision("blood", "rejected")
			return nil
		}

		// A zero-unit request can never be approved, decided or not.
		if request.Unit <= 0 {
			refusal = pkgerrors.New(pkgerrors.CodeZeroUnitRequest, commentZeroUnits)
			return s.autoReject(ctx, repo, request, input, now, commentZeroUnits)
		}
		if request.Status.IsTerminal() {
			return alreadyDecided(request.Status)
		}

		debited, err := s.ledger.Debit(ctx, tx, request.BloodGroup, request.Unit)
		if err != nil {
			return err
		}
		if !debited {
			available, err := s.ledger.Available(ctx, tx, request.BloodGroup)
			if err != nil {
				return err
			}
			reason := fmt.Sprintf(commentInsufficientStock, available, request.Unit)
			refusal = pkgerrors.New(pkgerrors.CodeInsufficientStock, reason).
				WithDetails(map[string]any{"available": available, "requested": request.Unit})
			return s.autoReject(ctx, repo, request, input, now, reason)
		}

		// Claiming after the debit is safe: if another decision already
		// took the row, the failed claim rolls the debit back with it.
		claimed, err := repo.DecideBloodRequest(ctx, request.ID, decisionUpdates(enums.RequestStatusApproved, input, now))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve blood request")
		}
		if !claimed {
			return s.bloodConflict(ctx, repo, request.ID)
		}
		applyBloodDecision(request, enums.RequestStatusApproved, input, now, input.Comments)
		result.Request = bloodView(request)
		s.metrics.IncDecision("blood", "approved")
		return nil
	})
	if err != nil {
		return nil, err
	}
	if refusal != nil {
		return nil, refusal
	}

	s.metrics.ObserveDecision("blood", time.Since(started))
	return &result, nil
}

// autoReject records the rejection the stock rules force in place of an
// approval. The canned reason lands in admin comments only when the admin
// supplied none of their own. Already-decided rows are left untouched by
// the status predicate.
func (s *service) autoReject(ctx context.Context, repo Repository, request *models.BloodRequest, input DecisionInput, now time.Time, reason string) error {
	updates := decisionUpdates(enums.RequestStatusRejected, input, now)
	if input.Comments == nil {
		updates["admin_comments"] = reason
	}
	if _, err := repo.DecideBloodRequest(ctx, request.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "auto-reject blood request")
	}

	rejectCtx := s.logg.WithField(s.logg.WithBloodGroup(ctx, request.BloodGroup.String()), "request_id", request.ID)
	s.logg.Warn(rejectCtx, "blood request auto-rejected")
	s.metrics.IncDecision("blood", "auto_rejected")
	return nil
}

func alreadyDecided(status enums.RequestStatus) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "request already decided").
		WithDetails(map[string]any{"status": status})
}

func (s *service) donationConflict(ctx context.Context, repo Repository, id uuid.UUID) error {
	current, err := repo.FindDonationRequest(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload donation request")
	}
	return alreadyDecided(current.Status)
}

func (s *service) bloodConflict(ctx context.Context, repo Repository, id uuid.UUID) error {
	current, err := repo.FindBloodRequest(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload blood request")
	}
	return alreadyDecided(current.Status)
}

func (s *service) ListDonations(ctx context.Context, params pagination.Params, filters ListFilters) ([]DonationRequestView, error) {
	rows, err := s.repo.ListDonationRequests(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list donation requests")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	if len(rows) > limit {
		rows = rows[:limit]
	}
	views := make([]DonationRequestView, 0, len(rows))
	for i := range rows {
		views = append(views, donationView(&rows[i]))
	}
	return views, nil
}

func (s *service) ListBlood(ctx context.Context, params pagination.Params, filters ListFilters) ([]BloodRequestView, error) {
	rows, err := s.repo.ListBloodRequests(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list blood requests")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	if len(rows) > limit {
		rows = rows[:limit]
	}
	views := make([]BloodRequestView, 0, len(rows))
	for i := range rows {
		views = append(views, bloodView(&rows[i]))
	}
	return views, nil
}

func validateDecision(input DecisionInput) error {
	if input.RequestID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if input.AdminID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing")
	}
	if !input.Action.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid decision action")
	}
	return nil
}

func decisionUpdates(status enums.RequestStatus, input DecisionInput, now time.Time) map[string]any {
	updates := map[string]any{
		"status":        status,
		"approved_by":   input.AdminID,
		"approval_date": now,
	}
	if input.Comments != nil {
		updates["admin_comments"] = *input.Comments
	}
	return updates
}

func applyDecision(request *models.DonationRequest, status enums.RequestStatus, input DecisionInput, now time.Time) {
	request.Status = status
	admin := input.AdminID
	request.ApprovedBy = &admin
	stamp := now
	request.ApprovalDate = &stamp
	if input.Comments != nil {
		request.AdminComments = input.Comments
	}
}

func applyBloodDecision(request *models.BloodRequest, status enums.RequestStatus, input DecisionInput, now time.Time, comments *string) {
	request.Status = status
	admin := input.AdminID
	request.ApprovedBy = &admin
	stamp := now
	request.ApprovalDate = &stamp
	if comments != nil {
		request.AdminComments = comments
	}
}

func donationView(request *models.DonationRequest) DonationRequestView {
	return DonationRequestView{
		ID:            request.ID,
		DonorID:       request.DonorID,
		Unit:          request.Unit,
		Diseases:      []string(request.Diseases),
		Status:        request.Status,
		ApprovedBy:    request.ApprovedBy,
		ApprovalDate:  request.ApprovalDate,
		AdminComments: request.AdminComments,
		CreatedAt:     request.CreatedAt,
	}
}

func bloodView(request *models.BloodRequest) BloodRequestView {
	return BloodRequestView{
		ID:                request.ID,
		RequesterID:       request.RequesterID,
		RequesterType:     request.RequesterType,
		BloodGroup:        request.BloodGroup,
		Unit:              request.Unit,
		Status:            request.Status,
		ApprovedBy:        request.ApprovedBy,
		ApprovalDate:      request.ApprovalDate,
		AdminComments:     request.AdminComments,
		MatchedDonorsInfo: request.MatchedDonorsInfo,
		CreatedAt:         request.CreatedAt,
	}
}
