package donors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hemolink/bloodbank-backend/pkg/config"
	"github.com/hemolink/bloodbank-backend/pkg/db"
	"github.com/hemolink/bloodbank-backend/pkg/db/models"
	dbtypes "github.com/hemolink/bloodbank-backend/pkg/db/types"
	pkgerrors "github.com/hemolink/bloodbank-backend/pkg/errors"
	"github.com/hemolink/bloodbank-backend/pkg/logger"
	"github.com/hemolink/bloodbank-backend/pkg/pagination"
	"github.com/hemolink/bloodbank-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const minDonorAge = 18

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages donor accounts and their verification state.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*DonorView, error)
	Get(ctx context.Context, id uuid.UUID) (*DonorView, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]DonorView, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*DonorView, error)
	VerifyEmail(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo    Repository
	tx      txRunner
	cleaner RequestCleaner
	pwCfg   config.PasswordConfig
	logg    *logger.Logger
}

// NewService builds the donor account service.
func NewService(repo Repository, tx txRunner, cleaner RequestCleaner, pwCfg config.PasswordConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("donors repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if cleaner == nil {
		return nil, fmt.Errorf("request cleaner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, cleaner: cleaner, pwCfg: pwCfg, logg: logg}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*DonorView, error) {
	if strings.TrimSpace(input.FullName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name required")
	}
	if input.Age < minDonorAge {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "donors must be at least 18")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	if !input.BloodGroup.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid blood group")
	}

	hash, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	diseases := input.Diseases
	if len(diseases) == 0 {
		diseases = []string{"none"}
	}

	donor := &models.Donor{
		FullName:     strings.TrimSpace(input.FullName),
		Age:          input.Age,
		Email:        email,
		PasswordHash: hash,
		BloodGroup:   input.BloodGroup,
		Diseases:     dbtypes.StringList(diseases),
	}
	created, err := s.repo.Create(ctx, donor)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create donor")
	}

	s.logg.Info(s.logg.WithUserID(ctx, created.ID.String()), "donor registered")
	view := donorView(created)
	return &view, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*DonorView, error) {
	donor, err := s.findDonor(ctx, id)
	if err != nil {
		return nil, err
	}
	view := donorView(donor)
	return &view, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]DonorView, error) {
	rows, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list donors")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	if len(rows) > limit {
		rows = rows[:limit]
	}
	views := make([]DonorView, 0, len(rows))
	for i := range rows {
		views = append(views, donorView(&rows[i]))
	}
	return views, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*DonorView, error) {
	if _, err := s.findDonor(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.FullName != nil {
		if strings.TrimSpace(*input.FullName) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name cannot be empty")
		}
		updates["full_name"] = strings.TrimSpace(*input.FullName)
	}
	if input.Age != nil {
		if *input.Age < minDonorAge {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "donors must be at least 18")
		}
		updates["age"] = *input.Age
	}
	if input.Diseases != nil {
		updates["diseases"] = dbtypes.StringList(input.Diseases)
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update donor")
	}

	donor, err := s.findDonor(ctx, id)
	if err != nil {
		return nil, err
	}
	view := donorView(donor)
	return &view, nil
}

func (s *service) VerifyEmail(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findDonor(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, map[string]any{"email_verified": true}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify donor email")
	}
	return nil
}

// Delete removes the account and its request history in one transaction.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findDonor(ctx, id); err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.cleaner.DeleteHistory(ctx, tx, id); err != nil {
			return err
		}
		if err := s.repo.WithTx(tx).Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete donor")
		}
		s.logg.Info(s.logg.WithUserID(ctx, id.String()), "donor account deleted")
		return nil
	})
}

func (s *service) findDonor(ctx context.Context, id uuid.UUID) (*models.Donor, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "donor id required")
	}
	donor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "donor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load donor")
	}
	return donor, nil
}

func donorView(donor *models.Donor) DonorView {
	return DonorView{
		ID:               donor.ID,
		FullName:         donor.FullName,
		Age:              donor.Age,
		Email:            donor.Email,
		BloodGroup:       donor.BloodGroup,
		Diseases:         []string(donor.Diseases),
		EmailVerified:    donor.EmailVerified,
		LastDonationDate: donor.LastDonationDate,
		CreatedAt:        donor.CreatedAt,
	}
}
