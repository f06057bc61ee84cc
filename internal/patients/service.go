package patients

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

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// RequestCleaner removes an account's request history during deletion.
type RequestCleaner interface {
	DeleteHistory(ctx context.Context, tx *gorm.DB, accountID uuid.UUID) error
}

// Service manages patient accounts.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*PatientView, error)
	Get(ctx context.Context, id uuid.UUID) (*PatientView, error)
	List(ctx context.Context, params pagination.Params) ([]PatientView, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*PatientView, error)
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

// NewService builds the patient account service.
func NewService(repo Repository, tx txRunner, cleaner RequestCleaner, pwCfg config.PasswordConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("patients repository required")
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

func (s *service) Register(ctx context.Context, input RegisterInput) (*PatientView, error) {
	if strings.TrimSpace(input.FullName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name required")
	}
	if input.Age < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "age cannot be negative")
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

	patient := &models.Patient{
		FullName:     strings.TrimSpace(input.FullName),
		Age:          input.Age,
		Email:        email,
		PasswordHash: hash,
		BloodGroup:   input.BloodGroup,
		Diseases:     dbtypes.StringList(diseases),
	}
	created, err := s.repo.Create(ctx, patient)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create patient")
	}

	s.logg.Info(s.logg.WithUserID(ctx, created.ID.String()), "patient registered")
	view := patientView(created)
	return &view, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*PatientView, error) {
	patient, err := s.findPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	view := patientView(patient)
	return &view, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) ([]PatientView, error) {
	rows, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list patients")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	if len(rows) > limit {
		rows = rows[:limit]
	}
	views := make([]PatientView, 0, len(rows))
	for i := range rows {
		views = append(views, patientView(&rows[i]))
	}
	return views, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*PatientView, error) {
	if _, err := s.findPatient(ctx, id); err != nil {
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
		if *input.Age < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "age cannot be negative")
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update patient")
	}

	patient, err := s.findPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	view := patientView(patient)
	return &view, nil
}

func (s *service) VerifyEmail(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findPatient(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, map[string]any{"email_verified": true}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify patient email")
	}
	return nil
}

// Delete removes the account and its blood request history in one transaction.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findPatient(ctx, id); err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.cleaner.DeleteHistory(ctx, tx, id); err != nil {
			return err
		}
		if err := s.repo.WithTx(tx).Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete patient")
		}
		s.logg.Info(s.logg.WithUserID(ctx, id.String()), "patient account deleted")
		return nil
	})
}

func (s *service) findPatient(ctx context.Context, id uuid.UUID) (*models.Patient, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "patient id required")
	}
	patient, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "patient not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load patient")
	}
	return patient, nil
}

func patientView(patient *models.Patient) PatientView {
	return PatientView{
		ID:            patient.ID,
		FullName:      patient.FullName,
		Age:           patient.Age,
		Email:         patient.Email,
		BloodGroup:    patient.BloodGroup,
		Diseases:      []string(patient.Diseases),
		EmailVerified: patient.EmailVerified,
		CreatedAt:     patient.CreatedAt,
	}
}
