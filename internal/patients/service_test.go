package patients

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/hemolink/bloodbank-backend/pkg/config"
	"github.com/hemolink/bloodbank-backend/pkg/db/models"
	"github.com/hemolink/bloodbank-backend/pkg/enums"
	pkgerrors "github.com/hemolink/bloodbank-backend/pkg/errors"
	"github.com/hemolink/bloodbank-backend/pkg/logger"
	"github.com/hemolink/bloodbank-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubPatientRepo struct {
	patients map[uuid.UUID]*models.Patient
	byEmail  map[string]uuid.UUID
}

func newStubPatientRepo() *stubPatientRepo {
	return &stubPatientRepo{
		patients: map[uuid.UUID]*models.Patient{},
		byEmail:  map[string]uuid.UUID{},
	}
}

func (s *stubPatientRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubPatientRepo) Create(ctx context.Context, patient *models.Patient) (*models.Patient, error) {
	if _, exists := s.byEmail[patient.Email]; exists {
		return nil, fmt.Errorf("UNIQUE constraint failed: patients.email")
	}
	patient.ID = uuid.New()
	s.patients[patient.ID] = patient
	s.byEmail[patient.Email] = patient.ID
	return patient, nil
}

func (s *stubPatientRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Patient, error) {
	patient, ok := s.patients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return patient, nil
}

func (s *stubPatientRepo) FindByEmail(ctx context.Context, email string) (*models.Patient, error) {
	id, ok := s.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s.patients[id], nil
}

func (s *stubPatientRepo) List(ctx context.Context, params pagination.Params) ([]models.Patient, error) {
	var out []models.Patient
	for _, patient := range s.patients {
		out = append(out, *patient)
	}
	return out, nil
}

func (s *stubPatientRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if verified, ok := updates["email_verified"].(bool); ok {
		s.patients[id].EmailVerified = verified
	}
	return nil
}

func (s *stubPatientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.patients, id)
	return nil
}

type stubCleaner struct {
	cleaned []uuid.UUID
}

func (s *stubCleaner) DeleteHistory(ctx context.Context, tx *gorm.DB, accountID uuid.UUID) error {
	s.cleaned = append(s.cleaned, accountID)
	return nil
}

func newPatientService(t *testing.T, repo *stubPatientRepo, cleaner *stubCleaner) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(repo, stubTxRunner{}, cleaner, config.PasswordConfig{}, logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestPatientRegisterAndDelete(t *testing.T) {
	repo := newStubPatientRepo()
	cleaner := &stubCleaner{}
	svc := newPatientService(t, repo, cleaner)

	view, err := svc.Register(context.Background(), RegisterInput{
		FullName:   "Omar Said",
		Age:        54,
		Email:      "Omar@Example.com",
		Password:   "long-enough",
		BloodGroup: enums.BloodGroupBNegative,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if view.Email != "omar@example.com" {
		t.Fatalf("expected lowercased email, got %q", view.Email)
	}

	_, err = svc.Register(context.Background(), RegisterInput{
		FullName:   "Omar Said",
		Age:        54,
		Email:      "omar@example.com",
		Password:   "long-enough",
		BloodGroup: enums.BloodGroupBNegative,
	})
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}

	if err := svc.Delete(context.Background(), view.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(cleaner.cleaned) != 1 {
		t.Fatal("blood request history not cleaned")
	}
}

func TestPatientRegisterAllowsMinors(t *testing.T) {
	svc := newPatientService(t, newStubPatientRepo(), &stubCleaner{})

	// patients can be any age; only donors carry the 18+ rule
	_, err := svc.Register(context.Background(), RegisterInput{
		FullName:   "Lena Park",
		Age:        9,
		Email:      "lena@example.com",
		Password:   "long-enough",
		BloodGroup: enums.BloodGroupOPositive,
	})
	if err != nil {
		t.Fatalf("register minor patient: %v", err)
	}

	_, err = svc.Register(context.Background(), RegisterInput{
		FullName:   "Neg Age",
		Age:        -1,
		Email:      "neg@example.com",
		Password:   "long-enough",
		BloodGroup: enums.BloodGroupOPositive,
	})
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
