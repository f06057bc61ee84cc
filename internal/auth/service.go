package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgAuth "github.com/hemolink/bloodbank-backend/pkg/auth"
	"github.com/hemolink/bloodbank-backend/pkg/auth/session"
	"github.com/hemolink/bloodbank-backend/pkg/config"
	"github.com/hemolink/bloodbank-backend/pkg/db"
	"github.com/hemolink/bloodbank-backend/pkg/db/models"
	"github.com/hemolink/bloodbank-backend/pkg/enums"
	pkgerrors "github.com/hemolink/bloodbank-backend/pkg/errors"
	"github.com/hemolink/bloodbank-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const invalidCredentialsMessage = "invalid credentials"

const minAdminPasswordLen = 8

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	AdminLogin(ctx context.Context, req AdminLoginRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error)
	Logout(ctx context.Context, accessToken string) error
	RegisterAdmin(ctx context.Context, input RegisterAdminInput) (*SessionUser, error)
}

type service struct {
	donors   donorAccounts
	patients patientAccounts
	admins   AdminRepository
	session  sessionManager
	jwtCfg   config.JWTConfig
	pwCfg    config.PasswordConfig
}

type donorAccounts interface {
	FindByEmail(ctx context.Context, email string) (*models.Donor, error)
}

type patientAccounts interface {
	FindByEmail(ctx context.Context, email string) (*models.Patient, error)
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, presented string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	DonorRepo      donorAccounts
	PatientRepo    patientAccounts
	AdminRepo      AdminRepository
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DonorRepo == nil {
		return nil, fmt.Errorf("donor repository is required")
	}
	if params.PatientRepo == nil {
		return nil, fmt.Errorf("patient repository is required")
	}
	if params.AdminRepo == nil {
		return nil, fmt.Errorf("admin repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	return &service{
		donors:   params.DonorRepo,
		patients: params.PatientRepo,
		admins:   params.AdminRepo,
		session:  params.SessionManager,
		jwtCfg:   params.JWTConfig,
		pwCfg:    params.PasswordConfig,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var user SessionUser
	switch req.Role {
	case enums.UserRoleDonor:
		donor, err := s.authenticateDonor(ctx, req.Email, req.Password)
		if err != nil {
			return nil, err
		}
		user = SessionUser{
			ID:            donor.ID,
			Role:          enums.UserRoleDonor,
			FullName:      donor.FullName,
			Email:         donor.Email,
			BloodGroup:    donor.BloodGroup,
			EmailVerified: donor.EmailVerified,
		}
	case enums.UserRolePatient:
		patient, err := s.authenticatePatient(ctx, req.Email, req.Password)
		if err != nil {
			return nil, err
		}
		user = SessionUser{
			ID:            patient.ID,
			Role:          enums.UserRolePatient,
			FullName:      patient.FullName,
			Email:         patient.Email,
			BloodGroup:    patient.BloodGroup,
			EmailVerified: patient.EmailVerified,
		}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be donor or patient")
	}

	accessToken, refreshToken, err := s.mintSession(ctx, time.Now().UTC(), user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

func (s *service) AdminLogin(ctx context.Context, req AdminLoginRequest) (*LoginResponse, error) {
	admin, err := s.authenticateAdmin(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	now, err := s.recordLogin(ctx, admin)
	if err != nil {
		return nil, err
	}

	accessToken, refreshToken, err := s.mintSession(ctx, now, admin.ID, enums.UserRoleAdmin)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: SessionUser{
			ID:   admin.ID,
			Role: enums.UserRoleAdmin,
		},
	}, nil
}

// Refresh trades the expired access token plus the refresh token for a new
// pair. The refresh token is single use: rotation invalidates the old one
// even when minting the replacement fails.
func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error) {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, req.AccessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	if claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	newAccessID, newRefreshToken, err := s.session.Rotate(ctx, claims.ID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rotate session")
	}

	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: claims.UserID,
		Role:   claims.Role,
		JTI:    newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &RefreshResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

func (s *service) Logout(ctx context.Context, accessToken string) error {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	if claims.ID == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	if err := s.session.Revoke(ctx, claims.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke session")
	}
	return nil
}

func (s *service) RegisterAdmin(ctx context.Context, input RegisterAdminInput) (*SessionUser, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username required")
	}
	if len(input.Password) < minAdminPasswordLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	hash, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	admin, err := s.admins.Create(ctx, &models.Admin{
		Username:     username,
		PasswordHash: hash,
		IsActive:     true,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create admin")
	}

	return &SessionUser{ID: admin.ID, Role: enums.UserRoleAdmin}, nil
}

func (s *service) mintSession(ctx context.Context, now time.Time, userID uuid.UUID, role enums.UserRole) (string, string, error) {
	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID: userID,
		Role:   role,
		JTI:    accessID,
	})
	if err != nil {
		return "", "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return "", "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}
	return accessToken, refreshToken, nil
}

func (s *service) authenticateDonor(ctx context.Context, email, password string) (*models.Donor, error) {
	normalized, err := normalizeLoginEmail(email)
	if err != nil {
		return nil, err
	}
	donor, err := s.donors.FindByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup donor")
	}
	if err := verifyCredentials(password, donor.PasswordHash); err != nil {
		return nil, err
	}
	return donor, nil
}

func (s *service) authenticatePatient(ctx context.Context, email, password string) (*models.Patient, error) {
	normalized, err := normalizeLoginEmail(email)
	if err != nil {
		return nil, err
	}
	patient, err := s.patients.FindByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup patient")
	}
	if err := verifyCredentials(password, patient.PasswordHash); err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *service) authenticateAdmin(ctx context.Context, username, password string) (*models.Admin, error) {
	input := strings.TrimSpace(username)
	if input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	admin, err := s.admins.FindByUsername(ctx, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup admin")
	}
	if err := verifyCredentials(password, admin.PasswordHash); err != nil {
		return nil, err
	}
	if !admin.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return admin, nil
}

func (s *service) recordLogin(ctx context.Context, admin *models.Admin) (time.Time, error) {
	now := time.Now().UTC()
	if err := s.admins.UpdateLastLogin(ctx, admin.ID, now); err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	admin.LastLoginAt = &now
	return now, nil
}

func normalizeLoginEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return normalized, nil
}

func verifyCredentials(password, hash string) error {
	valid, err := security.VerifyPassword(password, hash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return nil
}
