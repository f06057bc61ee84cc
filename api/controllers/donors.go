package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hemolink/bloodbank-backend/api/middleware"
	"github.com/hemolink/bloodbank-backend/api/responses"
	"github.com/hemolink/bloodbank-backend/api/validators"
	"github.com/hemolink/bloodbank-backend/internal/donors"
	"github.com/hemolink/bloodbank-backend/pkg/enums"
	pkgerrors "github.com/hemolink/bloodbank-backend/pkg/errors"
	"github.com/hemolink/bloodbank-backend/pkg/logger"
	"github.com/google/uuid"
)

type registerAccountBody struct {
	FullName   string   `json:"fullName" validate:"required"`
	Age        int      `json:"age" validate:"required"`
	Email      string   `json:"email" validate:"required,email"`
	Password   string   `json:"password" validate:"required,min=8"`
	BloodGroup string   `json:"bloodGroup" validate:"required"`
	Diseases   []string `json:"diseases"`
}

type updateAccountBody struct {
	FullName *string  `json:"fullName"`
	Age      *int     `json:"age"`
	Diseases []string `json:"diseases"`
}

func DonorRegister(svc donors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donors service unavailable"))
			return
		}

		var body registerAccountBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		group, err := validators.ParseBloodGroupParam(body.BloodGroup)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Register(r.Context(), donors.RegisterInput{
			FullName:   body.FullName,
			Age:        body.Age,
			Email:      body.Email,
			Password:   body.Password,
			BloodGroup: group,
			Diseases:   body.Diseases,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

func DonorList(svc donors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donors service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := donors.ListFilters{}
		if raw := strings.TrimSpace(r.URL.Query().Get("bloodGroup")); raw != "" {
			group, err := validators.ParseBloodGroupParam(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			filters.BloodGroup = &group
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("verified")); raw == "true" {
			filters.VerifiedOnly = true
		}

		views, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, views)
	}
}

func DonorGet(svc donors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donors service unavailable"))
			return
		}

		id, err := accountParam(r, "donorID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

func DonorUpdate(svc donors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donors service unavailable"))
			return
		}

		id, err := accountParam(r, "donorID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateAccountBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Update(r.Context(), id, donors.UpdateInput{
			FullName: body.FullName,
			Age:      body.Age,
			Diseases: body.Diseases,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

func DonorVerifyEmail(svc donors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donors service unavailable"))
			return
		}

		id, err := accountParam(r, "donorID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.VerifyEmail(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "verified"})
	}
}

func DonorDelete(svc donors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donors service unavailable"))
			return
		}

		id, err := accountParam(r, "donorID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// accountParam resolves the account id in the path and enforces that only
// admins may act on accounts other than their own.
func accountParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := validators.ParseUUIDParam(chi.URLParam(r, name), name)
	if err != nil {
		return uuid.Nil, err
	}
	role := middleware.RoleFromContext(r.Context())
	if role == string(enums.UserRoleAdmin) {
		return id, nil
	}
	if middleware.UserIDFromContext(r.Context()) != id.String() {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot act on another account")
	}
	return id, nil
}
