package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hemolink/bloodbank-backend/api/middleware"
	"github.com/hemolink/bloodbank-backend/api/responses"
	"github.com/hemolink/bloodbank-backend/api/validators"
	"github.com/hemolink/bloodbank-backend/internal/matching"
	"github.com/hemolink/bloodbank-backend/internal/requests"
	"github.com/hemolink/bloodbank-backend/pkg/enums"
	pkgerrors "github.com/hemolink/bloodbank-backend/pkg/errors"
	"github.com/hemolink/bloodbank-backend/pkg/logger"
)

type submitBloodBody struct {
	BloodGroup string `json:"bloodGroup" validate:"required"`
	Unit       int    `json:"unit" validate:"required,min=1"`
}

// BloodRequestSubmit records a request for units from the authenticated
// donor or patient. The requester type comes from the session role, never
// from the body.
func BloodRequestSubmit(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		requesterID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requesterType, err := enums.ParseRequesterType(middleware.RoleFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "only donors and patients can request blood"))
			return
		}

		var body submitBloodBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		group, err := validators.ParseBloodGroupParam(body.BloodGroup)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.SubmitBlood(r.Context(), requests.SubmitBloodInput{
			RequesterID:   requesterID,
			RequesterType: requesterType,
			BloodGroup:    group,
			Unit:          body.Unit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

func BloodRequestList(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := validators.ParseStatusQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := listFiltersFor(r, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views, err := svc.ListBlood(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, views)
	}
}

// BloodRequestDecide applies an admin verdict. Approvals the stock rules
// refuse surface as coded errors, with the forced rejection already
// persisted by the service.
func BloodRequestDecide(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		input, err := decodeDecision(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.DecideBlood(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// BloodRequestMatchDonors runs the donor matching fallback for a request
// that could not be served from stock.
func BloodRequestMatchDonors(svc matching.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "matching service unavailable"))
			return
		}

		requestID, err := validators.ParseUUIDParam(chi.URLParam(r, "requestID"), "requestID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.MatchDonors(r.Context(), requestID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
