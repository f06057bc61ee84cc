package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hemolink/bloodbank-backend/api/middleware"
	"github.com/hemolink/bloodbank-backend/api/responses"
	"github.com/hemolink/bloodbank-backend/api/validators"
	"github.com/hemolink/bloodbank-backend/internal/requests"
	"github.com/hemolink/bloodbank-backend/pkg/enums"
	pkgerrors "github.com/hemolink/bloodbank-backend/pkg/errors"
	"github.com/hemolink/bloodbank-backend/pkg/logger"
	"github.com/google/uuid"
)

type submitDonationBody struct {
	Unit     int      `json:"unit" validate:"required,min=1"`
	Diseases []string `json:"diseases"`
}

type decisionBody struct {
	Action   string  `json:"action" validate:"required"`
	Comments *string `json:"comments"`
}

// DonationRequestSubmit records a donation offer from the authenticated donor.
func DonationRequestSubmit(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		donorID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body submitDonationBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.SubmitDonation(r.Context(), requests.SubmitDonationInput{
			DonorID:  donorID,
			Unit:     body.Unit,
			Diseases: body.Diseases,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

func DonationRequestList(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
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

		views, err := svc.ListDonations(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, views)
	}
}

// listFiltersFor scopes request listings to the caller's own rows unless the
// session belongs to an admin.
func listFiltersFor(r *http.Request, status *enums.RequestStatus) (requests.ListFilters, error) {
	filters := requests.ListFilters{Status: status}
	if middleware.RoleFromContext(r.Context()) == string(enums.UserRoleAdmin) {
		return filters, nil
	}
	id, err := actorID(r)
	if err != nil {
		return requests.ListFilters{}, err
	}
	filters.RequesterID = &id
	return filters, nil
}

// DonationRequestDecide applies an admin verdict to a pending donation request.
func DonationRequestDecide(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
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

		result, err := svc.DecideDonation(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func decodeDecision(r *http.Request) (requests.DecisionInput, error) {
	requestID, err := validators.ParseUUIDParam(chi.URLParam(r, "requestID"), "requestID")
	if err != nil {
		return requests.DecisionInput{}, err
	}

	adminID, err := actorID(r)
	if err != nil {
		return requests.DecisionInput{}, err
	}

	var body decisionBody
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		return requests.DecisionInput{}, err
	}

	action, err := parseAction(body.Action)
	if err != nil {
		return requests.DecisionInput{}, err
	}

	return requests.DecisionInput{
		RequestID: requestID,
		Action:    action,
		AdminID:   adminID,
		Comments:  body.Comments,
	}, nil
}

func parseAction(raw string) (enums.RequestAction, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "approve", "approved":
		return enums.RequestActionApprove, nil
	case "reject", "rejected":
		return enums.RequestActionReject, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, "action must be approve or reject")
	}
}

func actorID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return id, nil
}
