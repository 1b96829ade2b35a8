package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/greenloop-app/greenloop-backend/api/middleware"
	"github.com/greenloop-app/greenloop-backend/api/responses"
	"github.com/greenloop-app/greenloop-backend/api/validators"
	"github.com/greenloop-app/greenloop-backend/internal/pickups"
	"github.com/greenloop-app/greenloop-backend/pkg/enums"
	pkgerrors "github.com/greenloop-app/greenloop-backend/pkg/errors"
	"github.com/greenloop-app/greenloop-backend/pkg/logger"
	"github.com/greenloop-app/greenloop-backend/pkg/pagination"
)

type advanceStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type completePickupRequest struct {
	ActualWeightKg decimal.Decimal `json:"actualWeightKg"`
	ActualCredits  int             `json:"actualCredits" validate:"min=0"`
}

type cancelPickupRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// CreatePickup schedules a new pickup for the authenticated donor.
func CreatePickup(svc pickups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input pickups.CreateInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.DonorID = middleware.UserIDFromContext(r.Context())

		view, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// GetPickup returns one pickup request with its items.
func GetPickup(svc pickups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Get(r.Context(), requestID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// donors and collectors only see their own requests
		userID := middleware.UserIDFromContext(r.Context())
		role := middleware.RoleFromContext(r.Context())
		if role != enums.UserRoleAdmin && view.DonorID != userID &&
			(view.CollectorID == nil || *view.CollectorID != userID) &&
			!(role == enums.UserRoleCollector && view.Status == enums.PickupStatusPending) {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeForbidden, "pickup does not belong to this user"))
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// ListPickups returns the caller's pickups: donors see requests they created,
// collectors see requests assigned to them.
func ListPickups(svc pickups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		params, err := listParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var result *pickups.ListResult
		if middleware.RoleFromContext(r.Context()) == enums.UserRoleCollector {
			result, err = svc.ListForCollector(r.Context(), userID, params)
		} else {
			result, err = svc.ListForDonor(r.Context(), userID, params)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// PickupQueue returns unclaimed pending pickups for collectors.
func PickupQueue(svc pickups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := listParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Queue(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AssignPickup lets a collector claim a pending pickup.
func AssignPickup(svc pickups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.AssignCollector(r.Context(), requestID, middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// AdvancePickupStatus moves an assigned pickup one step forward.
func AdvancePickupStatus(svc pickups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body advanceStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		next, err := enums.ParsePickupStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}
		view, err := svc.AdvanceStatus(r.Context(), requestID, middleware.UserIDFromContext(r.Context()), next)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CompletePickup records the verified totals and awards credits to the donor.
func CompletePickup(svc pickups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body completePickupRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Complete(r.Context(), pickups.CompleteInput{
			RequestID:      requestID,
			CollectorID:    middleware.UserIDFromContext(r.Context()),
			ActualWeightKg: body.ActualWeightKg,
			ActualCredits:  body.ActualCredits,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CancelPickup cancels a pickup on behalf of its donor or collector.
func CancelPickup(svc pickups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body cancelPickupRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Cancel(r.Context(), requestID, middleware.UserIDFromContext(r.Context()),
			validators.SanitizeString(body.Reason, 500))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	value, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id in path")
	}
	return value, nil
}

func listParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: r.URL.Query().Get("cursor"),
	}, nil
}
