package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/flokoutapp/flokout-backend/api/middleware"
	"github.com/flokoutapp/flokout-backend/api/responses"
	"github.com/flokoutapp/flokout-backend/api/validators"
	"github.com/flokoutapp/flokout-backend/internal/spots"
	"github.com/flokoutapp/flokout-backend/pkg/errors"
	"github.com/flokoutapp/flokout-backend/pkg/logger"
)

type createSpotRequest struct {
	Name    string  `json:"name" validate:"required,min=1,max=200"`
	Address *string `json:"address" validate:"omitempty,max=500"`
	Notes   *string `json:"notes" validate:"omitempty,max=2000"`
}

type updateSpotRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	Address *string `json:"address" validate:"omitempty,max=500"`
	Notes   *string `json:"notes" validate:"omitempty,max=2000"`
}

func CreateSpot(svc spots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "spots service unavailable"))
			return
		}

		var body createSpotRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		spot, err := svc.Create(r.Context(), spots.CreateSpotInput{
			Name:      body.Name,
			Address:   body.Address,
			Notes:     body.Notes,
			CreatedBy: middleware.UserUUIDFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"spot": spot})
	}
}

func GetSpot(svc spots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "spots service unavailable"))
			return
		}

		spotID, err := validators.PathUUID(chi.URLParam(r, "spotId"), "spotId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		spot, err := svc.Get(r.Context(), spotID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"spot": spot})
	}
}

func UpdateSpot(svc spots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "spots service unavailable"))
			return
		}

		spotID, err := validators.PathUUID(chi.URLParam(r, "spotId"), "spotId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateSpotRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		spot, err := svc.Update(r.Context(), spots.UpdateSpotInput{
			SpotID:  spotID,
			ActorID: middleware.UserUUIDFromContext(r.Context()),
			Name:    body.Name,
			Address: body.Address,
			Notes:   body.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"spot": spot})
	}
}

func DeleteSpot(svc spots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "spots service unavailable"))
			return
		}

		spotID, err := validators.PathUUID(chi.URLParam(r, "spotId"), "spotId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), spotID, middleware.UserUUIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func SearchSpots(svc spots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "spots service unavailable"))
			return
		}

		query := strings.TrimSpace(r.URL.Query().Get("q"))
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 50)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.Search(r.Context(), query, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"spots": list})
	}
}

func LinkSpot(svc spots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "spots service unavailable"))
			return
		}

		flokID, err := validators.PathUUID(chi.URLParam(r, "flokId"), "flokId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		spotID, err := validators.PathUUID(chi.URLParam(r, "spotId"), "spotId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.LinkToFlok(r.Context(), flokID, spotID, middleware.UserUUIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"status": "linked"})
	}
}

func UnlinkSpot(svc spots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "spots service unavailable"))
			return
		}

		flokID, err := validators.PathUUID(chi.URLParam(r, "flokId"), "flokId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		spotID, err := validators.PathUUID(chi.URLParam(r, "spotId"), "spotId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UnlinkFromFlok(r.Context(), flokID, spotID, middleware.UserUUIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "unlinked"})
	}
}

func ListFlokSpots(svc spots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "spots service unavailable"))
			return
		}

		flokID, err := validators.PathUUID(chi.URLParam(r, "flokId"), "flokId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListByFlok(r.Context(), flokID, middleware.UserUUIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"spots": list})
	}
}
