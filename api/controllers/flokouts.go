package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/flokoutapp/flokout-backend/api/middleware"
	"github.com/flokoutapp/flokout-backend/api/responses"
	"github.com/flokoutapp/flokout-backend/api/validators"
	"github.com/flokoutapp/flokout-backend/internal/flokouts"
	"github.com/flokoutapp/flokout-backend/pkg/db/models"
	"github.com/flokoutapp/flokout-backend/pkg/errors"
	"github.com/flokoutapp/flokout-backend/pkg/logger"
)

type createFlokoutRequest struct {
	FlokID       uuid.UUID  `json:"flok_id" validate:"required"`
	SpotID       *uuid.UUID `json:"spot_id"`
	Title        string     `json:"title" validate:"required,min=1,max=200"`
	Description  *string    `json:"description" validate:"omitempty,max=2000"`
	Date         *time.Time `json:"date"`
	MinAttendees int        `json:"min_attendees" validate:"omitempty,gt=0"`
}

type updateFlokoutRequest struct {
	SpotID       *uuid.UUID `json:"spot_id"`
	Title        *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description  *string    `json:"description" validate:"omitempty,max=2000"`
	Date         *time.Time `json:"date"`
	MinAttendees *int       `json:"min_attendees" validate:"omitempty,gt=0"`
}

func CreateFlokout(svc flokouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "flokouts service unavailable"))
			return
		}

		var body createFlokoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		flokout, err := svc.Create(r.Context(), flokouts.CreateFlokoutInput{
			FlokID:       body.FlokID,
			SpotID:       body.SpotID,
			Title:        body.Title,
			Description:  body.Description,
			Date:         body.Date,
			MinAttendees: body.MinAttendees,
			CreatedBy:    middleware.UserUUIDFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"flokout": flokout})
	}
}

func GetFlokout(svc flokouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "flokouts service unavailable"))
			return
		}

		flokoutID, err := validators.PathUUID(chi.URLParam(r, "flokoutId"), "flokoutId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		flokout, err := svc.Get(r.Context(), flokoutID, middleware.UserUUIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"flokout": flokout})
	}
}

func UpdateFlokout(svc flokouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "flokouts service unavailable"))
			return
		}

		flokoutID, err := validators.PathUUID(chi.URLParam(r, "flokoutId"), "flokoutId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateFlokoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		flokout, err := svc.Update(r.Context(), flokouts.UpdateFlokoutInput{
			FlokoutID:    flokoutID,
			ActorID:      middleware.UserUUIDFromContext(r.Context()),
			SpotID:       body.SpotID,
			Title:        body.Title,
			Description:  body.Description,
			Date:         body.Date,
			MinAttendees: body.MinAttendees,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"flokout": flokout})
	}
}

func DeleteFlokout(svc flokouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "flokouts service unavailable"))
			return
		}

		flokoutID, err := validators.PathUUID(chi.URLParam(r, "flokoutId"), "flokoutId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), flokoutID, middleware.UserUUIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// flokoutTransition handles confirm, complete, and cancel; they differ only
// in the service call.
func flokoutTransition(svc flokouts.Service, logg *logger.Logger, call func(ctx context.Context, flokoutID, actorID uuid.UUID) (*models.Flokout, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "flokouts service unavailable"))
			return
		}

		flokoutID, err := validators.PathUUID(chi.URLParam(r, "flokoutId"), "flokoutId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithFlokoutID(r.Context(), flokoutID.String())
		flokout, err := call(ctx, flokoutID, middleware.UserUUIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"flokout": flokout})
	}
}

func ConfirmFlokout(svc flokouts.Service, logg *logger.Logger) http.HandlerFunc {
	return flokoutTransition(svc, logg, func(ctx context.Context, flokoutID, actorID uuid.UUID) (*models.Flokout, error) {
		return svc.Confirm(ctx, flokoutID, actorID)
	})
}

func CompleteFlokout(svc flokouts.Service, logg *logger.Logger) http.HandlerFunc {
	return flokoutTransition(svc, logg, func(ctx context.Context, flokoutID, actorID uuid.UUID) (*models.Flokout, error) {
		return svc.Complete(ctx, flokoutID, actorID)
	})
}

func CancelFlokout(svc flokouts.Service, logg *logger.Logger) http.HandlerFunc {
	return flokoutTransition(svc, logg, func(ctx context.Context, flokoutID, actorID uuid.UUID) (*models.Flokout, error) {
		return svc.Cancel(ctx, flokoutID, actorID)
	})
}

func ListFlokFlokouts(svc flokouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "flokouts service unavailable"))
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

		responses.WriteSuccess(w, map[string]any{"flokouts": list})
	}
}

func ListMyFlokouts(svc flokouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "flokouts service unavailable"))
			return
		}

		list, err := svc.ListMine(r.Context(), middleware.UserUUIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"flokouts": list})
	}
}
