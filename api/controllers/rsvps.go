package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flokoutapp/flokout-backend/api/middleware"
	"github.com/flokoutapp/flokout-backend/api/responses"
	"github.com/flokoutapp/flokout-backend/api/validators"
	"github.com/flokoutapp/flokout-backend/internal/rsvps"
	"github.com/flokoutapp/flokout-backend/pkg/enums"
	"github.com/flokoutapp/flokout-backend/pkg/errors"
	"github.com/flokoutapp/flokout-backend/pkg/logger"
)

type respondRSVPRequest struct {
	Response string `json:"response" validate:"required,oneof=yes no maybe"`
}

// RespondRSVP records or overwrites the caller's answer for a flokout.
func RespondRSVP(svc rsvps.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "rsvps service unavailable"))
			return
		}

		flokoutID, err := validators.PathUUID(chi.URLParam(r, "flokoutId"), "flokoutId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body respondRSVPRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		response, err := enums.ParseRSVPResponse(body.Response)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, errors.Wrap(errors.CodeValidation, err, "invalid response"))
			return
		}

		rsvp, err := svc.Respond(r.Context(), flokoutID, middleware.UserUUIDFromContext(r.Context()), response)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"rsvp": rsvp})
	}
}

func MyRSVP(svc rsvps.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "rsvps service unavailable"))
			return
		}

		flokoutID, err := validators.PathUUID(chi.URLParam(r, "flokoutId"), "flokoutId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rsvp, err := svc.Get(r.Context(), flokoutID, middleware.UserUUIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"rsvp": rsvp})
	}
}

func ListFlokoutRSVPs(svc rsvps.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "rsvps service unavailable"))
			return
		}

		flokoutID, err := validators.PathUUID(chi.URLParam(r, "flokoutId"), "flokoutId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListByFlokout(r.Context(), flokoutID, middleware.UserUUIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		yes := 0
		for _, rsvp := range list {
			if rsvp.Response == enums.RSVPResponseYes {
				yes++
			}
		}

		responses.WriteSuccess(w, map[string]any{
			"rsvps":     list,
			"yes_count": yes,
		})
	}
}

func ListMyRSVPs(svc rsvps.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "rsvps service unavailable"))
			return
		}

		list, err := svc.ListMine(r.Context(), middleware.UserUUIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"rsvps": list})
	}
}
