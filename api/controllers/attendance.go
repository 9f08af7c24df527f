package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/flokoutapp/flokout-backend/api/middleware"
	"github.com/flokoutapp/flokout-backend/api/responses"
	"github.com/flokoutapp/flokout-backend/api/validators"
	"github.com/flokoutapp/flokout-backend/internal/attendance"
	"github.com/flokoutapp/flokout-backend/pkg/errors"
	"github.com/flokoutapp/flokout-backend/pkg/logger"
)

type markAttendanceRequest struct {
	UserID   uuid.UUID `json:"user_id" validate:"required"`
	Attended bool      `json:"attended"`
}

type markAttendanceBulkRequest struct {
	UserIDs  []uuid.UUID `json:"user_ids" validate:"required,min=1"`
	Attended bool        `json:"attended"`
}

func MarkAttendance(svc attendance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "attendance service unavailable"))
			return
		}

		flokoutID, err := validators.PathUUID(chi.URLParam(r, "flokoutId"), "flokoutId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body markAttendanceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Mark(r.Context(), flokoutID, body.UserID, middleware.UserUUIDFromContext(r.Context()), body.Attended)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"attendance": record})
	}
}

func MarkAttendanceBulk(svc attendance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "attendance service unavailable"))
			return
		}

		flokoutID, err := validators.PathUUID(chi.URLParam(r, "flokoutId"), "flokoutId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body markAttendanceBulkRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.MarkBulk(r.Context(), flokoutID, middleware.UserUUIDFromContext(r.Context()), body.UserIDs, body.Attended); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "marked"})
	}
}

func ListFlokoutAttendance(svc attendance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "attendance service unavailable"))
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

		responses.WriteSuccess(w, map[string]any{"attendance": list})
	}
}

func MyAttendanceHistory(svc attendance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "attendance service unavailable"))
			return
		}

		list, err := svc.History(r.Context(), middleware.UserUUIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"attendance": list})
	}
}
