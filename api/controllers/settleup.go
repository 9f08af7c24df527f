package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/flokoutapp/flokout-backend/api/middleware"
	"github.com/flokoutapp/flokout-backend/api/responses"
	"github.com/flokoutapp/flokout-backend/api/validators"
	"github.com/flokoutapp/flokout-backend/internal/expenses"
	"github.com/flokoutapp/flokout-backend/pkg/enums"
	"github.com/flokoutapp/flokout-backend/pkg/errors"
	"github.com/flokoutapp/flokout-backend/pkg/logger"
)

type markSentRequest struct {
	ShareIDs []uuid.UUID `json:"share_ids" validate:"required,min=1"`
	Method   string      `json:"method" validate:"required"`
}

type markReceivedRequest struct {
	ShareIDs []uuid.UUID `json:"share_ids" validate:"required,min=1"`
}

// SettleUp returns the caller's netted debts, optionally scoped to one flok
// via the flok_id query param.
func SettleUp(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "expenses service unavailable"))
			return
		}

		var flokID *uuid.UUID
		if raw := r.URL.Query().Get("flok_id"); raw != "" {
			parsed, err := validators.PathUUID(raw, "flok_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			flokID = &parsed
		}

		settlements, err := svc.SettleUp(r.Context(), middleware.UserUUIDFromContext(r.Context()), flokID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"settlements": settlements})
	}
}

// MarkSettlementSent flips the caller's owed shares to verifying. Partial
// success is reported per share rather than failing the batch.
func MarkSettlementSent(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "expenses service unavailable"))
			return
		}

		var body markSentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(body.Method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, errors.Wrap(errors.CodeValidation, err, "invalid payment method"))
			return
		}

		result, err := svc.MarkSent(r.Context(), middleware.UserUUIDFromContext(r.Context()), body.ShareIDs, method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// MarkSettlementReceived confirms payment landed; only the creditor may call
// it for a share.
func MarkSettlementReceived(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "expenses service unavailable"))
			return
		}

		var body markReceivedRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.MarkReceived(r.Context(), middleware.UserUUIDFromContext(r.Context()), body.ShareIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
