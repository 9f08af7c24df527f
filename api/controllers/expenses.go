package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/flokoutapp/flokout-backend/api/middleware"
	"github.com/flokoutapp/flokout-backend/api/responses"
	"github.com/flokoutapp/flokout-backend/api/validators"
	"github.com/flokoutapp/flokout-backend/internal/expenses"
	"github.com/flokoutapp/flokout-backend/pkg/enums"
	"github.com/flokoutapp/flokout-backend/pkg/errors"
	"github.com/flokoutapp/flokout-backend/pkg/logger"
)

type createExpenseRequest struct {
	FlokoutID   uuid.UUID       `json:"flokout_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Description string          `json:"description" validate:"required,min=1,max=500"`
	Category    string          `json:"category" validate:"required"`
	PaidBy      *uuid.UUID      `json:"paid_by"`
}

type updateExpenseRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description" validate:"omitempty,min=1,max=500"`
	Category    *string          `json:"category"`
}

func CreateExpense(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "expenses service unavailable"))
			return
		}

		var body createExpenseRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := enums.ParseExpenseCategory(body.Category)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, errors.Wrap(errors.CodeValidation, err, "invalid category"))
			return
		}

		actorID := middleware.UserUUIDFromContext(r.Context())
		paidBy := actorID
		if body.PaidBy != nil {
			paidBy = *body.PaidBy
		}

		expense, err := svc.CreateExpense(r.Context(), expenses.CreateExpenseInput{
			FlokoutID:   body.FlokoutID,
			Amount:      body.Amount,
			Description: body.Description,
			Category:    category,
			PaidBy:      paidBy,
			CreatedBy:   actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"expense": expense})
	}
}

func GetExpense(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "expenses service unavailable"))
			return
		}

		expenseID, err := validators.PathUUID(chi.URLParam(r, "expenseId"), "expenseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		expense, err := svc.GetExpense(r.Context(), expenseID, middleware.UserUUIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"expense": expense})
	}
}

func UpdateExpense(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "expenses service unavailable"))
			return
		}

		expenseID, err := validators.PathUUID(chi.URLParam(r, "expenseId"), "expenseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateExpenseRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var category *enums.ExpenseCategory
		if body.Category != nil {
			parsed, err := enums.ParseExpenseCategory(*body.Category)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, errors.Wrap(errors.CodeValidation, err, "invalid category"))
				return
			}
			category = &parsed
		}

		expense, err := svc.UpdateExpense(r.Context(), expenses.UpdateExpenseInput{
			ExpenseID:   expenseID,
			ActorID:     middleware.UserUUIDFromContext(r.Context()),
			Amount:      body.Amount,
			Description: body.Description,
			Category:    category,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"expense": expense})
	}
}

func DeleteExpense(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "expenses service unavailable"))
			return
		}

		expenseID, err := validators.PathUUID(chi.URLParam(r, "expenseId"), "expenseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteExpense(r.Context(), expenseID, middleware.UserUUIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func ListFlokoutExpenses(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "expenses service unavailable"))
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

		responses.WriteSuccess(w, map[string]any{"expenses": list})
	}
}
