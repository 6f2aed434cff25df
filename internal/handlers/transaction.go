package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/centavo-app/centavo/internal/apperrors"
	"github.com/centavo-app/centavo/internal/handlers/render"
	"github.com/centavo-app/centavo/internal/handlers/userctx"
	"github.com/centavo-app/centavo/internal/logger"
	"github.com/centavo-app/centavo/internal/models"
)

const transactionDateLayout = "2006-01-02"

type transactionResponse struct {
	ID          uuid.UUID  `json:"id"`
	Type        string     `json:"type"`
	Amount      float64    `json:"amount"`
	Description string     `json:"description"`
	Date        string     `json:"date"`
	CategoryID  *uuid.UUID `json:"categoryId"`
	IsRecurring bool       `json:"isRecurring"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func toTransactionResponse(tr models.Transaction) transactionResponse {
	amount, _ := tr.Amount.Float64()
	return transactionResponse{
		ID:          tr.ID,
		Type:        tr.Type,
		Amount:      amount,
		Description: tr.Description,
		Date:        tr.Date.Format(transactionDateLayout),
		CategoryID:  tr.CategoryID,
		IsRecurring: tr.IsRecurring,
		CreatedAt:   tr.CreatedAt,
	}
}

type transactionRequest struct {
	Type        string          `json:"type" validate:"required,oneof=income expense"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Description string          `json:"description" validate:"max=255"`
	Date        string          `json:"date" validate:"required"`
	CategoryID  *uuid.UUID      `json:"categoryId"`
	IsRecurring bool            `json:"isRecurring"`
}

func (req transactionRequest) toModel(userID uuid.UUID) (models.Transaction, error) {
	date, err := time.Parse(transactionDateLayout, req.Date)
	if err != nil {
		return models.Transaction{}, err
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return models.Transaction{}, errors.New("amount must be positive")
	}

	return models.Transaction{
		UserID:      userID,
		CategoryID:  req.CategoryID,
		Type:        req.Type,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        date,
		IsRecurring: req.IsRecurring,
	}, nil
}

func handleCreateTransaction(transactionService transactionService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[transactionRequest](w, r)
		if err != nil {
			return
		}

		tr, err := data.toModel(user.ID)
		if err != nil {
			render.ServiceError(w, err.Error(), http.StatusBadRequest)
			return
		}

		created, err := transactionService.Create(r.Context(), tr)

		switch {
		case err == nil:
			render.JSONWithStatus(w, toTransactionResponse(created), http.StatusCreated)
		case errors.Is(err, apperrors.ErrCategoryNotFound):
			render.ServiceError(w, "Category not found", http.StatusBadRequest)
		default:
			l.Error("Failed to create transaction", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleGetTransaction(transactionService transactionService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid transaction id", http.StatusBadRequest)
			return
		}

		tr, err := transactionService.Get(r.Context(), user.ID, id)

		switch {
		case err == nil:
			render.JSON(w, toTransactionResponse(tr))
		case errors.Is(err, apperrors.ErrTransactionNotFound):
			render.ServiceError(w, "Transaction not found", http.StatusNotFound)
		default:
			l.Error("Failed to get transaction", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleUpdateTransaction(transactionService transactionService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid transaction id", http.StatusBadRequest)
			return
		}

		data, err := render.BindAndValidate[transactionRequest](w, r)
		if err != nil {
			return
		}

		tr, err := data.toModel(user.ID)
		if err != nil {
			render.ServiceError(w, err.Error(), http.StatusBadRequest)
			return
		}
		tr.ID = id

		updated, err := transactionService.Update(r.Context(), tr)

		switch {
		case err == nil:
			render.JSON(w, toTransactionResponse(updated))
		case errors.Is(err, apperrors.ErrTransactionNotFound):
			render.ServiceError(w, "Transaction not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrCategoryNotFound):
			render.ServiceError(w, "Category not found", http.StatusBadRequest)
		default:
			l.Error("Failed to update transaction", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleDeleteTransaction(transactionService transactionService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid transaction id", http.StatusBadRequest)
			return
		}

		err = transactionService.Delete(r.Context(), user.ID, id)

		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, apperrors.ErrTransactionNotFound):
			render.ServiceError(w, "Transaction not found", http.StatusNotFound)
		default:
			l.Error("Failed to delete transaction", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleListTransactions(transactionService transactionService, l logger.Logger) http.Handler {
	type response struct {
		Items    []transactionResponse `json:"items"`
		Total    int64                 `json:"total"`
		Page     int                   `json:"page"`
		PageSize int                   `json:"page_size"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		filter, err := parseTransactionFilter(r)
		if err != nil {
			render.ServiceError(w, err.Error(), http.StatusBadRequest)
			return
		}

		page, err := transactionService.List(r.Context(), user.ID, filter)
		if err != nil {
			l.Error("Failed to list transactions", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		items := make([]transactionResponse, 0, len(page.Items))
		for _, tr := range page.Items {
			items = append(items, toTransactionResponse(tr))
		}
		render.JSON(w, response{
			Items:    items,
			Total:    page.Total,
			Page:     page.Page,
			PageSize: page.PageSize,
		})
	})
}

func parseTransactionFilter(r *http.Request) (models.TransactionFilter, error) {
	q := r.URL.Query()
	filter := models.TransactionFilter{}

	switch t := q.Get("type"); t {
	case "", models.TransactionTypeIncome, models.TransactionTypeExpense:
		filter.Type = t
	default:
		return filter, errors.New("type must be income or expense")
	}

	// Both names are in use by clients
	raw := q.Get("category_id")
	if raw == "" {
		raw = q.Get("category")
	}
	if raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, errors.New("category_id must be a valid uuid")
		}
		filter.CategoryID = &id
	}

	var err error
	if filter.Month, err = queryInt(q.Get("month"), 1, 12); err != nil {
		return filter, errors.New("month must be a number between 1 and 12")
	}
	if filter.Year, err = queryInt(q.Get("year"), 1970, 9999); err != nil {
		return filter, errors.New("year must be a valid year")
	}
	if filter.Page, err = queryInt(q.Get("page"), 1, 1<<30); err != nil {
		return filter, errors.New("page must be a positive number")
	}
	if filter.PageSize, err = queryInt(q.Get("page_size"), 1, 100); err != nil {
		return filter, errors.New("page_size must be between 1 and 100")
	}

	return filter, nil
}

// queryInt parses an optional query param, returning 0 when absent
func queryInt(raw string, min int, max int) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min || v > max {
		return 0, errors.New("out of range")
	}
	return v, nil
}
