package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/centavo-app/centavo/internal/apperrors"
	"github.com/centavo-app/centavo/internal/handlers/render"
	"github.com/centavo-app/centavo/internal/handlers/userctx"
	"github.com/centavo-app/centavo/internal/logger"
	"github.com/centavo-app/centavo/internal/models"
)

type goalResponse struct {
	ID            uuid.UUID `json:"id"`
	Month         int       `json:"month"`
	Year          int       `json:"year"`
	TargetAmount  float64   `json:"targetAmount"`
	CurrentAmount float64   `json:"currentAmount"`
	Progress      float64   `json:"progress"`
	Description   string    `json:"description"`
}

func toGoalResponse(g models.SavingsGoal) goalResponse {
	target, _ := g.TargetAmount.Float64()
	current, _ := g.CurrentAmount.Float64()
	progress, _ := g.Progress().Float64()
	return goalResponse{
		ID:            g.ID,
		Month:         g.Month,
		Year:          g.Year,
		TargetAmount:  target,
		CurrentAmount: current,
		Progress:      progress,
		Description:   g.Description,
	}
}

func handleUpsertGoal(goalService goalService, l logger.Logger) http.Handler {
	type request struct {
		Month        int             `json:"month" validate:"required,min=1,max=12"`
		Year         int             `json:"year" validate:"required,min=1970,max=9999"`
		TargetAmount decimal.Decimal `json:"targetAmount" validate:"required"`
		Description  string          `json:"description" validate:"max=255"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}
		if data.TargetAmount.LessThanOrEqual(decimal.Zero) {
			render.ServiceError(w, "targetAmount must be positive", http.StatusBadRequest)
			return
		}

		goal, err := goalService.Upsert(r.Context(), user.ID, data.Month, data.Year, data.TargetAmount, data.Description)
		if err != nil {
			l.Error("Failed to save savings goal", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, toGoalResponse(goal))
	})
}

func handleCurrentGoal(goalService goalService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		q := r.URL.Query()
		month, err := queryInt(q.Get("month"), 1, 12)
		if err != nil {
			render.ServiceError(w, "month must be a number between 1 and 12", http.StatusBadRequest)
			return
		}
		year, err := queryInt(q.Get("year"), 1970, 9999)
		if err != nil {
			render.ServiceError(w, "year must be a valid year", http.StatusBadRequest)
			return
		}

		var goal models.SavingsGoal
		if month != 0 && year != 0 {
			goal, err = goalService.GetByMonth(r.Context(), user.ID, month, year)
		} else {
			goal, err = goalService.Current(r.Context(), user.ID)
		}

		switch {
		case err == nil:
			render.JSON(w, toGoalResponse(goal))
		case errors.Is(err, apperrors.ErrGoalNotFound):
			render.ServiceError(w, "Savings goal not found", http.StatusNotFound)
		default:
			l.Error("Failed to get savings goal", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleListGoals(goalService goalService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		goals, err := goalService.List(r.Context(), user.ID)
		if err != nil {
			l.Error("Failed to list savings goals", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		items := make([]goalResponse, 0, len(goals))
		for _, g := range goals {
			items = append(items, toGoalResponse(g))
		}
		render.JSON(w, items)
	})
}

func handleDeleteGoal(goalService goalService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid goal id", http.StatusBadRequest)
			return
		}

		err = goalService.Delete(r.Context(), user.ID, id)

		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, apperrors.ErrGoalNotFound):
			render.ServiceError(w, "Savings goal not found", http.StatusNotFound)
		default:
			l.Error("Failed to delete savings goal", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
