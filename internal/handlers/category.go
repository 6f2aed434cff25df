package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/centavo-app/centavo/internal/apperrors"
	"github.com/centavo-app/centavo/internal/handlers/render"
	"github.com/centavo-app/centavo/internal/handlers/userctx"
	"github.com/centavo-app/centavo/internal/logger"
	"github.com/centavo-app/centavo/internal/models"
)

type categoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"createdAt"`
}

func toCategoryResponse(c models.Category) categoryResponse {
	return categoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Type:      c.Type,
		Color:     c.Color,
		Icon:      c.Icon,
		CreatedAt: c.CreatedAt,
	}
}

type categoryRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Type  string `json:"type" validate:"required,oneof=income expense"`
	Color string `json:"color" validate:"max=20"`
	Icon  string `json:"icon" validate:"max=50"`
}

func handleCreateCategory(categoryService categoryService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[categoryRequest](w, r)
		if err != nil {
			return
		}

		created, err := categoryService.Create(r.Context(), user.ID, data.Name, data.Type, data.Color, data.Icon)
		if err != nil {
			l.Error("Failed to create category", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSONWithStatus(w, toCategoryResponse(created), http.StatusCreated)
	})
}

func handleListCategories(categoryService categoryService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		categoryType := r.URL.Query().Get("type")
		switch categoryType {
		case "", models.CategoryTypeIncome, models.CategoryTypeExpense:
		default:
			render.ServiceError(w, "type must be income or expense", http.StatusBadRequest)
			return
		}

		categories, err := categoryService.List(r.Context(), user.ID, categoryType)
		if err != nil {
			l.Error("Failed to list categories", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		items := make([]categoryResponse, 0, len(categories))
		for _, c := range categories {
			items = append(items, toCategoryResponse(c))
		}
		render.JSON(w, items)
	})
}

func handleGetCategory(categoryService categoryService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid category id", http.StatusBadRequest)
			return
		}

		c, err := categoryService.Get(r.Context(), user.ID, id)

		switch {
		case err == nil:
			render.JSON(w, toCategoryResponse(c))
		case errors.Is(err, apperrors.ErrCategoryNotFound):
			render.ServiceError(w, "Category not found", http.StatusNotFound)
		default:
			l.Error("Failed to get category", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleUpdateCategory(categoryService categoryService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid category id", http.StatusBadRequest)
			return
		}

		data, err := render.BindAndValidate[categoryRequest](w, r)
		if err != nil {
			return
		}

		updated, err := categoryService.Update(r.Context(), user.ID, id, data.Name, data.Type, data.Color, data.Icon)

		switch {
		case err == nil:
			render.JSON(w, toCategoryResponse(updated))
		case errors.Is(err, apperrors.ErrCategoryNotFound):
			render.ServiceError(w, "Category not found", http.StatusNotFound)
		default:
			l.Error("Failed to update category", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleDeleteCategory(categoryService categoryService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid category id", http.StatusBadRequest)
			return
		}

		err = categoryService.Delete(r.Context(), user.ID, id)

		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, apperrors.ErrCategoryNotFound):
			render.ServiceError(w, "Category not found", http.StatusNotFound)
		default:
			l.Error("Failed to delete category", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
