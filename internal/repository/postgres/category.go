package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/centavo-app/centavo/internal/apperrors"
	"github.com/centavo-app/centavo/internal/models"
)

type CategoryRepo struct {
	DB DBTX
}

const createCategory = `-- name: CreateCategory
INSERT INTO categories (id, user_id, name, type, color, icon)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, user_id, created_at, name, type, color, icon
`

func (r *CategoryRepo) Create(ctx context.Context, category models.Category) (models.Category, error) {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}

	rows, _ := r.DB.Query(ctx, createCategory, category.ID, category.UserID, category.Name, category.Type, category.Color, category.Icon)
	created, err := pgx.CollectOneRow(rows, rowToCategory)
	if err != nil {
		return created, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

const listCategories = `-- name: ListCategories
SELECT id, user_id, created_at, name, type, color, icon
FROM categories
WHERE user_id = $1 AND ($2 = '' OR type = $2)
ORDER BY name
`

func (r *CategoryRepo) List(ctx context.Context, userID uuid.UUID, categoryType string) ([]models.Category, error) {
	rows, _ := r.DB.Query(ctx, listCategories, userID, categoryType)
	categories, err := pgx.CollectRows(rows, rowToCategory)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return categories, nil
}

const getCategory = `-- name: GetCategory
SELECT id, user_id, created_at, name, type, color, icon
FROM categories
WHERE user_id = $1 AND id = $2
`

func (r *CategoryRepo) Get(ctx context.Context, userID uuid.UUID, categoryID uuid.UUID) (models.Category, error) {
	rows, _ := r.DB.Query(ctx, getCategory, userID, categoryID)
	category, err := pgx.CollectOneRow(rows, rowToCategory)

	switch {
	case err == nil:
		return category, nil
	case errors.Is(err, pgx.ErrNoRows):
		return category, apperrors.ErrCategoryNotFound
	default:
		return category, fmt.Errorf("db error: %w", err)
	}
}

const updateCategory = `-- name: UpdateCategory
UPDATE categories
SET name = $3, type = $4, color = $5, icon = $6
WHERE user_id = $1 AND id = $2
RETURNING id, user_id, created_at, name, type, color, icon
`

func (r *CategoryRepo) Update(ctx context.Context, category models.Category) (models.Category, error) {
	rows, _ := r.DB.Query(ctx, updateCategory, category.UserID, category.ID, category.Name, category.Type, category.Color, category.Icon)
	updated, err := pgx.CollectOneRow(rows, rowToCategory)

	switch {
	case err == nil:
		return updated, nil
	case errors.Is(err, pgx.ErrNoRows):
		return updated, apperrors.ErrCategoryNotFound
	default:
		return updated, fmt.Errorf("db error: %w", err)
	}
}

const deleteCategory = `-- name: DeleteCategory
DELETE FROM categories
WHERE user_id = $1 AND id = $2
`

func (r *CategoryRepo) Delete(ctx context.Context, userID uuid.UUID, categoryID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteCategory, userID, categoryID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrCategoryNotFound
	}
	return nil
}

func rowToCategory(row pgx.CollectableRow) (models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.Name, &c.Type, &c.Color, &c.Icon)
	return c, err
}
