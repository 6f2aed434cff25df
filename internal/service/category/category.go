package category

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/centavo-app/centavo/internal/models"
	"github.com/centavo-app/centavo/internal/repository"
)

// Category service, thin user-scoped CRUD over the repository
type CategoryService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) (*CategoryService, error) {
	if storage == nil {
		return nil, errors.New("storage must not be nil")
	}
	return &CategoryService{storage: storage}, nil
}

func (s *CategoryService) Create(ctx context.Context, userID uuid.UUID, name, categoryType, color, icon string) (models.Category, error) {
	return s.storage.Category().Create(ctx, models.Category{
		UserID: userID,
		Name:   name,
		Type:   categoryType,
		Color:  color,
		Icon:   icon,
	})
}

func (s *CategoryService) List(ctx context.Context, userID uuid.UUID, categoryType string) ([]models.Category, error) {
	return s.storage.Category().List(ctx, userID, categoryType)
}

func (s *CategoryService) Get(ctx context.Context, userID uuid.UUID, categoryID uuid.UUID) (models.Category, error) {
	return s.storage.Category().Get(ctx, userID, categoryID)
}

func (s *CategoryService) Update(ctx context.Context, userID uuid.UUID, categoryID uuid.UUID, name, categoryType, color, icon string) (models.Category, error) {
	return s.storage.Category().Update(ctx, models.Category{
		ID:     categoryID,
		UserID: userID,
		Name:   name,
		Type:   categoryType,
		Color:  color,
		Icon:   icon,
	})
}

func (s *CategoryService) Delete(ctx context.Context, userID uuid.UUID, categoryID uuid.UUID) error {
	return s.storage.Category().Delete(ctx, userID, categoryID)
}
