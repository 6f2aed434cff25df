package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	CategoryTypeIncome  = "income"
	CategoryTypeExpense = "expense"
)

type Category struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
	Name      string
	Type      string
	Color     string
	Icon      string
}
