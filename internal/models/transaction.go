package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TransactionTypeIncome  = "income"
	TransactionTypeExpense = "expense"
)

type Transaction struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	CategoryID  *uuid.UUID
	CreatedAt   time.Time
	Type        string
	Amount      decimal.Decimal
	Description string
	Date        time.Time // day granularity, stored as sql date
	IsRecurring bool
}

// Filters and paging for transaction listing
type TransactionFilter struct {
	Type       string
	CategoryID *uuid.UUID
	Month      int // 1..12, 0 means any
	Year       int // 0 means any
	Page       int
	PageSize   int
}

type TransactionPage struct {
	Items    []Transaction
	Total    int64
	Page     int
	PageSize int
}
