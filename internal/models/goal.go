package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Savings goal for a single month, one row per (user, month, year)
type SavingsGoal struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Month         int
	Year          int
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	Description   string
}

// Progress is CurrentAmount/TargetAmount capped to 1.
// Zero target means no measurable progress.
func (g SavingsGoal) Progress() decimal.Decimal {
	if g.TargetAmount.IsZero() {
		return decimal.Zero
	}
	progress := g.CurrentAmount.Div(g.TargetAmount)
	if progress.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return progress
}
