package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSavingsGoal_Progress(t *testing.T) {
	tests := []struct {
		name     string
		target   decimal.Decimal
		current  decimal.Decimal
		expected decimal.Decimal
	}{
		{
			name:     "halfway",
			target:   decimal.NewFromInt(1000),
			current:  decimal.NewFromInt(500),
			expected: decimal.RequireFromString("0.5"),
		},
		{
			name:     "zero target",
			target:   decimal.Zero,
			current:  decimal.NewFromInt(500),
			expected: decimal.Zero,
		},
		{
			name:     "overshoot capped",
			target:   decimal.NewFromInt(100),
			current:  decimal.NewFromInt(250),
			expected: decimal.NewFromInt(1),
		},
		{
			name:     "nothing saved",
			target:   decimal.NewFromInt(100),
			current:  decimal.Zero,
			expected: decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := SavingsGoal{TargetAmount: tt.target, CurrentAmount: tt.current}

			assert.True(t, tt.expected.Equal(g.Progress()), "got %s", g.Progress())
		})
	}
}
