package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is a single recorded spending event. Records are append-only:
// the assistant never updates or deletes them.
type Expense struct {
	ID          uuid.UUID       `db:"id"`
	OwnerID     string          `db:"owner_id"`
	Amount      decimal.Decimal `db:"amount"`
	Category    string          `db:"category"`
	Description string          `db:"description"`
	OccurredAt  time.Time       `db:"occurred_at"`
	RecordedAt  time.Time       `db:"recorded_at"`
}

type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

// ExpenseSummary aggregates spending over a trailing window ending now.
type ExpenseSummary struct {
	Total            decimal.Decimal
	TransactionCount int
	WindowDays       int
	Category         string
	TopCategories    []CategoryTotal
}

// FinancialSnapshot is the fixed 30-day view used by the insights and
// goal-advisor handlers.
type FinancialSnapshot struct {
	MonthlySpending decimal.Decimal
	TopCategories   []CategoryTotal
	GoalCount       int
}
