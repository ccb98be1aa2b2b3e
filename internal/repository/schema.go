package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS expenses (
		id UUID PRIMARY KEY,
		owner_id TEXT NOT NULL,
		amount NUMERIC(14,2) NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		occurred_at TIMESTAMPTZ NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_expenses_owner_occurred
		ON expenses (owner_id, occurred_at)`,
	`CREATE TABLE IF NOT EXISTS goals (
		id UUID PRIMARY KEY,
		owner_id TEXT NOT NULL,
		goal_text TEXT NOT NULL,
		advice_given TEXT NOT NULL DEFAULT '',
		recorded_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_goals_owner ON goals (owner_id)`,
}

// EnsureSchema creates the two collections if they do not exist yet.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
