package repository

import (
	"context"
	"time"

	"finvoice/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const snapshotWindowDays = 30

type ExpenseRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewExpenseRepository(db *pgxpool.Pool, logger *zap.Logger) *ExpenseRepository {
	return &ExpenseRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ExpenseRepository) Create(ctx context.Context, e *models.Expense) error {
	query := squirrel.Insert("expenses").
		Columns("id", "owner_id", "amount", "category", "description", "occurred_at", "recorded_at").
		Values(e.ID, e.OwnerID, e.Amount, e.Category, e.Description, e.OccurredAt, e.RecordedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// Summarize aggregates the owner's expenses over an inclusive trailing
// window ending now, optionally filtered to one category. Categories are
// ordered by total descending; equal totals order by category name so the
// result is stable across runs.
func (r *ExpenseRepository) Summarize(ctx context.Context, ownerID, category string, windowDays int) (*models.ExpenseSummary, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -windowDays)

	query := squirrel.Select("category", "SUM(amount) AS total", "COUNT(*)").
		From("expenses").
		Where(squirrel.Eq{"owner_id": ownerID}).
		Where(squirrel.GtOrEq{"occurred_at": start}).
		Where(squirrel.LtOrEq{"occurred_at": end}).
		GroupBy("category").
		OrderBy("total DESC", "category ASC").
		PlaceholderFormat(squirrel.Dollar)

	if category != "" {
		query = query.Where("LOWER(category) = LOWER(?)", category)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summary := &models.ExpenseSummary{
		Total:      decimal.Zero,
		WindowDays: windowDays,
		Category:   category,
	}

	for rows.Next() {
		var (
			ct    models.CategoryTotal
			count int
		)
		if err := rows.Scan(&ct.Category, &ct.Total, &count); err != nil {
			return nil, err
		}
		summary.Total = summary.Total.Add(ct.Total)
		summary.TransactionCount += count
		summary.TopCategories = append(summary.TopCategories, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return summary, nil
}

// RecentSnapshot returns the fixed 30-day spending view: total plus the
// top three categories. The goal count is filled in by the caller.
func (r *ExpenseRepository) RecentSnapshot(ctx context.Context, ownerID string) (*models.FinancialSnapshot, error) {
	start := time.Now().AddDate(0, 0, -snapshotWindowDays)

	totalQuery := squirrel.Select("COALESCE(SUM(amount), 0)").
		From("expenses").
		Where(squirrel.Eq{"owner_id": ownerID}).
		Where(squirrel.GtOrEq{"occurred_at": start}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := totalQuery.ToSql()
	if err != nil {
		return nil, err
	}

	snapshot := &models.FinancialSnapshot{}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&snapshot.MonthlySpending); err != nil {
		return nil, err
	}

	topQuery := squirrel.Select("category", "SUM(amount) AS total").
		From("expenses").
		Where(squirrel.Eq{"owner_id": ownerID}).
		Where(squirrel.GtOrEq{"occurred_at": start}).
		GroupBy("category").
		OrderBy("total DESC", "category ASC").
		Limit(3).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err = topQuery.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ct models.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total); err != nil {
			return nil, err
		}
		snapshot.TopCategories = append(snapshot.TopCategories, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return snapshot, nil
}
