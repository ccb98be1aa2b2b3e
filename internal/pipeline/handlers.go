package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finvoice/internal/models"
	"finvoice/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var goalKeywords = []string{"save", "goal", "target"}

func (p *Pipeline) handleExpense(ctx context.Context, st *State) (string, error) {
	intent := p.intents.Extract(ctx, st.Transcript)

	switch intent.Action {
	case service.ActionAddExpense:
		return p.addExpense(ctx, st, intent)
	case service.ActionQueryExpense:
		return p.queryExpenses(ctx, st, intent)
	}

	return "🤔 I'm not sure. Try 'add expense' or 'show my spending'.", nil
}

func (p *Pipeline) addExpense(ctx context.Context, st *State, intent service.Intent) (string, error) {
	if intent.Amount == nil || *intent.Amount <= 0 {
		return "❌ I couldn't understand the amount. Try 'I spent 500 on food'", nil
	}

	description := intent.Description
	if description == "" {
		description = st.Transcript
	}

	expense := &models.Expense{
		ID:          uuid.New(),
		OwnerID:     st.OwnerID,
		Amount:      decimal.NewFromFloat(*intent.Amount),
		Category:    service.NormalizeCategory(intent.Category),
		Description: description,
		OccurredAt:  service.ResolveDate(intent.Date),
		RecordedAt:  time.Now(),
	}

	if err := p.expenses.Create(ctx, expense); err != nil {
		return "", fmt.Errorf("failed to insert expense: %w", err)
	}

	p.logger.Info("Expense recorded",
		zap.String("owner_id", st.OwnerID),
		zap.String("category", expense.Category),
		zap.String("amount", expense.Amount.String()),
	)

	prompt := fmt.Sprintf(
		"The user just recorded an expense of %s%s in category %q. Write a short confirmation with an emoji.",
		service.CurrencySymbol, expense.Amount.String(), expense.Category,
	)
	return p.llm.Complete(ctx, prompt)
}

func (p *Pipeline) queryExpenses(ctx context.Context, st *State, intent service.Intent) (string, error) {
	category := ""
	if intent.Category != "" {
		category = service.NormalizeCategory(intent.Category)
	}
	windowDays := service.QueryWindowDays(st.Transcript)

	summary, err := p.expenses.Summarize(ctx, st.OwnerID, category, windowDays)
	if err != nil {
		return "", fmt.Errorf("failed to summarize expenses: %w", err)
	}

	// Nothing spent: a canned reply beats a model call.
	if summary.Total.IsZero() {
		label := category
		if label == "" {
			label = "anything"
		}
		return fmt.Sprintf("You have not spent any money on %s in the last %d days. Keep it up! 💸", label, windowDays), nil
	}

	queried := category
	if queried == "" {
		queried = "all"
	}

	prompt := fmt.Sprintf(`The user wants to know about their spending.
Summary of financial data:
- Total amount spent: %s%s
- Number of transactions: %d
- Time period: last %d days
- Category queried: %s

Generate a concise, helpful response using this summary. Use emojis.`,
		service.CurrencySymbol, summary.Total.StringFixed(2),
		summary.TransactionCount, windowDays, queried,
	)
	return p.llm.Complete(ctx, prompt)
}

func (p *Pipeline) handleInsights(ctx context.Context, st *State) (string, error) {
	snapshot, err := p.snapshot(ctx, st.OwnerID)
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(`User said: %q

Here is the user's financial data for the last 30 days:
- Total spending: %s%s
- Top spending categories: %s

Provide some insights based on this data. The response should be under 4
sentences, use emojis, and offer trends or advice.`,
		st.Transcript,
		service.CurrencySymbol, snapshot.MonthlySpending.StringFixed(2),
		formatCategories(snapshot.TopCategories),
	)
	return p.llm.Complete(ctx, prompt)
}

func (p *Pipeline) handleGoals(ctx context.Context, st *State) (string, error) {
	snapshot, err := p.snapshot(ctx, st.OwnerID)
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(`User asked: %q
Here is their recent financial data:
- Monthly spending: %s%s
- Top categories: %s
- Goals tracked so far: %d

Give savings goals, investment advice, or budget tips. Make the response
short, encouraging, and with emojis.`,
		st.Transcript,
		service.CurrencySymbol, snapshot.MonthlySpending.StringFixed(2),
		formatCategories(snapshot.TopCategories),
		snapshot.GoalCount,
	)

	reply, err := p.llm.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}

	// Heuristic gate: a savings keyword in the raw text records a goal,
	// independent of the structured intent.
	if containsGoalKeyword(st.Transcript) {
		goal := &models.Goal{
			ID:          uuid.New(),
			OwnerID:     st.OwnerID,
			GoalText:    st.Transcript,
			AdviceGiven: reply,
			RecordedAt:  time.Now(),
		}
		if err := p.goals.Create(ctx, goal); err != nil {
			return "", fmt.Errorf("failed to insert goal: %w", err)
		}
	}

	return reply, nil
}

func (p *Pipeline) handleConversation(ctx context.Context, st *State) (string, error) {
	prompt := fmt.Sprintf(`You are FinVoice, a friendly AI financial assistant.
User said: %q
Reply naturally, under 3 sentences, with emojis. Your goal is to be helpful
and direct the user to financial tasks.`, st.Transcript)
	return p.llm.Complete(ctx, prompt)
}

func (p *Pipeline) handleExit(ctx context.Context, st *State) (string, error) {
	// Set before the model call so the flag survives its failure.
	st.Terminate = true

	text := st.Transcript
	if text == "" {
		text = "Goodbye"
	}
	prompt := fmt.Sprintf(`User said: %q
Reply warmly with an emoji, and keep it short.`, text)
	return p.llm.Complete(ctx, prompt)
}

func (p *Pipeline) snapshot(ctx context.Context, ownerID string) (*models.FinancialSnapshot, error) {
	snapshot, err := p.expenses.RecentSnapshot(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to build financial snapshot: %w", err)
	}
	count, err := p.goals.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count goals: %w", err)
	}
	snapshot.GoalCount = count
	return snapshot, nil
}

func formatCategories(categories []models.CategoryTotal) string {
	if len(categories) == 0 {
		return "none yet"
	}
	parts := make([]string, 0, len(categories))
	for _, ct := range categories {
		parts = append(parts, fmt.Sprintf("%s: %s%s", ct.Category, service.CurrencySymbol, ct.Total.StringFixed(2)))
	}
	return strings.Join(parts, ", ")
}

func containsGoalKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range goalKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
