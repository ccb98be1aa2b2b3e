package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"finvoice/internal/models"
	"finvoice/internal/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	return f.text, f.err
}

type fakeRouter struct {
	route service.Route
	calls int
}

func (f *fakeRouter) Route(ctx context.Context, text string) service.Route {
	f.calls++
	return f.route
}

type fakeIntents struct {
	intent service.Intent
}

func (f *fakeIntents) Extract(ctx context.Context, text string) service.Intent {
	return f.intent
}

type fakeCompleter struct {
	reply string
	err   error
	calls int
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.reply, f.err
}

type fakeExpenseStore struct {
	created      []*models.Expense
	createErr    error
	summary      *models.ExpenseSummary
	summarizeErr error
	lastCategory string
	lastWindow   int
	snapshot     *models.FinancialSnapshot
	snapshotErr  error
}

func (f *fakeExpenseStore) Create(ctx context.Context, e *models.Expense) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, e)
	return nil
}

func (f *fakeExpenseStore) Summarize(ctx context.Context, ownerID, category string, windowDays int) (*models.ExpenseSummary, error) {
	f.lastCategory = category
	f.lastWindow = windowDays
	if f.summarizeErr != nil {
		return nil, f.summarizeErr
	}
	if f.summary != nil {
		return f.summary, nil
	}
	return &models.ExpenseSummary{Total: decimal.Zero, WindowDays: windowDays, Category: category}, nil
}

func (f *fakeExpenseStore) RecentSnapshot(ctx context.Context, ownerID string) (*models.FinancialSnapshot, error) {
	if f.snapshotErr != nil {
		return nil, f.snapshotErr
	}
	if f.snapshot != nil {
		return f.snapshot, nil
	}
	return &models.FinancialSnapshot{MonthlySpending: decimal.Zero}, nil
}

type fakeGoalStore struct {
	created []*models.Goal
	count   int
}

func (f *fakeGoalStore) Create(ctx context.Context, g *models.Goal) error {
	f.created = append(f.created, g)
	return nil
}

func (f *fakeGoalStore) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	return f.count, nil
}

type fixture struct {
	transcriber *fakeTranscriber
	router      *fakeRouter
	intents     *fakeIntents
	completer   *fakeCompleter
	expenses    *fakeExpenseStore
	goals       *fakeGoalStore
	pipeline    *Pipeline
}

func newFixture(t *testing.T, route service.Route) *fixture {
	t.Helper()
	f := &fixture{
		transcriber: &fakeTranscriber{},
		router:      &fakeRouter{route: route},
		intents:     &fakeIntents{},
		completer:   &fakeCompleter{reply: "ok"},
		expenses:    &fakeExpenseStore{},
		goals:       &fakeGoalStore{},
	}
	f.pipeline = New(f.transcriber, f.router, f.intents, f.completer, f.expenses, f.goals, zap.NewNop())
	return f
}

func floatPtr(v float64) *float64 { return &v }

func TestAddExpenseMissingAmount(t *testing.T) {
	f := newFixture(t, service.RouteExpense)
	f.intents.intent = service.Intent{Action: service.ActionAddExpense}

	st := f.pipeline.Run(context.Background(), State{OwnerID: "u1", Transcript: "I spent money on food"})

	if !strings.Contains(st.Reply, "couldn't understand the amount") {
		t.Errorf("reply = %q, want amount clarification", st.Reply)
	}
	if len(f.expenses.created) != 0 {
		t.Errorf("wrote %d expenses, want 0", len(f.expenses.created))
	}
	if f.completer.calls != 0 {
		t.Errorf("completer called %d times, want 0", f.completer.calls)
	}
}

func TestAddExpenseNonPositiveAmount(t *testing.T) {
	f := newFixture(t, service.RouteExpense)
	f.intents.intent = service.Intent{Action: service.ActionAddExpense, Amount: floatPtr(-20)}

	st := f.pipeline.Run(context.Background(), State{OwnerID: "u1", Transcript: "refund of 20"})

	if !strings.Contains(st.Reply, "couldn't understand the amount") {
		t.Errorf("reply = %q, want amount clarification", st.Reply)
	}
	if len(f.expenses.created) != 0 {
		t.Errorf("wrote %d expenses, want 0", len(f.expenses.created))
	}
}

func TestAddExpenseRecordsAndConfirms(t *testing.T) {
	f := newFixture(t, service.RouteExpense)
	f.intents.intent = service.Intent{
		Action:   service.ActionAddExpense,
		Amount:   floatPtr(500),
		Category: "Food",
	}
	f.completer.reply = "Logged 500 dollars on food! 🎉"

	st := f.pipeline.Run(context.Background(), State{OwnerID: "u1", Transcript: "I spent 500 on food"})

	if len(f.expenses.created) != 1 {
		t.Fatalf("wrote %d expenses, want 1", len(f.expenses.created))
	}
	expense := f.expenses.created[0]
	if expense.Category != "food" {
		t.Errorf("category = %q, want normalized %q", expense.Category, "food")
	}
	if !expense.Amount.Equal(decimal.NewFromInt(500)) {
		t.Errorf("amount = %s, want 500", expense.Amount)
	}
	if expense.OwnerID != "u1" {
		t.Errorf("owner = %q, want u1", expense.OwnerID)
	}

	if !strings.Contains(st.Reply, "500") || !strings.Contains(st.Reply, service.CurrencySymbol) {
		t.Errorf("reply = %q, want the amount and the rupee marker", st.Reply)
	}
	if strings.Contains(st.Reply, "dollar") {
		t.Errorf("reply = %q, foreign currency word leaked through", st.Reply)
	}
}

func TestQueryExpensesZeroTotalShortCircuits(t *testing.T) {
	f := newFixture(t, service.RouteExpense)
	f.intents.intent = service.Intent{Action: service.ActionQueryExpense, Category: "Groceries"}

	st := f.pipeline.Run(context.Background(), State{OwnerID: "u1", Transcript: "how much on groceries today"})

	if !strings.Contains(st.Reply, "have not spent any money on grocery") {
		t.Errorf("reply = %q, want canned zero-result message", st.Reply)
	}
	if f.completer.calls != 0 {
		t.Errorf("completer called %d times on zero result, want 0", f.completer.calls)
	}
	if f.expenses.lastCategory != "grocery" {
		t.Errorf("queried category = %q, want normalized %q", f.expenses.lastCategory, "grocery")
	}
	if f.expenses.lastWindow != 1 {
		t.Errorf("window = %d days, want 1 for 'today'", f.expenses.lastWindow)
	}
}

func TestQueryExpensesSummaryReply(t *testing.T) {
	f := newFixture(t, service.RouteExpense)
	f.intents.intent = service.Intent{Action: service.ActionQueryExpense}
	f.expenses.summary = &models.ExpenseSummary{
		Total:            decimal.NewFromInt(1250),
		TransactionCount: 4,
	}
	f.completer.reply = "You spent ₹1250 across 4 transactions this week. 📊"

	st := f.pipeline.Run(context.Background(), State{OwnerID: "u1", Transcript: "what did I spend last week"})

	if f.completer.calls != 1 {
		t.Fatalf("completer called %d times, want 1", f.completer.calls)
	}
	if f.expenses.lastWindow != 7 {
		t.Errorf("window = %d days, want 7", f.expenses.lastWindow)
	}
	if !strings.Contains(st.Reply, "1250") {
		t.Errorf("reply = %q, want the total", st.Reply)
	}
}

func TestGoalKeywordGatePersists(t *testing.T) {
	f := newFixture(t, service.RouteGoals)
	f.completer.reply = "Try putting aside ₹2000 a month! 💪"

	st := f.pipeline.Run(context.Background(), State{OwnerID: "u1", Transcript: "I want to save for a bike"})

	if len(f.goals.created) != 1 {
		t.Fatalf("wrote %d goals, want 1", len(f.goals.created))
	}
	goal := f.goals.created[0]
	if goal.GoalText != "I want to save for a bike" {
		t.Errorf("goal text = %q, want the raw transcript", goal.GoalText)
	}
	if goal.AdviceGiven == "" {
		t.Error("advice_given is empty, want the model reply")
	}
	if st.Reply == "" {
		t.Error("reply is empty")
	}
}

func TestGoalAdviceWithoutKeywordDoesNotPersist(t *testing.T) {
	f := newFixture(t, service.RouteGoals)
	f.completer.reply = "Here is some budgeting advice. 📒"

	f.pipeline.Run(context.Background(), State{OwnerID: "u1", Transcript: "give me budgeting tips"})

	if len(f.goals.created) != 0 {
		t.Errorf("wrote %d goals, want 0 without a savings keyword", len(f.goals.created))
	}
}

func TestExitSetsTerminateEvenOnModelFailure(t *testing.T) {
	f := newFixture(t, service.RouteExit)
	f.completer.err = errors.New("model down")

	st := f.pipeline.Run(context.Background(), State{OwnerID: "u1", Transcript: "bye"})

	if !st.Terminate {
		t.Error("terminate flag not set")
	}
	if !strings.Contains(st.Reply, "Thank you for using FinVoice") {
		t.Errorf("reply = %q, want the farewell fallback", st.Reply)
	}
}

func TestHandlerFailureIsAbsorbed(t *testing.T) {
	f := newFixture(t, service.RouteInsights)
	f.expenses.snapshotErr = errors.New("db down")

	st := f.pipeline.Run(context.Background(), State{OwnerID: "u1", Transcript: "show my spending habits"})

	if st.Reply == "" {
		t.Fatal("reply is empty, want the insights fallback")
	}
	if !strings.Contains(st.Reply, "couldn't analyze") {
		t.Errorf("reply = %q, want the insights fallback", st.Reply)
	}
}

func TestTranscriptionFailureStopsPipeline(t *testing.T) {
	f := newFixture(t, service.RouteConversation)
	f.transcriber.err = errors.New("speech api down")

	st := f.pipeline.Run(context.Background(), State{OwnerID: "u1", AudioPath: "/tmp/nope.wav"})

	if !strings.Contains(st.Reply, "couldn't transcribe") {
		t.Errorf("reply = %q, want the transcription apology", st.Reply)
	}
	if f.router.calls != 0 {
		t.Errorf("router called %d times after transcription failure, want 0", f.router.calls)
	}
}

func TestAudioRequestIsTranscribedThenRouted(t *testing.T) {
	f := newFixture(t, service.RouteConversation)
	f.transcriber.text = "hello there"
	f.completer.reply = "Hi! How can I help with your finances today? 😊"

	st := f.pipeline.Run(context.Background(), State{OwnerID: "u1", AudioPath: "/tmp/clip.wav"})

	if st.Transcript != "hello there" {
		t.Errorf("transcript = %q, want the transcriber output", st.Transcript)
	}
	if f.router.calls != 1 {
		t.Errorf("router called %d times, want 1", f.router.calls)
	}
	if st.Reply == "" {
		t.Error("reply is empty")
	}
}
