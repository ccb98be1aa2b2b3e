package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type fakeClassifier struct {
	answer string
	err    error
	calls  int
}

func (f *fakeClassifier) Classify(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.answer, f.err
}

func TestRouteValidAnswers(t *testing.T) {
	cases := []struct {
		answer string
		want   Route
	}{
		{"expense_manager", RouteExpense},
		{"financial_insights", RouteInsights},
		{"goal_advisor", RouteGoals},
		{"conversation_manager", RouteConversation},
		{"exit_handler", RouteExit},
		{"  Expense_Manager \n", RouteExpense},
	}

	for _, tc := range cases {
		router := NewRouterService(&fakeClassifier{answer: tc.answer}, zap.NewNop())
		if got := router.Route(context.Background(), "I spent 500 on food"); got != tc.want {
			t.Errorf("Route with answer %q = %q, want %q", tc.answer, got, tc.want)
		}
	}
}

func TestRouteUnknownAnswerFallsBack(t *testing.T) {
	router := NewRouterService(&fakeClassifier{answer: "stock_picker"}, zap.NewNop())
	if got := router.Route(context.Background(), "buy me stocks"); got != RouteConversation {
		t.Errorf("out-of-vocabulary answer routed to %q, want %q", got, RouteConversation)
	}
}

func TestRouteClassifierErrorFallsBack(t *testing.T) {
	router := NewRouterService(&fakeClassifier{err: errors.New("boom")}, zap.NewNop())
	if got := router.Route(context.Background(), "hello"); got != RouteConversation {
		t.Errorf("classifier failure routed to %q, want %q", got, RouteConversation)
	}
}

func TestRouteEmptyTextSkipsClassifier(t *testing.T) {
	classifier := &fakeClassifier{answer: "expense_manager"}
	router := NewRouterService(classifier, zap.NewNop())

	if got := router.Route(context.Background(), "   "); got != RouteConversation {
		t.Errorf("empty text routed to %q, want %q", got, RouteConversation)
	}
	if classifier.calls != 0 {
		t.Errorf("classifier called %d times for empty text, want 0", classifier.calls)
	}
}
