package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Route identifies which of the five handlers serves a request.
type Route string

const (
	RouteExpense      Route = "expense_manager"
	RouteInsights     Route = "financial_insights"
	RouteGoals        Route = "goal_advisor"
	RouteConversation Route = "conversation_manager"
	RouteExit         Route = "exit_handler"
)

// Classifier is the deterministic completion surface the router and the
// intent extractor rely on.
type Classifier interface {
	Classify(ctx context.Context, prompt string) (string, error)
}

var validRoutes = map[Route]struct{}{
	RouteExpense:      {},
	RouteInsights:     {},
	RouteGoals:        {},
	RouteConversation: {},
	RouteExit:         {},
}

// RouterService picks exactly one handler for a piece of user text. All
// dispatch logic lives behind the external classifier; on failure or an
// out-of-vocabulary answer the conversation handler is the fail-safe.
type RouterService struct {
	llm    Classifier
	logger *zap.Logger
}

func NewRouterService(llm Classifier, logger *zap.Logger) *RouterService {
	return &RouterService{
		llm:    llm,
		logger: logger,
	}
}

func (s *RouterService) Route(ctx context.Context, text string) Route {
	if strings.TrimSpace(text) == "" {
		return RouteConversation
	}

	answer, err := s.llm.Classify(ctx, buildRouterPrompt(text))
	if err != nil {
		s.logger.Warn("Router classification failed, falling back to conversation", zap.Error(err))
		return RouteConversation
	}

	route := Route(strings.ToLower(strings.TrimSpace(answer)))
	if _, ok := validRoutes[route]; !ok {
		s.logger.Warn("Router returned unknown handler, falling back to conversation",
			zap.String("answer", answer),
		)
		return RouteConversation
	}

	return route
}

func buildRouterPrompt(text string) string {
	return fmt.Sprintf(`Analyze the user's request: %q
Choose one specialist to handle the request.

Specialist options:
- expense_manager: the user wants to add, track, or query specific expenses or spending. Keywords: 'spent', 'expense', 'cost', 'bill', 'money on', 'spending', 'how much'.
- financial_insights: general financial questions or trends that require analysis beyond a single transaction. Keywords: 'spending habits', 'savings rate', 'trends', 'most', 'least'.
- goal_advisor: questions about financial goals, savings, or investments. Keywords: 'save money', 'budget', 'goals', 'invest'.
- conversation_manager: small talk, greetings, or when the intent is unclear. Keywords: 'hello', 'hi', 'how are you', 'thank you'.
- exit_handler: the user wants to end the conversation. Keywords: 'goodbye', 'bye', 'see you later'.

Reply with only the name of the chosen specialist, with no extra text or explanation.`, text)
}
