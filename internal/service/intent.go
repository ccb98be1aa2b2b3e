package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

type IntentAction string

const (
	ActionAddExpense   IntentAction = "add_expense"
	ActionQueryExpense IntentAction = "query_expense"
)

// Intent is the structured extraction of what the user wants done with an
// expense. It is transient: produced here, consumed once by the expense
// handler, never persisted.
type Intent struct {
	Action      IntentAction `json:"action"`
	Amount      *float64     `json:"amount"`
	Category    string       `json:"category"`
	Description string       `json:"description"`
	Date        string       `json:"date"`
}

// IntentService extracts a best-effort Intent from free text. It never
// returns an error: malformed or unparseable model output degrades to a
// default query-with-no-filters intent so the pipeline always produces
// some reply.
type IntentService struct {
	llm    Classifier
	logger *zap.Logger
}

func NewIntentService(llm Classifier, logger *zap.Logger) *IntentService {
	return &IntentService{
		llm:    llm,
		logger: logger,
	}
}

func (s *IntentService) Extract(ctx context.Context, text string) Intent {
	answer, err := s.llm.Classify(ctx, buildIntentPrompt(text))
	if err != nil {
		s.logger.Warn("Intent extraction failed, falling back to default query", zap.Error(err))
		return defaultIntent(text)
	}

	intent, err := parseIntent(answer)
	if err != nil {
		s.logger.Warn("Failed to parse intent, falling back to default query",
			zap.Error(err),
			zap.String("answer", answer),
		)
		return defaultIntent(text)
	}

	return intent
}

func defaultIntent(text string) Intent {
	return Intent{
		Action:      ActionQueryExpense,
		Description: text,
	}
}

func parseIntent(answer string) (Intent, error) {
	// The model may wrap the object in markdown or surrounding prose.
	jsonStart := strings.Index(answer, "{")
	jsonEnd := strings.LastIndex(answer, "}")
	if jsonStart == -1 || jsonEnd == -1 || jsonEnd < jsonStart {
		return Intent{}, fmt.Errorf("no JSON object in response: %s", answer)
	}

	jsonStr := answer[jsonStart : jsonEnd+1]

	var intent Intent
	if err := json.Unmarshal([]byte(jsonStr), &intent); err != nil {
		return Intent{}, fmt.Errorf("failed to parse intent JSON: %w", err)
	}

	switch intent.Action {
	case ActionAddExpense, ActionQueryExpense:
	default:
		return Intent{}, fmt.Errorf("unknown intent action %q", intent.Action)
	}

	return intent, nil
}

func buildIntentPrompt(text string) string {
	return fmt.Sprintf(`Extract the expense intent from the user's message: %q

Return ONLY a valid JSON object, without markdown or commentary:
{
  "action": "add_expense" or "query_expense",
  "amount": expense amount as a number if mentioned, otherwise null,
  "category": "expense category like food, transport, etc., otherwise null",
  "description": "short description of the expense or query",
  "date": "date phrase if mentioned (e.g. 'yesterday', 'last monday'), otherwise null"
}

Rules:
- "add_expense" when the user reports money already spent.
- "query_expense" when the user asks about past spending.
- The amount must be a positive number, never a string.`, text)
}
