package pipeline

import (
	"context"

	"finvoice/internal/models"
	"finvoice/internal/service"

	"go.uber.org/zap"
)

// Collaborators. The pipeline owns the absorb-and-substitute policy, so it
// talks to every external service through a narrow interface that a test
// can replace.

type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

type Router interface {
	Route(ctx context.Context, text string) service.Route
}

type IntentExtractor interface {
	Extract(ctx context.Context, text string) service.Intent
}

type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type ExpenseStore interface {
	Create(ctx context.Context, e *models.Expense) error
	Summarize(ctx context.Context, ownerID, category string, windowDays int) (*models.ExpenseSummary, error)
	RecentSnapshot(ctx context.Context, ownerID string) (*models.FinancialSnapshot, error)
}

type GoalStore interface {
	Create(ctx context.Context, g *models.Goal) error
	CountByOwner(ctx context.Context, ownerID string) (int, error)
}

const transcribeFallback = "Sorry, I couldn't transcribe your audio. Please try again."

// Pipeline runs the fixed request graph: speech_to_text → router → exactly
// one handler → done. Stages execute strictly in sequence; a request
// blocks only at external-call boundaries.
type Pipeline struct {
	transcriber Transcriber
	router      Router
	intents     IntentExtractor
	llm         Completer
	expenses    ExpenseStore
	goals       GoalStore
	logger      *zap.Logger
}

func New(
	transcriber Transcriber,
	router Router,
	intents IntentExtractor,
	llm Completer,
	expenses ExpenseStore,
	goals GoalStore,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		transcriber: transcriber,
		router:      router,
		intents:     intents,
		llm:         llm,
		expenses:    expenses,
		goals:       goals,
		logger:      logger,
	}
}

// Run executes the graph once. Every failure is absorbed here and turned
// into a user-visible reply; the returned state always carries one.
func (p *Pipeline) Run(ctx context.Context, st State) State {
	if st.AudioPath != "" {
		text, err := p.transcriber.Transcribe(ctx, st.AudioPath)
		if err != nil {
			p.logger.Warn("Transcription failed", zap.Error(err))
			st.Reply = transcribeFallback
			return st
		}
		st.Transcript = text
	}

	st.Route = p.router.Route(ctx, st.Transcript)

	h := p.handlerFor(st.Route)
	reply, err := h.run(ctx, &st)
	if err != nil {
		p.logger.Warn("Handler failed, substituting fallback reply",
			zap.String("route", string(st.Route)),
			zap.Error(err),
		)
		reply = h.fallback
	}

	st.Reply = service.NormalizeCurrency(reply)
	return st
}

type handler struct {
	fallback string
	run      func(ctx context.Context, st *State) (string, error)
}

func (p *Pipeline) handlerFor(route service.Route) handler {
	switch route {
	case service.RouteExpense:
		return handler{fallback: "❌ Sorry, I couldn't process that expense.", run: p.handleExpense}
	case service.RouteInsights:
		return handler{fallback: "❌ Sorry, I couldn't analyze your spending right now.", run: p.handleInsights}
	case service.RouteGoals:
		return handler{fallback: "❌ Sorry, I couldn't come up with advice right now.", run: p.handleGoals}
	case service.RouteExit:
		return handler{fallback: "👋 Thank you for using FinVoice!", run: p.handleExit}
	default:
		return handler{fallback: "Sorry, I had trouble replying. Please try again.", run: p.handleConversation}
	}
}
