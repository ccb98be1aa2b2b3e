package service

import (
	"context"
	"fmt"
	"time"

	"finvoice/pkg/config"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
)

// systemInstruction keeps every generated reply in the assistant's voice
// and in Indian-rupee phrasing.
const systemInstruction = `You are FinVoice, a friendly AI personal-finance assistant.
All amounts are in Indian Rupees. Use the ₹ symbol instead of $ and say rupees
instead of dollars. Keep replies short, warm, and practical, and use emojis
where they fit naturally.`

// LLMService wraps the GigaChat client with two generative models: a
// precise one (temperature 0) for classification and structured
// extraction, and a creative one for user-facing replies.
type LLMService struct {
	client   *gigago.Client
	precise  *gigago.GenerativeModel
	creative *gigago.GenerativeModel
	timeout  time.Duration
	logger   *zap.Logger
}

func NewLLMService(cfg *config.GigaChatConfig, logger *zap.Logger) (*LLMService, error) {
	ctx := context.Background()

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	precise := client.GenerativeModel("GigaChat")
	precise.Temperature = 0

	creative := client.GenerativeModel("GigaChat")
	creative.SystemInstruction = systemInstruction
	creative.Temperature = 0.7

	return &LLMService{
		client:   client,
		precise:  precise,
		creative: creative,
		timeout:  cfg.Timeout,
		logger:   logger,
	}, nil
}

// Classify runs a deterministic completion for routing and extraction.
func (s *LLMService) Classify(ctx context.Context, prompt string) (string, error) {
	return s.generate(ctx, s.precise, prompt)
}

// Complete runs a creative completion for user-facing replies.
func (s *LLMService) Complete(ctx context.Context, prompt string) (string, error) {
	return s.generate(ctx, s.creative, prompt)
}

func (s *LLMService) generate(ctx context.Context, model *gigago.GenerativeModel, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: prompt},
	}

	resp, err := model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	return resp.Choices[0].Message.Content, nil
}

func (s *LLMService) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	return nil
}
