package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"finvoice/pkg/config"

	"go.uber.org/zap"
)

// Transcriber converts an audio file into text.
type Transcriber struct {
	cfg        *config.SpeechConfig
	httpClient *http.Client
	logger     *zap.Logger
}

func NewTranscriber(cfg *config.SpeechConfig, logger *zap.Logger) *Transcriber {
	return &Transcriber{
		cfg:        cfg,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// Transcribe sends the audio file to the hosted speech-to-text API and
// returns the recognized text. The file is consumed exactly once; the
// caller owns its lifetime.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	file, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("model", t.cfg.Model); err != nil {
		return "", fmt.Errorf("failed to write model field: %w", err)
	}
	if t.cfg.Language != "" {
		if err := writer.WriteField("language", t.cfg.Language); err != nil {
			return "", fmt.Errorf("failed to write language field: %w", err)
		}
	}

	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("failed to copy audio file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.cfg.BaseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+t.cfg.APIKey)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call transcription API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("transcription failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var transcription struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&transcription); err != nil {
		return "", fmt.Errorf("failed to decode transcription response: %w", err)
	}

	text := strings.TrimSpace(transcription.Text)
	t.logger.Info("Audio transcribed",
		zap.String("file", filepath.Base(audioPath)),
		zap.Int("text_length", len(text)),
	)

	return text, nil
}
