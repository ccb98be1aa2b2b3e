package handlers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"finvoice/internal/dto"
	"finvoice/internal/pipeline"
	"finvoice/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var supportedAudioExts = map[string]struct{}{
	".wav":  {},
	".mp3":  {},
	".m4a":  {},
	".webm": {},
}

const defaultVoiceOwner = "default_user"

type ChatHandler struct {
	pipeline *pipeline.Pipeline
	sessions *service.SessionStore
	audioDir string
	logger   *zap.Logger
}

func NewChatHandler(p *pipeline.Pipeline, sessions *service.SessionStore, audioDir string, logger *zap.Logger) *ChatHandler {
	if err := os.MkdirAll(audioDir, 0o755); err != nil {
		logger.Warn("Failed to create audio directory", zap.Error(err))
	}
	return &ChatHandler{
		pipeline: p,
		sessions: sessions,
		audioDir: audioDir,
		logger:   logger,
	}
}

// Chat handles a typed message and returns the assistant's reply.
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ChatResponse{
			Success:  false,
			Response: "Please provide a message",
			UserID:   req.UserID,
		})
	}

	st := h.pipeline.Run(c.Context(), pipeline.State{
		OwnerID:    req.UserID,
		Transcript: req.Message,
	})

	h.sessions.Append(req.UserID, "user", req.Message)
	h.sessions.Append(req.UserID, "assistant", st.Reply)

	return c.JSON(dto.ChatResponse{
		Success:  true,
		Response: st.Reply,
		UserID:   req.UserID,
	})
}

// ChatAudio handles an uploaded audio clip. The payload is written to a
// transient file, consumed exactly once by the transcriber, then removed
// on both the success and the failure path.
func (h *ChatHandler) ChatAudio(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Audio file is required",
		})
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if _, ok := supportedAudioExts[ext]; !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unsupported file format. Please use WAV, MP3, M4A, or WEBM.",
		})
	}
	if file.Size == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Empty audio file",
		})
	}

	ownerID := c.FormValue("user_id", defaultVoiceOwner)

	audioPath := filepath.Join(h.audioDir, fmt.Sprintf("api_%s_%s%s",
		time.Now().Format("20060102150405"), uuid.New().String(), ext))
	if err := c.SaveFile(file, audioPath); err != nil {
		h.logger.Error("Failed to save audio file", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save audio file",
		})
	}
	defer func() {
		if err := os.Remove(audioPath); err != nil && !os.IsNotExist(err) {
			h.logger.Warn("Failed to remove audio file", zap.Error(err))
		}
	}()

	st := h.pipeline.Run(c.Context(), pipeline.State{
		OwnerID:   ownerID,
		AudioPath: audioPath,
	})

	userText := st.Transcript
	if userText == "" {
		userText = "Audio input"
	}

	return c.JSON(dto.VoiceResponse{
		Success:  true,
		Message:  st.Reply,
		UserText: userText,
	})
}

// Health returns a static status payload with a timestamp.
func (h *ChatHandler) Health(c *fiber.Ctx) error {
	return c.JSON(dto.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Service:   "FinVoice API",
		Version:   "1.0",
	})
}
