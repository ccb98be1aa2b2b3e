package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	GigaChat  GigaChatConfig
	Speech    SpeechConfig
	Assistant AssistantConfig
	Logger    LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	InsecureSkipVerify bool
	Timeout            time.Duration
}

// SpeechConfig points at an OpenAI-compatible /audio/transcriptions endpoint.
type SpeechConfig struct {
	BaseURL  string
	APIKey   string
	Model    string
	Language string
	Timeout  time.Duration
}

type AssistantConfig struct {
	// AudioDir holds uploaded audio between request receipt and transcription.
	AudioDir string
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// No .env file is fine, environment variables are used directly
	// (useful for Docker/K8s)

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	llmTimeout, _ := strconv.Atoi(getEnv("GIGACHAT_TIMEOUT", "30"))
	speechTimeout, _ := strconv.Atoi(getEnv("SPEECH_TIMEOUT", "60"))
	insecureSkipVerify := getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "true") == "true"

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8000"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "finvoice"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			InsecureSkipVerify: insecureSkipVerify,
			Timeout:            time.Duration(llmTimeout) * time.Second,
		},
		Speech: SpeechConfig{
			BaseURL:  getEnv("SPEECH_BASE_URL", "https://api.openai.com/v1"),
			APIKey:   getEnv("SPEECH_API_KEY", ""),
			Model:    getEnv("SPEECH_MODEL", "whisper-1"),
			Language: getEnv("SPEECH_LANGUAGE", "en"),
			Timeout:  time.Duration(speechTimeout) * time.Second,
		},
		Assistant: AssistantConfig{
			AudioDir: getEnv("AUDIO_DIR", "temp_audio"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
