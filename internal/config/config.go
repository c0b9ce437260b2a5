package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Ai       AIConfig
	Breaker  BreakerConfig
	Retry    RetryConfig
	Apply    ApplyConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	StepEventTopic     string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host          string
	Port          int
	Email         string
	Password      string
	SenderName    string
	ReviewerEmail string
}

type AIConfig struct {
	PrimaryProvider   string // "ollama" or "huggingface"
	SecondaryProvider string // optional failover, empty disables
	OllamaBaseURL     string
	OllamaModel       string
	HuggingFaceKey    string
	HuggingFaceURL    string
	HuggingFaceModel  string
}

type BreakerConfig struct {
	FailureThreshold int
	CooldownMs       int
	SuccessThreshold int
}

type RetryConfig struct {
	MaxAttempts    int
	InitialDelayMs int
	BackoffFactor  int
}

type ApplyConfig struct {
	LibraryRoot string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			StepEventTopic:     getEnv("STEP_EVENT_TOPIC_NAME", "JOB_STEP_COMPLETED"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:          getEnv("SMTP_HOST", ""),
			Port:          getEnvAsInt("SMTP_PORT", 587),
			Email:         getEnv("SMTP_EMAIL", ""),
			Password:      getEnv("SMTP_PASSWORD", ""),
			SenderName:    getEnv("SMTP_SENDER_NAME", "Organizer"),
			ReviewerEmail: getEnv("REVIEWER_EMAIL", ""),
		},
		Ai: AIConfig{
			PrimaryProvider:   getEnv("LLM_PROVIDER", "ollama"),
			SecondaryProvider: getEnv("LLM_SECONDARY_PROVIDER", ""),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("LLM_MODEL", "llama3"),
			HuggingFaceKey:    getEnv("HUGGINGFACE_API_KEY", ""),
			HuggingFaceURL:    getEnv("HUGGINGFACE_BASE_URL", ""),
			HuggingFaceModel:  getEnv("HUGGINGFACE_MODEL", "meta-llama/Llama-3.1-8B-Instruct"),
		},
		Breaker: BreakerConfig{
			FailureThreshold: getEnvAsInt("BREAKER_FAILURE_THRESHOLD", 5),
			CooldownMs:       getEnvAsInt("BREAKER_COOLDOWN_MS", 30000),
			SuccessThreshold: getEnvAsInt("BREAKER_SUCCESS_THRESHOLD", 1),
		},
		Retry: RetryConfig{
			MaxAttempts:    getEnvAsInt("RETRY_MAX_ATTEMPTS", 3),
			InitialDelayMs: getEnvAsInt("RETRY_INITIAL_DELAY_MS", 200),
			BackoffFactor:  getEnvAsInt("RETRY_BACKOFF_FACTOR", 2),
		},
		Apply: ApplyConfig{
			LibraryRoot: getEnv("LIBRARY_ROOT", "./library"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
