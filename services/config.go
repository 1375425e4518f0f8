package services

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	AI        AIConfig
	JWT       JWTConfig
	WebSocket WebSocketConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	Interview InterviewConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	URL          string
	LogLevel     string
	MaxIdleConns int
	MaxOpenConns int
}

type AIConfig struct {
	GeminiAPIKey   string
	GeminiModel    string
	GroqAPIKey     string
	GroqURL        string
	GroqModel      string
	ConnectTimeout time.Duration
	RequestTimeout time.Duration
	MaxRetries     int
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

type WebSocketConfig struct {
	AllowedOrigins string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RateLimitConfig struct {
	PerMinute int
}

type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type InterviewConfig struct {
	MaxQuestions int
	ResumeChars  int
	AsyncTimeout time.Duration
}

// envBindings maps config keys to their environment variables.
var envBindings = map[string]string{
	"server.port":               "SERVER_PORT",
	"database.url":              "DATABASE_URL",
	"database.log_level":        "DATABASE_LOG_LEVEL",
	"database.max_idle_conns":   "DATABASE_MAX_IDLE_CONNS",
	"database.max_open_conns":   "DATABASE_MAX_OPEN_CONNS",
	"ai.gemini.api_key":         "GEMINI_API_KEY",
	"ai.gemini.model":           "GEMINI_MODEL",
	"ai.groq.api_key":           "GROQ_API_KEY",
	"ai.groq.url":               "GROQ_API_URL",
	"ai.groq.model":             "GROQ_MODEL",
	"ai.connect_timeout":        "AI_CONNECT_TIMEOUT",
	"ai.request_timeout":        "AI_REQUEST_TIMEOUT",
	"ai.max_retries":            "AI_MAX_RETRIES",
	"jwt.secret":                "JWT_SECRET",
	"jwt.expiry":                "JWT_EXPIRY",
	"websocket.allowed_origins": "WEBSOCKET_ALLOWED_ORIGINS",
	"cors.allowed_origins":      "CORS_ALLOWED_ORIGINS",
	"rate_limit.per_minute":     "RATE_LIMIT_PER_MINUTE",
	"log.level":                 "LOG_LEVEL",
	"log.file":                  "LOG_FILE",
	"log.max_size_mb":           "LOG_MAX_SIZE_MB",
	"log.max_backups":           "LOG_MAX_BACKUPS",
	"log.max_age_days":          "LOG_MAX_AGE_DAYS",
	"interview.max_questions":   "INTERVIEW_MAX_QUESTIONS",
	"interview.resume_chars":    "INTERVIEW_RESUME_CHARS",
	"interview.async_timeout":   "INTERVIEW_ASYNC_TIMEOUT",
}

// LoadConfig loads configuration from environment variables and config files.
// An empty path reads .env from the working directory when present.
func LoadConfig(path string) *Config {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".env")
		v.SetConfigType("env")
		v.AddConfigPath(".")
	}
	v.AutomaticEnv()

	// Set defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("database.url", "")
	v.SetDefault("database.log_level", "silent")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	v.SetDefault("ai.groq.url", "https://api.groq.com/openai/v1/chat/completions")
	v.SetDefault("ai.groq.model", "llama-3.3-70b-versatile")
	v.SetDefault("ai.connect_timeout", "30s")
	v.SetDefault("ai.request_timeout", "60s")
	v.SetDefault("ai.max_retries", 1)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("websocket.allowed_origins", "")
	v.SetDefault("cors.allowed_origins", "")
	v.SetDefault("rate_limit.per_minute", 60)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("interview.max_questions", DefaultMaxQuestions)
	v.SetDefault("interview.resume_chars", 1000)
	v.SetDefault("interview.async_timeout", "2m")

	// Map environment variables to config keys
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			slog.Warn("Config file not found, using defaults and environment variables")
		} else {
			slog.Error("Error reading config file", "error", err)
		}
	}

	return &Config{
		Server: ServerConfig{
			Port: v.GetString("server.port"),
		},
		Database: DatabaseConfig{
			URL:          v.GetString("database.url"),
			LogLevel:     v.GetString("database.log_level"),
			MaxIdleConns: v.GetInt("database.max_idle_conns"),
			MaxOpenConns: v.GetInt("database.max_open_conns"),
		},
		AI: AIConfig{
			GeminiAPIKey:   v.GetString("ai.gemini.api_key"),
			GeminiModel:    v.GetString("ai.gemini.model"),
			GroqAPIKey:     v.GetString("ai.groq.api_key"),
			GroqURL:        v.GetString("ai.groq.url"),
			GroqModel:      v.GetString("ai.groq.model"),
			ConnectTimeout: v.GetDuration("ai.connect_timeout"),
			RequestTimeout: v.GetDuration("ai.request_timeout"),
			MaxRetries:     v.GetInt("ai.max_retries"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
			Expiry: v.GetDuration("jwt.expiry"),
		},
		WebSocket: WebSocketConfig{
			AllowedOrigins: v.GetString("websocket.allowed_origins"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
		},
		RateLimit: RateLimitConfig{
			PerMinute: v.GetInt("rate_limit.per_minute"),
		},
		Log: LogConfig{
			Level:      v.GetString("log.level"),
			File:       v.GetString("log.file"),
			MaxSizeMB:  v.GetInt("log.max_size_mb"),
			MaxBackups: v.GetInt("log.max_backups"),
			MaxAgeDays: v.GetInt("log.max_age_days"),
		},
		Interview: InterviewConfig{
			MaxQuestions: v.GetInt("interview.max_questions"),
			ResumeChars:  v.GetInt("interview.resume_chars"),
			AsyncTimeout: v.GetDuration("interview.async_timeout"),
		},
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
