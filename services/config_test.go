package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := LoadConfig("")
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Empty(t, cfg.Database.URL)
	assert.Equal(t, "gemini-2.5-flash", cfg.AI.GeminiModel)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.AI.GroqModel)
	assert.Equal(t, 30*time.Second, cfg.AI.ConnectTimeout)
	assert.Equal(t, 60*time.Second, cfg.AI.RequestTimeout)
	assert.Equal(t, 1, cfg.AI.MaxRetries)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiry)
	assert.Empty(t, cfg.CORS.AllowedOrigins)
	assert.Equal(t, DefaultMaxQuestions, cfg.Interview.MaxQuestions)
	assert.Equal(t, 1000, cfg.Interview.ResumeChars)
	assert.Equal(t, 2*time.Minute, cfg.Interview.AsyncTimeout)
}

func TestLoadConfigEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://localhost/hireready")
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("AI_REQUEST_TIMEOUT", "5s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("INTERVIEW_MAX_QUESTIONS", "4")

	cfg := LoadConfig("")
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "postgres://localhost/hireready", cfg.Database.URL)
	assert.Equal(t, "gsk_test", cfg.AI.GroqAPIKey)
	assert.Equal(t, 5*time.Second, cfg.AI.RequestTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 4, cfg.Interview.MaxQuestions)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "7000"
jwt:
  secret: from-file
interview:
  resume_chars: 250
`), 0o600))
	t.Setenv("SERVER_PORT", "7100")

	cfg := LoadConfig(path)
	assert.Equal(t, "7100", cfg.Server.Port, "environment wins over file")
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, 250, cfg.Interview.ResumeChars)
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"a", "b"}, splitList(" a ,b,, "))
}
