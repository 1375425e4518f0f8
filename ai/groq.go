package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultGroqURL   = "https://api.groq.com/openai/v1/chat/completions"
	DefaultGroqModel = "llama-3.3-70b-versatile"

	groqTemperature = 0.7
	groqMaxTokens   = 2000
)

// NewHTTPClient returns a client with a dial timeout and an overall per-request
// timeout, shared by the providers.
func NewHTTPClient(connectTimeout, requestTimeout time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: connectTimeout}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext
	transport.TLSHandshakeTimeout = connectTimeout
	transport.ResponseHeaderTimeout = requestTimeout
	return &http.Client{Transport: transport, Timeout: requestTimeout}
}

// GroqProvider calls an OpenAI-compatible chat completions endpoint.
type GroqProvider struct {
	apiKey string
	url    string
	model  string
	hc     *http.Client
}

func NewGroqProvider(apiKey, url, model string, hc *http.Client) *GroqProvider {
	if url == "" {
		url = DefaultGroqURL
	}
	if model == "" {
		model = DefaultGroqModel
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &GroqProvider{apiKey: apiKey, url: url, model: model, hc: hc}
}

func (g *GroqProvider) Name() string { return "groq" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (g *GroqProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", backoff.Permanent(errors.New("groq api key is empty"))
	}

	body, err := json.Marshal(chatRequest{
		Model:       g.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: groqTemperature,
		MaxTokens:   groqMaxTokens,
	})
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("failed to encode chat request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("failed to build chat request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("groq request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read groq response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		slog.Warn("groq transient error", "provider", g.Name(), "status", resp.StatusCode)
		return "", fmt.Errorf("groq status %d", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(raw)
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		slog.Error("groq request rejected", "provider", g.Name(), "status", resp.StatusCode, "body", snippet)
		return "", backoff.Permanent(fmt.Errorf("groq status %d", resp.StatusCode))
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("failed to decode groq response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("groq returned no choices")
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("groq returned an empty response")
	}
	return text, nil
}
