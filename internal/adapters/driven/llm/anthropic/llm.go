// Package anthropic answers prompts with Claude through the Messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL = "https://api.anthropic.com"
	DefaultModel   = domain.DefaultLLMModel
	DefaultTimeout = 120 * time.Second

	apiVersion = "2023-06-01"
)

// Config holds configuration for the Anthropic LLM service. Only APIKey is
// required.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration

	// System is sent as the system prompt of every request when set.
	System string
}

// LLMService generates answers with Claude.
type LLMService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
	system  string
}

type turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string   `json:"model"`
	System      string   `json:"system,omitempty"`
	Messages    []turn   `json:"messages"`
	MaxTokens   int      `json:"max_tokens"`
	Temperature *float64 `json:"temperature,omitempty"`
	StopSeqs    []string `json:"stop_sequences,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type messagesResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Error      *apiError      `json:"error,omitempty"`
}

// text joins the text blocks of a reply, skipping tool and thinking blocks.
func (r messagesResponse) text() string {
	var b strings.Builder
	for _, block := range r.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

// NewLLMService creates a new Anthropic LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &LLMService{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		system:  cfg.System,
	}, nil
}

// Generate sends prompt as one user turn. MaxTokens falls back to
// domain.DefaultMaxTokens because the API requires it.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := messagesRequest{
		Model:     s.model,
		System:    s.system,
		Messages:  []turn{{Role: "user", Content: prompt}},
		MaxTokens: opts.MaxTokens,
		StopSeqs:  opts.StopWords,
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = domain.DefaultMaxTokens
	}
	if opts.Temperature > 0 {
		t := opts.Temperature
		req.Temperature = &t
	}

	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	status, body, err := s.send(ctx, http.MethodPost, "/v1/messages", data)
	if err != nil {
		return "", err
	}

	var resp messagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("anthropic error (status %d): %s", status, strings.TrimSpace(string(body)))
	}
	switch {
	case resp.Error != nil:
		return "", fmt.Errorf("anthropic error: %s: %s", resp.Error.Type, resp.Error.Message)
	case status != http.StatusOK:
		return "", fmt.Errorf("anthropic error (status %d): %s", status, strings.TrimSpace(string(body)))
	}
	return resp.text(), nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists models, which checks the key without spending tokens.
func (s *LLMService) Ping(ctx context.Context) error {
	status, body, err := s.send(ctx, http.MethodGet, "/v1/models", nil)
	if err != nil {
		return fmt.Errorf("anthropic: ping failed: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("anthropic: API returned status %d: %s", status, strings.TrimSpace(string(body)))
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}

// send performs one authenticated request and returns the status and body.
func (s *LLMService) send(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	var body io.Reader = http.NoBody
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", apiVersion)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, data, nil
}
