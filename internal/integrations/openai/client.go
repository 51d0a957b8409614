/**
 * @description
 * Lightweight OpenAI-compatible Chat Completions client (OpenRouter).
 * Used by the picks service to generate per-matchup betting predictions.
 * Supports the OpenRouter web-search plugin so the model can ground its
 * picks in live injury reports and team news.
 *
 * @dependencies
 * - net/http
 * - encoding/json
 * - backend/internal/config
 */

package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sharpline/backend/internal/config"
	"github.com/sharpline/backend/internal/logger"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1/chat/completions"
	DefaultModel   = "google/gemini-2.5-pro"

	// Search-augmented generation over a full slate of games is the slowest
	// call in the system; the timeout reflects that.
	requestTimeout   = 300 * time.Second
	defaultMaxTokens = 16000
	maxGenerateTries = 3
	retryBaseDelay   = 400 * time.Millisecond
)

var (
	errResponseRead   = errors.New("model response read failed")
	errResponseDecode = errors.New("model response decode failed")
	errRetryable      = errors.New("model api retryable error")
)

type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	model      string
}

type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Plugins     []Plugin  `json:"plugins,omitempty"`
}

// Plugin enables OpenRouter-side tooling; {"id": "web"} turns on live web search
type Plugin struct {
	ID         string `json:"id"`
	MaxResults int    `json:"max_results,omitempty"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatResponse struct {
	ID      string   `json:"id"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// GenerateOptions tunes a single generation call
type GenerateOptions struct {
	EnableWebSearch bool
}

func NewClient(cfg *config.Config) *Client {
	baseURL := strings.TrimSpace(cfg.Services.OpenAIBaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := strings.TrimSpace(cfg.Services.OpenAIModel)
	if model == "" {
		model = DefaultModel
	}

	return &Client{
		apiKey:  cfg.Services.OpenAIAPIKey,
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// Generate sends a chat completion request and returns the first choice content.
func (c *Client) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("openai api key is not configured")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("prompt is required")
	}

	payload := ChatRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "user", Content: prompt},
		},
		Temperature: 0.1,
		MaxTokens:   defaultMaxTokens,
	}
	if opts.EnableWebSearch {
		payload.Plugins = []Plugin{{ID: "web", MaxResults: 5}}
	}

	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 1; attempt <= maxGenerateTries; attempt++ {
		content, err := c.generateOnce(ctx, bodyBytes)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if attempt >= maxGenerateTries || !isRetryableError(err) {
			return "", err
		}
		logger.Info("Retrying model request after error (attempt %d/%d): %v", attempt, maxGenerateTries, err)
		time.Sleep(retryBaseDelay * time.Duration(attempt))
	}

	return "", lastErr
}

// Model returns the model name being used by this client
func (c *Client) Model() string {
	return c.model
}

func (c *Client) generateOnce(ctx context.Context, bodyBytes []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewBuffer(bodyBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("model request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		logger.Error("Failed to read model response body: %v | partial: %s", readErr, truncateForLog(string(respBody), 1000))
		return "", fmt.Errorf("%w: %v", errResponseRead, readErr)
	}

	if resp.StatusCode != http.StatusOK {
		logger.Error("Model API error: %d - %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return "", fmt.Errorf("%w: status %d", errRetryable, resp.StatusCode)
		}
		return "", fmt.Errorf("model api returned status %d", resp.StatusCode)
	}

	var result ChatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		logger.Error("Failed to decode model response: %v | raw: %s", err, truncateForLog(string(respBody), 1000))
		return "", fmt.Errorf("%w: %v", errResponseDecode, err)
	}

	if len(result.Choices) == 0 {
		logger.Error("Model response had no choices | raw: %s", truncateForLog(string(respBody), 1000))
		return "", fmt.Errorf("no choices returned from model")
	}

	content := strings.TrimSpace(result.Choices[0].Message.Content)
	if content == "" {
		finishReason := result.Choices[0].FinishReason
		logger.Error("Model response missing content field | finish_reason=%s | raw: %s",
			finishReason, truncateForLog(string(respBody), 1000))
		if finishReason == "length" {
			return "", fmt.Errorf("model response truncated at %d tokens before any content was generated", defaultMaxTokens)
		}
		return "", fmt.Errorf("model response missing content (finish_reason: %s)", finishReason)
	}

	return content, nil
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, errResponseRead) || errors.Is(err, errResponseDecode) || errors.Is(err, errRetryable) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

func truncateForLog(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "...(truncated)"
}
