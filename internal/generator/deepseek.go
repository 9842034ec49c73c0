package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Default generation parameters. maxTokens bounds the rule-set length;
// temperature 0.7 keeps output varied without drifting off the requested
// structure.
const (
	defaultMaxTokens   = 2000
	defaultTemperature = 0.7
)

// DeepSeekGenerator calls an OpenAI-compatible /chat/completions endpoint.
// DeepSeek is the default provider, but any endpoint speaking the same
// protocol (vLLM, LiteLLM, OpenRouter, self-hosted) works — only baseURL and
// model change.
type DeepSeekGenerator struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewDeepSeekGenerator builds the production TextGenerator.
// baseURL should include the version prefix, e.g. "https://api.deepseek.com/v1".
func NewDeepSeekGenerator(baseURL, apiKey, model string) *DeepSeekGenerator {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	return &DeepSeekGenerator{
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(apiKey),
		model:   strings.TrimSpace(model),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// GenerateText implements TextGenerator using the chat completions API.
func (g *DeepSeekGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("generator: API key required")
	}
	if g.model == "" {
		return "", fmt.Errorf("generator: model required")
	}

	reqBody := chatRequest{
		Model:       g.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := g.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generator: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp chatErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error.Message != "" {
			return "", fmt.Errorf("generator: api error: %s", errResp.Error.Message)
		}
		return "", fmt.Errorf("generator: api error: %s", resp.Status)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("generator: decode: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("generator: empty response")
	}
	text := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("generator: empty response")
	}
	return text, nil
}

// OpenAI-compatible request/response types.

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type chatErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
