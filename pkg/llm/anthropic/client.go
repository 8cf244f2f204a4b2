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

	"github.com/pavelk2v/cvforge/pkg/llm"
)

const (
	defaultBaseURL   = "https://api.anthropic.com/v1"
	anthropicVersion = "2023-06-01"
	defaultMaxTokens = 4096
)

// Client is a minimal Anthropic Messages API client. Anthropic is the one
// cloud provider here that is not OpenAI-compatible: auth uses x-api-key and
// the system prompt is a top-level field rather than a message.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	httpDo  *http.Client
}

func New(apiKey, baseURL, model string, httpDo *http.Client) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpDo == nil {
		httpDo = &http.Client{}
	}
	return &Client{apiKey: apiKey, baseURL: baseURL, model: model, httpDo: httpDo}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesResponse struct {
	ID         string         `json:"id"`
	Model      string         `json:"model"`
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

func (c *Client) Ask(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: missing api key", llm.ErrAuthInvalid)
	}
	reqBody := messagesRequest{
		Model:     c.model,
		System:    systemPrompt,
		Messages:  []message{{Role: "user", Content: userPrompt}},
		MaxTokens: defaultMaxTokens,
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/messages", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpDo.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", llm.ErrTimeout
		}
		return "", fmt.Errorf("anthropic request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", llm.MapStatus(llm.ProviderAnthropic, resp.StatusCode, string(body))
	}
	var out messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode anthropic response: %w", err)
	}
	var sb strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("%w: empty response", llm.ErrModelUnavailable)
	}
	return text, nil
}
