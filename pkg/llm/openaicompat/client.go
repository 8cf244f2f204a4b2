package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/pavelk2v/cvforge/pkg/llm"
)

// RequestTimeout bounds one completion call.
const RequestTimeout = llm.RequestTimeout

// Client speaks the OpenAI chat-completions wire format. It serves both
// OpenAI itself and Grok (x.ai), which exposes the same API surface.
type Client struct {
	provider llm.Provider
	apiKey   string
	baseURL  string
	model    string
	httpDo   *http.Client
}

const (
	OpenAIBaseURL = "https://api.openai.com/v1"
	GrokBaseURL   = "https://api.x.ai/v1"
)

func New(provider llm.Provider, apiKey, baseURL, model string, httpDo *http.Client) *Client {
	if baseURL == "" {
		if provider == llm.ProviderGrok {
			baseURL = GrokBaseURL
		} else {
			baseURL = OpenAIBaseURL
		}
	}
	if httpDo == nil {
		httpDo = &http.Client{Timeout: RequestTimeout}
	}
	return &Client{
		provider: provider,
		apiKey:   apiKey,
		baseURL:  baseURL,
		model:    model,
		httpDo:   httpDo,
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionsRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float32   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type chatCompletionsResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
}

// Ask sends a system+user prompt pair and returns the first model reply.
func (c *Client) Ask(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: missing api key", llm.ErrAuthInvalid)
	}
	reqBody := chatCompletionsRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.2,
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/chat/completions", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpDo.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", llm.ErrTimeout
		}
		return "", fmt.Errorf("%s request: %w", c.provider, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", llm.MapStatus(c.provider, resp.StatusCode, string(body))
	}
	var out chatCompletionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode %s response: %w", c.provider, err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", llm.ErrModelUnavailable)
	}
	return out.Choices[0].Message.Content, nil
}
