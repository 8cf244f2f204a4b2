package ollamalocal

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

const defaultModel = "llama3.1"

// Client talks to a self-hosted Ollama server over its native chat API.
// The endpoint must have passed llm.ValidateOllamaEndpoint (loopback only).
type Client struct {
	baseURL string
	model   string
	httpDo  *http.Client
}

func New(endpoint, model string, httpDo *http.Client) (*Client, error) {
	if err := llm.ValidateOllamaEndpoint(endpoint); err != nil {
		return nil, err
	}
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if httpDo == nil {
		httpDo = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(endpoint), "/"),
		model:   model,
		httpDo:  httpDo,
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type chatResponse struct {
	Model   string  `json:"model"`
	Message message `json:"message"`
	Done    bool    `json:"done"`
}

func (c *Client) Ask(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Stream: false,
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpDo.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", llm.ErrTimeout
		}
		// a refused connection means the local server is not running
		return "", fmt.Errorf("%w: %v", llm.ErrModelUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", llm.MapStatus(llm.ProviderOllama, resp.StatusCode, string(body))
	}
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}
	text := strings.TrimSpace(out.Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: empty response", llm.ErrModelUnavailable)
	}
	return text, nil
}
