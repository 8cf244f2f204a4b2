package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/pavelk2v/cvforge/pkg/llm"
)

const defaultModel = "gemini-2.0-flash"

// generateFunc matches genai Models.GenerateContent, so tests can stand in
// for the SDK.
type generateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Client wraps the Google GenAI SDK behind the ChatModel port.
type Client struct {
	generate generateFunc
	model    string
	timeout  time.Duration
}

// New creates a client bound to one user's API key. Clients are built per
// request because credentials are per-user, not per-process. httpDo carries
// the shared provider timeout; Ask additionally bounds the call through the
// context so a hung SDK call cannot outlive it either way.
func New(ctx context.Context, apiKey, model string, httpDo *http.Client) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: missing api key", llm.ErrAuthInvalid)
	}
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpDo,
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	return &Client{
		generate: client.Models.GenerateContent,
		model:    model,
		timeout:  llm.RequestTimeout,
	}, nil
}

func (c *Client) Ask(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c == nil || c.generate == nil {
		return "", errors.New("gemini client is not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cfg := &genai.GenerateContentConfig{}
	if systemPrompt = strings.TrimSpace(systemPrompt); systemPrompt != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		}
	}
	resp, err := c.generate(ctx, c.model, genai.Text(userPrompt), cfg)
	if err != nil {
		return "", mapError(err)
	}

	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if sb.Len() > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(text)
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("%w: empty response", llm.ErrModelUnavailable)
	}
	return out, nil
}

// mapError folds genai SDK errors into the shared taxonomy.
func mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return llm.ErrTimeout
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return llm.MapStatus(llm.ProviderGemini, apiErr.Code, apiErr.Message)
	}
	return fmt.Errorf("gemini request: %w", err)
}
