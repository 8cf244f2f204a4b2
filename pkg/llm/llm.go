package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// RequestTimeout bounds one provider call, for every network provider.
// Generous because self-hosted and smaller cloud models are materially
// slower than the flagship APIs.
const RequestTimeout = 180 * time.Second

// ChatModel is a minimal abstraction for chat-based LLMs used by the domain.
// It intentionally hides concrete providers to preserve dependency direction.
type ChatModel interface {
	Ask(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Provider identifies an AI backend.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
	ProviderGrok      Provider = "grok"
	ProviderOllama    Provider = "ollama"
	// ProviderBrowser runs inference on the end-user's device; the server
	// never calls anything for it.
	ProviderBrowser Provider = "browser"
)

// ParseProvider validates a provider name coming from settings or API input.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderGrok, ProviderOllama, ProviderBrowser:
		return p, nil
	}
	return "", fmt.Errorf("unknown provider %q", s)
}

// KeyBased reports whether the provider authenticates with a stored API key.
func (p Provider) KeyBased() bool {
	switch p {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderGrok:
		return true
	}
	return false
}

// Config is the effective provider configuration for one request. It is
// copied into the request context at resolution time and never shared.
type Config struct {
	Provider Provider
	// Credential is the decrypted API key; empty for ollama and browser.
	Credential string
	// Endpoint overrides the provider base URL. Required for ollama.
	Endpoint string
	Model    string
	// ModelType tags the browser-resident model runtime (e.g. "wllama").
	ModelType string
}

// Shared error taxonomy. Concrete clients map provider-specific failures
// onto these sentinels so callers never branch on raw HTTP codes.
var (
	ErrAuthInvalid      = errors.New("credential has invalid format")
	ErrAuthRejected     = errors.New("provider rejected credentials")
	ErrRateLimited      = errors.New("provider rate limit exceeded")
	ErrModelUnavailable = errors.New("model unavailable")
	ErrTimeout          = errors.New("provider request timed out")
)

// UnknownError carries a provider failure that fits no taxonomy bucket.
type UnknownError struct {
	Provider Provider
	Code     int
	Detail   string
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("%s: unexpected provider error (http %d): %s", e.Provider, e.Code, e.Detail)
}

// MapStatus converts an HTTP status from a provider API into the shared
// taxonomy. Used by every hand-rolled client.
func MapStatus(p Provider, code int, detail string) error {
	switch {
	case code == 401 || code == 403:
		return ErrAuthRejected
	case code == 429:
		return ErrRateLimited
	case code == 404 || code >= 500:
		return fmt.Errorf("%w (http %d)", ErrModelUnavailable, code)
	default:
		return &UnknownError{Provider: p, Code: code, Detail: detail}
	}
}

// ValidateCredential checks key shape per provider before any network call
// is attempted, so a malformed key fails fast without leaking a request.
func ValidateCredential(p Provider, key string) error {
	key = strings.TrimSpace(key)
	switch p {
	case ProviderOpenAI:
		if !strings.HasPrefix(key, "sk-") || len(key) < 20 {
			return fmt.Errorf("%w: openai keys start with sk-", ErrAuthInvalid)
		}
	case ProviderAnthropic:
		if !strings.HasPrefix(key, "sk-ant-") || len(key) < 20 {
			return fmt.Errorf("%w: anthropic keys start with sk-ant-", ErrAuthInvalid)
		}
	case ProviderGemini:
		if !strings.HasPrefix(key, "AIza") || len(key) < 30 {
			return fmt.Errorf("%w: gemini keys start with AIza", ErrAuthInvalid)
		}
	case ProviderGrok:
		if !strings.HasPrefix(key, "xai-") || len(key) < 20 {
			return fmt.Errorf("%w: grok keys start with xai-", ErrAuthInvalid)
		}
	case ProviderOllama, ProviderBrowser:
		// keyless
	default:
		return fmt.Errorf("unknown provider %q", p)
	}
	return nil
}

// ValidateOllamaEndpoint rejects non-loopback targets. A user-controlled
// endpoint reachable over the network would turn the server into a request
// proxy, so only localhost is accepted.
func ValidateOllamaEndpoint(endpoint string) error {
	u, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil {
		return fmt.Errorf("invalid ollama endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid ollama endpoint scheme %q", u.Scheme)
	}
	host := u.Hostname()
	if host == "localhost" {
		return nil
	}
	ip := net.ParseIP(host)
	if ip == nil || !ip.IsLoopback() {
		return fmt.Errorf("ollama endpoint must be loopback, got %q", host)
	}
	return nil
}

// ValidateConfig runs the pre-flight checks for a resolved configuration.
func ValidateConfig(cfg Config) error {
	if cfg.Provider.KeyBased() {
		return ValidateCredential(cfg.Provider, cfg.Credential)
	}
	if cfg.Provider == ProviderOllama {
		return ValidateOllamaEndpoint(cfg.Endpoint)
	}
	return nil
}

// BrowserHandoff is returned instead of a model reply when execution is
// delegated to the user's browser. The actual inference happens client-side
// and the result arrives in a later, separate call.
type BrowserHandoff struct {
	Prompt    string `json:"prompt"`
	Model     string `json:"model"`
	ModelType string `json:"model_type"`
}
