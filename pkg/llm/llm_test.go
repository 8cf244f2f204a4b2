package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCredential(t *testing.T) {
	cases := []struct {
		name     string
		provider Provider
		key      string
		wantErr  bool
	}{
		{"openai ok", ProviderOpenAI, "sk-proj-abcdefghijklmnop", false},
		{"openai wrong prefix", ProviderOpenAI, "key-abcdefghijklmnop", true},
		{"openai too short", ProviderOpenAI, "sk-abc", true},
		{"anthropic ok", ProviderAnthropic, "sk-ant-api03-abcdefghij", false},
		{"anthropic plain sk", ProviderAnthropic, "sk-abcdefghijklmnopqrst", true},
		{"gemini ok", ProviderGemini, "AIzaSyAbcdefghijklmnopqrstuvwxyz12", false},
		{"gemini wrong prefix", ProviderGemini, "BIzaSyAbcdefghijklmnopqrstuvwxyz12", true},
		{"grok ok", ProviderGrok, "xai-abcdefghijklmnopqrs", false},
		{"grok wrong prefix", ProviderGrok, "sk-abcdefghijklmnopqrs", true},
		{"ollama keyless", ProviderOllama, "", false},
		{"browser keyless", ProviderBrowser, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateCredential(tc.provider, tc.key)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrAuthInvalid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateOllamaEndpoint(t *testing.T) {
	assert.NoError(t, ValidateOllamaEndpoint("http://localhost:11434"))
	assert.NoError(t, ValidateOllamaEndpoint("http://127.0.0.1:11434"))
	assert.NoError(t, ValidateOllamaEndpoint("http://[::1]:11434"))
	assert.Error(t, ValidateOllamaEndpoint("http://192.168.1.10:11434"))
	assert.Error(t, ValidateOllamaEndpoint("http://ollama.internal:11434"))
	assert.Error(t, ValidateOllamaEndpoint("ftp://127.0.0.1:11434"))
}

func TestMapStatus(t *testing.T) {
	assert.ErrorIs(t, MapStatus(ProviderOpenAI, 401, ""), ErrAuthRejected)
	assert.ErrorIs(t, MapStatus(ProviderOpenAI, 403, ""), ErrAuthRejected)
	assert.ErrorIs(t, MapStatus(ProviderGrok, 429, ""), ErrRateLimited)
	assert.ErrorIs(t, MapStatus(ProviderOllama, 404, ""), ErrModelUnavailable)
	assert.ErrorIs(t, MapStatus(ProviderAnthropic, 503, ""), ErrModelUnavailable)

	err := MapStatus(ProviderOpenAI, 418, "teapot")
	var unknown *UnknownError
	assert.True(t, errors.As(err, &unknown))
	assert.Equal(t, 418, unknown.Code)
}

func TestParseProvider(t *testing.T) {
	p, err := ParseProvider(" OpenAI ")
	assert.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, p)

	_, err = ParseProvider("copilot")
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	assert.NoError(t, ValidateConfig(Config{Provider: ProviderBrowser, Model: "qwen2-0.5b"}))
	assert.NoError(t, ValidateConfig(Config{Provider: ProviderOllama, Endpoint: "http://127.0.0.1:11434"}))
	assert.Error(t, ValidateConfig(Config{Provider: ProviderOllama, Endpoint: "http://10.0.0.5:11434"}))
	assert.ErrorIs(t, ValidateConfig(Config{Provider: ProviderOpenAI, Credential: "bad"}), ErrAuthInvalid)
}
