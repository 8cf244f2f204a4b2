package openaicompat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelk2v/cvforge/pkg/llm"
)

func TestAskReturnsFirstChoice(t *testing.T) {
	var gotAuth string
	var gotBody chatCompletionsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		resp := chatCompletionsResponse{Choices: []chatChoice{{}}}
		resp.Choices[0].Message.Content = `{"summary":"B"}`
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := New(llm.ProviderOpenAI, "sk-test-key-abcdef", srv.URL, "gpt-4o-mini", srv.Client())
	out, err := c.Ask(context.Background(), "system", "user")

	require.NoError(t, err)
	assert.Equal(t, `{"summary":"B"}`, out)
	assert.Equal(t, "Bearer sk-test-key-abcdef", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotBody.Model)
	require.Len(t, gotBody.Messages, 2)
	assert.Equal(t, "system", gotBody.Messages[0].Role)
}

func TestAskMapsStatusCodes(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, llm.ErrAuthRejected},
		{http.StatusForbidden, llm.ErrAuthRejected},
		{http.StatusTooManyRequests, llm.ErrRateLimited},
		{http.StatusInternalServerError, llm.ErrModelUnavailable},
		{http.StatusNotFound, llm.ErrModelUnavailable},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
		}))
		c := New(llm.ProviderGrok, "xai-test-key-abcdefgh", srv.URL, "grok-2", srv.Client())
		_, err := c.Ask(context.Background(), "s", "u")
		assert.ErrorIs(t, err, tc.want, "status %d", tc.status)
		srv.Close()
	}
}

func TestAskEmptyKeyFailsWithoutRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := New(llm.ProviderOpenAI, "", srv.URL, "gpt-4o-mini", srv.Client())
	_, err := c.Ask(context.Background(), "s", "u")

	assert.ErrorIs(t, err, llm.ErrAuthInvalid)
	assert.False(t, called)
}

func TestAskNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(chatCompletionsResponse{})
	}))
	defer srv.Close()

	c := New(llm.ProviderOpenAI, "sk-test-key-abcdef", srv.URL, "gpt-4o-mini", srv.Client())
	_, err := c.Ask(context.Background(), "s", "u")

	assert.ErrorIs(t, err, llm.ErrModelUnavailable)
}

func TestNewDefaultBaseURLs(t *testing.T) {
	assert.Equal(t, GrokBaseURL, New(llm.ProviderGrok, "k", "", "m", nil).baseURL)
	assert.Equal(t, OpenAIBaseURL, New(llm.ProviderOpenAI, "k", "", "m", nil).baseURL)
}
