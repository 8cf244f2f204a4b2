package gemini

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/pavelk2v/cvforge/pkg/llm"
)

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: content}},
	}
}

func TestAskBoundsCallDuration(t *testing.T) {
	c := &Client{
		model:   "gemini-2.0-flash",
		timeout: 20 * time.Millisecond,
		generate: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			// simulate a hung provider: only the deadline gets us out
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}

	start := time.Now()
	_, err := c.Ask(context.Background(), "system", "user")

	require.ErrorIs(t, err, llm.ErrTimeout)
	assert.Less(t, time.Since(start), time.Second)
}

func TestAskPassesSystemInstructionAndReturnsText(t *testing.T) {
	var gotModel string
	var gotConfig *genai.GenerateContentConfig
	var gotContents []*genai.Content
	c := &Client{
		model:   "gemini-2.0-flash",
		timeout: time.Second,
		generate: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			if _, ok := ctx.Deadline(); !ok {
				t.Error("expected a deadline on the SDK call context")
			}
			gotModel = model
			gotConfig = config
			gotContents = contents
			return textResponse("first", "second"), nil
		},
	}

	out, err := c.Ask(context.Background(), "be terse", "hello")

	require.NoError(t, err)
	assert.Equal(t, "first\nsecond", out)
	assert.Equal(t, "gemini-2.0-flash", gotModel)
	require.NotNil(t, gotConfig.SystemInstruction)
	assert.Equal(t, "be terse", gotConfig.SystemInstruction.Parts[0].Text)
	require.Len(t, gotContents, 1)
	assert.Equal(t, "hello", gotContents[0].Parts[0].Text)
}

func TestAskMapsAPIErrors(t *testing.T) {
	cases := []struct {
		name string
		code int
		want error
	}{
		{"rejected credentials", 401, llm.ErrAuthRejected},
		{"rate limited", 429, llm.ErrRateLimited},
		{"server error", 500, llm.ErrModelUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := &Client{
				model:   "gemini-2.0-flash",
				timeout: time.Second,
				generate: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
					return nil, genai.APIError{Code: tc.code, Message: "upstream"}
				},
			}
			_, err := c.Ask(context.Background(), "", "hello")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestAskRejectsEmptyResponse(t *testing.T) {
	c := &Client{
		model:   "gemini-2.0-flash",
		timeout: time.Second,
		generate: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return &genai.GenerateContentResponse{}, nil
		},
	}
	_, err := c.Ask(context.Background(), "", "hello")
	assert.ErrorIs(t, err, llm.ErrModelUnavailable)
}

func TestNewRejectsMissingKey(t *testing.T) {
	_, err := New(context.Background(), "   ", "gemini-2.0-flash", nil)
	assert.ErrorIs(t, err, llm.ErrAuthInvalid)
}
