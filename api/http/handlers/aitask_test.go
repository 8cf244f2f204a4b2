package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelk2v/cvforge/pkg/aitask"
	"github.com/pavelk2v/cvforge/pkg/llm"
)

type stubTasks struct {
	env       aitask.Envelope
	out       aitask.Outcome
	err       error
	submitted string
}

func (s *stubTasks) Dispatch(ctx context.Context, req aitask.Request) (aitask.Envelope, error) {
	return s.env, s.err
}

func (s *stubTasks) Submit(ctx context.Context, req aitask.Request, raw string) (aitask.Outcome, error) {
	s.submitted = raw
	return s.out, s.err
}

func newTaskApp(tasks aitask.UseCase) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userId", uuid.NewString())
		return c.Next()
	})
	h := NewTaskHandler(tasks)
	app.Post("/ai/rewrite", h.Rewrite)
	app.Post("/ai/assess", h.Assess)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed map[string]any
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return resp.StatusCode, parsed
}

func TestTaskHandlerBrowserHandoffShape(t *testing.T) {
	docID := uuid.New()
	tasks := &stubTasks{env: aitask.Envelope{Handoff: &aitask.Handoff{
		BrowserHandoff: llm.BrowserHandoff{Prompt: "system\n\nuser", Model: "phi-3", ModelType: "wllama"},
		DocumentID:     docID,
		Kind:           aitask.KindRewrite,
		Sections:       []string{"summary", "skills"},
	}}}
	app := newTaskApp(tasks)

	status, body := postJSON(t, app, "/ai/rewrite", `{"document_id":"`+docID.String()+`","sections":["summary","skills"]}`)

	assert.Equal(t, 200, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["browser_execution"])
	assert.Equal(t, "system\n\nuser", body["prompt"])
	assert.Equal(t, "phi-3", body["model"])
	assert.Equal(t, "wllama", body["model_type"])
	assert.Equal(t, docID.String(), body["document_id"])
	assert.Equal(t, "rewrite", body["task"])
	assert.Equal(t, []any{"summary", "skills"}, body["sections"])
}

func TestTaskHandlerServerExecutedAssess(t *testing.T) {
	tasks := &stubTasks{env: aitask.Envelope{Outcome: &aitask.Outcome{
		Kind:       aitask.KindAssess,
		Assessment: &aitask.Assessment{ID: uuid.New(), Report: aitask.AssessmentReport{OverallScore: 77}},
	}}}
	app := newTaskApp(tasks)

	status, body := postJSON(t, app, "/ai/assess", `{"document_id":"`+uuid.NewString()+`"}`)

	assert.Equal(t, 200, status)
	assert.Equal(t, true, body["success"])
	assert.NotContains(t, body, "browser_execution")
	report := body["assessment"].(map[string]any)["report"].(map[string]any)
	assert.EqualValues(t, 77, report["overall_score"])
}

func TestTaskHandlerPhaseTwoSubmitsRawPayload(t *testing.T) {
	tasks := &stubTasks{out: aitask.Outcome{Kind: aitask.KindCoverLetter, CoverLetter: "Dear team"}}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userId", uuid.NewString())
		return c.Next()
	})
	app.Post("/ai/cover-letter", NewTaskHandler(tasks).CoverLetter)

	status, body := postJSON(t, app, "/ai/cover-letter",
		`{"document_id":"`+uuid.NewString()+`","browser_result":"{\"cover_letter\":\"Dear team\"}"}`)

	assert.Equal(t, 200, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Dear team", body["cover_letter"])
	assert.Equal(t, `{"cover_letter":"Dear team"}`, tasks.submitted)
}

func TestTaskHandlerErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"auth rejected by provider", llm.ErrAuthRejected, 502},
		{"rate limited", llm.ErrRateLimited, 429},
		{"timeout", llm.ErrTimeout, 504},
		{"invalid shape", aitask.ErrInvalidShape, 422},
		{"bad request", aitask.ErrValidation, 400},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTaskApp(&stubTasks{err: tc.err})
			status, body := postJSON(t, app, "/ai/rewrite", `{"document_id":"`+uuid.NewString()+`"}`)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestTaskHandlerRejectsMissingIdentity(t *testing.T) {
	app := fiber.New()
	app.Post("/ai/rewrite", NewTaskHandler(&stubTasks{}).Rewrite)

	status, body := postJSON(t, app, "/ai/rewrite", `{}`)

	assert.Equal(t, 401, status)
	assert.Equal(t, false, body["success"])
}
