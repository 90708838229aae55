package services

import (
	"context"
	"errors"
	"testing"

	"github.com/saravanan10393/prompt-playground/internal/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCaller returns a canned response and records the last params.
type stubCaller struct {
	content string
	err     error
	got     llm.Params
}

func (s *stubCaller) CallWithRetry(_ context.Context, p llm.Params) (string, error) {
	s.got = p
	return s.content, s.err
}

func TestEvaluatePromptParsesResponse(t *testing.T) {
	caller := &stubCaller{
		content: `{"score": 8, "feedback": "Good structure.", "refinedPrompt": "Better prompt"}`,
	}
	svc := NewEvaluationService(caller)

	eval := svc.EvaluatePrompt(context.Background(), "Summarize reviews", "Summarize this")
	assert.Equal(t, 8, eval.Score)
	assert.Equal(t, "Good structure.", eval.Feedback)
	assert.Equal(t, "Better prompt", eval.RefinedPrompt)

	assert.Equal(t, "json_object", caller.got.ResponseFormat)
	require.Len(t, caller.got.Messages, 2)
	assert.Contains(t, caller.got.Messages[1].Content, "Summarize reviews")
	assert.Contains(t, caller.got.Messages[1].Content, "Summarize this")
}

func TestEvaluatePromptClampsScore(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"15", 10},
		{"0", 1},
		{"-3", 1},
		{"8.5", 8},
		{"7", 7},
	}

	for _, tc := range cases {
		caller := &stubCaller{
			content: `{"score": ` + tc.raw + `, "feedback": "f", "refinedPrompt": "r"}`,
		}
		svc := NewEvaluationService(caller)

		eval := svc.EvaluatePrompt(context.Background(), "scenario", "prompt")
		assert.Equal(t, tc.want, eval.Score, "raw score %s", tc.raw)
	}
}

func TestEvaluatePromptHandlesFencedJSON(t *testing.T) {
	caller := &stubCaller{
		content: "```json\n{\"score\": 9, \"feedback\": \"Nice.\", \"refinedPrompt\": \"r\"}\n```",
	}
	svc := NewEvaluationService(caller)

	eval := svc.EvaluatePrompt(context.Background(), "scenario", "prompt")
	assert.Equal(t, 9, eval.Score)
	assert.Equal(t, "Nice.", eval.Feedback)
}

func TestEvaluatePromptDegradesOnCallerError(t *testing.T) {
	caller := &stubCaller{err: errors.New("got 429 from upstream")}
	svc := NewEvaluationService(caller)

	eval := svc.EvaluatePrompt(context.Background(), "scenario", "prompt")
	assert.Equal(t, 5, eval.Score)
	assert.Contains(t, eval.Feedback, "Rate limit exceeded")
}

func TestEvaluatePromptDegradesOnInvalidJSON(t *testing.T) {
	caller := &stubCaller{content: "not json at all"}
	svc := NewEvaluationService(caller)

	eval := svc.EvaluatePrompt(context.Background(), "scenario", "prompt")
	assert.Equal(t, 5, eval.Score)
	assert.Contains(t, eval.Feedback, "Error evaluating prompt")
}

func TestEvaluatePromptFillsMissingFields(t *testing.T) {
	caller := &stubCaller{content: `{"score": 6}`}
	svc := NewEvaluationService(caller)

	eval := svc.EvaluatePrompt(context.Background(), "scenario", "prompt")
	assert.Equal(t, 6, eval.Score)
	assert.Equal(t, "No feedback provided", eval.Feedback)
	assert.Equal(t, "No refined prompt provided", eval.RefinedPrompt)
}

func TestCleanJSONContent(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanJSONContent("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanJSONContent("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanJSONContent(`  {"a":1}  `))
}
