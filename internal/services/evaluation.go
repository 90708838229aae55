package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/saravanan10393/prompt-playground/internal/llm"
)

// llmCaller is satisfied by *llm.Retrier; tests substitute a stub.
type llmCaller interface {
	CallWithRetry(ctx context.Context, p llm.Params) (string, error)
}

// EvaluationService scores a user's prompt against a scenario with the
// LLM acting as judge.
type EvaluationService struct {
	caller llmCaller
}

func NewEvaluationService(caller llmCaller) *EvaluationService {
	return &EvaluationService{caller: caller}
}

const evaluatorSystemPrompt = `You are an expert prompt engineering evaluator. Your task is to evaluate how well a user's prompt addresses a given scenario.

Evaluate the prompt based on:
1. Clarity and specificity
2. Relevance to the scenario
3. Likelihood of producing good results from an LLM
4. Proper instructions and structure

Additionally, provide a "refinedPrompt" field with an improved version of the user's prompt that demonstrates best practices for the given scenario.

Provide your response in the following JSON format:
{
  "score": <number between 1-10>,
  "feedback": "<detailed actionable suggestions to improve the prompt>",
  "refinedPrompt": "<an improved version of the user's prompt that demonstrates best practices>"
}

Be constructive and specific in your feedback. Focus on what could be improved. The refined prompt should be a complete, ready-to-use example that shows how to write an effective prompt for this scenario.`

type Evaluation struct {
	Score         int    `json:"score"`
	Feedback      string `json:"feedback"`
	RefinedPrompt string `json:"refinedPrompt"`
}

type evaluationPayload struct {
	Score         json.Number `json:"score"`
	Feedback      string      `json:"feedback"`
	RefinedPrompt string      `json:"refinedPrompt"`
}

// EvaluatePrompt scores a prompt 1-10 with feedback and a refined
// version. The scenario is passed as free text; game submissions compose
// it from the scenario's title and description. On upstream failure it
// degrades to a neutral score with a categorized message instead of
// failing the whole submission.
func (s *EvaluationService) EvaluatePrompt(ctx context.Context, scenario, userPrompt string) Evaluation {
	userMessage := fmt.Sprintf(`Scenario: %s

User's Prompt to Evaluate:
%s

Please evaluate this prompt and provide a score (1-10) and detailed feedback.`, scenario, userPrompt)

	content, err := s.caller.CallWithRetry(ctx, llm.Params{
		Messages: []llm.Message{
			{Role: "system", Content: evaluatorSystemPrompt},
			{Role: "user", Content: userMessage},
		},
		ResponseFormat: "json_object",
		Temperature:    0.2,
	})
	if err != nil {
		log.Printf("prompt evaluation failed: %v", err)
		return Evaluation{
			Score:         5,
			Feedback:      llm.UserMessage(err, "Error evaluating prompt. Please try again."),
			RefinedPrompt: "Unable to generate refined prompt due to error.",
		}
	}

	var payload evaluationPayload
	if err := json.Unmarshal([]byte(cleanJSONContent(content)), &payload); err != nil {
		log.Printf("prompt evaluation returned invalid JSON: %v", err)
		return Evaluation{
			Score:         5,
			Feedback:      "Error evaluating prompt. Please try again.",
			RefinedPrompt: "Unable to generate refined prompt due to error.",
		}
	}

	eval := Evaluation{
		Score:         clampScore(payload.Score),
		Feedback:      payload.Feedback,
		RefinedPrompt: payload.RefinedPrompt,
	}
	if eval.Feedback == "" {
		eval.Feedback = "No feedback provided"
	}
	if eval.RefinedPrompt == "" {
		eval.RefinedPrompt = "No refined prompt provided"
	}
	return eval
}

func clampScore(n json.Number) int {
	// Models occasionally return "8.5" despite the integer instruction.
	score := 5
	if i, err := n.Int64(); err == nil {
		score = int(i)
	} else if f, err := strconv.ParseFloat(n.String(), 64); err == nil {
		score = int(f)
	}

	if score < 1 {
		score = 1
	}
	if score > 10 {
		score = 10
	}
	return score
}

// cleanJSONContent strips markdown code fences some models wrap around
// JSON output.
func cleanJSONContent(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
