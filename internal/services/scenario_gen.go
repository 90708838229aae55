package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/saravanan10393/prompt-playground/internal/llm"
)

// ScenarioGenService produces practice scenarios for game creators who
// don't want to write their own.
type ScenarioGenService struct {
	caller llmCaller
}

func NewScenarioGenService(caller llmCaller) *ScenarioGenService {
	return &ScenarioGenService{caller: caller}
}

type GeneratedScenario struct {
	TaskName    string `json:"taskName"`
	Description string `json:"description"`
}

var resultTagPattern = regexp.MustCompile(`(?s)<result>(.*?)</result>`)

const scenarioSystemPromptFormat = `You are an expert in creating realistic, challenging scenarios for prompt writing practice.

Think step by step and generate a real world task that can be accomplished only by a prompt alone.

Theme: %s
Complexity: %s

Step 1: Generate a task and description that can be accomplished only by a prompt alone.
- If theme is "Any Theme", choose from any category
- If theme is specific, focus on that category
- If theme is custom, use the provided custom theme

Examples of good tasks:
- Task: Product Review Summarizer
  Description: Write a prompt that can be used to summarize given product reviews in a single step.

- Task: Weekend Travel Planner
  Description: Write a prompt that can be used to plan a weekend trip to a new city in a single step.

Step 2: Critique the task and description
- Is this task achievable by prompting an LLM alone?
- Does it require external tools or RAG? If yes, modify it.
- Ensure it matches the complexity level: %s

Step 3: Return the task and description in this format:
<result>{"taskName": "TASK NAME", "description": "DESCRIPTION"}</result>`

func (s *ScenarioGenService) Generate(ctx context.Context, theme, complexity string) (*GeneratedScenario, error) {
	if theme == "" || theme == "Any Theme" {
		theme = "Any category - be creative and diverse"
	}
	if complexity == "" {
		complexity = "medium"
	}

	content, err := s.caller.CallWithRetry(ctx, llm.Params{
		Messages: []llm.Message{
			{Role: "system", Content: fmt.Sprintf(scenarioSystemPromptFormat, theme, complexity, complexity)},
			{Role: "user", Content: fmt.Sprintf("Generate a %s complexity task with description for theme: %s", complexity, theme)},
		},
		Temperature: 1,
	})
	if err != nil {
		return nil, err
	}

	match := resultTagPattern.FindStringSubmatch(content)
	if match == nil {
		return nil, fmt.Errorf("no result tags found in response")
	}

	var scenario GeneratedScenario
	if err := json.Unmarshal([]byte(cleanJSONContent(match[1])), &scenario); err != nil {
		return nil, fmt.Errorf("invalid JSON in result tags: %w", err)
	}
	return &scenario, nil
}
