package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/saravanan10393/prompt-playground/internal/llm"
)

var ErrUnknownStrategy = errors.New("unknown strategy")

// RefineService rewrites a user's prompt according to a named prompting
// strategy, for the playground's side-by-side comparison view.
type RefineService struct {
	caller llmCaller
}

func NewRefineService(caller llmCaller) *RefineService {
	return &RefineService{caller: caller}
}

type RefinedPrompt struct {
	RefinedPrompt string `json:"refined_prompt"`
	Explanation   string `json:"explanation"`
}

var promptStrategies = map[string]string{
	"zero-shot": `You are a prompt engineering expert. Transform the user's prompt into an effective zero-shot prompt.

Zero-shot prompting means giving clear, direct instructions without examples. The prompt should:
- Be clear and specific about the task
- Include relevant context
- Specify the desired output format
- Use precise language`,

	"few-shot": `You are a prompt engineering expert. Transform the user's prompt into an effective few-shot prompt.

Few-shot prompting means providing 2-3 example input-output pairs to guide the model. The prompt should:
- Include clear examples that demonstrate the pattern
- Show diverse but relevant examples
- Maintain consistency in format
- Keep examples concise but informative`,

	"chain-of-thought": `You are a prompt engineering expert. Transform the user's prompt into an effective chain-of-thought prompt.

Chain-of-thought prompting encourages step-by-step reasoning. The prompt should:
- Include phrases like "Let's think step by step"
- Structure the task into logical steps
- Encourage intermediate reasoning
- Guide the model through the thought process`,

	"react": `You are a prompt engineering expert. Transform the user's prompt into an effective ReAct (Reasoning + Acting) prompt.

ReAct prompting combines reasoning with actions. The prompt should:
- Use the Thought-Action-Observation framework
- Encourage the model to reason about what to do
- Specify available actions or tools
- Create a loop of thinking and acting`,

	"reflexion": `You are a prompt engineering expert. Transform the user's prompt into an effective Reflexion prompt.

Reflexion prompting includes self-evaluation and iterative improvement. The prompt should:
- Add reflection prompts after initial responses
- Include error detection and correction steps
- Encourage self-critique and refinement
- Create an iterative improvement cycle`,

	"tree-of-thoughts": `You are a prompt engineering expert. Transform the user's prompt into an effective Tree of Thoughts prompt.

Tree of Thoughts prompting explores multiple reasoning paths. The prompt should:
- Generate multiple possible approaches
- Evaluate each path's viability
- Select and expand the most promising branches
- Combine insights from different paths`,

	"meta-prompting": `You are a prompt engineering expert. Transform the user's prompt into an effective Meta Prompting approach.

Meta prompting guides the AI to think about prompt optimization itself. The prompt should:
- Ask the model to analyze what makes prompts effective
- Include self-referential prompt improvement
- Strategically break down the task requirements
- Encourage optimization thinking`,
}

const refineOutputInstructions = `

Return your response in JSON format:
{
  "refined_prompt": "<the improved prompt>",
  "explanation": "<brief explanation of changes made>"
}`

// Strategies lists the supported strategy names, sorted for stable API
// output.
func (s *RefineService) Strategies() []string {
	names := make([]string, 0, len(promptStrategies))
	for name := range promptStrategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *RefineService) Refine(ctx context.Context, strategy, prompt string) (*RefinedPrompt, error) {
	systemPrompt, ok := promptStrategies[strategy]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, strategy)
	}

	content, err := s.caller.CallWithRetry(ctx, llm.Params{
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt + refineOutputInstructions},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: "json_object",
		Temperature:    0.7,
	})
	if err != nil {
		return nil, err
	}

	var refined RefinedPrompt
	if err := json.Unmarshal([]byte(cleanJSONContent(content)), &refined); err != nil {
		return nil, fmt.Errorf("invalid JSON from model: %w", err)
	}
	return &refined, nil
}
