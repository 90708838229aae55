package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/saravanan10393/prompt-playground/internal/llm"
	"github.com/saravanan10393/prompt-playground/internal/services"

	"github.com/gin-gonic/gin"
)

type PlaygroundHandler struct {
	retrier     *llm.Retrier
	evaluations *services.EvaluationService
	scenarios   *services.ScenarioGenService
	refiner     *services.RefineService
	maxDuration time.Duration
}

func NewPlaygroundHandler(
	retrier *llm.Retrier,
	evaluations *services.EvaluationService,
	scenarios *services.ScenarioGenService,
	refiner *services.RefineService,
	maxDuration time.Duration,
) *PlaygroundHandler {
	return &PlaygroundHandler{
		retrier:     retrier,
		evaluations: evaluations,
		scenarios:   scenarios,
		refiner:     refiner,
		maxDuration: maxDuration,
	}
}

type ChatMessage struct {
	Role    string `json:"role" binding:"required,oneof=system user assistant"`
	Content string `json:"content" binding:"required"`
}

type ChatRequest struct {
	Messages     []ChatMessage `json:"messages" binding:"required,min=1,dive"`
	Temperature  *float64      `json:"temperature"`
	SystemPrompt string        `json:"systemPrompt"`
}

// Chat godoc
// @Summary      Stream a chat completion
// @Description  Streams raw text fragments; retry notices and terminal errors are written in-band because headers are already sent
// @Tags         playground
// @Accept       json
// @Produce      plain
// @Param        request body ChatRequest true "Conversation"
// @Success      200 {string} string
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/playground/chat [post]
func (h *PlaygroundHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid messages format. Please provide an array of messages."})
		return
	}

	temperature := 0.7
	if req.Temperature != nil {
		temperature = *req.Temperature
		if temperature < 0 {
			temperature = 0
		}
		if temperature > 2 {
			temperature = 2
		}
	}

	messages := make([]llm.Message, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, llm.Message{Role: "system", Content: req.SystemPrompt})
	}
	for _, m := range req.Messages {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	// Wall-clock cap on the whole streaming handler, independent of the
	// retry loop's backoff budget.
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.maxDuration)
	defer cancel()

	if err := h.retrier.StreamWithRetry(ctx, c.Writer, llm.Params{
		Messages:    messages,
		Temperature: temperature,
	}); err != nil {
		// Already reported in-band; status is on the wire.
		log.Printf("chat stream failed: %v", err)
	}
}

type EvaluateRequest struct {
	Scenario string `json:"scenario" binding:"required"`
	Prompt   string `json:"prompt" binding:"required"`
}

// Evaluate godoc
// @Summary      Evaluate a prompt against a scenario
// @Tags         playground
// @Accept       json
// @Produce      json
// @Param        request body EvaluateRequest true "Scenario and prompt"
// @Success      200 {object} services.Evaluation
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/playground/evaluate [post]
func (h *PlaygroundHandler) Evaluate(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Scenario and prompt are required"})
		return
	}

	eval := h.evaluations.EvaluatePrompt(c.Request.Context(), req.Scenario, req.Prompt)
	c.JSON(http.StatusOK, eval)
}

type GenerateScenarioRequest struct {
	Action     string `json:"action" binding:"required"`
	Complexity string `json:"complexity"`
	Theme      string `json:"theme"`
}

// GenerateScenario godoc
// @Summary      Generate a practice scenario
// @Tags         playground
// @Accept       json
// @Produce      json
// @Param        request body GenerateScenarioRequest true "Generation options"
// @Success      200 {object} services.GeneratedScenario
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /api/v1/playground/generate-scenario [post]
func (h *PlaygroundHandler) GenerateScenario(c *gin.Context) {
	var req GenerateScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Action != "generate" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid action"})
		return
	}

	scenario, err := h.scenarios.Generate(c.Request.Context(), req.Theme, req.Complexity)
	if err != nil {
		log.Printf("scenario generation failed: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: llm.UserMessage(err, "Failed to generate scenario. Please try again."),
		})
		return
	}

	c.JSON(http.StatusOK, scenario)
}

type RefineRequest struct {
	Strategy string `json:"strategy" binding:"required"`
	Prompt   string `json:"prompt" binding:"required"`
}

// Refine godoc
// @Summary      Rewrite a prompt using a named prompting strategy
// @Tags         playground
// @Accept       json
// @Produce      json
// @Param        request body RefineRequest true "Strategy and prompt"
// @Success      200 {object} services.RefinedPrompt
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /api/v1/playground/refine [post]
func (h *PlaygroundHandler) Refine(c *gin.Context) {
	var req RefineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Strategy and prompt are required"})
		return
	}

	refined, err := h.refiner.Refine(c.Request.Context(), req.Strategy, req.Prompt)
	if err != nil {
		if errors.Is(err, services.ErrUnknownStrategy) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		log.Printf("prompt refine failed: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: llm.UserMessage(err, "Failed to refine prompt. Please try again."),
		})
		return
	}

	c.JSON(http.StatusOK, refined)
}

// Strategies godoc
// @Summary      List available refinement strategies
// @Tags         playground
// @Produce      json
// @Success      200 {object} map[string]interface{}
// @Router       /api/v1/playground/strategies [get]
func (h *PlaygroundHandler) Strategies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"strategies": h.refiner.Strategies()})
}
