package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/saravanan10393/prompt-playground/internal/services"

	"github.com/gin-gonic/gin"
)

type SubmissionHandler struct {
	games       *services.GameService
	users       *services.UserService
	evaluations *services.EvaluationService
	submissions *services.SubmissionService
}

func NewSubmissionHandler(
	games *services.GameService,
	users *services.UserService,
	evaluations *services.EvaluationService,
	submissions *services.SubmissionService,
) *SubmissionHandler {
	return &SubmissionHandler{
		games:       games,
		users:       users,
		evaluations: evaluations,
		submissions: submissions,
	}
}

type PromptSubmission struct {
	ScenarioID uint   `json:"scenarioId" binding:"required"`
	Prompt     string `json:"prompt" binding:"required"`
}

type SubmitRequest struct {
	Submissions []PromptSubmission `json:"submissions" binding:"required,min=1,dive"`
}

// Submit godoc
// @Summary      Submit prompts for every scenario in a game
// @Description  Evaluates each prompt with the LLM, replaces the user's previous batch and returns the updated leaderboard
// @Tags         games
// @Accept       json
// @Produce      json
// @Param        id path int true "Game ID"
// @Param        request body SubmitRequest true "One prompt per scenario"
// @Success      200 {object} services.SubmitResult
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/games/{id}/submit [post]
func (h *SubmissionHandler) Submit(c *gin.Context) {
	gameID, ok := parseGameID(c)
	if !ok {
		return
	}

	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request. Submissions must be an array."})
		return
	}

	game, err := h.games.GetGame(gameID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Game not found"})
		return
	}

	// Validate the scenario set up front: evaluation is the expensive
	// step, so reject bad batches before burning LLM calls. SubmitAll
	// re-checks against the live scenario set before writing.
	if len(req.Submissions) != len(game.Scenarios) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: fmt.Sprintf("Invalid request. Must submit %d prompts for this game.", len(game.Scenarios)),
		})
		return
	}
	scenarioByID := make(map[uint]string, len(game.Scenarios))
	for _, sc := range game.Scenarios {
		scenarioByID[sc.ID] = fmt.Sprintf("%s\n\n%s", sc.Title, sc.Description)
	}
	seen := make(map[uint]bool, len(req.Submissions))
	for _, sub := range req.Submissions {
		if _, ok := scenarioByID[sub.ScenarioID]; !ok || seen[sub.ScenarioID] {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid scenario IDs in submission"})
			return
		}
		seen[sub.ScenarioID] = true
	}

	results := make([]services.EvaluatedResult, 0, len(req.Submissions))
	for _, sub := range req.Submissions {
		eval := h.evaluations.EvaluatePrompt(c.Request.Context(), scenarioByID[sub.ScenarioID], sub.Prompt)
		results = append(results, services.EvaluatedResult{
			ScenarioID:    sub.ScenarioID,
			Prompt:        sub.Prompt,
			Score:         eval.Score,
			Feedback:      eval.Feedback,
			RefinedPrompt: eval.RefinedPrompt,
		})
	}

	result, err := h.submissions.SubmitAll(gameID, userID, results)
	if err != nil {
		if errors.Is(err, services.ErrScenarioMismatch) || errors.Is(err, services.ErrScenarioCount) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to submit prompts"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Results godoc
// @Summary      Get the leaderboard and the caller's submissions for a game
// @Tags         games
// @Produce      json
// @Param        id path int true "Game ID"
// @Success      200 {object} map[string]interface{}
// @Router       /api/v1/games/{id}/results [get]
func (h *SubmissionHandler) Results(c *gin.Context) {
	gameID, ok := parseGameID(c)
	if !ok {
		return
	}

	leaderboard, err := h.submissions.GetLeaderboard(gameID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch results"})
		return
	}

	var userSubmissions interface{}
	if userID := c.GetUint("user_id"); userID != 0 {
		subs, err := h.submissions.GetUserSubmissions(gameID, userID)
		if err == nil {
			userSubmissions = subs
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard":     leaderboard,
		"userSubmissions": userSubmissions,
	})
}

// UserSubmissions godoc
// @Summary      Get one user's submissions for a game by their token
// @Tags         games
// @Produce      json
// @Param        id path int true "Game ID"
// @Param        token path string true "User token"
// @Success      200 {object} map[string]interface{}
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/games/{id}/submissions/{token} [get]
func (h *SubmissionHandler) UserSubmissions(c *gin.Context) {
	gameID, ok := parseGameID(c)
	if !ok {
		return
	}

	user, err := h.users.GetByToken(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "User not found"})
		return
	}

	game, err := h.games.GetGame(gameID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Game not found"})
		return
	}

	subs, err := h.submissions.GetUserSubmissions(gameID, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch user submissions"})
		return
	}

	totalScore := 0
	for _, sub := range subs {
		totalScore += sub.Score
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{"name": user.Name, "token": user.Token},
		"game": gin.H{"title": game.Title, "scenarios": len(game.Scenarios)},

		"submissions": subs,
		"totalScore":  totalScore,
		"maxScore":    len(game.Scenarios) * 10,
	})
}
