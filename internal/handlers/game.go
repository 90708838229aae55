package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/saravanan10393/prompt-playground/internal/services"

	"github.com/gin-gonic/gin"
)

type GameHandler struct {
	games *services.GameService
}

func NewGameHandler(games *services.GameService) *GameHandler {
	return &GameHandler{games: games}
}

type GameRequest struct {
	Title     string                   `json:"title" binding:"required,min=1,max=255"`
	Scenarios []services.ScenarioInput `json:"scenarios" binding:"required,min=1,max=10,dive"`
}

func parseGameID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid game ID"})
		return 0, false
	}
	return uint(id), true
}

// ListGames godoc
// @Summary      List active games
// @Tags         games
// @Produce      json
// @Success      200 {object} map[string]interface{}
// @Router       /api/v1/games [get]
func (h *GameHandler) ListGames(c *gin.Context) {
	games, err := h.games.ListActive()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch games"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}

// CreateGame godoc
// @Summary      Create a game with its scenarios
// @Tags         games
// @Accept       json
// @Produce      json
// @Param        request body GameRequest true "Game data"
// @Success      200 {object} map[string]interface{}
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /api/v1/games [post]
func (h *GameHandler) CreateGame(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req GameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	game, err := h.games.CreateGame(userID, req.Title, req.Scenarios)
	if err != nil {
		if errors.Is(err, services.ErrScenarioCount) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create game"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"game": game})
}

// GetGame godoc
// @Summary      Get a game with its scenarios
// @Tags         games
// @Produce      json
// @Param        id path int true "Game ID"
// @Success      200 {object} map[string]interface{}
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/games/{id} [get]
func (h *GameHandler) GetGame(c *gin.Context) {
	gameID, ok := parseGameID(c)
	if !ok {
		return
	}

	game, err := h.games.GetGame(gameID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Game not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"game": game})
}

// UpdateGame godoc
// @Summary      Update a game's title and scenario texts
// @Tags         games
// @Accept       json
// @Produce      json
// @Param        id path int true "Game ID"
// @Param        request body GameRequest true "Updated game data"
// @Success      200 {object} map[string]interface{}
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/games/{id} [patch]
func (h *GameHandler) UpdateGame(c *gin.Context) {
	gameID, ok := parseGameID(c)
	if !ok {
		return
	}

	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req GameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	game, err := h.games.UpdateGame(gameID, userID, req.Title, req.Scenarios)
	if err != nil {
		if errors.Is(err, services.ErrNotGameOwner) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update game"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"game": game})
}

// DeleteGame godoc
// @Summary      Delete a game
// @Tags         games
// @Produce      json
// @Param        id path int true "Game ID"
// @Success      200 {object} MessageResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/games/{id} [delete]
func (h *GameHandler) DeleteGame(c *gin.Context) {
	gameID, ok := parseGameID(c)
	if !ok {
		return
	}

	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.games.DeleteGame(gameID, userID); err != nil {
		if errors.Is(err, services.ErrNotGameOwner) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to delete game"})
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Game deleted successfully"})
}

// CheckEditable godoc
// @Summary      Check whether the caller may edit a game
// @Tags         games
// @Produce      json
// @Param        id path int true "Game ID"
// @Success      200 {object} services.Editable
// @Failure      401 {object} ErrorResponse
// @Router       /api/v1/games/{id}/check-editable [get]
func (h *GameHandler) CheckEditable(c *gin.Context) {
	gameID, ok := parseGameID(c)
	if !ok {
		return
	}

	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	editable, err := h.games.CheckEditable(gameID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to check edit permissions"})
		return
	}

	c.JSON(http.StatusOK, editable)
}
