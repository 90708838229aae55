package handlers

import (
	"net/http"
	"strings"

	"github.com/saravanan10393/prompt-playground/internal/middleware"
	"github.com/saravanan10393/prompt-playground/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	users *services.UserService
}

func NewAuthHandler(users *services.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

type AuthRequest struct {
	Token string `json:"token"`
	Name  string `json:"name"`
}

type UpdateNameRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// Authenticate godoc
// @Summary      Issue or resume an identity token
// @Description  Returns the user for the given token, creating one (with a fresh token if none supplied)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body AuthRequest false "Existing token and optional name"
// @Success      200 {object} map[string]interface{}
// @Failure      500 {object} ErrorResponse
// @Router       /api/v1/auth [post]
func (h *AuthHandler) Authenticate(c *gin.Context) {
	var req AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	token := req.Token
	if token == "" {
		token = services.NewToken()
	}

	user, err := h.users.GetOrCreate(token, strings.TrimSpace(req.Name))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create user"})
		return
	}

	c.SetCookie(middleware.UserTokenCookie, user.Token, 0, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"user": user, "token": user.Token})
}

// Me godoc
// @Summary      Get the current user
// @Tags         auth
// @Produce      json
// @Success      200 {object} map[string]interface{}
// @Failure      401 {object} ErrorResponse
// @Router       /api/v1/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	token := c.GetString("user_token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "No token provided"})
		return
	}

	user, err := h.users.GetByToken(token)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateName godoc
// @Summary      Update the current user's display name
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body UpdateNameRequest true "New name"
// @Success      200 {object} map[string]interface{}
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /api/v1/auth/name [patch]
func (h *AuthHandler) UpdateName(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "No token provided"})
		return
	}

	var req UpdateNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid name provided"})
		return
	}

	user, err := h.users.UpdateName(userID, strings.TrimSpace(req.Name))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update name"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
