package middleware

import (
	"log"

	"github.com/saravanan10393/prompt-playground/internal/services"

	"github.com/gin-gonic/gin"
)

const UserTokenCookie = "user_token"

// TokenAuth resolves the caller's identity from the bearer-token cookie,
// creating the user lazily on first contact. Anonymous requests pass
// through with no identity set; handlers and the rate limiter decide what
// anonymity means for them.
func TokenAuth(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(UserTokenCookie)
		if err != nil || token == "" {
			c.Next()
			return
		}

		user, err := users.GetOrCreate(token, "")
		if err != nil {
			log.Printf("identity lookup failed: %v", err)
			c.Next()
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user_token", user.Token)
		c.Set("user_name", user.Name)
		c.Next()
	}
}
