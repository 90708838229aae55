package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/saravanan10393/prompt-playground/internal/models"
	"github.com/saravanan10393/prompt-playground/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type identity struct {
	userID uint
	name   string
	set    bool
}

func newAuthRouter(t *testing.T) (*gin.Engine, *gorm.DB, *identity) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	got := &identity{}
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TokenAuth(services.NewUserService(db)))
	r.GET("/whoami", func(c *gin.Context) {
		if id, ok := c.Get("user_id"); ok {
			got.set = true
			got.userID = id.(uint)
			got.name = c.GetString("user_name")
		}
		c.Status(http.StatusOK)
	})
	return r, db, got
}

func TestTokenAuthAnonymousPassesThrough(t *testing.T) {
	r, _, got := newAuthRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, got.set, "no identity without a cookie")
}

func TestTokenAuthCreatesUserOnFirstContact(t *testing.T) {
	r, db, got := newAuthRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: UserTokenCookie, Value: "fresh-token"})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, got.set)
	assert.NotEmpty(t, got.name)

	var user models.User
	require.NoError(t, db.Where("token = ?", "fresh-token").First(&user).Error)
	assert.Equal(t, user.ID, got.userID)
}

func TestTokenAuthResolvesExistingUser(t *testing.T) {
	r, db, got := newAuthRouter(t)

	existing := models.User{Token: "known-token", Name: "alice"}
	require.NoError(t, db.Create(&existing).Error)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: UserTokenCookie, Value: "known-token"})
	r.ServeHTTP(w, req)

	require.True(t, got.set)
	assert.Equal(t, existing.ID, got.userID)
	assert.Equal(t, "alice", got.name)
}
