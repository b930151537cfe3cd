package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sjperalta/rentdesk-api/internal/permission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims Claims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims(topAccount bool, perms ...string) Claims {
	return Claims{
		UserID:      7,
		BranchID:    2,
		TopAccount:  topAccount,
		Permissions: perms,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	evaluator := permission.NewEvaluator()

	api := r.Group("/api", Auth(testSecret))
	api.GET("/reminders", RequirePermission(evaluator, permission.ViewReminders), func(c *gin.Context) {
		actor := GetActor(c)
		c.JSON(http.StatusOK, gin.H{"user_id": actor.UserID, "branch_id": actor.BranchID})
	})
	api.GET("/branches/:id", RequireBranchAccess("id"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func doRequest(r *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	r := newRouter()

	expired := validClaims(false, permission.ViewReminders)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"Missing header", "", http.StatusUnauthorized},
		{"Wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"Garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"Wrong secret", "Bearer " + signToken(t, validClaims(false, permission.ViewReminders), "other"), http.StatusUnauthorized},
		{"Expired token", "Bearer " + signToken(t, expired, testSecret), http.StatusUnauthorized},
		{"Granted", "Bearer " + signToken(t, validClaims(false, permission.ViewReminders), testSecret), http.StatusOK},
		{"Missing permission", "Bearer " + signToken(t, validClaims(false, permission.EditContract), testSecret), http.StatusForbidden},
		{"Top account", "Bearer " + signToken(t, validClaims(true), testSecret), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, "/api/reminders", tt.header)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRequireBranchAccess(t *testing.T) {
	r := newRouter()

	staff := "Bearer " + signToken(t, validClaims(false), testSecret)
	top := "Bearer " + signToken(t, validClaims(true), testSecret)

	assert.Equal(t, http.StatusNoContent, doRequest(r, "/api/branches/2", staff).Code)
	assert.Equal(t, http.StatusForbidden, doRequest(r, "/api/branches/3", staff).Code)
	assert.Equal(t, http.StatusNoContent, doRequest(r, "/api/branches/3", top).Code)
}

func TestGetActor_Unauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Nil(t, GetActor(c))
	assert.Zero(t, GetUserID(c))
}
