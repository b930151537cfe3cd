package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sjperalta/rentdesk-api/internal/models"
	"github.com/sjperalta/rentdesk-api/internal/permission"
)

const actorKey = "actor"

// Claims is the token payload issued by the staff login service
type Claims struct {
	UserID      uint     `json:"user_id"`
	BranchID    uint     `json:"branch_id"`
	TopAccount  bool     `json:"top_account"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// Actor flattens the claims into the permission set the evaluator reads
func (c *Claims) Actor() *models.Actor {
	actor := models.NewActor(c.UserID, c.TopAccount, c.Permissions...)
	actor.BranchID = c.BranchID
	return actor
}

// Auth returns a middleware that validates JWT tokens and stores the actor
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header is required",
			})
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format",
			})
			return
		}

		claims, err := validateToken(parts[1], jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": err.Error(),
			})
			return
		}

		c.Set(actorKey, claims.Actor())

		c.Next()
	}
}

// validateToken parses and validates a JWT token string
func validateToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.New("token has expired")
		}
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// GetActor extracts the actor from the Gin context, nil when unauthenticated
func GetActor(c *gin.Context) *models.Actor {
	value, exists := c.Get(actorKey)
	if !exists {
		return nil
	}
	actor, _ := value.(*models.Actor)
	return actor
}

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) uint {
	if actor := GetActor(c); actor != nil {
		return actor.UserID
	}
	return 0
}

// RequirePermission returns a middleware that requires a named permission
func RequirePermission(evaluator permission.Evaluator, name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !evaluator.HasPermission(GetActor(c), name) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":      "permission denied",
				"permission": name,
			})
			return
		}
		c.Next()
	}
}

// RequireBranchAccess rejects actors working on another branch's data.
// Top accounts may act on every branch.
func RequireBranchAccess(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c)
		if actor == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if actor.IsTopAccount || actor.BranchID == 0 || c.Param(param) == "" {
			c.Next()
			return
		}
		if c.Param(param) != strconv.FormatUint(uint64(actor.BranchID), 10) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "branch not accessible"})
			return
		}
		c.Next()
	}
}
