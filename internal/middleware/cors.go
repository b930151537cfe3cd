package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sjperalta/rentdesk-api/pkg/logger"
)

// CORS allows browser clients from the configured origins. A "*" entry allows
// any origin, without credentials.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "Accept", "Origin"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	for _, origin := range allowedOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		switch {
		case origin == "*":
			config.AllowAllOrigins = true
		case strings.HasPrefix(origin, "http://"), strings.HasPrefix(origin, "https://"):
			config.AllowOrigins = append(config.AllowOrigins, origin)
		case origin != "":
			logger.Warn("Ignoring CORS origin without scheme", "origin", origin)
		}
	}

	if config.AllowAllOrigins {
		config.AllowOrigins = nil
		config.AllowCredentials = false
	} else if len(config.AllowOrigins) == 0 {
		config.AllowOriginFunc = func(string) bool { return false }
	}

	return cors.New(config)
}
