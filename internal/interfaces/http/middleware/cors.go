package middleware

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig holds CORS middleware configuration
type CORSConfig struct {
	AllowOrigins []string
	AllowMethods []string
	AllowHeaders []string
	MaxAge       time.Duration
}

// CORS returns the cross-origin middleware. An empty origin list rejects
// every cross-origin request; "*" allows all origins without credentials.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	if len(cfg.AllowOrigins) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	cc := cors.Config{
		AllowMethods:  cfg.AllowMethods,
		AllowHeaders:  cfg.AllowHeaders,
		ExposeHeaders: []string{"Content-Disposition", "X-Request-ID", "X-Generation-ID", "X-Cache", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		MaxAge:        cfg.MaxAge,
	}
	if slices.Contains(cfg.AllowOrigins, "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = cfg.AllowOrigins
		cc.AllowCredentials = true
	}
	if len(cc.AllowMethods) == 0 {
		cc.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	if len(cc.AllowHeaders) == 0 {
		cc.AllowHeaders = []string{"Accept", "Authorization", "Content-Type", "Origin", RequestIDHeader}
	}
	if cc.MaxAge == 0 {
		cc.MaxAge = 12 * time.Hour
	}
	return cors.New(cc)
}
