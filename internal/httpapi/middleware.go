package httpapi

import (
	"net/http"
	"time"

	"emoheal/internal/database"
	"emoheal/internal/logger"
	"emoheal/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const currentUserKey = "currentUser"

func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Requested-With"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

func RequestLog(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if len(c.Errors) > 0 {
			log.Warn("request completed with errors", "path", c.FullPath(), "errors", c.Errors.String())
		}
		log.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// RequireReady answers 503 until every store has loaded.
func RequireReady(sm *services.ServiceManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !sm.Ready() {
			RespondError(c, http.StatusServiceUnavailable, "not_ready", services.ErrNotReady)
			return
		}
		c.Next()
	}
}

func RequireAuth(sm *services.ServiceManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := sm.Session.Current()
		if !ok {
			RespondError(c, http.StatusUnauthorized, "unauthorized", services.ErrNotAuthenticated)
			return
		}
		c.Set(currentUserKey, user)
		c.Next()
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(role database.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c).Role != role {
			RespondError(c, http.StatusForbidden, "forbidden", services.ErrPermissionDenied)
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) database.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return database.User{}
	}
	user, _ := v.(database.User)
	return user
}
