package httpapi

import (
	"emoheal/internal/database"
	"emoheal/internal/logger"
	"emoheal/internal/services"

	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	Services    *services.ServiceManager
	Log         *logger.Logger
	CORSOrigins []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	h := NewHandler(cfg.Services)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLog(cfg.Log))
	r.Use(CORS(cfg.CORSOrigins))

	// Health
	r.GET("/healthcheck", h.HealthCheck)
	r.GET("/readyz", h.Ready)

	api := r.Group("/api")
	api.Use(RequireReady(cfg.Services))
	{
		// Session (public)
		api.POST("/session/login", h.Login)
		api.POST("/session/register", h.Register)
		api.POST("/session/guest", h.Guest)
		api.GET("/quote", h.Quote)
	}

	protected := api.Group("")
	protected.Use(RequireAuth(cfg.Services))
	{
		protected.GET("/session", h.Session)
		protected.DELETE("/session", h.Logout)

		protected.GET("/moods", h.ListMoods)
		protected.GET("/moods/today", h.TodayMood)
		protected.GET("/moods/date/:date", h.MoodForDate)
		protected.POST("/moods", h.AddMood)
		protected.GET("/moods/summary", h.MoodSummary)
		protected.POST("/detect", h.Detect)

		protected.GET("/calendar", h.Calendar)
		protected.POST("/calendar/navigate", h.NavigateCalendar)
		protected.POST("/calendar/pick", h.PickCalendarMood)

		protected.GET("/feedback", h.ListFeedback)
		protected.POST("/feedback", h.AddFeedback)
		protected.GET("/feedback/:id", h.GetFeedback)
		protected.POST("/feedback/:id/star", h.ToggleStar)
		protected.DELETE("/feedback/:id", h.DeleteFeedback)

		protected.GET("/settings", h.GetSettings)
		protected.PATCH("/settings", h.UpdateSettings)
		protected.POST("/settings/toggle/:name", h.ToggleSetting)
		protected.GET("/settings/applied", h.AppliedSettings)

		protected.GET("/analytics/weekly", h.WeeklyAnalytics)
		protected.GET("/stats", h.UserStats)

		protected.POST("/support", h.Support)
		protected.GET("/crisis/alerts", h.CrisisAlerts)
	}

	admin := protected.Group("/admin")
	admin.Use(RequireRole(database.RoleAdmin))
	{
		admin.GET("/users", h.ListUsers)
		admin.PATCH("/users/:id/role", h.ChangeRole)
		admin.POST("/users/:id/status", h.ToggleUserStatus)
		admin.DELETE("/users/:id", h.DeleteUser)
		admin.GET("/crisis/alerts", h.ListCrisisAlerts)
		admin.POST("/crisis/alerts/:id/resolve", h.ResolveCrisisAlert)
	}

	return r
}
