package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/dailyfocus/dailyfocus-backend/internal/http/handlers"
	httpMW "github.com/dailyfocus/dailyfocus-backend/internal/http/middleware"
	"github.com/dailyfocus/dailyfocus-backend/internal/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthHandler     *httpH.AuthHandler
	ChatHandler     *httpH.ChatHandler
	AnalysisHandler *httpH.AnalysisHandler
	ProfileHandler  *httpH.ProfileHandler
	HealthHandler   *httpH.HealthHandler

	AuthMiddleware *httpMW.AuthMiddleware
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLog(cfg.Log))
	}
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/api/health", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.AuthHandler != nil {
			api.POST("/auth/login", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.GET("/auth/me", cfg.AuthHandler.Me)
		}

		if cfg.ChatHandler != nil {
			protected.POST("/chat/send", cfg.ChatHandler.Send)
			protected.GET("/chat/history", cfg.ChatHandler.History)
			protected.GET("/chat/conversations", cfg.ChatHandler.ListConversations)
			protected.POST("/chat/conversation", cfg.ChatHandler.CreateConversation)
			protected.DELETE("/chat/conversation/:id", cfg.ChatHandler.DeleteConversation)
		}

		if cfg.AnalysisHandler != nil {
			protected.POST("/analysis/generate", cfg.AnalysisHandler.Generate)
			protected.GET("/analysis/reports", cfg.AnalysisHandler.ListReports)
			protected.GET("/analysis/report/:id", cfg.AnalysisHandler.GetReport)
			protected.DELETE("/analysis/report/:id", cfg.AnalysisHandler.DeleteReport)
		}

		if cfg.ProfileHandler != nil {
			protected.GET("/profile/get", cfg.ProfileHandler.Get)
			protected.POST("/profile/preferences", cfg.ProfileHandler.UpdatePreferences)
			protected.GET("/profile/stats", cfg.ProfileHandler.Stats)
			protected.GET("/profile/export", cfg.ProfileHandler.Export)
			protected.DELETE("/profile/clear", cfg.ProfileHandler.Clear)
		}
	}

	return r
}
