package app

import (
	"github.com/gin-gonic/gin"

	internalhttp "github.com/dailyfocus/dailyfocus-backend/internal/http"
	"github.com/dailyfocus/dailyfocus-backend/internal/logger"
)

func wireRouter(log *logger.Logger, handlers Handlers, middleware Middleware) *gin.Engine {
	return internalhttp.NewRouter(internalhttp.RouterConfig{
		Log:             log,
		AuthHandler:     handlers.Auth,
		ChatHandler:     handlers.Chat,
		AnalysisHandler: handlers.Analysis,
		ProfileHandler:  handlers.Profile,
		HealthHandler:   handlers.Health,
		AuthMiddleware:  middleware.Auth,
	})
}
