package app

import (
	"gorm.io/gorm"

	httpH "github.com/dailyfocus/dailyfocus-backend/internal/http/handlers"
	"github.com/dailyfocus/dailyfocus-backend/internal/logger"
)

type Handlers struct {
	Auth     *httpH.AuthHandler
	Chat     *httpH.ChatHandler
	Analysis *httpH.AnalysisHandler
	Profile  *httpH.ProfileHandler
	Health   *httpH.HealthHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:     httpH.NewAuthHandler(serviceset.Auth),
		Chat:     httpH.NewChatHandler(serviceset.Chat),
		Analysis: httpH.NewAnalysisHandler(serviceset.Analysis),
		Profile:  httpH.NewProfileHandler(serviceset.Profile),
		Health:   httpH.NewHealthHandler(db),
	}
}
