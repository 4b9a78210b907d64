package app

import (
	"gorm.io/gorm"

	"github.com/dailyfocus/dailyfocus-backend/internal/logger"
	"github.com/dailyfocus/dailyfocus-backend/internal/search"
	"github.com/dailyfocus/dailyfocus-backend/internal/services"
)

type Services struct {
	Auth     services.AuthService
	Chat     services.ChatService
	Analysis services.AnalysisService
	Profile  services.ProfileService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos) (Services, error) {
	log.Info("Wiring services...")

	cache, err := search.NewRedisCache(log)
	if err != nil {
		return Services{}, err
	}

	trigger := search.NewTrigger()
	chain := search.NewChain(log, cfg.Search, cache)
	prompts := services.NewPromptBuilder()
	completion := services.NewDeepSeekClient(log)

	authService := services.NewAuthService(
		db, log,
		reposet.User, reposet.Conversation, reposet.UserProfile,
		cfg.JWTSecretKey, cfg.TokenTTL,
		cfg.WechatAppID, cfg.WechatSecret,
	)
	profileService := services.NewProfileService(
		db, log,
		reposet.User, reposet.Message, reposet.AnalysisReport, reposet.UserProfile,
	)
	chatService := services.NewChatService(
		db, log,
		reposet.Conversation, reposet.Message, reposet.UserProfile,
		trigger, chain, prompts, completion,
	)
	analysisService := services.NewAnalysisService(
		db, log,
		reposet.Message, reposet.AnalysisReport,
		profileService, prompts, completion,
	)

	return Services{
		Auth:     authService,
		Chat:     chatService,
		Analysis: analysisService,
		Profile:  profileService,
	}, nil
}
