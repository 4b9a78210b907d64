package app

import (
	"gorm.io/gorm"

	"github.com/dailyfocus/dailyfocus-backend/internal/logger"
	"github.com/dailyfocus/dailyfocus-backend/internal/repos"
)

type Repos struct {
	User           repos.UserRepo
	Conversation   repos.ConversationRepo
	Message        repos.MessageRepo
	AnalysisReport repos.AnalysisReportRepo
	UserProfile    repos.UserProfileRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:           repos.NewUserRepo(db, log),
		Conversation:   repos.NewConversationRepo(db, log),
		Message:        repos.NewMessageRepo(db, log),
		AnalysisReport: repos.NewAnalysisReportRepo(db, log),
		UserProfile:    repos.NewUserProfileRepo(db, log),
	}
}
