package app

import (
	httpMW "github.com/dailyfocus/dailyfocus-backend/internal/http/middleware"
	"github.com/dailyfocus/dailyfocus-backend/internal/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, serviceset Services, reposet Repos) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, serviceset.Auth, reposet.User),
	}
}
