package app

import (
	"time"

	"github.com/dailyfocus/dailyfocus-backend/internal/logger"
	"github.com/dailyfocus/dailyfocus-backend/internal/search"
	"github.com/dailyfocus/dailyfocus-backend/internal/utils"
)

type Config struct {
	JWTSecretKey string
	TokenTTL     time.Duration
	WechatAppID  string
	WechatSecret string
	Search       search.Config
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	tokenTTLSeconds := utils.GetEnvAsInt("TOKEN_TTL", 7*24*3600, log)
	return Config{
		JWTSecretKey: jwtSecretKey,
		TokenTTL:     time.Duration(tokenTTLSeconds) * time.Second,
		WechatAppID:  utils.GetEnv("WECHAT_APPID", "", log),
		WechatSecret: utils.GetEnv("WECHAT_SECRET", "", log),
		Search: search.Config{
			SerpAPIKey: utils.GetEnv("SERPAPI_KEY", "", log),
			BingKey:    utils.GetEnv("BING_SEARCH_KEY", "", log),
		},
	}
}
