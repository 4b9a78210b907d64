package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dailyfocus/dailyfocus-backend/internal/http/response"
	"github.com/dailyfocus/dailyfocus-backend/internal/logger"
	"github.com/dailyfocus/dailyfocus-backend/internal/repos"
	"github.com/dailyfocus/dailyfocus-backend/internal/services"
	"github.com/dailyfocus/dailyfocus-backend/internal/types"
)

const userContextKey = "currentUser"

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
	users       repos.UserRepo
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService, users repos.UserRepo) *AuthMiddleware {
	return &AuthMiddleware{
		log:         log.With("middleware", "AuthMiddleware"),
		authService: authService,
		users:       users,
	}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Envelope{
				Code: http.StatusUnauthorized, Message: "未登录",
			})
			return
		}

		userID, err := am.authService.VerifyToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Envelope{
				Code: http.StatusUnauthorized, Message: "登录已过期,请重新登录",
			})
			return
		}

		user, err := am.users.GetByID(c.Request.Context(), nil, userID)
		if err != nil || user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Envelope{
				Code: http.StatusUnauthorized, Message: "用户不存在",
			})
			return
		}

		if err := am.users.TouchLastActive(c.Request.Context(), nil, user.ID, time.Now()); err != nil {
			am.log.Warn("last active touch failed", "user_id", user.ID, "error", err)
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// CurrentUser returns the authenticated user RequireAuth stashed on the
// request, or nil on unauthenticated routes.
func CurrentUser(c *gin.Context) *types.User {
	value, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, ok := value.(*types.User)
	if !ok {
		return nil
	}
	return user
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	return ""
}
