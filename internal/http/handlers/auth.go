package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dailyfocus/dailyfocus-backend/internal/http/middleware"
	"github.com/dailyfocus/dailyfocus-backend/internal/http/response"
	"github.com/dailyfocus/dailyfocus-backend/internal/services"
	"github.com/dailyfocus/dailyfocus-backend/internal/types"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Code     string `json:"code"`
		Nickname string `json:"nickname"`
	}
	// Body is optional when the platform injects the openid header.
	_ = c.ShouldBindJSON(&req)

	out, err := ah.authService.Login(c.Request.Context(), services.LoginInput{
		Code:          req.Code,
		TrustedOpenID: c.GetHeader("X-WX-Openid"),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.RespondOK(c, gin.H{
		"token":       out.Token,
		"isNewUser":   out.IsNew,
		"userId":      out.User.ID.String(),
		"preferences": out.User.Preferences.Data(),
	})
}

func (ah *AuthHandler) Me(c *gin.Context) {
	user := currentUserOrAbort(c)
	if user == nil {
		return
	}
	response.RespondOK(c, gin.H{
		"userId":       user.ID.String(),
		"nickname":     user.Nickname,
		"preferences":  user.Preferences.Data(),
		"lastActiveAt": user.LastActiveAt,
		"createdAt":    user.CreatedAt,
	})
}

func currentUserOrAbort(c *gin.Context) *types.User {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.RespondError(c, http.StatusUnauthorized, "未登录")
		c.Abort()
		return nil
	}
	return user
}
