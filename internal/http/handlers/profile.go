package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dailyfocus/dailyfocus-backend/internal/http/response"
	"github.com/dailyfocus/dailyfocus-backend/internal/services"
	"github.com/dailyfocus/dailyfocus-backend/internal/types"
)

type ProfileHandler struct {
	profileService services.ProfileService
}

func NewProfileHandler(profileService services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func (ph *ProfileHandler) Get(c *gin.Context) {
	user := currentUserOrAbort(c)
	if user == nil {
		return
	}

	profile, err := ph.profileService.GetOrCreate(c.Request.Context(), user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.RespondOK(c, gin.H{
		"traits":           profile.Traits.Data(),
		"longTermPatterns": profile.LongTermPatterns.Data(),
		"historySnapshots": profile.HistorySnapshots.Data(),
		"preferences":      user.Preferences.Data(),
		"updatedAt":        profile.UpdatedAt,
	})
}

func (ph *ProfileHandler) UpdatePreferences(c *gin.Context) {
	user := currentUserOrAbort(c)
	if user == nil {
		return
	}

	var req types.Preferences
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "请求格式错误")
		return
	}

	merged, err := ph.profileService.UpdatePreferences(c.Request.Context(), user, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"preferences": merged})
}

func (ph *ProfileHandler) Stats(c *gin.Context) {
	user := currentUserOrAbort(c)
	if user == nil {
		return
	}

	stats, err := ph.profileService.Stats(c.Request.Context(), user)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, stats)
}

func (ph *ProfileHandler) Export(c *gin.Context) {
	user := currentUserOrAbort(c)
	if user == nil {
		return
	}

	export, err := ph.profileService.Export(c.Request.Context(), user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, export)
}

func (ph *ProfileHandler) Clear(c *gin.Context) {
	user := currentUserOrAbort(c)
	if user == nil {
		return
	}

	var req struct {
		Confirm bool `json:"confirm"`
	}
	_ = c.ShouldBindJSON(&req)
	if !req.Confirm {
		response.RespondError(c, http.StatusBadRequest, "请确认清除操作")
		return
	}

	if err := ph.profileService.Clear(c.Request.Context(), user.ID); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"cleared": true})
}
