package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dailyfocus/dailyfocus-backend/internal/http/response"
	"github.com/dailyfocus/dailyfocus-backend/internal/services"
)

// respondServiceError maps service sentinels onto HTTP statuses and keeps
// their Chinese user-facing messages intact.
func respondServiceError(c *gin.Context, err error) {
	var completionErr *services.CompletionError
	switch {
	case errors.Is(err, services.ErrEmptyContent),
		errors.Is(err, services.ErrMissingPeriodBounds),
		errors.Is(err, services.ErrMissingLoginCode),
		errors.Is(err, services.ErrNoMessagesInRange):
		response.RespondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrConversationNotFound),
		errors.Is(err, services.ErrReportNotFound),
		errors.Is(err, services.ErrUserNotFound):
		response.RespondError(c, http.StatusNotFound, err.Error())
	case errors.As(err, &completionErr):
		response.RespondError(c, http.StatusInternalServerError, completionErr.Error())
	default:
		response.RespondError(c, http.StatusInternalServerError, "服务器内部错误")
	}
}
