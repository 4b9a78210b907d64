package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the wire contract the mini program client expects: code 0
// means success, anything else carries a user-facing message.
type Envelope struct {
	Code    int    `json:"code"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
}

func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Code: 0, Data: data, Message: "success"})
}

func RespondError(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{Code: status, Message: message})
}
