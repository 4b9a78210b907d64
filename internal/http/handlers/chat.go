package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dailyfocus/dailyfocus-backend/internal/http/response"
	"github.com/dailyfocus/dailyfocus-backend/internal/services"
	"github.com/dailyfocus/dailyfocus-backend/internal/types"
)

type ChatHandler struct {
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (ch *ChatHandler) Send(c *gin.Context) {
	user := currentUserOrAbort(c)
	if user == nil {
		return
	}

	var req struct {
		Content         string `json:"content"`
		ConversationID  string `json:"conversationId"`
		EnableWebSearch bool   `json:"enableWebSearch"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "请求格式错误")
		return
	}

	in := services.SendMessageInput{
		Content:         req.Content,
		EnableWebSearch: req.EnableWebSearch,
	}
	if req.ConversationID != "" {
		id, err := uuid.Parse(req.ConversationID)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "会话ID格式错误")
			return
		}
		in.ConversationID = &id
	}

	out, err := ch.chatService.SendMessage(c.Request.Context(), user, in)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.RespondOK(c, gin.H{
		"conversationId": out.AssistantMessage.ConversationID.String(),
		"userMessage": gin.H{
			"id":        out.UserMessage.ID.String(),
			"content":   out.UserMessage.Content,
			"createdAt": out.UserMessage.CreatedAt,
		},
		"assistantMessage": gin.H{
			"id":        out.AssistantMessage.ID.String(),
			"content":   out.AssistantMessage.Content,
			"createdAt": out.AssistantMessage.CreatedAt,
			"meta":      out.AssistantMessage.Meta,
		},
	})
}

func (ch *ChatHandler) History(c *gin.Context) {
	user := currentUserOrAbort(c)
	if user == nil {
		return
	}

	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 50)

	var conversationID *uuid.UUID
	if raw := c.Query("conversationId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "会话ID格式错误")
			return
		}
		conversationID = &id
	}

	history, err := ch.chatService.GetHistory(c.Request.Context(), user.ID, conversationID, page, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.RespondOK(c, gin.H{
		"messages":   messagePayload(history.Messages),
		"total":      history.Total,
		"page":       history.Page,
		"limit":      history.Limit,
		"totalPages": history.TotalPages,
	})
}

func (ch *ChatHandler) ListConversations(c *gin.Context) {
	user := currentUserOrAbort(c)
	if user == nil {
		return
	}

	conversations, err := ch.chatService.ListConversations(c.Request.Context(), user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items := make([]gin.H, 0, len(conversations))
	for _, conv := range conversations {
		items = append(items, gin.H{
			"id":        conv.ID.String(),
			"title":     conv.Title,
			"updatedAt": conv.UpdatedAt,
			"createdAt": conv.CreatedAt,
		})
	}
	response.RespondOK(c, gin.H{"conversations": items})
}

func (ch *ChatHandler) CreateConversation(c *gin.Context) {
	user := currentUserOrAbort(c)
	if user == nil {
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	_ = c.ShouldBindJSON(&req)

	conversation, err := ch.chatService.CreateConversation(c.Request.Context(), user.ID, req.Title)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.RespondOK(c, gin.H{
		"id":    conversation.ID.String(),
		"title": conversation.Title,
	})
}

func (ch *ChatHandler) DeleteConversation(c *gin.Context) {
	user := currentUserOrAbort(c)
	if user == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "会话ID格式错误")
		return
	}

	if err := ch.chatService.DeleteConversation(c.Request.Context(), user.ID, id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}

func messagePayload(messages []*types.Message) []gin.H {
	items := make([]gin.H, 0, len(messages))
	for _, msg := range messages {
		items = append(items, gin.H{
			"id":             msg.ID.String(),
			"conversationId": msg.ConversationID.String(),
			"role":           msg.Role,
			"content":        msg.Content,
			"createdAt":      msg.CreatedAt,
		})
	}
	return items
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
