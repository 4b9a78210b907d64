package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/dailyfocus/dailyfocus-backend/internal/services"
	"github.com/dailyfocus/dailyfocus-backend/internal/types"
)

type fakeChatService struct {
	out *services.SendMessageOutput
	err error
}

func (f *fakeChatService) SendMessage(ctx context.Context, user *types.User, in services.SendMessageInput) (*services.SendMessageOutput, error) {
	return f.out, f.err
}

func (f *fakeChatService) GetHistory(ctx context.Context, userID uuid.UUID, conversationID *uuid.UUID, page, limit int) (*services.HistoryPage, error) {
	return &services.HistoryPage{}, nil
}

func (f *fakeChatService) ListConversations(ctx context.Context, userID uuid.UUID) ([]*types.Conversation, error) {
	return nil, nil
}

func (f *fakeChatService) CreateConversation(ctx context.Context, userID uuid.UUID, title string) (*types.Conversation, error) {
	return nil, nil
}

func (f *fakeChatService) DeleteConversation(ctx context.Context, userID, conversationID uuid.UUID) error {
	return nil
}

func withTestUser(user *types.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("currentUser", user)
		c.Next()
	}
}

func testUser() *types.User {
	return &types.User{
		ID:          uuid.New(),
		OpenID:      "test-openid",
		Preferences: datatypes.NewJSONType(types.DefaultPreferences()),
	}
}

type envelope struct {
	Code    int            `json:"code"`
	Data    map[string]any `json:"data"`
	Message string         `json:"message"`
}

func TestSendResponseCarriesBothMessages(t *testing.T) {
	gin.SetMode(gin.TestMode)

	conversationID := uuid.New()
	now := time.Now()
	fake := &fakeChatService{
		out: &services.SendMessageOutput{
			UserMessage: &types.Message{
				ID: uuid.New(), ConversationID: conversationID,
				Role: types.MessageRoleUser, Content: "你好", CreatedAt: now,
			},
			AssistantMessage: &types.Message{
				ID: uuid.New(), ConversationID: conversationID,
				Role: types.MessageRoleAssistant, Content: "你好!",
				Meta:      datatypes.JSONMap{"model": "deepseek-chat"},
				CreatedAt: now.Add(time.Second),
			},
		},
	}

	r := gin.New()
	r.POST("/api/chat/send", withTestUser(testUser()), NewChatHandler(fake).Send)

	body := bytes.NewBufferString(`{"content": "你好"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/chat/send", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response not decodable: %v", err)
	}
	if resp.Code != 0 {
		t.Fatalf("expected code 0, got %d", resp.Code)
	}

	userMessage, ok := resp.Data["userMessage"].(map[string]any)
	if !ok {
		t.Fatalf("data.userMessage missing: %v", resp.Data)
	}
	for _, key := range []string{"id", "content", "createdAt"} {
		if _, ok := userMessage[key]; !ok {
			t.Fatalf("userMessage missing %q: %v", key, userMessage)
		}
	}
	if userMessage["content"] != "你好" {
		t.Fatalf("userMessage content wrong: %v", userMessage["content"])
	}

	assistantMessage, ok := resp.Data["assistantMessage"].(map[string]any)
	if !ok {
		t.Fatalf("data.assistantMessage missing: %v", resp.Data)
	}
	for _, key := range []string{"id", "content", "createdAt", "meta"} {
		if _, ok := assistantMessage[key]; !ok {
			t.Fatalf("assistantMessage missing %q: %v", key, assistantMessage)
		}
	}
	if resp.Data["conversationId"] != conversationID.String() {
		t.Fatalf("conversationId wrong: %v", resp.Data["conversationId"])
	}
}

func TestSendCompletionFailureMapsTo500(t *testing.T) {
	gin.SetMode(gin.TestMode)

	fake := &fakeChatService{err: &services.CompletionError{Message: "请求过于频繁,请稍后再试"}}
	r := gin.New()
	r.POST("/api/chat/send", withTestUser(testUser()), NewChatHandler(fake).Send)

	req := httptest.NewRequest(http.MethodPost, "/api/chat/send", bytes.NewBufferString(`{"content": "在吗"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response not decodable: %v", err)
	}
	if resp.Code == 0 {
		t.Fatalf("error envelope must carry a nonzero code")
	}
}
