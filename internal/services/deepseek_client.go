package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dailyfocus/dailyfocus-backend/internal/logger"
	"github.com/dailyfocus/dailyfocus-backend/internal/utils"
)

// ChatMessage is one entry of the prompt sent to the completion API.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type CompletionOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// CompletionResult is the defensive envelope every completion call
// resolves to. Failures carry a user-facing Error string; upstream stack
// traces never reach the caller.
type CompletionResult struct {
	Success bool           `json:"success"`
	Content string         `json:"content,omitempty"`
	Usage   map[string]any `json:"usage,omitempty"`
	Model   string         `json:"model,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// CompletionClient wraps the chat-completion oracle.
type CompletionClient interface {
	Complete(ctx context.Context, messages []ChatMessage, opts CompletionOptions) CompletionResult
}

const (
	defaultCompletionModel = "deepseek-chat"
	completionTimeout      = 30 * time.Second

	msgSensitiveContent = "抱歉,这个问题可能涉及敏感内容,请换个方式提问"
	msgRateLimited      = "请求过于频繁,请稍后再试"
	msgBadAPIKey        = "API密钥配置错误,请联系管理员"
)

type deepseekClient struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewDeepSeekClient builds the client from the environment. An empty key
// is allowed; calls will then fail with the configuration-error message.
func NewDeepSeekClient(log *logger.Logger) CompletionClient {
	baseURL := utils.GetEnv("DEEPSEEK_API_URL", "https://api.deepseek.com", log)
	apiKey := utils.GetEnv("DEEPSEEK_API_KEY", "", log)
	model := utils.GetEnv("DEEPSEEK_MODEL", defaultCompletionModel, log)

	return &deepseekClient{
		log:        log.With("service", "DeepSeekClient"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: completionTimeout},
	}
}

// NewDeepSeekClientWithBase is used by tests to point the client at a
// stub server.
func NewDeepSeekClientWithBase(log *logger.Logger, baseURL, apiKey string) CompletionClient {
	return &deepseekClient{
		log:        log.With("service", "DeepSeekClient"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      defaultCompletionModel,
		httpClient: &http.Client{Timeout: completionTimeout},
	}
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
}

type chatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage map[string]any `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *deepseekClient) Complete(ctx context.Context, messages []ChatMessage, opts CompletionOptions) CompletionResult {
	model := opts.Model
	if model == "" {
		model = c.model
	}
	temperature := opts.Temperature
	if temperature == 0 {
		temperature = 0.7
	}
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2000
	}

	payload := chatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Stream:      false,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return CompletionResult{Success: false, Error: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return CompletionResult{Success: false, Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("completion call failed", "error", err)
		return CompletionResult{Success: false, Error: classifyUpstreamError("", err.Error())}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		c.log.Error("completion read failed", "error", err)
		return CompletionResult{Success: false, Error: classifyUpstreamError("", err.Error())}
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		c.log.Error("completion decode failed", "status", resp.StatusCode, "error", err)
		return CompletionResult{Success: false, Error: classifyUpstreamError("", fmt.Sprintf("unexpected response (http %d)", resp.StatusCode))}
	}

	if parsed.Error != nil {
		c.log.Warn("completion api error", "status", resp.StatusCode, "type", parsed.Error.Type, "message", parsed.Error.Message)
		return CompletionResult{Success: false, Error: classifyUpstreamError(parsed.Error.Type, parsed.Error.Message)}
	}
	if resp.StatusCode != http.StatusOK || len(parsed.Choices) == 0 {
		c.log.Warn("completion unexpected response", "status", resp.StatusCode)
		return CompletionResult{Success: false, Error: classifyUpstreamError("", fmt.Sprintf("unexpected response (http %d)", resp.StatusCode))}
	}

	return CompletionResult{
		Success: true,
		Content: parsed.Choices[0].Message.Content,
		Usage:   parsed.Usage,
		Model:   parsed.Model,
	}
}

// classifyUpstreamError maps upstream failures onto a small set of
// user-facing messages. Classification order matters: content policy
// first, then rate limiting, then auth; anything else passes through.
func classifyUpstreamError(apiType, message string) string {
	switch {
	case apiType == "content_policy_violation" || strings.Contains(message, "Content Exists Risk"):
		return msgSensitiveContent
	case apiType == "rate_limit_exceeded" || strings.Contains(message, "rate_limit"):
		return msgRateLimited
	case strings.Contains(message, "invalid_api_key") || strings.Contains(message, "Unauthorized"):
		return msgBadAPIKey
	default:
		return message
	}
}
