package services

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyContent         = errors.New("消息内容不能为空")
	ErrConversationNotFound = errors.New("会话不存在")
	ErrReportNotFound       = errors.New("报告不存在")
	ErrUserNotFound         = errors.New("用户不存在")
	ErrNoMessagesInRange    = errors.New("该时间段内没有聊天记录")
	ErrMissingPeriodBounds  = errors.New("自定义周期需要指定开始和结束时间")
	ErrMissingLoginCode     = errors.New("缺少登录code")
)

// CompletionError carries the user-facing message a failed oracle call
// was classified into. The user's message stays persisted when this is
// returned from a turn.
type CompletionError struct {
	Message string
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("AI回复失败: %s", e.Message)
}
