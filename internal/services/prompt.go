package services

import (
	"fmt"
	"strings"

	"github.com/dailyfocus/dailyfocus-backend/internal/search"
	"github.com/dailyfocus/dailyfocus-backend/internal/types"
)

// HistoryWindow is the number of prior turns included in a chat prompt.
// The window is turn-count bounded; dropped turns are not summarized.
const HistoryWindow = 20

var toneDescriptions = map[string]string{
	"gentle":       "温和、理解、支持",
	"direct":       "直接、简洁、高效",
	"professional": "专业、客观、理性",
}

// PromptBuilder assembles the layered message sequence sent to the
// completion API. It is pure; all inputs arrive as arguments.
type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder { return &PromptBuilder{} }

// BuildChatMessages returns the ordered prompt:
// persona+tone system message (with an optional profile digest),
// a bounded window of prior turns oldest-first, an optional search-result
// system message, then the current user turn.
func (b *PromptBuilder) BuildChatMessages(
	profile *types.UserProfile,
	prefs types.Preferences,
	history []*types.Message,
	searchResult *search.Result,
	currentText string,
) []ChatMessage {
	messages := make([]ChatMessage, 0, len(history)+3)

	messages = append(messages, ChatMessage{
		Role:    "system",
		Content: b.buildSystemPrompt(profile, prefs),
	})

	window := history
	if len(window) > HistoryWindow {
		window = window[len(window)-HistoryWindow:]
	}
	for _, msg := range window {
		messages = append(messages, ChatMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	if searchResult != nil && len(searchResult.Results) > 0 {
		messages = append(messages, ChatMessage{
			Role: "system",
			Content: search.FormatResults(*searchResult) +
				"\n以上是联网搜索到的实时信息,回答时请结合这些信息,并说明相关内容来自搜索。",
		})
	}

	messages = append(messages, ChatMessage{
		Role:    "user",
		Content: currentText,
	})

	return messages
}

func (b *PromptBuilder) buildSystemPrompt(profile *types.UserProfile, prefs types.Preferences) string {
	tone := prefs.ReplyTone
	desc, ok := toneDescriptions[tone]
	if !ok {
		desc = toneDescriptions["gentle"]
	}

	var sb strings.Builder
	sb.WriteString("你是一个友好的AI助手,帮助用户解答问题和提供建议。\n\n")
	fmt.Fprintf(&sb, "回复风格: %s\n\n", desc)
	sb.WriteString("注意事项:\n1. 提供准确、有用的信息\n2. 回答要具体、实用\n3. 保持友好和专业的态度\n")

	if profile == nil {
		return sb.String()
	}

	traits := profile.Traits.Data()
	patterns := profile.LongTermPatterns.Data()
	hasTraits := len(traits.Personality) > 0 || len(traits.Abilities) > 0 || len(traits.Values) > 0
	if !hasTraits && len(patterns) == 0 {
		return sb.String()
	}

	sb.WriteString("\n以下是截至目前的用户画像摘要(仅供参考,不要机械复述给用户):\n")

	if len(traits.Personality) > 0 {
		fmt.Fprintf(&sb, "性格倾向: %s\n", formatTraitScores(traits.Personality))
	}
	if len(traits.Abilities) > 0 {
		fmt.Fprintf(&sb, "能力维度: %s\n", formatTraitScores(traits.Abilities))
	}
	if len(traits.Values) > 0 {
		fmt.Fprintf(&sb, "价值观倾向: %s\n", formatTraitScores(traits.Values))
	}

	if len(patterns) > 0 {
		// Only the two most telling patterns; more would crowd the prompt.
		shown := patterns
		if len(shown) > 2 {
			shown = shown[:2]
		}
		fmt.Fprintf(&sb, "长期关注的主题: %s\n", strings.Join(shown, "; "))
	}

	return sb.String()
}

func formatTraitScores(bucket []types.TraitScore) string {
	parts := make([]string, 0, len(bucket))
	for _, t := range bucket {
		parts = append(parts, fmt.Sprintf("%s(%.0f%%)", t.Name, t.Score*100))
	}
	return strings.Join(parts, "、")
}

// BuildAnalysisPrompt wraps the user transcript in the instruction that
// asks the model for the four-key JSON analysis.
func (b *PromptBuilder) BuildAnalysisPrompt(transcript string) string {
	return `你将看到一个用户在一段时间内对AI说的话(只包含用户的表达)。请你扮演一个温和、理性、尊重隐私的"自我成长助手",分析这些内容,并输出一个JSON,包含以下字段:

questions: 用户在这段时间里反复关注的"核心问题"列表
  每个元素包含:
    topic: 用4~10个字概括的主题(例如"职业方向犹豫")
    description: 用几句话描述这个主题下用户在纠结什么

strengths: 从语言和行为中可以看出的优势、优点或有价值的特质(字符串数组)

improvements: 用户在行为、思考或习惯上可以改进的地方(字符串数组)

keepDoing: 用户已经在做、并且值得继续坚持的行为或思路(字符串数组)

要求:
1. 用简洁的中文表达
2. 尽量具体,避免空泛的鸡汤
3. 不做任何疾病诊断或严重负面标签
4. JSON顶层字段必须是: questions, strengths, improvements, keepDoing
5. 每个数组至少包含1-3个元素

以下是用户在本周期的聊天内容:
"""
` + transcript + `
"""

请直接输出JSON格式的分析结果:`
}

// BuildTitlePrompt asks for a short report title derived from the
// analysis topics.
func (b *PromptBuilder) BuildTitlePrompt(summary types.ReportSummary) string {
	topics := make([]string, 0, len(summary.Questions))
	for _, q := range summary.Questions {
		topics = append(topics, q.Topic)
	}
	return fmt.Sprintf(`请为一份个人成长分析报告起一个8~20个字的中文标题,概括这段时间用户关注的主题: %s

要求: 只输出标题本身,不要引号,不要解释。`, strings.Join(topics, "、"))
}
