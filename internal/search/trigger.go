package search

import (
	"strconv"
	"strings"
	"time"
)

// Trigger decides whether a chat turn needs live web grounding. Matching
// is plain substring over four fixed keyword categories; there is no
// tokenization.
type Trigger struct {
	keywords []string
	clock    func() time.Time
}

// NewTrigger builds a trigger with the fixed keyword categories. Year
// tokens are derived from the clock at match time, covering the current
// and the next year so "今年"-adjacent phrasing with an explicit year
// still matches across a year rollover.
func NewTrigger() *Trigger {
	return newTrigger(time.Now)
}

// NewTriggerWithClock is used by tests to pin the year tokens.
func NewTriggerWithClock(clock func() time.Time) *Trigger {
	return newTrigger(clock)
}

func newTrigger(clock func() time.Time) *Trigger {
	timeKeywords := []string{
		"今天", "最新", "现在", "当前", "实时", "最近", "今年",
		"today", "latest", "now", "currently", "real-time", "recently",
	}
	searchKeywords := []string{
		"搜索", "查找", "找一下", "帮我找", "查询",
		"search", "find", "look up", "query",
	}
	newsKeywords := []string{
		"新闻", "消息", "事件", "发生", "报道",
		"news", "event", "happened", "report",
	}
	priceKeywords := []string{
		"价格", "多少钱", "报价", "股价",
		"price", "cost", "quote", "stock price",
	}

	all := make([]string, 0, len(timeKeywords)+len(searchKeywords)+len(newsKeywords)+len(priceKeywords))
	all = append(all, timeKeywords...)
	all = append(all, searchKeywords...)
	all = append(all, newsKeywords...)
	all = append(all, priceKeywords...)

	return &Trigger{keywords: all, clock: clock}
}

// ShouldSearch returns true when the caller explicitly asked for search,
// or when the text contains any trigger keyword.
func (t *Trigger) ShouldSearch(explicit bool, text string) bool {
	if explicit {
		return true
	}
	for _, kw := range t.keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	year := t.clock().Year()
	return strings.Contains(text, strconv.Itoa(year)) ||
		strings.Contains(text, strconv.Itoa(year+1))
}
