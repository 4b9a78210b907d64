// Package search decides when a chat turn needs live web grounding and
// fetches it from a chain of external providers.
package search

import (
	"fmt"
	"net/url"
	"strings"
)

// Item is one normalized search hit. Providers map their own response
// shapes onto it.
type Item struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Date    string `json:"date,omitempty"`
}

// Result is the envelope returned by the chain. Source names the provider
// that produced the items, or SyntheticSource when every provider failed.
type Result struct {
	Source  string `json:"source"`
	Results []Item `json:"results"`
}

// SyntheticSource marks the deterministic placeholder result the chain
// returns when no real provider yields anything.
const SyntheticSource = "offline-fallback"

// Config selects which providers the chain attempts. Behavior of the chain
// is a pure function of this struct plus the network.
type Config struct {
	SerpAPIKey string
	BingKey    string
}

// SyntheticResult points the user at a generic external query so callers
// never have to special-case an empty search.
func SyntheticResult(query string) Result {
	return Result{
		Source: SyntheticSource,
		Results: []Item{
			{
				Title:   "未能获取实时搜索结果",
				URL:     "https://www.bing.com/search?q=" + url.QueryEscape(query),
				Snippet: fmt.Sprintf("搜索服务暂时不可用,可以通过上面的链接手动搜索\"%s\"。", query),
			},
		},
	}
}

// FormatResults renders a result set as the text block injected into the
// prompt.
func FormatResults(r Result) string {
	if len(r.Results) == 0 {
		return "未找到相关搜索结果。"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**搜索结果 (来自 %s):**\n\n", r.Source)
	for i, item := range r.Results {
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, item.Title)
		if item.Date != "" {
			fmt.Fprintf(&b, "   时间: %s\n", item.Date)
		}
		fmt.Fprintf(&b, "   %s\n", item.Snippet)
		fmt.Fprintf(&b, "   来源: %s\n\n", item.URL)
	}
	return b.String()
}
