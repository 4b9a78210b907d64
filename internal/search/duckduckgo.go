package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const duckDuckGoEndpoint = "https://api.duckduckgo.com/"

// DuckDuckGoProvider uses the keyless Instant Answer API. It is always
// configured and sits last in the chain.
type DuckDuckGoProvider struct {
	baseURL string
	client  *http.Client
}

func NewDuckDuckGoProvider() *DuckDuckGoProvider {
	return &DuckDuckGoProvider{
		baseURL: duckDuckGoEndpoint,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *DuckDuckGoProvider) Name() string { return "DuckDuckGo" }

func (p *DuckDuckGoProvider) Configured() bool { return true }

type duckDuckGoResponse struct {
	RelatedTopics []struct {
		FirstURL string `json:"FirstURL"`
		Text     string `json:"Text"`
	} `json:"RelatedTopics"`
}

func (p *DuckDuckGoProvider) TryFetch(ctx context.Context, query string, count int) ([]Item, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")
	params.Set("skip_disambig", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; DailyFocus/1.0)")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("duckduckgo http %d: %s", resp.StatusCode, string(body))
	}

	var parsed duckDuckGoResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("duckduckgo decode: %w", err)
	}

	items := make([]Item, 0, count)
	for _, topic := range parsed.RelatedTopics {
		if topic.FirstURL == "" || topic.Text == "" {
			continue
		}
		title := topic.Text
		if idx := strings.Index(title, " - "); idx > 0 {
			title = title[:idx]
		}
		items = append(items, Item{
			Title:   title,
			URL:     topic.FirstURL,
			Snippet: topic.Text,
		})
		if len(items) >= count {
			break
		}
	}
	return items, nil
}
