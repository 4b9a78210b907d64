package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const bingEndpoint = "https://api.bing.microsoft.com/v7.0/search"

// BingProvider queries the Bing Web Search API. When the response carries
// a news answer, the time-stamped news results are preferred over generic
// organic pages.
type BingProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewBingProvider(apiKey string) *BingProvider {
	return &BingProvider{
		apiKey:  apiKey,
		baseURL: bingEndpoint,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *BingProvider) Name() string { return "Bing" }

func (p *BingProvider) Configured() bool { return p.apiKey != "" }

type bingResponse struct {
	WebPages struct {
		Value []struct {
			Name    string `json:"name"`
			URL     string `json:"url"`
			Snippet string `json:"snippet"`
		} `json:"value"`
	} `json:"webPages"`
	News struct {
		Value []struct {
			Name          string `json:"name"`
			URL           string `json:"url"`
			Description   string `json:"description"`
			DatePublished string `json:"datePublished"`
		} `json:"value"`
	} `json:"news"`
}

func (p *BingProvider) TryFetch(ctx context.Context, query string, count int) ([]Item, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(count))
	params.Set("textDecorations", "false")
	params.Set("textFormat", "Raw")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("bing request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bing call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("bing http %d: %s", resp.StatusCode, string(body))
	}

	var parsed bingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("bing decode: %w", err)
	}

	// News answers carry timestamps; when present they beat organic pages
	// for the freshness-driven queries that reach this chain.
	if len(parsed.News.Value) > 0 {
		items := make([]Item, 0, len(parsed.News.Value))
		for _, n := range parsed.News.Value {
			if n.Name == "" || n.URL == "" {
				continue
			}
			items = append(items, Item{
				Title:   n.Name,
				URL:     n.URL,
				Snippet: n.Description,
				Date:    n.DatePublished,
			})
			if len(items) >= count {
				break
			}
		}
		if len(items) > 0 {
			return items, nil
		}
	}

	items := make([]Item, 0, len(parsed.WebPages.Value))
	for _, w := range parsed.WebPages.Value {
		if w.Name == "" || w.URL == "" {
			continue
		}
		items = append(items, Item{
			Title:   w.Name,
			URL:     w.URL,
			Snippet: w.Snippet,
		})
		if len(items) >= count {
			break
		}
	}
	return items, nil
}
