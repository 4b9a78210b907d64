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

const serpAPIEndpoint = "https://serpapi.com/search"

// SerpAPIProvider queries Google through SerpAPI. Provenance is reported
// as "Google" since that is the engine behind it.
type SerpAPIProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewSerpAPIProvider(apiKey string) *SerpAPIProvider {
	return &SerpAPIProvider{
		apiKey:  apiKey,
		baseURL: serpAPIEndpoint,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *SerpAPIProvider) Name() string { return "Google" }

func (p *SerpAPIProvider) Configured() bool { return p.apiKey != "" }

type serpAPIResponse struct {
	OrganicResults []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
		Date    string `json:"date"`
	} `json:"organic_results"`
}

func (p *SerpAPIProvider) TryFetch(ctx context.Context, query string, count int) ([]Item, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("api_key", p.apiKey)
	params.Set("engine", "google")
	params.Set("num", strconv.Itoa(count))
	params.Set("hl", "zh-cn")
	params.Set("gl", "cn")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("serpapi request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serpapi call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("serpapi http %d: %s", resp.StatusCode, string(body))
	}

	var parsed serpAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("serpapi decode: %w", err)
	}

	items := make([]Item, 0, len(parsed.OrganicResults))
	for _, r := range parsed.OrganicResults {
		if r.Title == "" || r.Link == "" {
			continue
		}
		items = append(items, Item{
			Title:   r.Title,
			URL:     r.Link,
			Snippet: r.Snippet,
			Date:    r.Date,
		})
		if len(items) >= count {
			break
		}
	}
	return items, nil
}
