package search

import (
	"context"

	"github.com/dailyfocus/dailyfocus-backend/internal/logger"
)

// Provider is one search backend in the fallback chain.
type Provider interface {
	// Name is the display name used as result provenance.
	Name() string
	// Configured reports whether the provider's credential is present.
	// Unconfigured providers are skipped without being called.
	Configured() bool
	// TryFetch returns normalized items or an error. Errors never abort
	// the chain; they just move it to the next provider.
	TryFetch(ctx context.Context, query string, count int) ([]Item, error)
}

// Chain tries providers in priority order and returns the first non-empty
// result set. It never fails: total fallback is the synthetic placeholder.
type Chain struct {
	log       *logger.Logger
	providers []Provider
	cache     Cache
}

// NewChain builds the default provider order: SerpAPI (Google), Bing,
// then keyless DuckDuckGo. cache may be nil.
func NewChain(log *logger.Logger, cfg Config, cache Cache) *Chain {
	return &Chain{
		log: log.With("service", "SearchChain"),
		providers: []Provider{
			NewSerpAPIProvider(cfg.SerpAPIKey),
			NewBingProvider(cfg.BingKey),
			NewDuckDuckGoProvider(),
		},
		cache: cache,
	}
}

// NewChainWithProviders builds a chain over an explicit provider list.
// Used by tests and by callers that need a custom order.
func NewChainWithProviders(log *logger.Logger, cache Cache, providers ...Provider) *Chain {
	return &Chain{
		log:       log.With("service", "SearchChain"),
		providers: providers,
		cache:     cache,
	}
}

// Search runs the chain. Provider failures are swallowed; the returned
// envelope is always usable. Synthetic placeholders are never cached.
func (c *Chain) Search(ctx context.Context, query string, count int) Result {
	if count <= 0 {
		count = 5
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(ctx, query, count); ok {
			c.log.Debug("search cache hit", "query", query)
			return *cached
		}
	}

	for _, p := range c.providers {
		if !p.Configured() {
			c.log.Debug("provider not configured, skipping", "provider", p.Name())
			continue
		}
		items, err := p.TryFetch(ctx, query, count)
		if err != nil {
			c.log.Warn("provider failed, falling back", "provider", p.Name(), "error", err)
			continue
		}
		if len(items) == 0 {
			c.log.Debug("provider returned no results", "provider", p.Name())
			continue
		}

		result := Result{Source: p.Name(), Results: items}
		c.log.Info("search succeeded", "provider", p.Name(), "results", len(items))
		if c.cache != nil {
			c.cache.Set(ctx, query, count, result)
		}
		return result
	}

	c.log.Info("all providers empty or failed, returning synthetic result", "query", query)
	return SyntheticResult(query)
}
