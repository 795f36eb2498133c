package convert

import (
	"context"
	"log/slog"

	"briefdeck/internal/llm"
)

// cachedOracle answers repeated prompts from a ResponseCache. Cache failures never fail a
// request.
type cachedOracle struct {
	llm.Oracle
	cache ResponseCache
	log   *slog.Logger
}

// WithCache wraps o so identical requests are answered from cache.
func WithCache(o llm.Oracle, cache ResponseCache, log *slog.Logger) llm.Oracle {
	if cache == nil {
		return o
	}
	return &cachedOracle{Oracle: o, cache: cache, log: log}
}

func (c *cachedOracle) Generate(ctx context.Context, req llm.Request) (string, error) {
	key := req.System + "\n" + req.Prompt
	if resp, ok, err := c.cache.GetCachedResponse(req.Kind, c.Model(), key); err != nil {
		c.log.Warn("oracle cache read failed", "kind", req.Kind, "error", err)
	} else if ok {
		c.log.Debug("oracle cache hit", "kind", req.Kind)
		return resp, nil
	}

	resp, err := c.Oracle.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	if err := c.cache.CacheResponse(req.Kind, c.Model(), key, resp); err != nil {
		c.log.Warn("oracle cache write failed", "kind", req.Kind, "error", err)
	}
	return resp, nil
}
