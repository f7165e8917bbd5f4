package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/octobees/leads-scraper/internal/cache"
	"github.com/octobees/leads-scraper/internal/scraper/fetch"
)

// CachingScraper decorates a CompanyScraper with a result cache. Only successful
// scrapes are stored; store errors never fail a scrape.
type CachingScraper struct {
	inner     CompanyScraper
	store     cache.Store
	ttl       time.Duration
	namespace string
	logger    *zap.Logger
}

// NewCachingScraper wraps inner. ttl defaults to one hour and namespace to "scrape".
// A nil store disables caching.
func NewCachingScraper(inner CompanyScraper, store cache.Store, ttl time.Duration, namespace string, logger *zap.Logger) *CachingScraper {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if namespace == "" {
		namespace = "scrape"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachingScraper{inner: inner, store: store, ttl: ttl, namespace: namespace, logger: logger}
}

// Scrape serves from the cache when possible and falls back to the wrapped scraper.
func (c *CachingScraper) Scrape(ctx context.Context, website, companyName string) (CompanyRecord, error) {
	if c.store == nil {
		return c.inner.Scrape(ctx, website, companyName)
	}

	key := c.cacheKey(website, companyName)
	if b, ok, err := c.store.Get(ctx, key); err != nil {
		c.logger.Warn("scrape cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		var record CompanyRecord
		if err := json.Unmarshal(b, &record); err == nil {
			return record, nil
		}
		_ = c.store.Delete(ctx, key)
	}

	record, err := c.inner.Scrape(ctx, website, companyName)
	if err != nil {
		return CompanyRecord{}, err
	}

	if b, err := json.Marshal(record); err == nil {
		if err := c.store.Set(ctx, key, b, c.ttl); err != nil {
			c.logger.Warn("scrape cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return record, nil
}

func (c *CachingScraper) cacheKey(website, companyName string) string {
	return fmt.Sprintf("%s:%s|%s", c.namespace, fetch.NormalizeURL(website), strings.TrimSpace(companyName))
}

var _ CompanyScraper = (*CachingScraper)(nil)
