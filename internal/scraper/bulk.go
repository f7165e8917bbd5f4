package scraper

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Target is one bulk input: a website and an optional company name override.
type Target struct {
	URL         string `json:"url" yaml:"url"`
	CompanyName string `json:"companyName,omitempty" yaml:"companyName,omitempty"`
}

// BulkItem is the terminal outcome of one target.
type BulkItem struct {
	URL         string
	CompanyName string
	Success     bool
	Record      *CompanyRecord
	Error       string
}

// MarshalJSON flattens successes into the record plus url/success, and failures
// into {url, companyName, success, error}.
func (i BulkItem) MarshalJSON() ([]byte, error) {
	if i.Success && i.Record != nil {
		return json.Marshal(struct {
			CompanyRecord
			URL     string `json:"url"`
			Success bool   `json:"success"`
		}{*i.Record, i.URL, true})
	}
	return json.Marshal(struct {
		URL         string `json:"url"`
		CompanyName string `json:"companyName"`
		Success     bool   `json:"success"`
		Error       string `json:"error"`
	}{i.URL, i.CompanyName, false, i.Error})
}

// BulkResult holds results in input order and the number of successes.
type BulkResult struct {
	Results      []BulkItem `json:"results"`
	SuccessCount int        `json:"successCount"`
}

// Records returns the successful records in input order.
func (r BulkResult) Records() []CompanyRecord {
	out := make([]CompanyRecord, 0, r.SuccessCount)
	for _, item := range r.Results {
		if item.Success && item.Record != nil {
			out = append(out, *item.Record)
		}
	}
	return out
}

// BulkRunner scrapes a list of targets without letting one failure affect another.
type BulkRunner struct {
	scraper     CompanyScraper
	concurrency int
	logger      *zap.Logger
}

// BulkOption configures a BulkRunner.
type BulkOption func(*BulkRunner)

// WithConcurrency runs up to n scrapes at once. n <= 1 keeps the sequential loop.
func WithConcurrency(n int) BulkOption {
	return func(r *BulkRunner) { r.concurrency = n }
}

// WithLogger sets the logger used for per-item outcomes.
func WithLogger(logger *zap.Logger) BulkOption {
	return func(r *BulkRunner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewBulkRunner builds a sequential runner unless WithConcurrency says otherwise.
func NewBulkRunner(scraper CompanyScraper, opts ...BulkOption) *BulkRunner {
	r := &BulkRunner{scraper: scraper, concurrency: 1, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run scrapes every target and returns one result per target, in input order.
// Once ctx is done, targets that have not started are recorded as cancelled failures.
func (r *BulkRunner) Run(ctx context.Context, targets []Target) BulkResult {
	results := make([]BulkItem, len(targets))

	if r.concurrency <= 1 {
		for i, t := range targets {
			results[i] = r.runOne(ctx, i, t)
		}
	} else {
		// plain Group: a failed item must not cancel its siblings
		var g errgroup.Group
		g.SetLimit(r.concurrency)
		for i, t := range targets {
			if err := ctx.Err(); err != nil {
				results[i] = cancelled(t, err)
				continue
			}
			g.Go(func() error {
				results[i] = r.runOne(ctx, i, t)
				return nil
			})
		}
		_ = g.Wait()
	}

	success := 0
	for _, item := range results {
		if item.Success {
			success++
		}
	}
	r.logger.Info("bulk scrape finished",
		zap.Int("total", len(targets)),
		zap.Int("succeeded", success),
		zap.Int("failed", len(targets)-success),
	)
	return BulkResult{Results: results, SuccessCount: success}
}

func (r *BulkRunner) runOne(ctx context.Context, index int, t Target) BulkItem {
	if err := ctx.Err(); err != nil {
		return cancelled(t, err)
	}

	record, err := r.scraper.Scrape(ctx, t.URL, t.CompanyName)
	if err != nil {
		r.logger.Warn("bulk item failed",
			zap.Int("index", index),
			zap.String("url", t.URL),
			zap.Error(err),
		)
		return BulkItem{URL: t.URL, CompanyName: t.CompanyName, Error: err.Error()}
	}

	r.logger.Info("bulk item scraped", zap.Int("index", index), zap.String("url", t.URL))
	return BulkItem{URL: t.URL, CompanyName: t.CompanyName, Success: true, Record: &record}
}

func cancelled(t Target, err error) BulkItem {
	return BulkItem{
		URL:         t.URL,
		CompanyName: t.CompanyName,
		Error:       fmt.Sprintf("batch cancelled: %v", err),
	}
}
