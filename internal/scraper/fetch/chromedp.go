package fetch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// maxIdleConnections mirrors the "networkidle2" policy: at most two requests still in flight.
const maxIdleConnections = 2

// ChromedpFetcher renders pages through chromedp, one allocator (browser process) per call.
type ChromedpFetcher struct {
	opts Options
}

// NewChromedpFetcher constructs a chromedp-backed fetcher.
func NewChromedpFetcher(opts Options) *ChromedpFetcher {
	return &ChromedpFetcher{opts: opts.withDefaults()}
}

// Fetch navigates to url and returns the document's outer HTML once the network is idle.
func (f *ChromedpFetcher) Fetch(ctx context.Context, url string) (string, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(f.opts.UserAgent),
		chromedp.Flag("headless", f.opts.Headless),
	)
	if f.opts.BrowserBin != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(f.opts.BrowserBin))
	}
	if f.opts.NoSandbox {
		allocOpts = append(allocOpts, chromedp.NoSandbox)
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancel := context.WithTimeout(browserCtx, f.opts.Timeout)
	defer cancel()

	tracker := newIdleTracker(time.Now)
	chromedp.ListenTarget(browserCtx, tracker.observe)

	var html string
	err := chromedp.Run(runCtx,
		network.Enable(),
		chromedp.Navigate(url),
		tracker.wait(f.opts.IdleWindow),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", Wrap(url, f.opts.Timeout, fmt.Errorf("render page: %w", err))
	}
	return html, nil
}

// idleTracker counts in-flight requests from CDP network events.
type idleTracker struct {
	mu           sync.Mutex
	now          func() time.Time
	inflight     map[network.RequestID]struct{}
	lastActivity time.Time
}

func newIdleTracker(now func() time.Time) *idleTracker {
	return &idleTracker{
		now:          now,
		inflight:     make(map[network.RequestID]struct{}),
		lastActivity: now(),
	}
}

func (t *idleTracker) observe(ev any) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		t.inflight[e.RequestID] = struct{}{}
	case *network.EventLoadingFinished:
		delete(t.inflight, e.RequestID)
	case *network.EventLoadingFailed:
		delete(t.inflight, e.RequestID)
	default:
		return
	}
	t.lastActivity = t.now()
}

func (t *idleTracker) quiet(window time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight) <= maxIdleConnections && t.now().Sub(t.lastActivity) >= window
}

func (t *idleTracker) wait(window time.Duration) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		tick := window / 5
		if tick <= 0 {
			tick = 50 * time.Millisecond
		}
		ticker := time.NewTicker(tick)
		defer ticker.Stop()

		for {
			if t.quiet(window) {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	})
}

var _ Fetcher = (*ChromedpFetcher)(nil)
