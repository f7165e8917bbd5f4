package fetch

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// RodFetcher renders pages with a dedicated Chrome process per call.
type RodFetcher struct {
	opts Options
}

// NewRodFetcher constructs a rod-backed fetcher.
func NewRodFetcher(opts Options) *RodFetcher {
	return &RodFetcher{opts: opts.withDefaults()}
}

// Fetch launches a browser, navigates to url, waits for the network to go idle and returns the page HTML.
// The browser process is torn down on every path.
func (f *RodFetcher) Fetch(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	l := launcher.New().Context(ctx).Headless(f.opts.Headless)
	if f.opts.BrowserBin != "" {
		l = l.Bin(f.opts.BrowserBin)
	}
	if f.opts.NoSandbox {
		l = l.NoSandbox(true)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return "", Wrap(url, f.opts.Timeout, fmt.Errorf("launch chrome: %w", err))
	}
	// Cleanup blocks until the process exits, so every path below must close or kill it first.
	defer l.Cleanup()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return "", Wrap(url, f.opts.Timeout, fmt.Errorf("connect to chrome: %w", err))
	}
	defer func() {
		if err := browser.Close(); err != nil {
			l.Kill()
		}
	}()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", Wrap(url, f.opts.Timeout, fmt.Errorf("open page: %w", err))
	}

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: f.opts.UserAgent}); err != nil {
		return "", Wrap(url, f.opts.Timeout, fmt.Errorf("set user agent: %w", err))
	}

	waitIdle := page.WaitRequestIdle(f.opts.IdleWindow, nil, nil, nil)
	if err := page.Navigate(url); err != nil {
		return "", Wrap(url, f.opts.Timeout, err)
	}
	waitIdle()

	if err := ctx.Err(); err != nil {
		return "", Wrap(url, f.opts.Timeout, err)
	}

	html, err := page.HTML()
	if err != nil {
		return "", Wrap(url, f.opts.Timeout, fmt.Errorf("read html: %w", err))
	}
	return html, nil
}

var _ Fetcher = (*RodFetcher)(nil)
