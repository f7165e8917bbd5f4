// Package fetch loads target pages in a headless browser and returns the rendered HTML.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultUserAgent is the fixed desktop user agent sent with every navigation.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	// DefaultTimeout bounds a single fetch, from browser launch to HTML capture.
	DefaultTimeout = 30 * time.Second
	// DefaultIdleWindow is how long the network must stay quiet before the page counts as idle.
	DefaultIdleWindow = 500 * time.Millisecond
)

// Backend names accepted by New.
const (
	BackendRod      = "rod"
	BackendChromedp = "chromedp"
	BackendRemote   = "remote"
)

// ErrNavigationTimeout is the cause reported when a fetch exceeds its deadline.
var ErrNavigationTimeout = errors.New("navigation timeout")

// Fetcher returns the fully rendered HTML of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// FetchError reports any network, navigation or timeout failure for one URL.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed for URL %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Timeout reports whether the fetch failed because its deadline expired.
func (e *FetchError) Timeout() bool {
	return errors.Is(e.Err, ErrNavigationTimeout) || errors.Is(e.Err, context.DeadlineExceeded)
}

// Options configures the browser backends.
type Options struct {
	UserAgent  string
	Timeout    time.Duration
	IdleWindow time.Duration
	Headless   bool
	BrowserBin string
	NoSandbox  bool
}

// DefaultOptions returns the navigation policy used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		UserAgent:  DefaultUserAgent,
		Timeout:    DefaultTimeout,
		IdleWindow: DefaultIdleWindow,
		Headless:   true,
	}
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.UserAgent) == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.IdleWindow <= 0 {
		o.IdleWindow = DefaultIdleWindow
	}
	return o
}

// New builds the fetcher for the named backend. An empty name selects rod.
func New(backend string, opts Options, workerURL string) (Fetcher, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendRod:
		return NewRodFetcher(opts), nil
	case BackendChromedp:
		return NewChromedpFetcher(opts), nil
	case BackendRemote:
		if strings.TrimSpace(workerURL) == "" {
			return nil, errors.New("remote fetch backend requires a render worker url")
		}
		return NewRemoteFetcher(nil, workerURL, opts), nil
	default:
		return nil, fmt.Errorf("unsupported fetch backend %q", backend)
	}
}

// NormalizeURL defaults the scheme to https when the value does not already start with "http".
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	if !strings.HasPrefix(raw, "http") {
		return "https://" + raw
	}
	return raw
}

// Wrap converts a backend failure into a *FetchError, translating deadline expiry into
// ErrNavigationTimeout. Errors that already are a *FetchError pass through.
func Wrap(url string, timeout time.Duration, err error) error {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w of %s exceeded", ErrNavigationTimeout, timeout)
	}
	return &FetchError{URL: url, Err: err}
}
