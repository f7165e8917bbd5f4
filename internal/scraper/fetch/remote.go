package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"google.golang.org/api/idtoken"
)

// RemoteFetcher delegates rendering to a render worker over HTTP.
// The worker receives the same navigation policy and answers with {"data":{"html":"..."}}.
type RemoteFetcher struct {
	client  *http.Client
	baseURL string
	opts    Options
}

type renderRequest struct {
	URL       string `json:"url"`
	UserAgent string `json:"user_agent"`
	TimeoutMS int64  `json:"timeout_ms"`
	IdleMS    int64  `json:"idle_ms"`
	WaitUntil string `json:"wait_until"`
}

// NewRemoteFetcher builds a render worker client. When client is nil it tries an
// ID-token client for service-to-service calls and falls back to a plain client.
func NewRemoteFetcher(client *http.Client, workerBaseURL string, opts Options) *RemoteFetcher {
	opts = opts.withDefaults()
	workerBaseURL = strings.TrimRight(workerBaseURL, "/")
	if client == nil {
		idc, err := idtoken.NewClient(context.Background(), workerBaseURL)
		if err != nil {
			client = &http.Client{Timeout: opts.Timeout}
		} else {
			client = idc
		}
	}
	return &RemoteFetcher{client: client, baseURL: workerBaseURL, opts: opts}
}

// Fetch asks the worker to render url and returns the HTML it captured.
func (f *RemoteFetcher) Fetch(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	body, err := json.Marshal(renderRequest{
		URL:       url,
		UserAgent: f.opts.UserAgent,
		TimeoutMS: f.opts.Timeout.Milliseconds(),
		IdleMS:    f.opts.IdleWindow.Milliseconds(),
		WaitUntil: "networkidle",
	})
	if err != nil {
		return "", Wrap(url, f.opts.Timeout, fmt.Errorf("marshal render request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/render", bytes.NewReader(body))
	if err != nil {
		return "", Wrap(url, f.opts.Timeout, fmt.Errorf("create render request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if rid := RequestIDFromContext(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", Wrap(url, f.opts.Timeout, fmt.Errorf("render worker request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", Wrap(url, f.opts.Timeout, fmt.Errorf("render worker: %s", extractWorkerError(resp.Body)))
	}

	var workerResp struct {
		Data struct {
			HTML string `json:"html"`
		} `json:"data"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&workerResp); err != nil && err != io.EOF {
		return "", Wrap(url, f.opts.Timeout, fmt.Errorf("decode render response: %w", err))
	}
	if workerResp.Error != "" {
		return "", Wrap(url, f.opts.Timeout, fmt.Errorf("render worker: %s", workerResp.Error))
	}
	return workerResp.Data.HTML, nil
}

func extractWorkerError(body io.Reader) string {
	data, err := io.ReadAll(body)
	if err != nil || len(data) == 0 {
		return "worker returned an error"
	}

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return string(data)
}

type requestIDKey struct{}

// WithRequestID attaches a request id that the remote backend forwards as X-Request-ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the id stored by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

var _ Fetcher = (*RemoteFetcher)(nil)
