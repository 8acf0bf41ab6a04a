// Package download provides utilities for fetching and extracting runtime archives
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dtvem/noderuntime/src/internal/ui"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/schollz/progressbar/v3"
)

// DefaultUserAgent is the User-Agent header sent with requests
const DefaultUserAgent = "noderuntime/1.0"

// Fetcher retrieves the body behind a URL as a byte stream.
// The caller must close the returned reader.
type Fetcher interface {
	Get(ctx context.Context, url string) (io.ReadCloser, error)
}

// ErrHTTPStatus is returned when the server answers with a non-200 status.
type ErrHTTPStatus struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *ErrHTTPStatus) Error() string {
	return fmt.Sprintf("download failed (HTTP %s): %s", e.Status, e.URL)
}

// HTTPFetcher fetches over HTTP(S) with retries on connection errors and 5xx responses.
type HTTPFetcher struct {
	client       *retryablehttp.Client
	userAgent    string
	showProgress bool
}

// FetcherOption configures an HTTPFetcher.
type FetcherOption func(*HTTPFetcher)

// WithProgress draws a byte progress bar on stderr while the body is read.
func WithProgress(enabled bool) FetcherOption {
	return func(f *HTTPFetcher) {
		f.showProgress = enabled
	}
}

// WithRetries overrides the retry count and backoff bounds.
func WithRetries(max int, minWait, maxWait time.Duration) FetcherOption {
	return func(f *HTTPFetcher) {
		f.client.RetryMax = max
		f.client.RetryWaitMin = minWait
		f.client.RetryWaitMax = maxWait
	}
}

// NewHTTPFetcher creates a fetcher backed by hashicorp/go-retryablehttp.
// No client-wide timeout is set; callers bound downloads through the context.
func NewHTTPFetcher(opts ...FetcherOption) *HTTPFetcher {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 1 * time.Second
	client.RetryWaitMax = 30 * time.Second
	client.Logger = debugLogger{}

	f := &HTTPFetcher{
		client:    client,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Get issues a GET request and returns the response body.
// Redirects are followed.
func (f *HTTPFetcher) Get(ctx context.Context, url string) (io.ReadCloser, error) {
	ui.Debug("Making HTTP GET request: %s", url)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		ui.Debug("HTTP request failed: %v", err)
		return nil, fmt.Errorf("failed to connect: %w (URL: %s)", err, url)
	}

	ui.Debug("HTTP response: %s", resp.Status)

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, &ErrHTTPStatus{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	ui.Debug("Content-Length: %d bytes", resp.ContentLength)

	if !f.showProgress {
		return resp.Body, nil
	}

	bar := progressbar.NewOptions64(
		resp.ContentLength,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Downloading"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
	)
	return &progressBody{reader: io.TeeReader(resp.Body, bar), body: resp.Body, bar: bar}, nil
}

// progressBody advances a progress bar as the response body is consumed
type progressBody struct {
	reader io.Reader
	body   io.Closer
	bar    *progressbar.ProgressBar
}

func (p *progressBody) Read(b []byte) (int, error) {
	return p.reader.Read(b)
}

func (p *progressBody) Close() error {
	_ = p.bar.Finish()
	return p.body.Close()
}

// debugLogger routes retryablehttp's leveled logging to ui.Debug
type debugLogger struct{}

func (debugLogger) Error(msg string, keysAndValues ...interface{}) { logKV("error", msg, keysAndValues) }
func (debugLogger) Info(msg string, keysAndValues ...interface{})  { logKV("info", msg, keysAndValues) }
func (debugLogger) Debug(msg string, keysAndValues ...interface{}) { logKV("debug", msg, keysAndValues) }
func (debugLogger) Warn(msg string, keysAndValues ...interface{})  { logKV("warn", msg, keysAndValues) }

func logKV(level, msg string, keysAndValues []interface{}) {
	if !ui.IsVerbose() {
		return
	}
	line := fmt.Sprintf("[http %s] %s", level, msg)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		line += fmt.Sprintf(" %v=%v", keysAndValues[i], keysAndValues[i+1])
	}
	ui.Debug("%s", line)
}
