package source

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ppiankov/aidaily/internal/util"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

const maxFetchAttempts = 3

// fetchSleepFunc is overridden in tests
var fetchSleepFunc = time.Sleep

// browserHeaders mimic a desktop Chrome navigation request
var browserHeaders = map[string]string{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.9,zh-CN;q=0.8,zh;q=0.7",
	"Cache-Control":             "no-cache",
	"Pragma":                    "no-cache",
	"sec-ch-ua":                 `"Google Chrome";v="131", "Chromium";v="131", "Not_A Brand";v="24"`,
	"sec-ch-ua-mobile":          "?0",
	"sec-ch-ua-platform":        `"macOS"`,
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Sec-Fetch-User":            "?1",
	"Upgrade-Insecure-Requests": "1",
}

// Fetcher fetches listing pages with browser-like headers
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
}

// NewFetcher creates a new Fetcher with the given configuration
func NewFetcher(timeout time.Duration, userAgent string, maxBytes int64, insecureTLS bool, httpProxy, httpsProxy, noProxy string) *Fetcher {
	transport := &http.Transport{
		Proxy: util.NewProxyFunc(httpProxy, httpsProxy, noProxy),
	}
	if insecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in flag
	}

	if maxBytes <= 0 {
		maxBytes = 5_000_000
	}

	return &Fetcher{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
		maxBytes:  maxBytes,
	}
}

// StatusError is returned for non-2xx responses
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %s", e.Status)
}

// TransportError wraps failures to complete the HTTP exchange
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "fetch: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// FetchResult contains the fetched page and response metadata
type FetchResult struct {
	HTML        string
	StatusCode  int
	ContentType string
	FinalURL    string
	Bytes       int
}

// Fetch retrieves the page at rawURL once
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	contentType := resp.Header.Get("Content-Type")

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	body := decodeBody(raw, contentType)

	return &FetchResult{
		HTML:        body,
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		FinalURL:    resp.Request.URL.String(),
		Bytes:       len(raw),
	}, nil
}

// FetchWithRetry retries transient failures with linear backoff
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	var lastErr error
	for attempt := 1; attempt <= maxFetchAttempts; attempt++ {
		result, err := f.Fetch(ctx, rawURL)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isRetryableFetchError(err) || attempt == maxFetchAttempts || ctx.Err() != nil {
			break
		}

		zap.L().Warn("source fetch failed, retrying",
			zap.String("url", rawURL),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		fetchSleepFunc(time.Duration(attempt) * time.Second)
	}
	return nil, lastErr
}

// isRetryableFetchError reports whether a Fetch error is worth another attempt:
// transport failures, 5xx and 429
func isRetryableFetchError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= 500 || statusErr.Code == http.StatusTooManyRequests
	}

	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

// decodeBody transcodes non-UTF-8 pages using the declared or sniffed charset
func decodeBody(raw []byte, contentType string) string {
	reader, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return string(raw)
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}
