package checker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"
)

const (
	// DefaultUserAgent mimics a desktop browser; the platforms serve stripped
	// pages to unknown clients.
	DefaultUserAgent    = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
	DefaultProbeTimeout = 10 * time.Second
	DefaultMaxRedirects = 5
	DefaultMaxBodyBytes = 5 * 1024 * 1024
)

// ProbeConfig configures the shared probe client. Zero fields take the
// package defaults.
type ProbeConfig struct {
	UserAgent    string
	Timeout      time.Duration
	MaxRedirects int
	MaxBodyBytes int64
}

// ProbeOutcome is the raw result of one probe. Err is set on transport
// failure, in which case StatusCode and Body are not meaningful.
type ProbeOutcome struct {
	URL        string
	StatusCode int
	Body       string
	Elapsed    time.Duration
	Err        error
}

// Failed reports whether the probe never produced an HTTP response.
func (o *ProbeOutcome) Failed() bool {
	return o == nil || o.Err != nil
}

// ProbeClient issues single GET requests with fixed headers and limits.
// One client is shared by every concurrent probe in a run.
type ProbeClient struct {
	HTTP         *http.Client
	UserAgent    string
	MaxBodyBytes int64
	Clock        func() time.Time
}

// NewProbeClient builds a probe client, filling unset fields with defaults.
func NewProbeClient(cfg ProbeConfig) *ProbeClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	maxRedirects := cfg.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = DefaultMaxRedirects
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	return &ProbeClient{
		HTTP: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		UserAgent:    userAgent,
		MaxBodyBytes: maxBody,
	}
}

// Fetch performs one GET against url. The body is only read for 2xx
// responses. Failures are reported in the outcome, never returned.
func (c *ProbeClient) Fetch(ctx context.Context, url string) *ProbeOutcome {
	if ctx == nil {
		ctx = context.Background()
	}

	startedAt := c.now()
	outcome := &ProbeOutcome{URL: url}
	defer func() { outcome.Elapsed = c.now().Sub(startedAt) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		outcome.Err = fmt.Errorf("build probe request: %w", err)
		return outcome
	}
	req.Header.Set("User-Agent", c.userAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	client := c.HTTP
	if client == nil {
		client = &http.Client{Timeout: DefaultProbeTimeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		outcome.Err = fmt.Errorf("probe request failed: %w", err)
		return outcome
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	outcome.StatusCode = resp.StatusCode
	if resp.Request != nil && resp.Request.URL != nil {
		outcome.URL = resp.Request.URL.String()
	}

	if !isSuccess(resp.StatusCode) {
		return outcome
	}

	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		reader = resp.Body
	}
	body, err := io.ReadAll(io.LimitReader(reader, c.maxBodyBytes()))
	if err != nil {
		outcome.Err = fmt.Errorf("read probe body: %w", err)
		return outcome
	}
	outcome.Body = string(body)

	return outcome
}

func (c *ProbeClient) userAgent() string {
	if c != nil && c.UserAgent != "" {
		return c.UserAgent
	}
	return DefaultUserAgent
}

func (c *ProbeClient) maxBodyBytes() int64 {
	if c != nil && c.MaxBodyBytes > 0 {
		return c.MaxBodyBytes
	}
	return DefaultMaxBodyBytes
}

func (c *ProbeClient) now() time.Time {
	if c != nil && c.Clock != nil {
		return c.Clock()
	}
	return time.Now().UTC()
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
