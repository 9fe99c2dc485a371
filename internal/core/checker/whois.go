package checker

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"
)

const (
	whoisSource = "whois"
	dnsSource   = "dns"

	whoisIanaServer = "whois.iana.org"
	whoisPort       = "43"
	whoisMaxBytes   = 128 * 1024
)

// WhoisFallbackConfig controls when RDAP misses fall through to WHOIS.
type WhoisFallbackConfig struct {
	Enabled bool
	// TLDs lists the TLDs the fallback covers when RequireExplicit is set.
	TLDs              []string
	RequireExplicit   bool
	Timeout           time.Duration
	Servers           map[string]string
	AvailablePatterns []string
	TakenPatterns     []string
}

// DNSFallbackConfig controls DNS fallback behavior.
type DNSFallbackConfig struct {
	Enabled bool
	Timeout time.Duration
}

// WhoisClient performs WHOIS lookups.
type WhoisClient interface {
	Lookup(ctx context.Context, tld, domain string) (*WhoisResponse, error)
}

// WhoisResponse is the raw answer of one WHOIS server.
type WhoisResponse struct {
	Server string
	Body   string
}

// DefaultWhoisClient queries WHOIS over TCP port 43. Without a configured
// server for a TLD it asks IANA for the referral and remembers the answer
// for the life of the client.
type DefaultWhoisClient struct {
	Servers map[string]string
	Timeout time.Duration

	// Dial replaces the TCP dialer when set.
	Dial func(ctx context.Context, network, addr string) (net.Conn, error)

	mu       sync.Mutex
	referred map[string]string
}

// Lookup queries the WHOIS server responsible for tld about domain.
func (c *DefaultWhoisClient) Lookup(ctx context.Context, tld, domain string) (*WhoisResponse, error) {
	if strings.TrimSpace(domain) == "" {
		return nil, errors.New("whois domain is required")
	}

	server, err := c.ResolveServer(ctx, tld)
	if err != nil {
		return nil, err
	}

	body, err := c.query(ctx, server, domain)
	if err != nil {
		return nil, err
	}

	return &WhoisResponse{Server: server, Body: body}, nil
}

// ResolveServer returns the configured server for tld, or the IANA referral.
func (c *DefaultWhoisClient) ResolveServer(ctx context.Context, tld string) (string, error) {
	if c == nil {
		return "", errors.New("whois client is not configured")
	}
	tld = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(tld)), ".")
	if tld == "" {
		return "", errors.New("whois tld is required")
	}
	if server := strings.TrimSpace(c.Servers[tld]); server != "" {
		return server, nil
	}

	c.mu.Lock()
	cached, ok := c.referred[tld]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	response, err := c.query(ctx, whoisIanaServer, tld)
	if err != nil {
		return "", fmt.Errorf("whois iana query failed: %w", err)
	}

	server := parseReferral(response)
	if server == "" {
		return "", fmt.Errorf("no whois server for tld %s", tld)
	}

	c.mu.Lock()
	if c.referred == nil {
		c.referred = make(map[string]string)
	}
	c.referred[tld] = server
	c.mu.Unlock()

	return server, nil
}

// parseReferral extracts the "refer:" (or "whois:") server from an IANA
// TLD record.
func parseReferral(body string) string {
	for _, line := range strings.Split(body, "\n") {
		key, value, found := strings.Cut(strings.TrimSpace(line), ":")
		if !found {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "refer", "whois":
			if server := strings.TrimSpace(value); server != "" {
				return server
			}
		}
	}
	return ""
}

func (c *DefaultWhoisClient) query(ctx context.Context, server, query string) (string, error) {
	server = strings.TrimSpace(server)
	if server == "" {
		return "", errors.New("whois server is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	dial := c.Dial
	if dial == nil {
		dialer := &net.Dialer{Timeout: c.Timeout}
		dial = dialer.DialContext
	}

	conn, err := dial(ctx, "tcp", net.JoinHostPort(server, whoisPort))
	if err != nil {
		return "", fmt.Errorf("whois dial failed: %w", err)
	}
	defer conn.Close() // nolint:errcheck // best-effort cleanup on network connection

	if c.Timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(c.Timeout))
	}

	if _, err := fmt.Fprintf(conn, "%s\r\n", query); err != nil {
		return "", fmt.Errorf("whois query failed: %w", err)
	}

	limited := &io.LimitedReader{R: bufio.NewReader(conn), N: whoisMaxBytes}
	body, err := io.ReadAll(limited)
	if err != nil {
		return "", fmt.Errorf("whois read failed: %w", err)
	}

	return string(body), nil
}

// WhoisPatterns holds the case-insensitive substrings that mark a WHOIS
// body as available or taken.
type WhoisPatterns struct {
	Available []string
	Taken     []string
}

var (
	defaultWhoisAvailable = []string{"no match", "not found", "no data found", "status: free"}
	defaultWhoisTaken     = []string{"domain name:", "status: active", "registration status:", "created on"}
)

func normalizeWhoisPatterns(cfg WhoisFallbackConfig) WhoisPatterns {
	patterns := WhoisPatterns{Available: cfg.AvailablePatterns, Taken: cfg.TakenPatterns}
	if len(patterns.Available) == 0 {
		patterns.Available = defaultWhoisAvailable
	}
	if len(patterns.Taken) == 0 {
		patterns.Taken = defaultWhoisTaken
	}
	return patterns
}

// Match reports which pattern set the body hits first. Available patterns
// are checked first since "not found" bodies often echo a "domain name:" line.
func (p WhoisPatterns) Match(body string) (available bool, matched bool) {
	lower := strings.ToLower(body)
	if containsAny(lower, p.Available) {
		return true, true
	}
	if containsAny(lower, p.Taken) {
		return false, true
	}
	return false, false
}

func containsAny(lower string, patterns []string) bool {
	for _, pattern := range patterns {
		if pattern != "" && strings.Contains(lower, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

// interpretWhois returns nil when neither pattern set matches.
func interpretWhois(body string, patterns WhoisPatterns) (*bool, string) {
	available, matched := patterns.Match(body)
	if !matched {
		return nil, "whois ambiguous"
	}
	if available {
		return &available, "whois not found"
	}
	return &available, "whois found"
}

func whoisHash(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}
