package checker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// DefaultBootstrapURL is the IANA RDAP bootstrap registry for DNS.
const DefaultBootstrapURL = "https://data.iana.org/rdap/dns.json"

// ServerLookup returns the RDAP base URLs responsible for a TLD.
type ServerLookup interface {
	LookupServers(ctx context.Context, tld string) ([]string, error)
}

// RDAPBootstrap holds the IANA RDAP bootstrap data in memory. The registry
// is fetched on first use and kept for the life of the process; a failed
// fetch is remembered so concurrent checks do not retry it.
type RDAPBootstrap struct {
	HTTPClient *http.Client
	BaseURL    string
	Clock      func() time.Time

	mu      sync.Mutex
	loaded  bool
	loadErr error
	servers map[string][]string
	status  BootstrapStatus
}

// BootstrapDocument represents the IANA RDAP DNS bootstrap response.
type BootstrapDocument struct {
	Version     string       `json:"version"`
	Publication string       `json:"publication"`
	Services    [][][]string `json:"services"`
}

// BootstrapStatus reports what the loaded registry contains.
type BootstrapStatus struct {
	TLDCount    int
	Version     string
	Publication time.Time
	FetchedAt   time.Time
	Source      string
}

// Load fetches the registry if it has not been fetched yet.
func (b *RDAPBootstrap) Load(ctx context.Context) (*BootstrapStatus, error) {
	if b == nil {
		return nil, errors.New("bootstrap is not configured")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.loaded {
		b.loadErr = b.fetch(ctx)
		b.loaded = true
	}
	if b.loadErr != nil {
		return nil, b.loadErr
	}

	status := b.status
	return &status, nil
}

// LookupServers returns the RDAP servers for the TLD, loading the registry
// on first call. An unknown TLD yields no servers and no error.
func (b *RDAPBootstrap) LookupServers(ctx context.Context, tld string) ([]string, error) {
	if _, err := b.Load(ctx); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	servers := b.servers[strings.ToLower(strings.TrimSpace(tld))]
	return append([]string(nil), servers...), nil
}

func (b *RDAPBootstrap) fetch(ctx context.Context) error {
	client := b.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	baseURL := strings.TrimSpace(b.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBootstrapURL
	}

	if ctx == nil {
		ctx = context.Background()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return fmt.Errorf("build bootstrap request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch bootstrap data: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("bootstrap request failed: status %d", resp.StatusCode)
	}

	var doc BootstrapDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("decode bootstrap data: %w", err)
	}

	b.servers = indexServices(doc.Services)
	b.status = BootstrapStatus{
		TLDCount:    len(b.servers),
		Version:     doc.Version,
		Publication: parseTime(doc.Publication),
		FetchedAt:   b.now(),
		Source:      baseURL,
	}
	return nil
}

// indexServices flattens [[tlds], [urls]] entries into a TLD lookup table.
func indexServices(services [][][]string) map[string][]string {
	index := make(map[string][]string)
	for _, service := range services {
		if len(service) != 2 {
			continue
		}
		tlds := service[0]
		urls := service[1]
		if len(tlds) == 0 || len(urls) == 0 {
			continue
		}

		for _, tld := range tlds {
			key := strings.ToLower(strings.TrimSpace(tld))
			if key == "" {
				continue
			}
			index[key] = urls
		}
	}
	return index
}

func (b *RDAPBootstrap) now() time.Time {
	if b != nil && b.Clock != nil {
		return b.Clock()
	}
	return time.Now().UTC()
}

func parseTime(value string) time.Time {
	if strings.TrimSpace(value) == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}

	return parsed
}
