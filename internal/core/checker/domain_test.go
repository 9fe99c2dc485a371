package checker

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/namelens/handlecheck/internal/core"
)

type staticServers map[string][]string

func (s staticServers) LookupServers(ctx context.Context, tld string) ([]string, error) {
	return s[tld], nil
}

type failingServers struct{ err error }

func (f failingServers) LookupServers(ctx context.Context, tld string) ([]string, error) {
	return nil, f.err
}

type stubResolver struct {
	resolution *Resolution
	err        error
	seen       []string
}

func (s *stubResolver) Resolve(ctx context.Context, fqdn string) (*Resolution, error) {
	s.seen = append(s.seen, fqdn)
	return s.resolution, s.err
}

type stubWhoisClient struct {
	response *WhoisResponse
	err      error
}

func (s *stubWhoisClient) Lookup(ctx context.Context, tld, domain string) (*WhoisResponse, error) {
	return s.response, s.err
}

type stubNS struct {
	records []*net.NS
	err     error
}

func (s *stubNS) LookupNS(ctx context.Context, name string) ([]*net.NS, error) {
	return s.records, s.err
}

const rdapDomainBody = `{
  "objectClassName": "domain",
  "ldhName": "example.com",
  "status": ["active"],
  "events": [{"eventAction": "expiration", "eventDate": "2025-12-26T00:00:00Z"}]
}`

func rdapServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if body != "" {
			w.Header().Set("Content-Type", "application/rdap+json")
		}
		w.WriteHeader(status)
		if body != "" {
			_, _ = w.Write([]byte(body))
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestDomainCheckerMapsTernary(t *testing.T) {
	yes, no := true, false
	tests := []struct {
		name       string
		resolution *Resolution
		err        error
		want       core.Verdict
	}{
		{name: "available", resolution: &Resolution{Available: &yes}, want: core.VerdictAvailable},
		{name: "taken", resolution: &Resolution{Available: &no}, want: core.VerdictTaken},
		{name: "indeterminate", resolution: &Resolution{Message: "ambiguous"}, want: core.VerdictUnknown},
		{name: "nil resolution", want: core.VerdictUnknown},
		{name: "resolver error", err: errors.New("boom"), want: core.VerdictUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := &stubResolver{resolution: tt.resolution, err: tt.err}
			checker := &DomainChecker{Resolver: resolver, ToolVersion: "test"}

			result, err := checker.Check(context.Background(), "Nike.COM")
			require.NoError(t, err)
			require.Equal(t, tt.want, result.Available)
			require.Equal(t, []string{"nike.com"}, resolver.seen)
			require.Equal(t, "Nike.COM", result.Name)
			require.Equal(t, "Nike", result.Handle)
			require.Equal(t, "com", result.TLD)
			require.Equal(t, core.CheckTypeDomain, result.CheckType)
			require.NotEmpty(t, result.Provenance.CheckID)
		})
	}
}

func TestDomainCheckerResolverErrorMessage(t *testing.T) {
	checker := &DomainChecker{Resolver: &stubResolver{err: errors.New("bootstrap down")}}
	result, err := checker.Check(context.Background(), "nike.com")
	require.NoError(t, err)
	require.Equal(t, "bootstrap down", result.Message)
}

func TestDomainCheckerRejectsMalformed(t *testing.T) {
	checker := &DomainChecker{Resolver: &stubResolver{}}
	for _, name := range []string{"", "nike", ".com", "nike."} {
		_, err := checker.Check(context.Background(), name)
		require.Error(t, err, name)
	}

	_, err := (&DomainChecker{}).Check(context.Background(), "nike.com")
	require.Error(t, err)
}

func TestDomainCheckerTrailingDot(t *testing.T) {
	no := false
	resolver := &stubResolver{resolution: &Resolution{Available: &no}}
	checker := &DomainChecker{Resolver: resolver}

	result, err := checker.Check(context.Background(), "Acme.Dev.")
	require.NoError(t, err)
	require.Equal(t, []string{"acme.dev"}, resolver.seen)
	require.Equal(t, "Acme.Dev", result.Name)
	require.Equal(t, "Acme", result.Handle)
	require.Equal(t, "dev", result.TLD)
	require.Equal(t, core.VerdictTaken, result.Available)
}

func TestRDAPResolverAvailable(t *testing.T) {
	server := rdapServer(t, http.StatusNotFound, "")
	resolver := &RDAPResolver{Bootstrap: staticServers{"com": {server.URL}}}

	resolution, err := resolver.Resolve(context.Background(), "example.com")
	require.NoError(t, err)
	require.Equal(t, core.VerdictAvailable, resolution.Verdict())
	require.Equal(t, http.StatusNotFound, resolution.StatusCode)
	require.Equal(t, rdapSource, resolution.Source)
}

func TestRDAPResolverTaken(t *testing.T) {
	server := rdapServer(t, http.StatusOK, rdapDomainBody)
	resolver := &RDAPResolver{Bootstrap: staticServers{"com": {server.URL}}}

	resolution, err := resolver.Resolve(context.Background(), "example.com")
	require.NoError(t, err)
	require.Equal(t, core.VerdictTaken, resolution.Verdict())
	require.Equal(t, http.StatusOK, resolution.StatusCode)
	require.Equal(t, "2025-12-26T00:00:00Z", resolution.ExtraData["expiration"])
}

func TestRDAPResolverRateLimitedIsIndeterminate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	resolver := &RDAPResolver{Bootstrap: staticServers{"com": {server.URL}}}

	resolution, err := resolver.Resolve(context.Background(), "example.com")
	require.NoError(t, err)
	require.Equal(t, core.VerdictUnknown, resolution.Verdict())
	require.Equal(t, http.StatusTooManyRequests, resolution.StatusCode)
	require.Equal(t, "30", resolution.ExtraData["retry_after"])
}

func TestRDAPResolverNoServer(t *testing.T) {
	resolver := &RDAPResolver{Bootstrap: staticServers{}}

	resolution, err := resolver.Resolve(context.Background(), "example.com")
	require.NoError(t, err)
	require.Equal(t, core.VerdictUnknown, resolution.Verdict())
	require.Equal(t, "no rdap server for tld", resolution.Message)
}

func TestRDAPResolverBootstrapFailure(t *testing.T) {
	resolver := &RDAPResolver{Bootstrap: failingServers{err: errors.New("offline")}}

	_, err := resolver.Resolve(context.Background(), "example.com")
	require.ErrorContains(t, err, "offline")
}

func TestRDAPResolverOverrideAvailable(t *testing.T) {
	server := rdapServer(t, http.StatusNotFound, "")
	resolver := &RDAPResolver{
		Bootstrap:     failingServers{err: errors.New("not consulted")},
		RDAPOverrides: map[string][]string{"dev": {server.URL}},
	}

	resolution, err := resolver.Resolve(context.Background(), "example.dev")
	require.NoError(t, err)
	require.Equal(t, core.VerdictAvailable, resolution.Verdict())
	require.Equal(t, server.URL+"/domain/example.dev", resolution.Server)
}

func TestRDAPResolverOverrideFallbackServer(t *testing.T) {
	primary := rdapServer(t, http.StatusInternalServerError, "")
	fallback := rdapServer(t, http.StatusNotFound, "")

	resolver := &RDAPResolver{
		RDAPOverrides: map[string][]string{"dev": {primary.URL, fallback.URL}},
	}

	resolution, err := resolver.Resolve(context.Background(), "example.dev")
	require.NoError(t, err)
	require.Equal(t, core.VerdictAvailable, resolution.Verdict())
	require.Equal(t, fallback.URL+"/domain/example.dev", resolution.Server)
}

func TestRDAPResolverAllServersFail(t *testing.T) {
	primary := rdapServer(t, http.StatusInternalServerError, "")
	secondary := rdapServer(t, http.StatusBadGateway, "")

	resolver := &RDAPResolver{Bootstrap: staticServers{"com": {primary.URL, secondary.URL}}}

	resolution, err := resolver.Resolve(context.Background(), "example.com")
	require.NoError(t, err)
	require.Equal(t, core.VerdictUnknown, resolution.Verdict())
	require.Equal(t, http.StatusBadGateway, resolution.StatusCode)
	require.Equal(t, "rdap server error", resolution.Message)
}

func TestDefaultRDAPOverrides(t *testing.T) {
	resolver := &RDAPResolver{}
	require.Equal(t, DefaultRDAPOverrides["app"], resolver.rdapOverrideServers(".APP"))
	require.Empty(t, resolver.rdapOverrideServers("com"))
}

func TestRDAPResolverWhoisFallback(t *testing.T) {
	resolver := &RDAPResolver{
		Bootstrap: staticServers{},
		Whois: &stubWhoisClient{
			response: &WhoisResponse{
				Server: "whois.nic.io",
				Body:   "No match for domain \"example.io\".",
			},
		},
		WhoisCfg: WhoisFallbackConfig{
			Enabled:         true,
			TLDs:            []string{"io"},
			RequireExplicit: true,
		},
	}

	resolution, err := resolver.Resolve(context.Background(), "example.io")
	require.NoError(t, err)
	require.Equal(t, core.VerdictAvailable, resolution.Verdict())
	require.Equal(t, whoisSource, resolution.Source)
	require.Equal(t, "whois.nic.io", resolution.Server)
	require.NotEmpty(t, resolution.ExtraData["whois_raw_hash"])
}

func TestRDAPResolverWhoisRequireExplicit(t *testing.T) {
	resolver := &RDAPResolver{
		Bootstrap: staticServers{},
		Whois:     &stubWhoisClient{response: &WhoisResponse{Body: "Domain Name: EXAMPLE.XYZ"}},
		WhoisCfg:  WhoisFallbackConfig{Enabled: true, TLDs: []string{"io"}, RequireExplicit: true},
	}

	resolution, err := resolver.Resolve(context.Background(), "example.xyz")
	require.NoError(t, err)
	require.Equal(t, rdapSource, resolution.Source)
	require.Equal(t, core.VerdictUnknown, resolution.Verdict())
}

func TestRDAPResolverWhoisErrorIsIndeterminate(t *testing.T) {
	resolver := &RDAPResolver{
		Bootstrap: staticServers{},
		Whois:     &stubWhoisClient{err: errors.New("no whois server for tld zz")},
		WhoisCfg:  WhoisFallbackConfig{Enabled: true},
	}

	resolution, err := resolver.Resolve(context.Background(), "example.zz")
	require.NoError(t, err)
	require.Equal(t, core.VerdictUnknown, resolution.Verdict())
	require.Equal(t, whoisSource, resolution.Source)
}

func TestRDAPResolverDNSFallback(t *testing.T) {
	tests := []struct {
		name string
		ns   *stubNS
		want core.Verdict
	}{
		{name: "records present", ns: &stubNS{records: []*net.NS{{Host: "ns1.example."}}}, want: core.VerdictTaken},
		{name: "no records", ns: &stubNS{}, want: core.VerdictUnknown},
		{name: "nxdomain", ns: &stubNS{err: &net.DNSError{Err: "no such host", IsNotFound: true}}, want: core.VerdictUnknown},
		{name: "lookup failure", ns: &stubNS{err: errors.New("timeout")}, want: core.VerdictUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := &RDAPResolver{
				Bootstrap: staticServers{},
				DNS:       tt.ns,
				DNSCfg:    DNSFallbackConfig{Enabled: true},
			}
			resolution, err := resolver.Resolve(context.Background(), "example.zz")
			require.NoError(t, err)
			require.Equal(t, tt.want, resolution.Verdict())
			require.Equal(t, dnsSource, resolution.Source)
		})
	}
}

func TestInterpretWhois(t *testing.T) {
	patterns := normalizeWhoisPatterns(WhoisFallbackConfig{})

	available, _ := interpretWhois("NOT FOUND", patterns)
	require.NotNil(t, available)
	require.True(t, *available)

	taken, _ := interpretWhois("Domain Name: EXAMPLE.COM\nCreated On: 2001", patterns)
	require.NotNil(t, taken)
	require.False(t, *taken)

	ambiguous, message := interpretWhois("% rate limit exceeded", patterns)
	require.Nil(t, ambiguous)
	require.Equal(t, "whois ambiguous", message)

	custom := normalizeWhoisPatterns(WhoisFallbackConfig{AvailablePatterns: []string{"is free"}})
	free, _ := interpretWhois("example.xyz is free", custom)
	require.NotNil(t, free)
	require.True(t, *free)
}
