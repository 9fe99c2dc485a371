package checker

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// pipeWhois answers each dialed address with a canned body over net.Pipe
// and records the query lines it received.
type pipeWhois struct {
	mu      sync.Mutex
	bodies  map[string]string
	queries []string
	dials   map[string]int
}

func newPipeWhois(bodies map[string]string) *pipeWhois {
	return &pipeWhois{bodies: bodies, dials: map[string]int{}}
}

func (p *pipeWhois) dial(ctx context.Context, network, addr string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.dials[host]++
	body, ok := p.bodies[host]
	p.mu.Unlock()
	if !ok {
		return nil, &net.OpError{Op: "dial", Net: network, Err: net.UnknownNetworkError("no route")}
	}

	client, server := net.Pipe()
	go func() {
		defer server.Close() // nolint:errcheck // test pipe
		line, _ := bufio.NewReader(server).ReadString('\n')
		p.mu.Lock()
		p.queries = append(p.queries, strings.TrimSpace(line))
		p.mu.Unlock()
		_, _ = server.Write([]byte(body))
	}()
	return client, nil
}

func TestWhoisClientFollowsIanaReferral(t *testing.T) {
	pipes := newPipeWhois(map[string]string{
		whoisIanaServer: "domain:       XYZ\nrefer:        whois.nic.xyz\n",
		"whois.nic.xyz": "No match for ACME.XYZ\n",
	})
	client := &DefaultWhoisClient{Dial: pipes.dial, Timeout: 2 * time.Second}

	resp, err := client.Lookup(context.Background(), "xyz", "acme.xyz")
	require.NoError(t, err)
	require.Equal(t, "whois.nic.xyz", resp.Server)
	require.Contains(t, resp.Body, "No match")
	require.Equal(t, []string{"xyz", "acme.xyz"}, pipes.queries)

	_, err = client.Lookup(context.Background(), "xyz", "other.xyz")
	require.NoError(t, err)
	require.Equal(t, 1, pipes.dials[whoisIanaServer], "referral is remembered")
}

func TestWhoisClientUsesConfiguredServer(t *testing.T) {
	pipes := newPipeWhois(map[string]string{
		"whois.example.test": "Domain Name: ACME.TEST\n",
	})
	client := &DefaultWhoisClient{
		Servers: map[string]string{"test": "whois.example.test"},
		Dial:    pipes.dial,
	}

	resp, err := client.Lookup(context.Background(), ".TEST", "acme.test")
	require.NoError(t, err)
	require.Equal(t, "whois.example.test", resp.Server)
	require.Zero(t, pipes.dials[whoisIanaServer])
}

func TestWhoisClientNoReferral(t *testing.T) {
	pipes := newPipeWhois(map[string]string{
		whoisIanaServer: "% This query returned 0 objects.\n",
	})
	client := &DefaultWhoisClient{Dial: pipes.dial}

	_, err := client.Lookup(context.Background(), "nope", "acme.nope")
	require.ErrorContains(t, err, "no whois server")
}

func TestWhoisClientDialFailure(t *testing.T) {
	client := &DefaultWhoisClient{
		Servers: map[string]string{"test": "unreachable.test"},
		Dial:    newPipeWhois(nil).dial,
	}

	_, err := client.Lookup(context.Background(), "test", "acme.test")
	require.ErrorContains(t, err, "whois dial failed")
}

func TestWhoisClientRequiresDomain(t *testing.T) {
	client := &DefaultWhoisClient{}
	_, err := client.Lookup(context.Background(), "com", " ")
	require.Error(t, err)
}

func TestParseReferral(t *testing.T) {
	cases := map[string]string{
		"refer: whois.nic.io\n":                   "whois.nic.io",
		"domain: IO\nwhois:   whois.nic.io  \r\n": "whois.nic.io",
		"refer:\nwhois: whois.fallback.test\n":    "whois.fallback.test",
		"% no referral here\nstatus: ACTIVE\n":    "",
		"":                                        "",
	}
	for body, want := range cases {
		require.Equal(t, want, parseReferral(body), body)
	}
}

func TestWhoisPatternsPreferAvailable(t *testing.T) {
	patterns := normalizeWhoisPatterns(WhoisFallbackConfig{})

	available, matched := patterns.Match("Domain Name: ACME.IO\nNOT FOUND")
	require.True(t, matched)
	require.True(t, available)

	_, matched = WhoisPatterns{Available: []string{""}, Taken: []string{""}}.Match("anything")
	require.False(t, matched)
}
