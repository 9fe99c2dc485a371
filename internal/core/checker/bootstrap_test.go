package checker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const bootstrapPayload = `{
  "version": "1.0",
  "publication": "2024-12-01T00:00:00Z",
  "services": [
    [["com", "NET"], ["https://rdap.example.com/"]],
    [["org"], ["https://rdap.example.org/", "https://backup.example.org/"]],
    [["broken"]]
  ]
}`

func TestBootstrapLoad(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(bootstrapPayload))
	}))
	defer server.Close()

	bootstrap := &RDAPBootstrap{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Clock: func() time.Time {
			return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		},
	}

	status, err := bootstrap.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, status.TLDCount)
	require.Equal(t, "1.0", status.Version)
	require.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), status.Publication)
	require.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), status.FetchedAt)
	require.Equal(t, server.URL, status.Source)

	servers, err := bootstrap.LookupServers(context.Background(), "net")
	require.NoError(t, err)
	require.Equal(t, []string{"https://rdap.example.com/"}, servers)

	servers, err = bootstrap.LookupServers(context.Background(), "ORG")
	require.NoError(t, err)
	require.Len(t, servers, 2)

	servers, err = bootstrap.LookupServers(context.Background(), "zz")
	require.NoError(t, err)
	require.Empty(t, servers)
}

func TestBootstrapFetchesOnceUnderConcurrency(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(bootstrapPayload))
	}))
	defer server.Close()

	bootstrap := &RDAPBootstrap{BaseURL: server.URL, HTTPClient: server.Client()}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = bootstrap.LookupServers(context.Background(), "com")
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), hits.Load())
}

func TestBootstrapRemembersFailure(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	bootstrap := &RDAPBootstrap{BaseURL: server.URL, HTTPClient: server.Client()}

	_, err := bootstrap.LookupServers(context.Background(), "com")
	require.ErrorContains(t, err, "status 502")
	_, err = bootstrap.LookupServers(context.Background(), "org")
	require.Error(t, err)
	require.Equal(t, int32(1), hits.Load())
}

func TestBootstrapRejectsMalformedDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	bootstrap := &RDAPBootstrap{BaseURL: server.URL, HTTPClient: server.Client()}
	_, err := bootstrap.Load(context.Background())
	require.ErrorContains(t, err, "decode bootstrap data")
}
