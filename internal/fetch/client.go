package fetch

import (
	"net"
	"net/http"
	"time"
)

// Doer abstracts the HTTP client so tests can substitute a deterministic stub.
// *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewClient returns an HTTP client tuned for repeated fetches against a
// shared set of hosts. Idle connections are kept so targets on the same host
// reuse the underlying TCP connection instead of paying handshake cost again.
// Per-attempt timeouts are enforced via request contexts, not client.Timeout,
// so a single client can serve attempts with different deadlines.
func NewClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{Transport: transport}
}
