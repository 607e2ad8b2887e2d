package protocol

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
)

// Transport is the contract the executor consumes to move bytes to and from
// the service. The concrete HTTP transport, TLS/socket tuning, and
// credential signing are external collaborators (spec §1 non-goals); this
// package only depends on the interface below.
type Transport interface {
	// Do sends the serialized request body and returns the raw response
	// body. The captured serial version selects the request path; the
	// opcode identifies the request kind.
	Do(ctx context.Context, opcode OpCode, serial SerialVersion, body []byte) ([]byte, error)
	// Close releases the transport's resources.
	Close() error
}

// Signer authorizes an outgoing HTTP request, e.g. by attaching a bearer
// token or an IAM request signature. Concrete signers (IAM, user/password)
// are external collaborators; the core only depends on this contract.
type Signer interface {
	Sign(req *http.Request, payload []byte) error
}

// noopSigner is the default Signer for on-premise deployments without
// authentication configured.
type noopSigner struct{}

func (noopSigner) Sign(*http.Request, []byte) error { return nil }

// RateLimiter governs per-table read/write throughput. The token-bucket
// implementation is an external collaborator (spec §1 non-goal); the
// executor only depends on this contract, consulting it around the
// transport call.
type RateLimiter interface {
	// Acquire blocks (respecting ctx) until permission for units of the
	// given kind ("read" or "write") on table is granted.
	Acquire(ctx context.Context, table string, kind string, units int) error
}

// noopRateLimiter never throttles. The default when no limiter is configured.
type noopRateLimiter struct{}

func (noopRateLimiter) Acquire(context.Context, string, string, int) error { return nil }

// NoopRateLimiter is the default no-op RateLimiter.
var NoopRateLimiter RateLimiter = noopRateLimiter{}

// NoopSigner is the default no-op Signer.
var NoopSigner Signer = noopSigner{}

// HTTPTransportConfig configures DefaultHTTPTransport.
type HTTPTransportConfig struct {
	Endpoint   string // scheme://host:port, no path (spec §6.2)
	Signer     Signer
	HTTPClient *http.Client // optional override of the underlying client
}

// DefaultHTTPTransport is the reference Transport implementation: it POSTs
// the serialized request body to a single data path under Endpoint, using
// github.com/hashicorp/go-retryablehttp for connection-level retry of
// transient socket errors. This is distinct from, and sits below, the
// request-level RetryPolicy: retryablehttp retries a single HTTP POST
// attempt at the socket level, while RetryPolicy decides whether to
// re-issue an entire logical request.
type DefaultHTTPTransport struct {
	endpoint string
	signer   Signer
	client   *retryablehttp.Client
}

// NewDefaultHTTPTransport builds a DefaultHTTPTransport.
func NewDefaultHTTPTransport(cfg HTTPTransportConfig) *DefaultHTTPTransport {
	signer := cfg.Signer
	if signer == nil {
		signer = NoopSigner
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil
	if cfg.HTTPClient != nil {
		client.HTTPClient = cfg.HTTPClient
	} else {
		client.HTTPClient = defaultHTTPClient()
	}

	return &DefaultHTTPTransport{
		endpoint: cfg.Endpoint,
		signer:   signer,
		client:   client,
	}
}

// dataPath is the fixed path requests are POSTed to, versioned by the
// serial version so the server can route to the matching handler family.
func dataPath(serial SerialVersion) string {
	return fmt.Sprintf("/V%d/nosql/data", serial)
}

// Do implements Transport.
func (t *DefaultHTTPTransport) Do(ctx context.Context, opcode OpCode, serial SerialVersion, body []byte) ([]byte, error) {
	url := t.endpoint + dataPath(serial)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, Wrap(KindRetryableNetwork, err, "build request for %s", opcode)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("x-nosql-request-id", uuid.NewString())

	if err := t.signer.Sign(req.Request, body); err != nil {
		return nil, Wrap(KindArgument, err, "sign request for %s", opcode)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, Wrap(KindRetryableNetwork, err, "send %s", opcode)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Wrap(KindRetryableNetwork, err, "receive %s", opcode)
	}

	if resp.StatusCode == http.StatusUnsupportedMediaType {
		return nil, NewError(KindUnsupportedProtocol, "server rejected serial version %d", serial)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, NewError(KindRetryableNetwork, "server returned status %d for %s", resp.StatusCode, opcode)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, NewError(KindNonRetryableNoSQL, "server returned status %d for %s", resp.StatusCode, opcode)
	}

	return respBody, nil
}

// Close implements Transport.
func (t *DefaultHTTPTransport) Close() error {
	t.client.HTTPClient.CloseIdleConnections()
	return nil
}

// defaultHTTPClient returns the conservative default net/http.Client wrapped
// by retryablehttp.Client when HTTPTransportConfig.HTTPClient is unset; TLS
// and socket tuning beyond Go's defaults are the external collaborator's job.
func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
