package nosqldb

import (
	"net/http"
	"time"

	"github.com/nosqldb/nosqldb-go/internal/protocol"
	"github.com/nosqldb/nosqldb-go/logging"
)

// Option tweaks a Config, following the teacher's functional-options
// pattern (`client.Option`/`driver.Option`: `type Option func(*options)`).
type Option func(*config)

// WithRegion sets the target region; its endpoint is derived via
// LookupRegion. Exactly one of WithRegion or WithEndpoint may be set
// (spec §6.2: "Exactly one of region or endpoint may be set").
func WithRegion(regionID string) Option {
	return func(c *config) {
		c.regionID = regionID
	}
}

// WithEndpoint sets an explicit service endpoint, validated and normalized
// by ParseEndpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *config) {
		c.endpoint = endpoint
	}
}

// WithServiceType overrides the inferred service type. A region implies
// ServiceTypeCloud; an explicit endpoint defaults to ServiceTypeUnspecified
// unless overridden.
func WithServiceType(t ServiceType) Option {
	return func(c *config) {
		c.serviceType = t
		c.serviceTypeSet = true
	}
}

// WithRegionOverrides supplies additional region definitions beyond the
// built-in catalog (spec.md §1 non-goal: full region catalog).
func WithRegionOverrides(overrides map[string]Region) Option {
	return func(c *config) {
		c.regionOverrides = overrides
	}
}

// WithDefaultTimeout sets the default per-request timeout used when a call
// does not specify its own.
func WithDefaultTimeout(d time.Duration) Option {
	return func(c *config) {
		c.defaultTimeout = d
	}
}

// WithDefaultTablePollTimeout sets the default overall poll-timeout for
// the DDL Completion Waiter (spec §4.5).
func WithDefaultTablePollTimeout(d time.Duration) Option {
	return func(c *config) {
		c.defaultPollTimeout = d
	}
}

// WithDefaultTablePollDelay sets the default inter-poll delay for the DDL
// Completion Waiter.
func WithDefaultTablePollDelay(d time.Duration) Option {
	return func(c *config) {
		c.defaultPollDelay = d
	}
}

// WithMaxRetryAttempts overrides the retry policy's maxRetryAttempts
// (spec §4.3 default: 10). 0 is a legal value meaning "never retry by
// count"; it is not treated as unset.
func WithMaxRetryAttempts(n int) Option {
	return func(c *config) {
		c.retryPolicy.MaxRetryAttempts = n
	}
}

// WithBaseDelay overrides the retry policy's baseDelay (spec §4.3 default: 1s).
func WithBaseDelay(d time.Duration) Option {
	return func(c *config) {
		c.retryPolicy.BaseDelay = d
	}
}

// WithRetryPolicy installs a caller-supplied retry policy wholesale,
// bypassing DefaultRetryPolicy. Pass protocol.NoRetryPolicy to disable retry.
func WithRetryPolicy(policy protocol.RetryPolicy) Option {
	return func(c *config) {
		c.customRetryPolicy = policy
	}
}

// WithLogFunc installs the logging.Func threaded through the client handle,
// executor, and waiter (the teacher's ambient-logging idiom: a value, not a
// package-level logger).
func WithLogFunc(f logging.Func) Option {
	return func(c *config) {
		c.logFunc = f
	}
}

// WithSigner installs a credential Signer (IAM or username/password
// authentication is an external collaborator per spec.md §1 non-goals; the
// core only depends on the protocol.Signer contract).
func WithSigner(signer protocol.Signer) Option {
	return func(c *config) {
		c.signer = signer
	}
}

// WithRateLimiter installs a per-table RateLimiter (token-bucket governor is
// an external collaborator per spec.md §1 non-goals).
func WithRateLimiter(limiter protocol.RateLimiter) Option {
	return func(c *config) {
		c.rateLimiter = limiter
	}
}

// WithHTTPClient overrides the underlying *http.Client used by the default
// transport.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) {
		c.httpClient = client
	}
}

// WithTransport installs a caller-supplied Transport wholesale, bypassing
// the default HTTP transport entirely (e.g. for tests).
func WithTransport(transport protocol.Transport) Option {
	return func(c *config) {
		c.customTransport = transport
	}
}

// WithDisableProtocolFallback turns off serial/query-version downgrade,
// surfacing unsupported-protocol/unsupported-query-version errors directly.
func WithDisableProtocolFallback() Option {
	return func(c *config) {
		c.disableFallback = true
	}
}

const (
	defaultTimeout          = 5 * time.Second
	defaultTablePollTimeout = 2 * time.Minute
)

// config holds the resolved configuration of a Client, assembled from
// Options over a set of system defaults (spec §3: "Resolution precedence:
// per-call options > handle defaults > system defaults").
type config struct {
	regionID        string
	endpoint        string
	serviceType     ServiceType
	serviceTypeSet  bool
	regionOverrides map[string]Region

	defaultTimeout     time.Duration
	defaultPollTimeout time.Duration
	defaultPollDelay   time.Duration

	retryPolicy       protocol.RetryPolicyConfig
	customRetryPolicy protocol.RetryPolicy

	logFunc logging.Func

	signer          protocol.Signer
	rateLimiter     protocol.RateLimiter
	httpClient      *http.Client
	customTransport protocol.Transport

	disableFallback bool
}

// newConfig builds a config from opts over the system defaults.
func newConfig(opts []Option) (*config, error) {
	c := &config{
		defaultTimeout:     defaultTimeout,
		defaultPollTimeout: defaultTablePollTimeout,
		defaultPollDelay:   protocol.DefaultTablePollDelay,
		retryPolicy:        protocol.DefaultRetryPolicyConfig(),
		logFunc:            logging.DefaultLogFunc,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.regionID != "" && c.endpoint != "" {
		return nil, protocol.NewError(protocol.KindArgument, "exactly one of region or endpoint may be set")
	}
	if c.regionID == "" && c.endpoint == "" && c.customTransport == nil {
		return nil, protocol.NewError(protocol.KindArgument, "one of region, endpoint, or a custom transport must be set")
	}

	if c.regionID != "" {
		region, ok := LookupRegion(c.regionID, c.regionOverrides)
		if !ok {
			return nil, protocol.NewError(protocol.KindArgument, "unknown region %q", c.regionID)
		}
		c.endpoint = region.Endpoint()
		if !c.serviceTypeSet {
			c.serviceType = ServiceTypeCloud
		}
	} else if c.endpoint != "" {
		normalized, err := ParseEndpoint(c.endpoint)
		if err != nil {
			return nil, err
		}
		c.endpoint = normalized
	}

	return c, nil
}

func (c *config) retryPolicyOrDefault() protocol.RetryPolicy {
	if c.customRetryPolicy != nil {
		return c.customRetryPolicy
	}
	return protocol.NewDefaultRetryPolicy(c.retryPolicy)
}

func (c *config) transportOrDefault() protocol.Transport {
	if c.customTransport != nil {
		return c.customTransport
	}
	return protocol.NewDefaultHTTPTransport(protocol.HTTPTransportConfig{
		Endpoint:   c.endpoint,
		Signer:     c.signer,
		HTTPClient: c.httpClient,
	})
}

func (c *config) rateLimiterOrDefault() protocol.RateLimiter {
	if c.rateLimiter != nil {
		return c.rateLimiter
	}
	return protocol.NoopRateLimiter
}
