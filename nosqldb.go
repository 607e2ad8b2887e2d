// Package nosqldb is a client driver for a managed NoSQL database service:
// table management, row read/write, range deletion, batch writes, SQL
// queries, and administrative DDL over a custom binary wire protocol.
//
// The Client type is the single entry point; construct one with New and an
// Option list, then call its methods from as many goroutines as needed —
// the handle is safe for concurrent use (spec §5).
package nosqldb

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nosqldb/nosqldb-go/internal/protocol"
	"github.com/nosqldb/nosqldb-go/logging"
)

// Client is the driver's user-facing entry point. It owns the transport,
// protocol handler, retry policy, and rate limiter; per-call state lives on
// the Request objects constructed by each operation method (spec §3
// "Ownership").
type Client struct {
	cfg      *config
	executor *protocol.Executor
	waiter   *protocol.Waiter

	disposed atomic.Bool
	mu       sync.Mutex // serializes concurrent Close calls
}

// New constructs a Client from the given Options.
func New(opts ...Option) (*Client, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	executor := &protocol.Executor{
		Transport:               cfg.transportOrDefault(),
		ProtocolHandler:         protocol.NewProtocolHandler(),
		RetryPolicy:             cfg.retryPolicyOrDefault(),
		RateLimiter:             cfg.rateLimiterOrDefault(),
		Clock:                   protocol.SystemClock{},
		Log:                     cfg.logFunc,
		DisableProtocolFallback: cfg.disableFallback,
	}

	return &Client{
		cfg:      cfg,
		executor: executor,
		waiter:   &protocol.Waiter{Executor: executor, Clock: protocol.SystemClock{}, Log: cfg.logFunc},
	}, nil
}

// Close disposes the handle's transport. Subsequent operations fail with
// ErrDisposed (spec §5: "Dispose releases them exactly once; subsequent
// operations fail with an object disposed error").
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.disposed.CompareAndSwap(false, true) {
		return nil
	}
	return c.executor.Transport.Close()
}

// checkDisposed is called at the top of every operation method.
func (c *Client) checkDisposed() error {
	if c.disposed.Load() {
		return ErrDisposed
	}
	return nil
}

// execute runs req through the Request Executor, after the disposed check.
func (c *Client) execute(ctx context.Context, req protocol.Request) (protocol.Result, error) {
	if err := c.checkDisposed(); err != nil {
		return nil, err
	}
	return c.executor.Execute(ctx, req)
}

// logf is a nil-safe wrapper around the handle's configured log function,
// used by collaborators (such as WaitReady) that log outside the executor's
// own request lifecycle.
func (c *Client) logf(level logging.Level, format string, args ...any) {
	if c.cfg.logFunc != nil {
		c.cfg.logFunc(level, format, args...)
	}
}

// defaultTimeoutOr returns d if positive, else the handle's configured
// default timeout (spec §3: "Resolution precedence: per-call options >
// handle defaults > system defaults").
func (c *Client) defaultTimeoutOr(d time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return c.cfg.defaultTimeout
}
