package nosqldb

import (
	"context"
	"time"

	"github.com/Rican7/retry"
	"github.com/Rican7/retry/backoff"
	"github.com/Rican7/retry/strategy"

	"github.com/nosqldb/nosqldb-go/internal/protocol"
	"github.com/nosqldb/nosqldb-go/logging"
)

// WaitReadyOptions configures WaitReady's retry loop.
type WaitReadyOptions struct {
	// BackoffFactor and BackoffCap parameterize a binary-exponential
	// backoff between probe attempts.
	BackoffFactor time.Duration
	BackoffCap    time.Duration
	// RetryLimit bounds the number of attempts; 0 means unlimited, bounded
	// only by ctx.
	RetryLimit uint
}

func (o WaitReadyOptions) withDefaults() WaitReadyOptions {
	if o.BackoffFactor == 0 {
		o.BackoffFactor = 100 * time.Millisecond
	}
	if o.BackoffCap == 0 {
		o.BackoffCap = 5 * time.Second
	}
	return o
}

// WaitReady blocks until the configured endpoint answers a lightweight probe
// request or ctx is done, retrying with binary-exponential backoff between
// attempts. probeTable need not exist: a table-not-found response still
// proves the endpoint is live and speaking the wire protocol, and is treated
// as success.
//
// This mirrors the teacher's Connector.Connect, which retries
// connectAttemptAll with a Rican7/retry backoff.BinaryExponential strategy
// until a leader answers or the context is done; here there is no cluster
// to find a leader in, so the retried operation is a single reachability
// probe instead of a leader search.
func (c *Client) WaitReady(ctx context.Context, probeTable string, opts WaitReadyOptions) error {
	opts = opts.withDefaults()
	strategies := waitReadyStrategies(opts)

	var lastErr error
	err := retry.Retry(func(attempt uint) error {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		_, probeErr := c.GetTable(ctx, probeTable, GetTableOptions{Timeout: c.cfg.defaultTimeout})
		if probeErr == nil || protocol.IsKind(probeErr, protocol.KindNonRetryableNoSQL) {
			// A clean response, or a non-retryable NoSQL error such as
			// table-not-found, both prove the endpoint is reachable.
			return nil
		}

		lastErr = probeErr
		c.logf(logging.Debug, "wait ready: attempt %d: %v", attempt, probeErr)
		return probeErr
	}, strategies...)

	if err != nil {
		return protocol.Wrap(protocol.KindRetryableNetwork, lastErr, "endpoint did not become ready")
	}
	if ctx.Err() != nil {
		return protocol.Wrap(protocol.KindCancelled, ctx.Err(), "wait ready")
	}
	return nil
}

func waitReadyStrategies(opts WaitReadyOptions) []strategy.Strategy {
	delay := backoff.BinaryExponential(opts.BackoffFactor)

	var strategies []strategy.Strategy
	if opts.RetryLimit > 0 {
		strategies = append(strategies, strategy.Limit(opts.RetryLimit+1))
	}
	strategies = append(strategies, func(attempt uint) bool {
		if attempt > 0 {
			d := delay(attempt)
			if d > opts.BackoffCap || d <= 0 {
				d = opts.BackoffCap
			}
			time.Sleep(d)
		}
		return true
	})
	return strategies
}
