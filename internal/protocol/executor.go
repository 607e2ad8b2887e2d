package protocol

import (
	"context"

	"github.com/nosqldb/nosqldb-go/logging"
)

// Executor drives a single request through validation, serialization,
// transport, deserialization, and the retry loop (spec §4.2). It is stored
// on the Client Handle and shared by every request.
type Executor struct {
	Transport       Transport
	ProtocolHandler *ProtocolHandler
	RetryPolicy     RetryPolicy
	RateLimiter     RateLimiter
	Clock           Clock
	Log             logging.Func

	// DisableProtocolFallback turns off the unsupported-protocol/unsupported-
	// query-version downgrade path, surfacing those errors immediately
	// instead. Off by default.
	DisableProtocolFallback bool

	// MessageBufferSize sizes the Message buffers used per attempt.
	MessageBufferSize int
}

// rateLimited is implemented by request kinds that consume read/write
// capacity on a named table. Most request kinds (DDL, admin) do not
// implement it, leaving the rate limiter a no-op for them — consistent with
// rate limiting being an external-collaborator contract (spec §1).
type rateLimited interface {
	RateLimitInfo() (table string, kind string, units int)
}

// Execute runs the full lifecycle of req and returns its Result, per
// spec §4.2's numbered guarantees.
func (e *Executor) Execute(ctx context.Context, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	timeout := req.Timeout()
	req.Init(e.clockOrDefault(), timeout)

	bufSize := e.MessageBufferSize
	if bufSize == 0 {
		bufSize = 4096
	}

	for {
		select {
		case <-ctx.Done():
			return nil, Wrap(KindCancelled, ctx.Err(), "execute %s", req.OpCode())
		default:
		}

		serial, query := e.ProtocolHandler.Snapshot()
		req.CaptureProtocolVersion(serial, query)

		if rl, ok := req.(rateLimited); ok && e.RateLimiter != nil {
			table, kind, units := rl.RateLimitInfo()
			if table != "" {
				if err := e.RateLimiter.Acquire(ctx, table, kind, units); err != nil {
					return nil, err
				}
			}
		}

		request := &Message{}
		request.Init(bufSize)
		if err := req.Serialize(request, serial, query); err != nil {
			return nil, Wrap(KindArgument, err, "serialize %s", req.OpCode())
		}

		respBytes, err := e.transportOrDefault().Do(ctx, req.OpCode(), serial, request.Bytes())
		if err != nil {
			if fallback, handled := e.tryProtocolFallback(err, serial, query); handled {
				if fallback {
					e.logf(logging.Warn, "%s: falling back from serial version %d", req.OpCode(), serial)
					continue // downgraded (or raced with a concurrent downgrade): retry, uncounted
				}
				return nil, err // fallback exhausted: rethrow unchanged, not as a timeout
			}

			if retryErr := e.handleFailure(ctx, req, err); retryErr != nil {
				return nil, retryErr
			}
			e.logf(logging.Debug, "%s: retry %d after %v", req.OpCode(), req.RetryCount(), err)
			continue
		}

		response := &Message{}
		response.SetBytes(respBytes)
		result, err := req.Deserialize(response, serial, query)
		if err != nil {
			// Malformed responses are fatal, never retried (spec §6.1, §7).
			return nil, err
		}

		req.ApplyResult(result)
		return result, nil
	}
}

// tryProtocolFallback inspects err for the unsupported-protocol / unsupported-
// query-version signal. The first return value is only meaningful when
// handled is true: it reports whether the caller should retry immediately
// (downgrade succeeded, possibly performed by a racing request) or should
// rethrow err unchanged (fallback exhausted).
func (e *Executor) tryProtocolFallback(err error, serial SerialVersion, query QueryVersion) (retry bool, handled bool) {
	if e.DisableProtocolFallback {
		return false, false
	}

	switch {
	case IsKind(err, KindUnsupportedProtocol):
		return e.ProtocolHandler.DecrementSerialVersion(serial), true
	case IsKind(err, KindUnsupportedQueryVersion):
		return e.ProtocolHandler.DecrementQueryVersion(query), true
	default:
		return false, false
	}
}

// handleFailure records err on req, consults the retry policy, and either
// sleeps (returning nil to continue the loop) or returns the terminal error.
func (e *Executor) handleFailure(ctx context.Context, req Request, err error) error {
	req.AddException(err)

	if !req.ShouldRetryFlag() || !e.RetryPolicy.ShouldRetry(req) {
		return err
	}

	delay := e.RetryPolicy.ComputeDelay(req)
	elapsed := req.Timeout() - req.RemainingTimeout()

	if elapsed+delay > req.Timeout() {
		return NewTimeoutError(elapsed, req.RetryCount(), err)
	}

	if sleepErr := SleepContext(ctx, delay); sleepErr != nil {
		return Wrap(KindCancelled, sleepErr, "execute %s", req.OpCode())
	}

	req.IncrementRetryCount()
	return nil
}

func (e *Executor) clockOrDefault() Clock {
	if e.Clock != nil {
		return e.Clock
	}
	return SystemClock{}
}

func (e *Executor) transportOrDefault() Transport {
	return e.Transport
}

func (e *Executor) logf(level logging.Level, format string, args ...any) {
	if e.Log != nil {
		e.Log(level, format, args...)
	}
}
