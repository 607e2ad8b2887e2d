package protocol

import (
	"context"
	"time"

	"github.com/nosqldb/nosqldb-go/logging"
)

// Waiter drives the DDL Completion Waiter (spec §4.5): it polls GetTable or
// GetAdminStatus on a fixed interval, bounded by an overall poll timeout,
// until the target state is reached.
type Waiter struct {
	Executor *Executor
	Clock    Clock
	Log      logging.Func
}

func (w *Waiter) clockOrDefault() Clock {
	if w.Clock != nil {
		return w.Clock
	}
	return SystemClock{}
}

func (w *Waiter) logf(level logging.Level, format string, args ...any) {
	if w.Log != nil {
		w.Log(level, format, args...)
	}
}

// pollRequestTimeout returns the timeout for a single poll attempt: the
// request's default, capped by whatever's left of the overall poll budget
// (spec §4.5).
func pollRequestTimeout(remaining time.Duration) time.Duration {
	if remaining < DefaultPollRequestTimeout {
		return remaining
	}
	return DefaultPollRequestTimeout
}

// WaitForTable polls GetTableRequest until its state matches target, or
// until pollTimeout elapses. initialState is the table's state as observed
// by the request that started the DDL operation (e.g. CREATING); it governs
// the special-cased table-not-found tolerance described in spec §4.5.
func (w *Waiter) WaitForTable(ctx context.Context, req *GetTableRequest, initialState TableState, target TableState, pollTimeout, pollDelay time.Duration) (*TableResult, error) {
	if pollDelay <= 0 {
		pollDelay = DefaultTablePollDelay
	}

	clock := w.clockOrDefault()
	start := clock.Now()

	for {
		elapsed := Elapsed(clock, start)
		remaining := pollTimeout - elapsed
		if remaining <= 0 {
			return nil, NewTimeoutError(elapsed, 0, NewError(KindTimeout, "timed out waiting for table %q to reach state %s", req.TableName, target))
		}

		poll := &GetTableRequest{
			CompartmentID: req.CompartmentID,
			NamespaceName: req.NamespaceName,
			TableName:     req.TableName,
			OperationID:   req.OperationID,
		}
		poll.SetShouldRetry(false)

		pollCtx, cancel := context.WithTimeout(ctx, pollRequestTimeout(remaining))
		res, err := w.Executor.Execute(pollCtx, poll)
		cancel()

		if err != nil {
			notFound := IsKind(err, KindNonRetryableNoSQL) && SubKindOf(err) == SubKindTableNotFound
			if notFound {
				if target == TableDropped {
					return &TableResult{TableName: req.TableName, State: TableDropped}, nil
				}
				if initialState == TableUnknown {
					if sleepErr := w.sleep(ctx, pollDelay); sleepErr != nil {
						return nil, sleepErr
					}
					continue
				}
			}
			return nil, err
		}

		table := res.(*TableResult)
		if table.State == target {
			return table, nil
		}

		w.logf(logging.Debug, "waiting for table %q: state %s, want %s", req.TableName, table.State, target)
		if sleepErr := w.sleep(ctx, pollDelay); sleepErr != nil {
			return nil, sleepErr
		}
	}
}

// WaitForAdmin polls SystemStatusRequest until the operation reaches
// AdminComplete, or until pollTimeout elapses.
func (w *Waiter) WaitForAdmin(ctx context.Context, req *SystemStatusRequest, pollTimeout, pollDelay time.Duration) (*SystemResult, error) {
	if pollDelay <= 0 {
		pollDelay = DefaultTablePollDelay
	}

	clock := w.clockOrDefault()
	start := clock.Now()

	for {
		elapsed := Elapsed(clock, start)
		remaining := pollTimeout - elapsed
		if remaining <= 0 {
			return nil, NewTimeoutError(elapsed, 0, NewError(KindTimeout, "timed out waiting for admin operation %q to complete", req.OperationID))
		}

		poll := &SystemStatusRequest{OperationID: req.OperationID, Statement: req.Statement}
		poll.SetShouldRetry(false)

		pollCtx, cancel := context.WithTimeout(ctx, pollRequestTimeout(remaining))
		res, err := w.Executor.Execute(pollCtx, poll)
		cancel()
		if err != nil {
			return nil, err
		}

		status := res.(*SystemResult)
		if status.State == AdminComplete {
			return status, nil
		}

		w.logf(logging.Debug, "waiting for admin operation %q: state %s", req.OperationID, status.State)
		if sleepErr := w.sleep(ctx, pollDelay); sleepErr != nil {
			return nil, sleepErr
		}
	}
}

func (w *Waiter) sleep(ctx context.Context, d time.Duration) error {
	if err := SleepContext(ctx, d); err != nil {
		return Wrap(KindCancelled, err, "wait for completion")
	}
	return nil
}
