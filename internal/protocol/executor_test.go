package protocol

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeResult is a trivial Result used by the executor tests.
type fakeResult struct{ ok bool }

func (fakeResult) isResult() {}

// fakeRequest is a minimal Request implementation driving the executor
// through its contract without any real wire encoding.
type fakeRequest struct {
	RequestBase
	opcode      OpCode
	timeout     time.Duration
	validateErr error
	applied     Result
}

func (r *fakeRequest) OpCode() OpCode           { return r.opcode }
func (r *fakeRequest) Validate() error          { return r.validateErr }
func (r *fakeRequest) Timeout() time.Duration   { return r.timeout }
func (r *fakeRequest) ApplyResult(res Result)   { r.applied = res }
func (r *fakeRequest) Serialize(w *Message, serial SerialVersion, query QueryVersion) error {
	w.WriteString("fake")
	return nil
}
func (r *fakeRequest) Deserialize(m *Message, serial SerialVersion, query QueryVersion) (Result, error) {
	return fakeResult{ok: true}, nil
}

// scriptedTransport returns a scripted sequence of (body, err) pairs, one
// per call, then repeats the last entry.
type scriptedTransport struct {
	calls int
	steps []func(int) ([]byte, error)
}

func (t *scriptedTransport) Do(ctx context.Context, opcode OpCode, serial SerialVersion, body []byte) ([]byte, error) {
	i := t.calls
	if i >= len(t.steps) {
		i = len(t.steps) - 1
	}
	t.calls++
	return t.steps[i](t.calls - 1)
}

func (t *scriptedTransport) Close() error { return nil }

func newExecutor(transport Transport, retryPolicy RetryPolicy) *Executor {
	return &Executor{
		Transport:       transport,
		ProtocolHandler: NewProtocolHandler(),
		RetryPolicy:     retryPolicy,
		RateLimiter:     NoopRateLimiter,
		Clock:           SystemClock{},
	}
}

func TestExecutor_SuccessOnFirstAttempt(t *testing.T) {
	transport := &scriptedTransport{steps: []func(int) ([]byte, error){
		func(int) ([]byte, error) { return []byte("ok"), nil },
	}}
	e := newExecutor(transport, NewDefaultRetryPolicy(RetryPolicyConfig{}))

	req := &fakeRequest{opcode: OpGet, timeout: time.Second}
	result, err := e.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.(fakeResult).ok != true {
		t.Fatal("expected ok result")
	}
	if req.applied == nil {
		t.Fatal("expected ApplyResult to be invoked")
	}
	if req.RetryCount() != 0 {
		t.Fatalf("expected 0 retries, got %d", req.RetryCount())
	}
}

func TestExecutor_ValidateFailsFastWithoutIO(t *testing.T) {
	transport := &scriptedTransport{steps: []func(int) ([]byte, error){
		func(int) ([]byte, error) { t.Fatal("transport should not be called"); return nil, nil },
	}}
	e := newExecutor(transport, NewDefaultRetryPolicy(RetryPolicyConfig{}))

	req := &fakeRequest{opcode: OpGet, timeout: time.Second, validateErr: NewError(KindArgument, "bad arg")}
	_, err := e.Execute(context.Background(), req)
	if !IsKind(err, KindArgument) {
		t.Fatalf("expected argument error, got %v", err)
	}
}

func TestExecutor_ProtocolFallback_DoesNotCountAgainstRetryBudget(t *testing.T) {
	calls := 0
	transport := &scriptedTransport{steps: []func(int) ([]byte, error){
		func(int) ([]byte, error) {
			calls++
			return nil, NewError(KindUnsupportedProtocol, "server rejects serial 4")
		},
		func(int) ([]byte, error) { return []byte("ok"), nil },
	}}
	e := newExecutor(transport, NewDefaultRetryPolicy(RetryPolicyConfig{}))

	req := &fakeRequest{opcode: OpGet, timeout: 5 * time.Second}
	result, err := e.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil {
		t.Fatal("expected a successful result after fallback")
	}
	if req.RetryCount() != 0 {
		t.Fatalf("expected fallback not to count as a retry, got %d", req.RetryCount())
	}
	serial, _ := e.ProtocolHandler.Snapshot()
	if serial != SerialVersion3 {
		t.Fatalf("expected the handle to have downgraded to serial version 3, got %d", serial)
	}
}

func TestExecutor_RetryExhaustion_RaisesLastExceptionNotTimeout(t *testing.T) {
	throttled := func(int) ([]byte, error) {
		return nil, NewNoSQLError(KindRetryableNoSQL, SubKindReadThrottle, "read throttled")
	}
	transport := &scriptedTransport{steps: []func(int) ([]byte, error){throttled, throttled, throttled, throttled}}
	e := newExecutor(transport, NewDefaultRetryPolicy(RetryPolicyConfig{MaxRetryAttempts: 3, BaseDelay: time.Millisecond}))

	req := &fakeRequest{opcode: OpGet, timeout: time.Hour}
	_, err := e.Execute(context.Background(), req)
	if IsKind(err, KindTimeout) {
		t.Fatalf("expected the throttling error to surface, not a timeout: %v", err)
	}
	if SubKindOf(err) != SubKindReadThrottle {
		t.Fatalf("expected the last exception to be the read-throttle error, got %v", err)
	}
	if req.RetryCount() != 3 {
		t.Fatalf("expected retryCount == 3, got %d", req.RetryCount())
	}
}

func TestExecutor_DeadlineTruncation_RaisesTimeoutChainingLastCause(t *testing.T) {
	throttled := func(int) ([]byte, error) {
		return nil, NewNoSQLError(KindRetryableNoSQL, SubKindReadThrottle, "read throttled")
	}
	transport := &scriptedTransport{steps: []func(int) ([]byte, error){throttled}}
	e := newExecutor(transport, NewDefaultRetryPolicy(RetryPolicyConfig{MaxRetryAttempts: 100, BaseDelay: 400 * time.Millisecond}))

	req := &fakeRequest{opcode: OpGet, timeout: time.Second}
	_, err := e.Execute(context.Background(), req)
	if !IsKind(err, KindTimeout) {
		t.Fatalf("expected a timeout error, got %v", err)
	}
	var nerr *Error
	if ok := errors.As(err, &nerr); !ok || SubKindOf(nerr.Cause) != SubKindReadThrottle {
		t.Fatalf("expected the timeout's cause to be the last read-throttle exception, got %v", err)
	}
}

func TestExecutor_CancellationSurfacesCancelledNotTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	transport := &scriptedTransport{steps: []func(int) ([]byte, error){
		func(int) ([]byte, error) { t.Fatal("transport should not be called on an already-cancelled context"); return nil, nil },
	}}
	e := newExecutor(transport, NewDefaultRetryPolicy(RetryPolicyConfig{}))

	req := &fakeRequest{opcode: OpGet, timeout: time.Hour}
	_, err := e.Execute(ctx, req)
	if !IsKind(err, KindCancelled) {
		t.Fatalf("expected a cancellation error, got %v", err)
	}
}
