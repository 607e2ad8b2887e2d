package protocol

import (
	"context"
	"testing"
	"time"
)

// tableStateTransport scripts a sequence of table states (or a
// table-not-found error) returned by successive GetTable polls.
type tableStateTransport struct {
	states []TableState
	notFoundFirst int // number of leading table-not-found responses
	calls  int
}

func (t *tableStateTransport) Do(ctx context.Context, opcode OpCode, serial SerialVersion, body []byte) ([]byte, error) {
	i := t.calls
	t.calls++

	if i < t.notFoundFirst {
		return nil, NewNoSQLError(KindNonRetryableNoSQL, SubKindTableNotFound, "table not found")
	}
	idx := i - t.notFoundFirst
	if idx >= len(t.states) {
		idx = len(t.states) - 1
	}

	m := &Message{}
	m.Init(64)
	m.WriteString("")
	m.WriteString("orders")
	if err := m.WriteByte(byte(t.states[idx])); err != nil {
		return nil, err
	}
	m.WriteString("")
	m.WriteBool(false)
	m.WriteString("opid")
	m.WriteString("etag")
	return m.Bytes(), nil
}

func (t *tableStateTransport) Close() error { return nil }

func newWaiterExecutor(transport Transport) *Executor {
	return &Executor{
		Transport:       transport,
		ProtocolHandler: NewProtocolHandler(),
		RetryPolicy:     NoRetryPolicy,
		RateLimiter:     NoopRateLimiter,
		Clock:           SystemClock{},
	}
}

func TestWaiter_WaitForTable_ReachesTarget(t *testing.T) {
	transport := &tableStateTransport{states: []TableState{TableCreating, TableCreating, TableActive}}
	waiter := &Waiter{Executor: newWaiterExecutor(transport)}

	req := &GetTableRequest{TableName: "orders"}
	result, err := waiter.WaitForTable(context.Background(), req, TableCreating, TableActive, 5*time.Second, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != TableActive {
		t.Fatalf("expected ACTIVE, got %s", result.State)
	}
}

func TestWaiter_WaitForTable_UnknownInitialStateTolerate_NotFound(t *testing.T) {
	transport := &tableStateTransport{notFoundFirst: 2, states: []TableState{TableActive}}
	waiter := &Waiter{Executor: newWaiterExecutor(transport)}

	req := &GetTableRequest{TableName: "orders"}
	result, err := waiter.WaitForTable(context.Background(), req, TableUnknown, TableActive, 5*time.Second, 5*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != TableActive {
		t.Fatalf("expected ACTIVE, got %s", result.State)
	}
}

func TestWaiter_WaitForTable_DroppedTargetTreatsNotFoundAsSuccess(t *testing.T) {
	transport := &tableStateTransport{notFoundFirst: 1}
	waiter := &Waiter{Executor: newWaiterExecutor(transport)}

	req := &GetTableRequest{TableName: "orders"}
	result, err := waiter.WaitForTable(context.Background(), req, TableDropping, TableDropped, 5*time.Second, 5*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != TableDropped {
		t.Fatalf("expected DROPPED, got %s", result.State)
	}
}

func TestWaiter_WaitForTable_TimesOut(t *testing.T) {
	transport := &tableStateTransport{states: []TableState{TableCreating}}
	waiter := &Waiter{Executor: newWaiterExecutor(transport)}

	req := &GetTableRequest{TableName: "orders"}
	_, err := waiter.WaitForTable(context.Background(), req, TableCreating, TableActive, 30*time.Millisecond, 10*time.Millisecond)
	if !IsKind(err, KindTimeout) {
		t.Fatalf("expected a timeout error, got %v", err)
	}
}

// adminStateTransport scripts a sequence of admin states.
type adminStateTransport struct {
	states []AdminState
	calls  int
}

func (t *adminStateTransport) Do(ctx context.Context, opcode OpCode, serial SerialVersion, body []byte) ([]byte, error) {
	i := t.calls
	t.calls++
	if i >= len(t.states) {
		i = len(t.states) - 1
	}

	m := &Message{}
	m.Init(64)
	m.WriteString("opid")
	if err := m.WriteByte(byte(t.states[i])); err != nil {
		return nil, err
	}
	m.WriteString("CREATE NAMESPACE ns")
	m.WriteString("{}")
	return m.Bytes(), nil
}

func (t *adminStateTransport) Close() error { return nil }

func TestWaiter_WaitForAdmin_ReachesComplete(t *testing.T) {
	transport := &adminStateTransport{states: []AdminState{AdminInProgress, AdminInProgress, AdminComplete}}
	waiter := &Waiter{Executor: newWaiterExecutor(transport)}

	req := &SystemStatusRequest{OperationID: "opid"}
	result, err := waiter.WaitForAdmin(context.Background(), req, 5*time.Second, 5*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != AdminComplete {
		t.Fatalf("expected COMPLETE, got %s", result.State)
	}
}
