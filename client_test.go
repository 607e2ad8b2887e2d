package nosqldb

import (
	"context"
	"testing"
	"time"

	"github.com/nosqldb/nosqldb-go/internal/protocol"
)

// scriptedTransport drives Client end-to-end tests against a scripted
// sequence of (response, error) pairs, one per call, repeating the last
// entry once exhausted.
type scriptedTransport struct {
	calls int
	steps []func(i int) ([]byte, error)
}

func (t *scriptedTransport) Do(ctx context.Context, opcode protocol.OpCode, serial protocol.SerialVersion, body []byte) ([]byte, error) {
	i := t.calls
	if i >= len(t.steps) {
		i = len(t.steps) - 1
	}
	t.calls++
	return t.steps[i](i)
}

func (t *scriptedTransport) Close() error { return nil }

func encodeGetResult(t *testing.T, found bool, value []byte, version []byte) []byte {
	t.Helper()
	m := &protocol.Message{}
	m.Init(64)
	writeZeroConsumed(m)
	m.WriteBool(found)
	if found {
		m.WriteOpaque(value)
		m.WriteOpaque(version)
		m.WritePackedInt64(0)
	}
	return m.Bytes()
}

func encodePutResult(t *testing.T, success bool, version, existingValue, existingVersion []byte) []byte {
	t.Helper()
	m := &protocol.Message{}
	m.Init(64)
	writeZeroConsumed(m)
	m.WriteBool(success)
	if success {
		m.WriteOpaque(version)
		return m.Bytes()
	}
	hasExisting := existingValue != nil
	m.WriteBool(hasExisting)
	if hasExisting {
		m.WriteOpaque(existingValue)
		m.WriteOpaque(existingVersion)
	}
	return m.Bytes()
}

func writeZeroConsumed(m *protocol.Message) {
	m.WritePackedInt32(0)
	m.WritePackedInt32(0)
	m.WritePackedInt32(0)
	m.WritePackedInt32(0)
}

func newTestClient(t *testing.T, transport protocol.Transport, opts ...Option) *Client {
	t.Helper()
	allOpts := append([]Option{WithTransport(transport), WithLogFunc(nil)}, opts...)
	c, err := New(allOpts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

// Scenario: unconditional put then get.
func TestClient_UnconditionalPutThenGet(t *testing.T) {
	transport := &scriptedTransport{steps: []func(int) ([]byte, error){
		func(int) ([]byte, error) { return encodePutResult(t, true, []byte("v1"), nil, nil), nil },
		func(int) ([]byte, error) { return encodeGetResult(t, true, []byte("row-bytes"), []byte("v1")), nil },
	}}
	client := newTestClient(t, transport)
	defer client.Close()

	putRes, err := client.Put(context.Background(), "orders", []byte("row-bytes"), PutOptions{})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if !putRes.Success {
		t.Fatal("expected put to succeed")
	}

	getRes, err := client.Get(context.Background(), "orders", []byte("key"), GetOptions{})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(getRes.Value) != "row-bytes" {
		t.Fatalf("unexpected value: %s", getRes.Value)
	}
}

// Scenario: conditional put-if-version failure returns the existing row.
func TestClient_PutIfVersionFailureReturnsExisting(t *testing.T) {
	transport := &scriptedTransport{steps: []func(int) ([]byte, error){
		func(int) ([]byte, error) {
			return encodePutResult(t, false, nil, []byte("current-row"), []byte("v2")), nil
		},
	}}
	client := newTestClient(t, transport)
	defer client.Close()

	res, err := client.Put(context.Background(), "orders", []byte("new-row"), PutOptions{
		Option:         PutIfVersion,
		MatchVersion:   Version("v1"),
		ReturnExisting: true,
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if res.Success {
		t.Fatal("expected the conditional put to fail")
	}
	if string(res.ExistingValue) != "current-row" {
		t.Fatalf("expected the existing row to be returned, got %s", res.ExistingValue)
	}
}

// Scenario: protocol fallback on the first call.
func TestClient_ProtocolFallbackOnFirstCall(t *testing.T) {
	transport := &scriptedTransport{steps: []func(int) ([]byte, error){
		func(int) ([]byte, error) {
			return nil, protocol.NewError(protocol.KindUnsupportedProtocol, "server rejects serial 4")
		},
		func(int) ([]byte, error) { return encodeGetResult(t, false, nil, nil), nil },
	}}
	client := newTestClient(t, transport)
	defer client.Close()

	res, err := client.Get(context.Background(), "orders", []byte("key"), GetOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Value != nil {
		t.Fatal("expected not-found")
	}
}

// Scenario: retry exhaustion under throttling.
func TestClient_RetryExhaustionUnderThrottling(t *testing.T) {
	throttled := func(int) ([]byte, error) {
		return nil, protocol.NewNoSQLError(protocol.KindRetryableNoSQL, protocol.SubKindReadThrottle, "read throttled")
	}
	transport := &scriptedTransport{steps: []func(int) ([]byte, error){throttled, throttled, throttled, throttled}}
	client := newTestClient(t, transport, WithMaxRetryAttempts(2), WithBaseDelay(time.Millisecond))
	defer client.Close()

	_, err := client.Get(context.Background(), "orders", []byte("key"), GetOptions{Timeout: time.Hour})
	if IsKind(err, KindTimeout) {
		t.Fatalf("expected the throttling error, not a timeout: %v", err)
	}
	if SubKindOf(err) != SubKindReadThrottle {
		t.Fatalf("expected a read-throttle error, got %v", err)
	}
}

// Scenario: deadline truncation.
func TestClient_DeadlineTruncation(t *testing.T) {
	throttled := func(int) ([]byte, error) {
		return nil, protocol.NewNoSQLError(protocol.KindRetryableNoSQL, protocol.SubKindReadThrottle, "read throttled")
	}
	transport := &scriptedTransport{steps: []func(int) ([]byte, error){throttled}}
	client := newTestClient(t, transport, WithMaxRetryAttempts(100), WithBaseDelay(400*time.Millisecond))
	defer client.Close()

	_, err := client.Get(context.Background(), "orders", []byte("key"), GetOptions{Timeout: time.Second})
	if !IsKind(err, KindTimeout) {
		t.Fatalf("expected a timeout error, got %v", err)
	}
}

// Scenario: paged delete-range.
func TestClient_PagedDeleteRange(t *testing.T) {
	page := func(deleted int32, continuation []byte) func(int) ([]byte, error) {
		return func(int) ([]byte, error) {
			m := &protocol.Message{}
			m.Init(64)
			writeZeroConsumed(m)
			m.WritePackedInt32(deleted)
			m.WriteOpaque(continuation)
			return m.Bytes(), nil
		}
	}
	transport := &scriptedTransport{steps: []func(int) ([]byte, error){
		page(20, []byte("cursor-1")),
		page(7, nil),
	}}
	client := newTestClient(t, transport)
	defer client.Close()

	it := client.NewDeleteRangeIterator("orders", []byte("shard-key"), DeleteRangeOptions{})
	total := int32(0)
	for !it.Done() {
		n, _, err := it.Next(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		total += n
	}
	if total != 27 {
		t.Fatalf("expected 27 total deletions across pages, got %d", total)
	}
}

func TestClient_CloseIsIdempotentAndDisposesOperations(t *testing.T) {
	transport := &scriptedTransport{steps: []func(int) ([]byte, error){
		func(int) ([]byte, error) { return encodeGetResult(t, false, nil, nil), nil },
	}}
	client := newTestClient(t, transport)

	if err := client.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("second close should be a no-op, got: %v", err)
	}

	_, err := client.Get(context.Background(), "orders", []byte("key"), GetOptions{})
	if err != ErrDisposed {
		t.Fatalf("expected ErrDisposed, got %v", err)
	}
}
