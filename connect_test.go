package nosqldb

import (
	"context"
	"testing"
	"time"

	"github.com/nosqldb/nosqldb-go/internal/protocol"
)

func encodeTableActive(t *testing.T, tableName string) []byte {
	t.Helper()
	m := &protocol.Message{}
	m.Init(64)
	m.WriteString("")
	m.WriteString(tableName)
	if err := m.WriteByte(byte(protocol.TableActive)); err != nil {
		t.Fatalf("write table state: %v", err)
	}
	m.WriteString("")
	m.WriteBool(false)
	m.WriteString("")
	m.WriteString("")
	return m.Bytes()
}

func TestClient_WaitReady_SucceedsOnTableNotFound(t *testing.T) {
	transport := &scriptedTransport{steps: []func(int) ([]byte, error){
		func(int) ([]byte, error) {
			return nil, protocol.NewNoSQLError(protocol.KindNonRetryableNoSQL, protocol.SubKindTableNotFound, "table not found")
		},
	}}
	client := newTestClient(t, transport)
	defer client.Close()

	if err := client.WaitReady(context.Background(), "__probe", WaitReadyOptions{}); err != nil {
		t.Fatalf("expected table-not-found to count as ready, got: %v", err)
	}
}

func TestClient_WaitReady_SucceedsWhenTableFound(t *testing.T) {
	transport := &scriptedTransport{steps: []func(int) ([]byte, error){
		func(int) ([]byte, error) { return encodeTableActive(t, "__probe"), nil },
	}}
	client := newTestClient(t, transport)
	defer client.Close()

	if err := client.WaitReady(context.Background(), "__probe", WaitReadyOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_WaitReady_RetriesTransientNetworkErrorThenSucceeds(t *testing.T) {
	attempt := 0
	transport := &scriptedTransport{steps: []func(int) ([]byte, error){
		func(int) ([]byte, error) {
			attempt++
			return nil, protocol.NewError(protocol.KindRetryableNetwork, "connection refused")
		},
		func(int) ([]byte, error) { return encodeTableActive(t, "__probe"), nil },
	}}
	client := newTestClient(t, transport, WithMaxRetryAttempts(0))
	defer client.Close()

	opts := WaitReadyOptions{BackoffFactor: time.Millisecond, BackoffCap: 5 * time.Millisecond, RetryLimit: 5}
	if err := client.WaitReady(context.Background(), "__probe", opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempt == 0 {
		t.Fatal("expected at least one failed attempt before success")
	}
}
