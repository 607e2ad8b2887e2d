package protocol

import (
	"context"
	"testing"
)

func encodeListTablesPage(names []string, nextIndex int32) []byte {
	m := &Message{}
	m.Init(64)
	m.WriteUnpackedInt32(int32(len(names)))
	for _, n := range names {
		m.WriteString(n)
	}
	m.WriteUnpackedInt32(nextIndex)
	return m.Bytes()
}

type scriptedBytesTransport struct {
	pages [][]byte
	calls int
}

func (t *scriptedBytesTransport) Do(ctx context.Context, opcode OpCode, serial SerialVersion, body []byte) ([]byte, error) {
	i := t.calls
	if i >= len(t.pages) {
		i = len(t.pages) - 1
	}
	t.calls++
	return t.pages[i], nil
}

func (t *scriptedBytesTransport) Close() error { return nil }

func newIterExecutor(transport Transport) *Executor {
	return &Executor{
		Transport:       transport,
		ProtocolHandler: NewProtocolHandler(),
		RetryPolicy:     NoRetryPolicy,
		RateLimiter:     NoopRateLimiter,
		Clock:           SystemClock{},
	}
}

func TestListTablesIterator_StopsOnShortPage(t *testing.T) {
	transport := &scriptedBytesTransport{pages: [][]byte{
		encodeListTablesPage([]string{"a", "b"}, 2),
		encodeListTablesPage([]string{"c"}, 3),
	}}
	it := NewListTablesIterator(newIterExecutor(transport), &ListTablesRequest{Limit: 2})

	names, done, err := it.Next(context.Background())
	if err != nil || done || len(names) != 2 {
		t.Fatalf("unexpected first page: names=%v done=%v err=%v", names, done, err)
	}

	names, done, err = it.Next(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 1 {
		t.Fatalf("expected short final page, got %v", names)
	}

	names, done, err = it.Next(context.Background())
	if err != nil || !done || len(names) != 0 {
		t.Fatalf("expected the iterator to report done with no further names, got %v done=%v err=%v", names, done, err)
	}
}

func encodeDeleteRangePage(deleted int32, continuation []byte) []byte {
	m := &Message{}
	m.Init(64)
	writeConsumed(m, Consumed{})
	m.WritePackedInt32(deleted)
	m.WriteOpaque(continuation)
	return m.Bytes()
}

func TestDeleteRangeIterator_StopsOnNilContinuation(t *testing.T) {
	transport := &scriptedBytesTransport{pages: [][]byte{
		encodeDeleteRangePage(10, []byte("cursor-1")),
		encodeDeleteRangePage(5, nil),
	}}
	it := NewDeleteRangeIterator(newIterExecutor(transport), &MultiDeleteRequest{TableName: "orders", PartialKey: []byte("k")})

	deleted, done, err := it.Next(context.Background())
	if err != nil || done || deleted != 10 {
		t.Fatalf("unexpected first page: deleted=%d done=%v err=%v", deleted, done, err)
	}
	if it.Done() {
		t.Fatal("expected iterator not yet done")
	}

	deleted, done, err = it.Next(context.Background())
	if err != nil || deleted != 5 {
		t.Fatalf("unexpected second page: deleted=%d err=%v", deleted, err)
	}
	if !it.Done() {
		t.Fatal("expected iterator done after nil continuation")
	}
}

func encodePreparedBlock(m *Message, table string, plan, proxy []byte, topo int32) {
	m.WriteString(table)
	m.WriteOpaque(plan)
	m.WriteOpaque(proxy)
	m.WritePackedInt32(topo)
}

func encodeQueryPage(prepared bool, table string, rows [][]byte, continuation []byte) []byte {
	m := &Message{}
	m.Init(128)
	writeConsumed(m, Consumed{})
	m.WriteBool(prepared)
	if prepared {
		encodePreparedBlock(m, table, nil, []byte("proxy"), 1)
	}
	m.WritePackedInt32(int32(len(rows)))
	for _, r := range rows {
		m.WriteOpaque(r)
	}
	if continuation != nil {
		m.WriteBool(true)
		m.WriteOpaque(continuation)
		m.WriteOpaque(nil)
	} else {
		m.WriteBool(false)
	}
	return m.Bytes()
}

func TestQueryIterator_ImplicitPrepareSkipsEmptyFirstPage(t *testing.T) {
	transport := &scriptedBytesTransport{pages: [][]byte{
		encodeQueryPage(true, "orders", nil, []byte("cursor-1")),
		encodeQueryPage(false, "", [][]byte{[]byte("row-1"), []byte("row-2")}, nil),
	}}
	it := NewQueryIterator(newIterExecutor(transport), &QueryRequest{Statement: "select * from orders"})

	rows, done, err := it.Next(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !done || len(rows) != 2 {
		t.Fatalf("expected the implicit-prepare page to be skipped and real rows returned, got rows=%v done=%v", rows, done)
	}
	if !it.Done() {
		t.Fatal("expected the iterator done after a nil continuation")
	}
}

func TestQueryIterator_PrePreparedStatementReturnsRowsImmediately(t *testing.T) {
	transport := &scriptedBytesTransport{pages: [][]byte{
		encodeQueryPage(false, "", [][]byte{[]byte("row-1")}, nil),
	}}
	req := &QueryRequest{Prepared: &PreparedStatement{TableName: "orders"}}
	it := NewQueryIterator(newIterExecutor(transport), req)

	rows, done, err := it.Next(context.Background())
	if err != nil || !done || len(rows) != 1 {
		t.Fatalf("unexpected page: rows=%v done=%v err=%v", rows, done, err)
	}
}
