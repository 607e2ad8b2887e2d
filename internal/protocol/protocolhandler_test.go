package protocol

import (
	"sync"
	"testing"
)

func TestProtocolHandler_DecrementSerialVersion_DecreasesOrFails(t *testing.T) {
	h := NewProtocolHandler()
	serial, query := h.Snapshot()
	if serial != SerialVersion4 || query != QueryVersion4 {
		t.Fatalf("expected initial versions to be the newest, got serial=%d query=%d", serial, query)
	}

	ok := h.DecrementSerialVersion(SerialVersion4)
	if !ok {
		t.Fatal("expected first decrement from the newest family to succeed")
	}
	newSerial, newQuery := h.Snapshot()
	if newSerial != SerialVersion3 {
		t.Fatalf("expected serial version to strictly decrease, got %d", newSerial)
	}
	if newQuery > QueryVersion3 {
		t.Fatalf("expected query version aligned to fallback max, got %d", newQuery)
	}

	// No further family to fall back to.
	ok = h.DecrementSerialVersion(SerialVersion3)
	if ok {
		t.Fatal("expected decrement to fail once the oldest family is reached")
	}
}

func TestProtocolHandler_DecrementSerialVersion_RaceGuard(t *testing.T) {
	h := NewProtocolHandler()

	// Simulate a concurrent downgrade that already happened.
	h.DecrementSerialVersion(SerialVersion4)

	// A caller that captured SerialVersion4 before the downgrade retries
	// with the stale "used" value; it must be told to retry with current.
	ok := h.DecrementSerialVersion(SerialVersion4)
	if !ok {
		t.Fatal("expected true: the handle already moved past the used version")
	}
	serial, _ := h.Snapshot()
	if serial != SerialVersion3 {
		t.Fatalf("a stale-used decrement must not downgrade further, got %d", serial)
	}
}

func TestProtocolHandler_ConcurrentDecrements_AtMostOneDowngrade(t *testing.T) {
	h := NewProtocolHandler()

	const n = 50
	var wg sync.WaitGroup
	successes := make([]bool, n)

	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			successes[i] = h.DecrementSerialVersion(SerialVersion4)
		}(i)
	}
	wg.Wait()

	for i, ok := range successes {
		if !ok {
			t.Fatalf("goroutine %d: expected success (either real downgrade or race-guard true)", i)
		}
	}

	serial, query := h.Snapshot()
	if serial != SerialVersion3 {
		t.Fatalf("expected exactly one downgrade to have taken effect, got serial=%d", serial)
	}
	if query > QueryVersion3 {
		t.Fatalf("expected query version capped at the fallback family's max, got %d", query)
	}
}

func TestProtocolHandler_HasProtocolChanged(t *testing.T) {
	h := NewProtocolHandler()
	serial, query := h.Snapshot()

	if h.HasProtocolChanged(serial, query) {
		t.Fatal("expected no change immediately after snapshot")
	}

	h.DecrementSerialVersion(serial)

	if !h.HasProtocolChanged(serial, query) {
		t.Fatal("expected change to be detected after a downgrade")
	}
}
