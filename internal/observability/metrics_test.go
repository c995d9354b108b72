package observability

import (
	"sync"
	"testing"
)

func TestRecordTurnCounts(t *testing.T) {
	m := NewMetrics()
	m.RecordTurn("showing_solution")
	m.RecordTurn("showing_solution")
	m.RecordTurn("completed")

	if got := m.TurnCount("showing_solution"); got != 2 {
		t.Fatalf("expected 2 turns, got %d", got)
	}
	if got := m.TurnCount("completed"); got != 1 {
		t.Fatalf("expected 1 turn, got %d", got)
	}
	if got := m.TurnCount("never_seen"); got != 0 {
		t.Fatalf("expected 0 turns, got %d", got)
	}
}

func TestMetricsNilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/api/chat", "POST", 200, 0)
	m.RecordError("/api/chat", "POST", "VALIDATION_FAILED")
	m.RecordTurn("completed")
	if m.TurnCount("completed") != 0 {
		t.Fatal("nil metrics must report zero")
	}
}

func TestRecordTurnConcurrent(t *testing.T) {
	m := NewMetrics()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordTurn("completed")
		}()
	}
	wg.Wait()
	if got := m.TurnCount("completed"); got != 20 {
		t.Fatalf("expected 20 turns, got %d", got)
	}
}
