package ensemble

import (
	"strings"
	"testing"
	"time"
)

func TestLedgerEvictsOldestBeyondCap(t *testing.T) {
	l := NewHistoryLedger(5)
	for i := 0; i < 8; i++ {
		l.Record(HistoryEntry{Timestamp: time.Unix(int64(i), 0)})
	}

	if l.Len() != 5 {
		t.Fatalf("expected 5 retained entries, got %d", l.Len())
	}
	entries := l.Recent(100)
	if len(entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(entries))
	}
	// Oldest three dropped; newest-last ordering.
	if entries[0].Timestamp.Unix() != 3 {
		t.Errorf("expected oldest retained entry at t=3, got t=%d", entries[0].Timestamp.Unix())
	}
	if entries[4].Timestamp.Unix() != 7 {
		t.Errorf("expected newest entry at t=7, got t=%d", entries[4].Timestamp.Unix())
	}
}

func TestLedgerRecentLimit(t *testing.T) {
	l := NewHistoryLedger(10)
	for i := 0; i < 6; i++ {
		l.Record(HistoryEntry{Timestamp: time.Unix(int64(i), 0)})
	}

	recent := l.Recent(2)
	if len(recent) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(recent))
	}
	if recent[0].Timestamp.Unix() != 4 || recent[1].Timestamp.Unix() != 5 {
		t.Errorf("expected entries t=4,5 newest-last, got t=%d,%d",
			recent[0].Timestamp.Unix(), recent[1].Timestamp.Unix())
	}
}

func TestLedgerLast(t *testing.T) {
	l := NewHistoryLedger(10)
	if _, ok := l.Last(); ok {
		t.Error("expected no last entry on empty ledger")
	}
	l.Record(HistoryEntry{Reason: "first"})
	l.Record(HistoryEntry{Reason: "second"})
	last, ok := l.Last()
	if !ok || last.Reason != "second" {
		t.Errorf("expected newest entry, got %+v ok=%v", last, ok)
	}
}

func TestChangeReason(t *testing.T) {
	base := DefaultWeights()

	t.Run("stable below threshold", func(t *testing.T) {
		after := base
		after.RuleBased += 0.015
		after.AnomalyModel -= 0.015
		if got := changeReason(base, after); got != ReasonStable {
			t.Errorf("expected stable reason, got %q", got)
		}
	})

	t.Run("single increase", func(t *testing.T) {
		after := base
		after.RuleBased += 0.03
		got := changeReason(base, after)
		if got != "ruleBased ↑ 3.0%" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("mixed changes joined by commas", func(t *testing.T) {
		after := base
		after.RuleBased += 0.05
		after.Projection -= 0.025
		got := changeReason(base, after)
		if !strings.Contains(got, "ruleBased ↑ 5.0%") {
			t.Errorf("missing rule-based change in %q", got)
		}
		if !strings.Contains(got, "projection ↓ 2.5%") {
			t.Errorf("missing projection change in %q", got)
		}
		if !strings.Contains(got, ", ") {
			t.Errorf("expected comma-joined parts in %q", got)
		}
	})
}
