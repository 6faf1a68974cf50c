package ensemble

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// ReasonStable is recorded when no component moved more than the
// significance threshold during an adaptation.
const ReasonStable = "Weights stable - no significant changes detected"

// significantChange is the absolute per-component change that qualifies
// for an explicit mention in the history reason.
const significantChange = 0.02

// HistoryEntry is one committed adaptation, override, or reset.
type HistoryEntry struct {
	Timestamp         time.Time    `json:"timestamp"`
	Weights           WeightVector `json:"weights"`
	AggregateAccuracy float64      `json:"aggregate_accuracy"`
	CalibrationProxy  float64      `json:"calibration_proxy"`
	DriftScore        float64      `json:"drift_score"`
	Reason            string       `json:"reason"`
}

// HistoryLedger is a bounded, append-only record of past adaptations.
// Once the cap is exceeded the oldest entries are dropped first.
type HistoryLedger struct {
	cap     int
	entries []HistoryEntry
}

// NewHistoryLedger creates a ledger holding at most cap entries.
func NewHistoryLedger(cap int) *HistoryLedger {
	if cap <= 0 {
		cap = 200
	}
	return &HistoryLedger{cap: cap}
}

// Cap returns the ledger's maximum size.
func (l *HistoryLedger) Cap() int { return l.cap }

// Len returns the number of retained entries.
func (l *HistoryLedger) Len() int { return len(l.entries) }

// Record appends an entry, evicting the oldest once the cap is exceeded.
func (l *HistoryLedger) Record(entry HistoryEntry) {
	l.entries = append(l.entries, entry)
	if len(l.entries) > l.cap {
		l.entries = l.entries[len(l.entries)-l.cap:]
	}
}

// Recent returns the most recent limit entries, newest-last. A
// non-positive or oversized limit returns everything retained.
func (l *HistoryLedger) Recent(limit int) []HistoryEntry {
	if limit <= 0 || limit > len(l.entries) {
		limit = len(l.entries)
	}
	out := make([]HistoryEntry, limit)
	copy(out, l.entries[len(l.entries)-limit:])
	return out
}

// Last returns the newest entry, if any.
func (l *HistoryLedger) Last() (HistoryEntry, bool) {
	if len(l.entries) == 0 {
		return HistoryEntry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// changeReason describes the committed vector relative to the
// pre-adaptation vector. Components that moved more than 2% are listed
// with direction and magnitude; otherwise the stable reason is used.
func changeReason(before, after WeightVector) string {
	names := [4]string{"ruleBased", "anomalyModel", "projection", "interaction"}
	b := before.asList()
	a := after.asList()

	var parts []string
	for i := range names {
		diff := a[i] - b[i]
		if math.Abs(diff) <= significantChange {
			continue
		}
		arrow := "↑"
		if diff < 0 {
			arrow = "↓"
		}
		parts = append(parts, fmt.Sprintf("%s %s %.1f%%", names[i], arrow, math.Abs(diff)*100))
	}
	if len(parts) == 0 {
		return ReasonStable
	}
	return strings.Join(parts, ", ")
}
