package regime

import (
	"time"

	"github.com/aristath/ensemble-engine/internal/domain"
	"github.com/aristath/ensemble-engine/pkg/formulas"
)

// stabilityWindow is the number of trailing entries inspected when scoring
// regime stability.
const stabilityWindow = 20

// minStabilityEntries is the history length below which stability reports
// the neutral default.
const minStabilityEntries = 10

// HistoryEntry is one observed (timestamp, regime) pair
type HistoryEntry struct {
	Timestamp time.Time     `json:"timestamp"`
	Regime    domain.Regime `json:"regime"`
}

// History is an append-only, size-bounded log of detected regimes.
// The engine owns one instance and serializes access; History itself is
// not synchronized.
type History struct {
	max     int
	entries []HistoryEntry
}

// NewHistory creates a regime history bounded to max entries; oldest
// entries are evicted first.
func NewHistory(max int) *History {
	return &History{max: max}
}

// Append records a detected regime
func (h *History) Append(t time.Time, regime domain.Regime) {
	h.entries = append(h.entries, HistoryEntry{Timestamp: t, Regime: regime})
	if h.max > 0 && len(h.entries) > h.max {
		h.entries = h.entries[len(h.entries)-h.max:]
	}
}

// Len returns the number of recorded entries
func (h *History) Len() int {
	return len(h.entries)
}

// Entries returns a copy of the recorded history
func (h *History) Entries() []HistoryEntry {
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Stability scores how settled the regime has been recently: 1 minus the
// fraction of transitions across the trailing window, floored at 0.
// With fewer than 10 entries the score defaults to 0.5.
func (h *History) Stability() float64 {
	if len(h.entries) < minStabilityEntries {
		return 0.5
	}

	recent := h.entries
	if len(recent) > stabilityWindow {
		recent = recent[len(recent)-stabilityWindow:]
	}

	changes := 0
	for i := 1; i < len(recent); i++ {
		if recent[i].Regime != recent[i-1].Regime {
			changes++
		}
	}

	changeRate := float64(changes) / float64(len(recent)-1)
	return formulas.Clamp(1-changeRate, 0, 1)
}
