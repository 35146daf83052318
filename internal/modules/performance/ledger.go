// Package performance tracks per-model scorecards in a bounded in-memory
// ledger consumed by the performance-sensitive weighting strategies.
package performance

import (
	"sort"

	"github.com/aristath/ensemble-engine/internal/domain"
)

// Ledger is an append-only history of ModelPerformance records keyed by
// model name, retaining at most maxEntries per model (oldest evicted
// first). The owning engine serializes access; Ledger itself is not
// synchronized.
type Ledger struct {
	maxEntries int
	history    map[string][]domain.ModelPerformance
}

// NewLedger creates a ledger bounded to maxEntries records per model
func NewLedger(maxEntries int) *Ledger {
	return &Ledger{
		maxEntries: maxEntries,
		history:    make(map[string][]domain.ModelPerformance),
	}
}

// Update appends a performance record for the named model, truncating the
// per-model history to the most recent maxEntries.
func (l *Ledger) Update(modelName string, perf domain.ModelPerformance) {
	entries := append(l.history[modelName], perf)
	if l.maxEntries > 0 && len(entries) > l.maxEntries {
		entries = entries[len(entries)-l.maxEntries:]
	}
	l.history[modelName] = entries
}

// Recent returns a copy of the trailing n records for the named model.
// An unknown model yields nil.
func (l *Ledger) Recent(modelName string, n int) []domain.ModelPerformance {
	entries, ok := l.history[modelName]
	if !ok || n <= 0 {
		return nil
	}
	if len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	out := make([]domain.ModelPerformance, len(entries))
	copy(out, entries)
	return out
}

// Len returns the number of records held for the named model
func (l *Ledger) Len(modelName string) int {
	return len(l.history[modelName])
}

// Models lists the tracked model names in sorted order
func (l *Ledger) Models() []string {
	names := make([]string, 0, len(l.history))
	for name := range l.history {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
