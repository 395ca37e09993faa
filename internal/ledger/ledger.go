// Package ledger keeps the append-only history of fecal analysis records.
package ledger

import (
	"sync"

	"github.com/epivet/epivet-go/internal/risk"
)

// Ledger is the process-wide analysis history. Appends and reads are safe
// for concurrent callers; readers always see a consistent snapshot.
type Ledger struct {
	mu         sync.RWMutex
	records    []risk.Record
	maxRecords int // 0 means unbounded
}

// New creates a ledger. maxRecords caps retention; the oldest records are
// dropped first once the cap is reached. Zero keeps everything for the
// lifetime of the process.
func New(maxRecords int) *Ledger {
	return &Ledger{maxRecords: maxRecords}
}

// Append adds a record to the history. Records are never mutated after
// insertion.
func (l *Ledger) Append(record risk.Record) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, record)
	if l.maxRecords > 0 && len(l.records) > l.maxRecords {
		overflow := len(l.records) - l.maxRecords
		l.records = append(l.records[:0:0], l.records[overflow:]...)
	}
}

// Snapshot returns a copy of the history in insertion order.
func (l *Ledger) Snapshot() []risk.Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snapshot := make([]risk.Record, len(l.records))
	copy(snapshot, l.records)
	return snapshot
}

// Len returns the number of retained records.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Last returns the most recent record, if any.
func (l *Ledger) Last() (risk.Record, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.records) == 0 {
		return risk.Record{}, false
	}
	return l.records[len(l.records)-1], true
}
