package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// FlushFunc commits the buffered lines for one rule+supplier pair once a
// consolidation window closes.
type FlushFunc func(ruleID, supplierID uuid.UUID, lines []Line)

type windowKey struct {
	RuleID     uuid.UUID
	SupplierID uuid.UUID
}

type windowEntry struct {
	lines    []Line
	timer    *time.Timer
	deadline time.Time
}

// WindowBuffer debounces stock-movement triggers: lines destined for the same
// rule+supplier pair within the consolidation window are merged into a single
// buffered draft instead of producing one PO per stock event. The buffer
// flushes when the window elapses, or earlier when the orchestrator takes the
// lines over into a full run. Canceling discards without committing.
type WindowBuffer struct {
	mu      sync.Mutex
	entries map[windowKey]*windowEntry
	flush   FlushFunc
}

func NewWindowBuffer(flush FlushFunc) *WindowBuffer {
	return &WindowBuffer{
		entries: make(map[windowKey]*windowEntry),
		flush:   flush,
	}
}

// Add buffers lines for the rule+supplier pair. A non-positive window flushes
// immediately. Lines arriving while a window is already open are merged into
// the existing buffer without extending its deadline, so a steady trickle of
// stock events cannot hold a draft open forever.
func (b *WindowBuffer) Add(ruleID, supplierID uuid.UUID, window time.Duration, lines []Line) {
	if len(lines) == 0 {
		return
	}
	if window <= 0 {
		b.flush(ruleID, supplierID, lines)
		return
	}

	key := windowKey{RuleID: ruleID, SupplierID: supplierID}

	b.mu.Lock()
	if entry, ok := b.entries[key]; ok {
		entry.lines = MergeLines(entry.lines, lines)
		b.mu.Unlock()
		return
	}

	entry := &windowEntry{lines: lines, deadline: time.Now().Add(window)}
	entry.timer = time.AfterFunc(window, func() { b.expire(key) })
	b.entries[key] = entry
	b.mu.Unlock()
}

func (b *WindowBuffer) expire(key windowKey) {
	b.mu.Lock()
	entry, ok := b.entries[key]
	if ok {
		delete(b.entries, key)
	}
	b.mu.Unlock()

	if ok {
		b.flush(key.RuleID, key.SupplierID, entry.lines)
	}
}

// Take removes and returns all buffered lines for a rule, stopping their
// timers, so a full run can fold pending stock-movement lines into its own
// commit instead of racing the window.
func (b *WindowBuffer) Take(ruleID uuid.UUID) []Line {
	b.mu.Lock()
	var taken []Line
	for key, entry := range b.entries {
		if key.RuleID != ruleID {
			continue
		}
		entry.timer.Stop()
		taken = append(taken, entry.lines...)
		delete(b.entries, key)
	}
	b.mu.Unlock()
	return taken
}

// FlushNow closes every open window for a rule immediately, committing the
// buffered lines through the flush callback.
func (b *WindowBuffer) FlushNow(ruleID uuid.UUID) {
	b.mu.Lock()
	type pending struct {
		key   windowKey
		lines []Line
	}
	var flushes []pending
	for key, entry := range b.entries {
		if key.RuleID != ruleID {
			continue
		}
		entry.timer.Stop()
		flushes = append(flushes, pending{key: key, lines: entry.lines})
		delete(b.entries, key)
	}
	b.mu.Unlock()

	for _, p := range flushes {
		b.flush(p.key.RuleID, p.key.SupplierID, p.lines)
	}
}

// Cancel discards all buffered lines for a rule without committing, e.g. when
// the rule is disabled or deleted mid-window.
func (b *WindowBuffer) Cancel(ruleID uuid.UUID) {
	b.mu.Lock()
	for key, entry := range b.entries {
		if key.RuleID != ruleID {
			continue
		}
		entry.timer.Stop()
		delete(b.entries, key)
	}
	b.mu.Unlock()
}

// PendingLines reports how many lines are currently buffered for a rule.
func (b *WindowBuffer) PendingLines(ruleID uuid.UUID) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for key, entry := range b.entries {
		if key.RuleID == ruleID {
			n += len(entry.lines)
		}
	}
	return n
}
