package history

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/roman-kulish/vibesign/internal/stroke"
)

// Record is a finalized signature kept in the history. Records are created
// once and never modified.
type Record struct {
	ID        uuid.UUID     // Unique identifier of the record
	Samples   stroke.Stream // Finalized, non-empty sample stream
	CreatedAt time.Time     // Wall clock time the stream was accepted
}

// History is an in-memory, newest first list of records. It is safe for
// concurrent use.
type History struct {
	mu      sync.RWMutex
	records []Record
}

// New creates an empty history.
func New() *History {
	return &History{}
}

// Add creates a record for stream and inserts it at the front. Empty
// streams are refused: no record is created and false is returned.
func (h *History) Add(stream stroke.Stream, createdAt time.Time) (Record, bool) {
	if stream.IsEmpty() {
		return Record{}, false
	}

	r := Record{
		ID:        uuid.New(),
		Samples:   stream,
		CreatedAt: createdAt,
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.records = slices.Insert(h.records, 0, r)
	return r, true
}

// Len returns the number of records.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}

// Records returns the records, newest first.
func (h *History) Records() []Record {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.records)
}

// Chronological returns the records, oldest first.
func (h *History) Chronological() []Record {
	records := h.Records()
	slices.Reverse(records)
	return records
}

// Get returns the record with the given ID.
func (h *History) Get(id uuid.UUID) (Record, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i := h.indexOf(id); i >= 0 {
		return h.records[i], true
	}
	return Record{}, false
}

// Delete removes the record with the given ID. It reports whether a record
// was removed.
func (h *History) Delete(id uuid.UUID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	i := h.indexOf(id)
	if i < 0 {
		return false
	}
	h.records = slices.Delete(h.records, i, i+1)
	return true
}

// DeleteAll removes every record.
func (h *History) DeleteAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = nil
}

// DisplayIndex returns the creation order number of the record at position
// idx of the newest first list: the oldest record is 1.
func (h *History) DisplayIndex(idx int) int {
	return h.Len() - idx
}

// Label returns the display name of the record at position idx.
func (h *History) Label(idx int) string {
	return Label(h.DisplayIndex(idx))
}

// Label formats the display name of the n-th created signature.
func Label(n int) string {
	return fmt.Sprintf("Signature %d", n)
}

func (h *History) indexOf(id uuid.UUID) int {
	return slices.IndexFunc(h.records, func(r Record) bool {
		return r.ID == id
	})
}
