package stroke

import "sync"

// Builder accumulates samples of a recording in progress. It is the only
// mutable form of a sample sequence: once Finalize hands the content over as
// a Stream, the builder starts again from empty and never touches the
// returned samples.
//
// Builder keeps samples in arrival order and enforces temporal consistency,
// i.e. a sample arriving with a timestamp earlier than its predecessor is
// stored with the predecessor's timestamp.
type Builder struct {
	mu       sync.Mutex
	samples  []Sample
	capacity int // Initial capacity hint used after a reset
}

// NewBuilder creates an empty builder. capacity is a hint for the expected
// number of samples and may be zero.
func NewBuilder(capacity int) *Builder {
	capacity = max(capacity, 0)
	return &Builder{
		samples:  make([]Sample, 0, capacity),
		capacity: capacity,
	}
}

// Append adds a sample to the end of the sequence. It reports whether the
// sample's timestamp had to be clamped to keep the sequence non-decreasing.
func (b *Builder) Append(s Sample) (clamped bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n := len(b.samples); n > 0 {
		// Ensure temporal consistency
		if prev := b.samples[n-1].Timestamp; s.Timestamp < prev {
			s.Timestamp = prev
			clamped = true
		}
	}

	b.samples = append(b.samples, s)
	return clamped
}

// Len returns the number of samples accumulated so far.
func (b *Builder) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.samples)
}

// Snapshot returns an immutable copy of the current content, e.g. for
// drawing the live stroke while recording continues.
func (b *Builder) Snapshot() Stream {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.samples) == 0 {
		return Stream{}
	}
	samples := make([]Sample, len(b.samples))
	copy(samples, b.samples)
	return Stream{samples: samples}
}

// Finalize returns the accumulated samples as a Stream and resets the
// builder. Ownership of the samples moves to the returned Stream.
func (b *Builder) Finalize() Stream {
	b.mu.Lock()
	defer b.mu.Unlock()

	samples := b.samples
	b.samples = make([]Sample, 0, b.capacity)

	if len(samples) == 0 {
		return Stream{}
	}
	return Stream{samples: samples[:len(samples):len(samples)]}
}

// Reset discards all accumulated samples.
func (b *Builder) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples = make([]Sample, 0, b.capacity)
}
