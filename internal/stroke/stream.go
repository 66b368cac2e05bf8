package stroke

import (
	"encoding/json"
	"fmt"
	"iter"
)

// Stream is a finalized, time ordered sequence of samples (a SampleStream).
// Timestamps never decrease across the sequence; equal timestamps are
// allowed because one input event may expand into several samples.
//
// A Stream is immutable. It can be copied and shared across goroutines and
// rendering calls without synchronization.
type Stream struct {
	samples []Sample
}

// NewStream creates a stream holding a copy of the given samples. Samples
// with a timestamp earlier than their predecessor are clamped to the
// predecessor's timestamp so that the ordering invariant holds.
func NewStream(samples ...Sample) Stream {
	if len(samples) == 0 {
		return Stream{}
	}

	b := NewBuilder(len(samples))
	for _, s := range samples {
		b.Append(s)
	}
	return b.Finalize()
}

// Len returns the number of samples in the stream.
func (s Stream) Len() int {
	return len(s.samples)
}

// IsEmpty reports whether the stream has no samples.
func (s Stream) IsEmpty() bool {
	return len(s.samples) == 0
}

// At returns the i-th sample. It panics if i is out of range.
func (s Stream) At(i int) Sample {
	return s.samples[i]
}

// Samples returns a copy of the samples.
func (s Stream) Samples() []Sample {
	if len(s.samples) == 0 {
		return nil
	}
	out := make([]Sample, len(s.samples))
	copy(out, s.samples)
	return out
}

// Points returns the locations of all samples, in stream order.
func (s Stream) Points() []Point {
	if len(s.samples) == 0 {
		return nil
	}
	points := make([]Point, len(s.samples))
	for i, sample := range s.samples {
		points[i] = sample.Location
	}
	return points
}

// Prefix returns a stream with the first n samples. n is clamped to [0, Len()].
// The prefix shares storage with s, which is safe since neither can change.
func (s Stream) Prefix(n int) Stream {
	n = max(0, min(n, len(s.samples)))
	if n == 0 {
		return Stream{}
	}
	return Stream{samples: s.samples[:n:n]}
}

// All iterates over the samples with their indexes.
func (s Stream) All() iter.Seq2[int, Sample] {
	return func(yield func(int, Sample) bool) {
		for i, sample := range s.samples {
			if !yield(i, sample) {
				return
			}
		}
	}
}

// Duration returns the number of seconds between the first and the last sample.
func (s Stream) Duration() float64 {
	if len(s.samples) < 2 {
		return 0
	}
	return s.samples[len(s.samples)-1].Timestamp - s.samples[0].Timestamp
}

// Stats returns summary statistics of the stream.
func (s Stream) Stats() Stats {
	st := Stats{
		Count:    len(s.samples),
		Duration: s.Duration(),
	}
	if st.Count == 0 {
		return st
	}

	var sum float64
	for _, sample := range s.samples {
		sum += sample.Force
	}
	st.AverageForce = sum / float64(st.Count)
	return st
}

// MarshalJSON encodes the stream as a JSON array of samples.
func (s Stream) MarshalJSON() ([]byte, error) {
	if s.samples == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.samples)
}

// UnmarshalJSON decodes a JSON array of samples. The ordering invariant is
// restored the same way NewStream does.
func (s *Stream) UnmarshalJSON(data []byte) error {
	var samples []Sample
	if err := json.Unmarshal(data, &samples); err != nil {
		return fmt.Errorf("decoding samples: %w", err)
	}
	*s = NewStream(samples...)
	return nil
}
