package clock

import "sync/atomic"

// Seq is a monotonic logical clock for event ordering.
//
// Every game event is stamped with a strictly increasing seq number so
// traces and journals never depend on wall-clock ordering.
//
// Thread-safety: Seq is safe for concurrent use (atomic operations).
type Seq struct {
	n atomic.Int64
}

// NewSeq creates a new logical clock starting at 0.
func NewSeq() *Seq {
	return &Seq{}
}

// NewSeqAt creates a logical clock starting at a specific value.
// The next call to Next returns start+1.
func NewSeqAt(start int64) *Seq {
	s := &Seq{}
	s.n.Store(start)
	return s
}

// Next returns the next sequence number and increments the clock.
func (s *Seq) Next() int64 {
	return s.n.Add(1)
}

// Current returns the current sequence number without incrementing.
func (s *Seq) Current() int64 {
	return s.n.Load()
}
