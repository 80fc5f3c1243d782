// Package peakset provides a fixed-capacity container that keeps the K largest
// (x, y) candidates offered to it, ordered by descending y.
//
// The set is intended for sweeps where many candidates are produced and only
// the strongest few matter, such as local maxima of an interpolated curve:
//
//	ps, _ := peakset.New(3)
//	for _, c := range candidates {
//	    ps.Offer(c.X, c.Y)
//	}
//	for _, p := range ps.Peaks() {
//	    fmt.Println(p.X, p.Y)
//	}
//
// Offer costs O(K) in the worst case. Candidates with equal y keep their
// first-seen order: a later equal candidate ranks below the earlier one and is
// rejected outright when it would only tie the current minimum of a full set.
package peakset

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrCapacity is returned when a peak set is requested with a capacity < 1.
var ErrCapacity = errors.New("peakset: capacity must be >= 1")

// Peak is a single (x, y) entry.
type Peak struct {
	X float64
	Y float64
}

// PeakSet keeps the highest-y candidates seen so far, sorted descending by y.
// It is not safe for concurrent use.
type PeakSet struct {
	entries []Peak // backing array, len == capacity
	n       int
}

// New creates an empty peak set holding at most k entries.
func New(k int) (*PeakSet, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: %d", ErrCapacity, k)
	}

	return &PeakSet{entries: make([]Peak, k)}, nil
}

// Len returns the number of entries currently kept.
func (s *PeakSet) Len() int { return s.n }

// Cap returns the fixed capacity.
func (s *PeakSet) Cap() int { return len(s.entries) }

// Full reports whether the set holds Cap() entries.
func (s *PeakSet) Full() bool { return s.n == len(s.entries) }

// X returns the abscissa of the i-th ranked entry.
func (s *PeakSet) X(i int) float64 { return s.At(i).X }

// Y returns the ordinate of the i-th ranked entry.
func (s *PeakSet) Y(i int) float64 { return s.At(i).Y }

// At returns the i-th ranked entry. It panics if i is outside [0, Len()).
func (s *PeakSet) At(i int) Peak {
	if i < 0 || i >= s.n {
		panic(fmt.Sprintf("peakset: index %d out of range [0, %d)", i, s.n))
	}

	return s.entries[i]
}

// Peaks returns a copy of the kept entries in ranked order.
func (s *PeakSet) Peaks() []Peak {
	out := make([]Peak, s.n)
	copy(out, s.entries[:s.n])

	return out
}

// Reset empties the set without releasing its storage.
func (s *PeakSet) Reset() {
	clear(s.entries)
	s.n = 0
}

// Offer attempts to insert the candidate (x, y) and reports whether it was
// kept. When the set is full the candidate must be strictly greater than the
// current minimum, which is then evicted. NaN ordinates are never kept.
func (s *PeakSet) Offer(x, y float64) bool {
	if math.IsNaN(y) {
		return false
	}

	if s.n == len(s.entries) {
		if !(y > s.entries[s.n-1].Y) {
			return false
		}
		// Drop the minimum; the insert below reuses its slot.
		s.n--
	}

	// First slot holding a strictly smaller y; equal values stay ahead.
	pos := sort.Search(s.n, func(i int) bool { return s.entries[i].Y < y })

	copy(s.entries[pos+1:s.n+1], s.entries[pos:s.n])
	s.entries[pos] = Peak{X: x, Y: y}
	s.n++

	return true
}
