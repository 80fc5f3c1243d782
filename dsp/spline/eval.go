package spline

import (
	"fmt"
	"sort"
)

// Segment returns the index of the segment used to evaluate x: the last
// segment whose left breakpoint is <= x, clamped to the first and last
// segment for queries outside the sampled range. It panics if the spline is
// unbuilt.
func (sp *Spline) Segment(x float64) int {
	sp.mustBeBuilt()

	last := sp.n - 2
	// First breakpoint strictly greater than x, minus one.
	i := sort.Search(sp.n, func(k int) bool { return sp.breaks[k] > x }) - 1

	switch {
	case i < 0:
		return 0
	case i > last:
		return last
	default:
		return i
	}
}

// Eval returns the spline value at x. Queries outside the sampled range
// extrapolate with the nearest boundary segment. It panics with ErrNotBuilt if
// the spline is unbuilt; use EvalChecked to get an error instead.
func (sp *Spline) Eval(x float64) float64 {
	return sp.EvalSegment(x, sp.Segment(x))
}

// EvalChecked is Eval returning ErrNotBuilt instead of panicking.
func (sp *Spline) EvalChecked(x float64) (float64, error) {
	if sp.n == 0 {
		return 0, ErrNotBuilt
	}

	return sp.Eval(x), nil
}

// EvalSegment evaluates the cubic of segment i at x without searching for the
// containing segment.
func (sp *Spline) EvalSegment(x float64, i int) float64 {
	if i < 0 || i >= sp.NumSegments() {
		panic(fmt.Sprintf("spline: segment %d out of range [0, %d)", i, sp.NumSegments()))
	}

	c := &sp.coeffs[i]
	h := x - sp.breaks[i]

	return ((c.A*h+c.B)*h+c.C)*h + c.D
}

// EvalAll evaluates the spline at every element of xs. An optional output
// slice of the same length avoids the allocation.
func (sp *Spline) EvalAll(xs []float64, out ...[]float64) []float64 {
	var dst []float64
	if len(out) > 0 && len(out[0]) >= len(xs) {
		dst = out[0][:len(xs)]
	} else {
		dst = make([]float64, len(xs))
	}

	for i, x := range xs {
		dst[i] = sp.Eval(x)
	}

	return dst
}

func (sp *Spline) mustBeBuilt() {
	if sp.n == 0 {
		panic(ErrNotBuilt)
	}
}
