package spline

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Coefficients holds the cubic A·h³ + B·h² + C·h + D of one segment, where h
// is measured from the segment's left breakpoint.
type Coefficients struct {
	A, B, C, D float64
}

// Spline is a piecewise-cubic interpolant with continuous first and second
// derivatives at every interior breakpoint.
type Spline struct {
	breaks []float64
	coeffs []Coefficients
	n      int // number of breakpoints; 0 until the first successful Set

	// capacity > 0 selects the fixed strategy.
	capacity int

	// scratch for the tridiagonal solve, sized 4*capacity when fixed.
	work []float64
}

// New returns an unbuilt spline. Without options the spline grows its
// storage on demand.
func New(opts ...Option) *Spline {
	cfg := applyOptions(opts)
	sp := &Spline{capacity: cfg.capacity}

	if sp.capacity > 0 {
		sp.breaks = make([]float64, sp.capacity)
		sp.coeffs = make([]Coefficients, sp.capacity-1)
		sp.work = make([]float64, 4*sp.capacity)
	}

	return sp
}

// NewFixed returns an unbuilt spline with storage for at most maxBreaks
// samples, allocated once.
func NewFixed(maxBreaks int) (*Spline, error) {
	if maxBreaks < 2 {
		return nil, fmt.Errorf("%w: fixed spline needs room for at least 2 breakpoints, got %d", ErrCapacity, maxBreaks)
	}

	return New(WithCapacity(maxBreaks)), nil
}

// Build returns a growable spline through the samples (x[i], y[i]).
func Build(x, y []float64) (*Spline, error) {
	sp := New()
	if err := sp.Set(x, y); err != nil {
		return nil, err
	}

	return sp, nil
}

// Set rebuilds the spline from the samples (x[i], y[i]). x must be strictly
// increasing and both slices must have the same length of at least 2. The
// inputs are only read. On error the spline keeps its previous state.
func (sp *Spline) Set(x, y []float64) error {
	if err := validateSamples(x, y); err != nil {
		return err
	}

	n := len(x)
	if sp.capacity > 0 && n > sp.capacity {
		return fmt.Errorf("%w: %d samples for a spline of capacity %d", ErrCapacity, n, sp.capacity)
	}

	sp.reserve(n)
	sp.n = n
	sp.breaks = sp.breaks[:n]
	sp.coeffs = sp.coeffs[:n-1]
	copy(sp.breaks, x)

	if n == 2 {
		sp.coeffs[0] = Coefficients{C: (y[1] - y[0]) / (x[1] - x[0]), D: y[0]}
		return nil
	}

	sp.solve(x, y)

	return nil
}

// Built reports whether the spline holds a successfully built curve.
func (sp *Spline) Built() bool { return sp.n > 0 }

// Capacity returns the maximum number of breakpoints of a fixed spline, or 0
// for a growable one.
func (sp *Spline) Capacity() int { return sp.capacity }

// NumBreaks returns the number of breakpoints, 0 when unbuilt.
func (sp *Spline) NumBreaks() int { return sp.n }

// NumSegments returns the number of cubic segments, 0 when unbuilt.
func (sp *Spline) NumSegments() int {
	if sp.n == 0 {
		return 0
	}

	return sp.n - 1
}

// Breaks returns a copy of the breakpoints.
func (sp *Spline) Breaks() []float64 {
	out := make([]float64, sp.n)
	copy(out, sp.breaks[:sp.n])

	return out
}

// Coeffs returns a copy of the per-segment coefficients.
func (sp *Spline) Coeffs() []Coefficients {
	out := make([]Coefficients, sp.NumSegments())
	copy(out, sp.coeffs)

	return out
}

func validateSamples(x, y []float64) error {
	if len(x) != len(y) {
		return fmt.Errorf("%w: x/y length mismatch: %d != %d", ErrInvalidSamples, len(x), len(y))
	}

	if len(x) < 2 {
		return fmt.Errorf("%w: need at least 2 samples, got %d", ErrInvalidSamples, len(x))
	}

	for i := range x {
		if math.IsNaN(x[i]) || math.IsInf(x[i], 0) || math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			return fmt.Errorf("%w: non-finite sample at index %d", ErrInvalidSamples, i)
		}

		if i > 0 && !(x[i] > x[i-1]) {
			return fmt.Errorf("%w: x must be strictly increasing at index %d", ErrInvalidSamples, i)
		}
	}

	return nil
}

// reserve makes room for n breakpoints. Fixed splines were sized up front.
func (sp *Spline) reserve(n int) {
	if cap(sp.breaks) >= n && cap(sp.coeffs) >= n-1 && cap(sp.work) >= 4*n {
		sp.breaks = sp.breaks[:cap(sp.breaks)]
		sp.coeffs = sp.coeffs[:cap(sp.coeffs)]
		return
	}

	sp.breaks = make([]float64, n)
	sp.coeffs = make([]Coefficients, n-1)
	sp.work = make([]float64, 4*n)
}

// solve computes the coefficients for n >= 3 samples.
//
// The unknowns are B_1..B_{n-2} (half the second derivative at each interior
// knot) with B_0 = B_{n-1} = 0. Row k of the reduced system reads
//
//	Δx_k·B_k + 2(x[k+2]-x[k])·B_{k+1} + Δx_{k+1}·B_{k+2} = 3(m_{k+1} - m_k)
//
// where m_i is the slope of the chord over segment i.
func (sp *Spline) solve(x, y []float64) {
	n := len(x)
	w := sp.work[:4*n]
	dx := w[:n-1]
	slope := w[n : 2*n-1]
	diag := w[2*n : 3*n-2]
	b := w[3*n : 4*n]  // B_0..B_{n-1}; the interior doubles as the rhs
	off := dx[1 : n-2] // Δx_1..Δx_{n-3}; left untouched by the solve

	vecmath.ScaleBlock(dx, x[:n-1], -1)
	vecmath.AddBlockInPlace(dx, x[1:])
	vecmath.ScaleBlock(slope, y[:n-1], -1)
	vecmath.AddBlockInPlace(slope, y[1:])

	for i := range slope {
		slope[i] /= dx[i]
	}

	for k := 0; k < n-2; k++ {
		diag[k] = 2 * (x[k+2] - x[k])
		b[k+1] = 3 * (slope[k+1] - slope[k])
	}

	b[0], b[n-1] = 0, 0
	solveTridiag(diag, off, b[1:n-1])

	for i := 0; i < n-1; i++ {
		h := dx[i]
		sp.coeffs[i] = Coefficients{
			A: (b[i+1] - b[i]) / (3 * h),
			B: b[i],
			C: slope[i] - (2*b[i]+b[i+1])*h/3,
			D: y[i],
		}
	}
}
