// Package spline fits a piecewise-cubic interpolant through ordered samples
// and extracts its strongest local maxima.
//
// Construction solves a symmetric tridiagonal system for the half second
// derivatives at the interior knots (zero curvature at both ends), so building
// a spline from n samples is O(n):
//
//	sp, err := spline.Build(x, y)
//	if err != nil {
//	    return err
//	}
//	v := sp.Eval(0.25)
//
// Each segment i stores a cubic A·h³ + B·h² + C·h + D with h = x - Breaks()[i].
// Queries outside the sampled range extrapolate with the nearest boundary
// segment.
//
// [Spline.Maxima] sweeps every segment for interior local maxima, adds the two
// outer breakpoints when the curve falls away from them, and keeps the K
// highest in a [peakset.PeakSet]:
//
//	ps, err := sp.Maxima(3)
//	for _, p := range ps.Peaks() {
//	    fmt.Println(p.X, p.Y)
//	}
//
// # Storage strategies
//
// [New] returns a growable spline whose storage is enlarged as needed by
// [Spline.Set]. [NewFixed] (or [New] with [WithCapacity]) allocates storage for
// a maximum number of breakpoints once; Set then rejects larger inputs with
// [ErrCapacity] and never allocates. Both share the same method set.
//
// A Spline is not safe for concurrent use while it is being rebuilt.
package spline
