package spline

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-spline/dsp/peakset"
)

var errNilPeakSet = errors.New("spline: nil peak set")

// Maxima returns the k highest local maxima of the spline, sorted by
// descending value. Interior maxima come from the critical points of each
// segment; the first breakpoint is a candidate when the curve falls away to
// its right and the last breakpoint when the curve is still rising into it.
func (sp *Spline) Maxima(k int) (*peakset.PeakSet, error) {
	if sp.n == 0 {
		return nil, ErrNotBuilt
	}

	ps, err := peakset.New(k)
	if err != nil {
		return nil, err
	}

	sp.collectMaxima(ps)

	return ps, nil
}

// MaximaInto is Maxima writing into a caller-owned peak set, which is reset
// first. The number of maxima kept is ps.Cap().
func (sp *Spline) MaximaInto(ps *peakset.PeakSet) error {
	if sp.n == 0 {
		return ErrNotBuilt
	}

	if ps == nil {
		return errNilPeakSet
	}

	ps.Reset()
	sp.collectMaxima(ps)

	return nil
}

// knotTol is the distance, relative to the segment width, within which a
// maximum is taken to sit on a breakpoint.
const knotTol = 1e-9

func (sp *Spline) collectMaxima(ps *peakset.PeakSet) {
	last := sp.n - 2

	// onKnot reports that a maximum at breaks[i] was already offered. The
	// first breakpoint belongs to the boundary check below.
	onKnot := sp.coeffs[0].C < 0
	endPending := false

	for i := 0; i <= last; i++ {
		c := &sp.coeffs[i]
		dx := sp.breaks[i+1] - sp.breaks[i]
		tol := knotTol * dx

		covered := onKnot
		onKnot = false

		h, ok := criticalMax(c.A, c.B, c.C)
		if !ok || h < -tol {
			continue
		}

		if h >= dx {
			// The right breakpoint belongs to the next segment, which sees
			// the same maximum near its start.
			endPending = i == last && h-dx <= tol
			continue
		}

		if h <= tol {
			// A root just behind the start is a maximum on the breakpoint
			// only if the curve falls away from it.
			if covered || (h < 0 && c.C >= 0) {
				continue
			}

			h = max(h, 0)
		}

		ps.Offer(sp.breaks[i]+h, ((c.A*h+c.B)*h+c.C)*h+c.D)
		onKnot = dx-h <= tol
	}

	if sp.coeffs[0].C < 0 {
		ps.Offer(sp.breaks[0], sp.coeffs[0].D)
	}

	c := &sp.coeffs[last]
	h := sp.breaks[last+1] - sp.breaks[last]
	if ((3*c.A*h+2*c.B)*h+c.C > 0 && !onKnot) || endPending {
		ps.Offer(sp.breaks[last+1], sp.EvalSegment(sp.breaks[last+1], last))
	}
}

// criticalMax returns the offset h of the local maximum of the cubic
// a·h³ + b·h² + c·h + d, i.e. the root of 3a·h² + 2b·h + c where the second
// derivative is negative. ok is false when the cubic has no local maximum.
// h may be negative or lie beyond the segment.
//
// For a != 0 the maximum is always h = -(b + sqrt(b² - 3ac)) / (3a). When
// b < 0 the numerator cancels, so the equivalent c / (sqrt(b² - 3ac) - b) is
// used instead.
func criticalMax(a, b, c float64) (h float64, ok bool) {
	if a == 0 {
		// 2b·h + c = 0 is a maximum only for b < 0.
		if b < 0 {
			return -0.5 * c / b, true
		}

		return 0, false
	}

	disc := b*b - 3*a*c
	if !(disc > 0) {
		return 0, false
	}

	sq := math.Sqrt(disc)
	if b >= 0 {
		return -(b + sq) / (3 * a), true
	}

	return c / (sq - b), true
}
