package spline

import "fmt"

// Deriv returns the derivative of the given order (0 to 3) at x. Orders above
// 3 are zero. It panics on an unbuilt spline or a negative order.
func (sp *Spline) Deriv(x float64, order int) float64 {
	i := sp.Segment(x)
	c := &sp.coeffs[i]
	h := x - sp.breaks[i]

	switch order {
	case 0:
		return ((c.A*h+c.B)*h+c.C)*h + c.D
	case 1:
		return (3*c.A*h+2*c.B)*h + c.C
	case 2:
		return 6*c.A*h + 2*c.B
	case 3:
		return 6 * c.A
	default:
		if order < 0 {
			panic(fmt.Sprintf("spline: negative derivative order %d", order))
		}

		return 0
	}
}

// Integrate returns the integral of the spline from lo to hi. Bounds outside
// the sampled range integrate the extrapolated boundary cubics.
func (sp *Spline) Integrate(lo, hi float64) float64 {
	if lo > hi {
		return -sp.Integrate(hi, lo)
	}

	iLo, iHi := sp.Segment(lo), sp.Segment(hi)
	if iLo == iHi {
		return sp.integrateSegment(iLo, lo, hi)
	}

	sum := sp.integrateSegment(iLo, lo, sp.breaks[iLo+1]) +
		sp.integrateSegment(iHi, sp.breaks[iHi], hi)

	for i := iLo + 1; i < iHi; i++ {
		sum += sp.integrateSegment(i, sp.breaks[i], sp.breaks[i+1])
	}

	return sum
}

func (sp *Spline) integrateSegment(i int, lo, hi float64) float64 {
	return sp.antiderivative(i, hi-sp.breaks[i]) - sp.antiderivative(i, lo-sp.breaks[i])
}

func (sp *Spline) antiderivative(i int, h float64) float64 {
	c := &sp.coeffs[i]
	return (((c.A/4*h+c.B/3)*h+c.C/2)*h + c.D) * h
}
