package spline

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/cwbudde/algo-spline/dsp/peakset"
	"github.com/cwbudde/algo-spline/internal/testutil"
)

func TestCriticalMax(t *testing.T) {
	cases := []struct {
		name    string
		a, b, c float64
		wantOK  bool
		wantH   float64
	}{
		// -(5/7)h³ + (12/7)h: maximum at sqrt(0.8).
		{"a<0 b=0", -5.0 / 7, 0, 12.0 / 7, true, math.Sqrt(0.8)},
		// (5/7)h³ - (15/7)h² + (3/7)h: maximum at 1 - sqrt(0.8).
		{"a>0 b<0 conjugate form", 5.0 / 7, -15.0 / 7, 3.0 / 7, true, 1 - math.Sqrt(0.8)},
		// (11/7)h³ - (15/7)h² - (3/7)h: maximum at -1/11, behind the segment.
		{"a>0 max behind start", 11.0 / 7, -15.0 / 7, -3.0 / 7, true, -1.0 / 11},
		// h³ + h² - h: maximum at -1.
		{"a>0 b>=0", 1, 1, -1, true, -1},
		// -h³ + 3h: maximum at h = 1.
		{"a<0 b=0 region", -1, 0, 3, true, 1},
		// -h³ + 3h²: critical points 0 (min) and 2 (max).
		{"a<0 b>0", -1, 3, 0, true, 2},
		// h³ - 3h²: max at 0 exactly.
		{"max at zero", 1, -3, 0, true, 0},
		{"zero discriminant", 1, 3, 3, false, 0},
		{"negative discriminant", 1, 0, 1, false, 0},
		// Quadratic -h² + 2h: maximum at 1.
		{"quadratic concave", 0, -1, 2, true, 1},
		{"quadratic concave falling", 0, -1, -2, true, -1},
		{"quadratic convex", 0, 1, -2, false, 0},
		{"linear", 0, 0, 1, false, 0},
		{"constant", 0, 0, 0, false, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, ok := criticalMax(tc.a, tc.b, tc.c)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v (h=%v)", ok, tc.wantOK, h)
			}
			if !ok {
				return
			}
			testutil.RequireNearlyEqual(t, h, tc.wantH, 1e-14, "root")

			// The root must be a maximum: zero slope, non-positive curvature.
			slope := (3*tc.a*h+2*tc.b)*h + tc.c
			curv := 6*tc.a*h + 2*tc.b
			testutil.RequireNearlyEqual(t, slope, 0, 1e-13, "slope at root")
			if curv > 0 {
				t.Fatalf("curvature %v > 0 at root %v", curv, h)
			}
		})
	}
}

func TestCriticalMaxStableForSmallC(t *testing.T) {
	// b < 0 with |ac| << b²: the direct formula would lose every digit.
	a, b, c := 1.0, -1e8, 1e-8
	h, ok := criticalMax(a, b, c)
	if !ok {
		t.Fatal("expected a root")
	}
	// 3h² - 2e8·h + 1e-8 = 0 has its small root near 5e-17.
	testutil.RequireNearlyEqual(t, h/5e-17, 1, 1e-9, "small root")
}

func TestMaximaOscillating(t *testing.T) {
	sp := mustBuild(t, []float64{0, 1, 2, 3, 4}, []float64{0, 1, 0, 1, 0})

	ps, err := sp.Maxima(2)
	if err != nil {
		t.Fatalf("Maxima: %v", err)
	}
	if ps.Len() != 2 {
		t.Fatalf("Len = %d, want 2", ps.Len())
	}
	if ps.Y(0) < ps.Y(1) {
		t.Fatalf("maxima not sorted: %v", ps.Peaks())
	}

	wantY := 8.0 / 7 * math.Sqrt(0.8)
	xs := []float64{ps.X(0), ps.X(1)}
	if xs[0] > xs[1] {
		xs[0], xs[1] = xs[1], xs[0]
	}
	testutil.RequireNearlyEqual(t, xs[0], math.Sqrt(0.8), 1e-12, "first peak x")
	testutil.RequireNearlyEqual(t, xs[1], 4-math.Sqrt(0.8), 1e-12, "second peak x")
	testutil.RequireNearlyEqual(t, ps.Y(0), wantY, 1e-12, "peak y")
	testutil.RequireNearlyEqual(t, ps.Y(1), wantY, 1e-12, "peak y")
}

func TestMaximaMonotonicHasNoInteriorPeak(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4}
	y := testutil.Apply(x, func(v float64) float64 { return v * v * v })
	sp := mustBuild(t, x, y)

	ps, err := sp.Maxima(4)
	if err != nil {
		t.Fatalf("Maxima: %v", err)
	}
	if ps.Len() == 0 {
		t.Fatal("expected the right boundary")
	}
	if ps.X(0) != 4 {
		t.Fatalf("top peak = %+v, want the right boundary", ps.At(0))
	}
	testutil.RequireNearlyEqual(t, ps.Y(0), 64, 1e-12, "right boundary value")
	for _, p := range ps.Peaks() {
		if p.X != x[0] && p.X != x[len(x)-1] {
			t.Fatalf("interior maximum reported at x=%v", p.X)
		}
	}
}

func TestMaximaOnBreakpoints(t *testing.T) {
	// Symmetric bumps put the maximum exactly on breakpoint j, where rounding
	// leaves the slope a few ulps either side of zero.
	for j := 1; j <= 5; j++ {
		x := testutil.Grid(0, float64(2*j), 2*j+1)
		y := testutil.Apply(x, func(v float64) float64 {
			d := v - float64(j)
			return math.Exp(-d * d / 2)
		})
		sp := mustBuild(t, x, y)

		ps, err := sp.Maxima(4)
		if err != nil {
			t.Fatalf("Maxima: %v", err)
		}
		if ps.Len() == 0 {
			t.Fatalf("bump at %d: no maxima", j)
		}

		testutil.RequireNearlyEqual(t, ps.X(0), float64(j), 1e-6, "bump position")
		testutil.RequireNearlyEqual(t, ps.Y(0), 1, 1e-6, "bump height")

		for i := 1; i < ps.Len(); i++ {
			if math.Abs(ps.X(i)-ps.X(0)) < 1e-3 {
				t.Fatalf("bump at %d reported twice: %v", j, ps.Peaks())
			}
		}
	}
}

func TestMaximaOnBreakpointsRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 2000; trial++ {
		j := 1 + rng.Intn(6)
		step := 0.1 + 9.9*rng.Float64()
		offset := 10*rng.Float64() - 5

		x := make([]float64, 2*j+1)
		y := make([]float64, 2*j+1)
		for i := range x {
			x[i] = offset + step*float64(i)
		}
		for i := 0; i < j; i++ {
			y[i] = rng.Float64()
			y[2*j-i] = y[i]
		}
		y[j] = 1.5

		sp := mustBuild(t, x, y)
		ps, err := sp.Maxima(2*j + 2)
		if err != nil {
			t.Fatalf("Maxima: %v", err)
		}

		near := 0
		for _, p := range ps.Peaks() {
			if math.Abs(p.X-x[j]) < 1e-6*step {
				near++
			}
		}
		if near != 1 {
			t.Fatalf("trial %d: maximum at breakpoint %v found %d times in %v", trial, x[j], near, ps.Peaks())
		}
	}
}

func TestMaximaOnBoundaryBreakpointsReportedOnce(t *testing.T) {
	cases := []struct {
		name string
		y    []float64
		want float64
	}{
		{"falling from left", []float64{1, 0.5, 0.2, 0.1}, 0},
		{"rising into right", []float64{0.1, 0.2, 0.5, 1}, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sp := mustBuild(t, []float64{0, 1, 2, 3}, tc.y)

			ps, err := sp.Maxima(4)
			if err != nil {
				t.Fatalf("Maxima: %v", err)
			}

			n := 0
			for _, p := range ps.Peaks() {
				if p.X == tc.want {
					n++
				}
			}
			if n != 1 {
				t.Fatalf("breakpoint %v reported %d times: %v", tc.want, n, ps.Peaks())
			}
		})
	}
}

func TestMaximaLinearBoundaries(t *testing.T) {
	rising := mustBuild(t, []float64{0, 1}, []float64{0, 2})
	ps, err := rising.Maxima(3)
	if err != nil {
		t.Fatalf("Maxima: %v", err)
	}
	if ps.Len() != 1 || ps.X(0) != 1 || ps.Y(0) != 2 {
		t.Fatalf("rising maxima = %v, want [{1 2}]", ps.Peaks())
	}

	falling := mustBuild(t, []float64{0, 1}, []float64{2, 0})
	ps, err = falling.Maxima(3)
	if err != nil {
		t.Fatalf("Maxima: %v", err)
	}
	if ps.Len() != 1 || ps.X(0) != 0 || ps.Y(0) != 2 {
		t.Fatalf("falling maxima = %v, want [{0 2}]", ps.Peaks())
	}

	flat := mustBuild(t, []float64{0, 1, 2}, []float64{1, 1, 1})
	ps, err = flat.Maxima(3)
	if err != nil {
		t.Fatalf("Maxima: %v", err)
	}
	if ps.Len() != 0 {
		t.Fatalf("flat maxima = %v, want none", ps.Peaks())
	}
}

func TestMaximaTopMatchesDenseScan(t *testing.T) {
	x := testutil.JitteredGrid(41, 0, 0.2, 0.6, 30)
	y := testutil.DeterministicNoise(42, 1, 30)
	sp := mustBuild(t, x, y)

	ps, err := sp.Maxima(1)
	if err != nil {
		t.Fatalf("Maxima: %v", err)
	}

	dense := sp.EvalAll(testutil.Grid(x[0], x[len(x)-1], 200001))
	best := math.Inf(-1)
	for _, v := range dense {
		best = math.Max(best, v)
	}

	if ps.Y(0) < best-1e-12 {
		t.Fatalf("top maximum %v below dense scan maximum %v", ps.Y(0), best)
	}
	testutil.RequireNearlyEqual(t, ps.Y(0), best, 1e-6, "top maximum")
}

func TestMaximaAreLocalMaxima(t *testing.T) {
	x := testutil.JitteredGrid(51, 0, 0.2, 0.6, 40)
	y := testutil.DeterministicNoise(52, 1, 40)
	sp := mustBuild(t, x, y)

	ps, err := sp.Maxima(10)
	if err != nil {
		t.Fatalf("Maxima: %v", err)
	}

	const d = 1e-4
	for _, p := range ps.Peaks() {
		testutil.RequireNearlyEqual(t, sp.Eval(p.X), p.Y, 1e-12, "peak value")
		if p.X > x[0] && sp.Eval(p.X-d) > p.Y {
			t.Fatalf("peak at %v rises to the left", p.X)
		}
		if p.X < x[len(x)-1] && sp.Eval(p.X+d) > p.Y {
			t.Fatalf("peak at %v rises to the right", p.X)
		}
	}
}

func TestMaximaIdempotent(t *testing.T) {
	x := testutil.JitteredGrid(61, 0, 0.1, 0.5, 50)
	y := testutil.DeterministicNoise(62, 3, 50)
	sp := mustBuild(t, x, y)

	a, err := sp.Maxima(6)
	if err != nil {
		t.Fatalf("Maxima: %v", err)
	}
	b, err := sp.Maxima(6)
	if err != nil {
		t.Fatalf("Maxima: %v", err)
	}

	pa, pb := a.Peaks(), b.Peaks()
	if len(pa) != len(pb) {
		t.Fatalf("lengths differ: %d vs %d", len(pa), len(pb))
	}
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("entry %d differs: %+v vs %+v", i, pa[i], pb[i])
		}
	}
}

func TestMaximaInto(t *testing.T) {
	sp := mustBuild(t, []float64{0, 1, 2, 3, 4}, []float64{0, 1, 0, 1, 0})

	ps, err := peakset.New(1)
	if err != nil {
		t.Fatalf("peakset.New: %v", err)
	}
	ps.Offer(-1, 100)

	if err := sp.MaximaInto(ps); err != nil {
		t.Fatalf("MaximaInto: %v", err)
	}
	if ps.Len() != 1 || ps.Y(0) > 1.1 {
		t.Fatalf("MaximaInto did not reset the set: %v", ps.Peaks())
	}

	if err := sp.MaximaInto(nil); err == nil {
		t.Fatal("expected error for nil peak set")
	}
}

func TestMaximaErrors(t *testing.T) {
	if _, err := New().Maxima(3); !errors.Is(err, ErrNotBuilt) {
		t.Fatalf("unbuilt Maxima err = %v, want ErrNotBuilt", err)
	}

	ps, _ := peakset.New(2)
	if err := New().MaximaInto(ps); !errors.Is(err, ErrNotBuilt) {
		t.Fatalf("unbuilt MaximaInto err = %v, want ErrNotBuilt", err)
	}

	sp := mustBuild(t, []float64{0, 1}, []float64{0, 1})
	if _, err := sp.Maxima(0); !errors.Is(err, peakset.ErrCapacity) {
		t.Fatalf("Maxima(0) err = %v, want peakset.ErrCapacity", err)
	}
}
