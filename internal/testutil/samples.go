package testutil

import (
	"math"
	"math/rand"
)

// Grid returns n evenly spaced abscissas from lo to hi inclusive.
func Grid(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + step*float64(i)
	}
	return out
}

// JitteredGrid returns n strictly increasing abscissas starting at lo with
// spacings drawn uniformly from [minStep, maxStep), using a fixed seed.
func JitteredGrid(seed int64, lo, minStep, maxStep float64, n int) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	x := lo
	for i := range out {
		out[i] = x
		x += minStep + rng.Float64()*(maxStep-minStep)
	}
	return out
}

// Apply returns f evaluated at every element of xs.
func Apply(xs []float64, f func(float64) float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = f(x)
	}
	return out
}

// DeterministicNoise generates values in [-amplitude, amplitude) with a fixed
// seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// DeterministicSine generates a sine wave sampled at sampleRate.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}
