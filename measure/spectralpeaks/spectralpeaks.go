// Package spectralpeaks locates spectral peaks with sub-bin resolution.
//
// The signal is windowed and transformed, and a natural cubic spline is fit
// through the magnitude of the bins inside the configured frequency range.
// The spline's highest local maxima are returned as peaks, so a tone between
// two bins is reported close to its true frequency and amplitude instead of
// at the nearest bin.
package spectralpeaks

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-spline/dsp/peakset"
	"github.com/cwbudde/algo-spline/dsp/spline"
	"github.com/cwbudde/algo-spline/dsp/window"
)

const defaultMaxPeaks = 5

var (
	// ErrEmptySignal is returned when there is nothing to analyze.
	ErrEmptySignal = errors.New("spectralpeaks: empty signal")
	// ErrInvalidConfig is returned for an unusable FFT size or frequency range.
	ErrInvalidConfig = errors.New("spectralpeaks: invalid config")
)

// Config holds peak picking parameters.
type Config struct {
	// SampleRate in Hz. When <= 0 frequencies are reported in bins.
	SampleRate float64
	// FFTSize must be a power of two. 0 selects the next power of two that
	// holds the signal.
	FFTSize int
	// MaxPeaks is the number of peaks returned at most. Defaults to 5.
	MaxPeaks int
	// WindowType is applied before the transform, Hann by default.
	WindowType window.Type
	// MinFreq and MaxFreq bound the searched range. MaxFreq <= 0 means Nyquist.
	MinFreq float64
	MaxFreq float64
}

// Peak is one spectral maximum.
type Peak struct {
	Freq      float64
	Magnitude float64
}

// Analyzer performs peak picking, reusing its FFT plan and buffers between
// calls. An Analyzer is not safe for concurrent use.
type Analyzer struct {
	cfg Config

	fftSize int
	plan    *algofft.Plan[complex128]
	in      []complex128
	out     []complex128
	re      []float64
	im      []float64
	mag     []float64
	win     []float64
	freqs   []float64

	sp *spline.Spline
	ps *peakset.PeakSet
}

// NewAnalyzer creates an analyzer for cfg.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	cfg, err := normalizeConfig(cfg)
	if err != nil {
		return nil, err
	}

	ps, err := peakset.New(cfg.MaxPeaks)
	if err != nil {
		return nil, err
	}

	a := &Analyzer{cfg: cfg, ps: ps}

	if cfg.FFTSize > 0 {
		if err := a.prepare(cfg.FFTSize); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// AnalyzeSignal is a one-shot peak analysis of a time-domain signal.
func AnalyzeSignal(signal []float64, cfg Config) ([]Peak, error) {
	a, err := NewAnalyzer(cfg)
	if err != nil {
		return nil, err
	}

	return a.AnalyzeSignal(signal)
}

// Config returns the normalized configuration.
func (a *Analyzer) Config() Config { return a.cfg }

// AnalyzeSignal windows and transforms signal and returns its highest
// spectral peaks in descending order of magnitude. Magnitudes are scaled so
// that a sine of amplitude A reads A.
func (a *Analyzer) AnalyzeSignal(signal []float64) ([]Peak, error) {
	if len(signal) == 0 {
		return nil, ErrEmptySignal
	}

	fftSize := a.cfg.FFTSize
	if fftSize == 0 {
		fftSize = max(nextPowerOf2(len(signal)), 2)
	}

	if len(signal) > fftSize {
		return nil, fmt.Errorf("%w: %d samples exceed FFT size %d", ErrInvalidConfig, len(signal), fftSize)
	}

	if err := a.prepare(fftSize); err != nil {
		return nil, err
	}

	if len(a.win) != len(signal) {
		a.win = window.Generate(a.cfg.WindowType, len(signal))
	}

	gain, err := window.CoherentGain(a.win)
	if err != nil {
		return nil, fmt.Errorf("%w: %d samples are too few for the window: %v", ErrInvalidConfig, len(signal), err)
	}

	windowed := a.re[:len(signal)]
	if err := window.ApplyCoefficients(windowed, signal, a.win); err != nil {
		return nil, err
	}

	clear(a.in)

	for i, v := range windowed {
		a.in[i] = complex(v, 0)
	}

	if err := a.plan.Forward(a.out, a.in); err != nil {
		return nil, fmt.Errorf("spectralpeaks: forward transform: %w", err)
	}

	bins := fftSize/2 + 1
	for i := 0; i < bins; i++ {
		a.re[i] = real(a.out[i])
		a.im[i] = imag(a.out[i])
	}

	mag := a.mag[:bins]
	vecmath.Magnitude(mag, a.re[:bins], a.im[:bins])
	vecmath.ScaleBlock(mag, mag, 2/(gain*float64(len(signal))))

	// DC and Nyquist have no mirrored twin.
	mag[0] *= 0.5
	mag[bins-1] *= 0.5

	return a.analyze(mag, a.binHz(fftSize))
}

// AnalyzeMagnitude returns the highest peaks of a precomputed magnitude
// spectrum holding bins [0..Nyquist]. Without a configured FFTSize the
// transform length is taken as 2*(len(mag)-1).
func (a *Analyzer) AnalyzeMagnitude(mag []float64) ([]Peak, error) {
	if len(mag) == 0 {
		return nil, ErrEmptySignal
	}

	fftSize := a.cfg.FFTSize
	if fftSize == 0 {
		fftSize = 2 * (len(mag) - 1)
	}

	return a.analyze(mag, a.binHz(fftSize))
}

func (a *Analyzer) analyze(mag []float64, binHz float64) ([]Peak, error) {
	lo := int(math.Ceil(a.cfg.MinFreq / binHz))

	hi := len(mag) - 1
	if a.cfg.MaxFreq > 0 {
		hi = min(hi, int(math.Floor(a.cfg.MaxFreq/binHz)))
	}

	if hi-lo < 1 {
		return nil, fmt.Errorf("%w: range [%g, %g] covers fewer than 2 of %d bins",
			ErrInvalidConfig, a.cfg.MinFreq, a.cfg.MaxFreq, len(mag))
	}

	n := hi - lo + 1
	if cap(a.freqs) < n {
		a.freqs = make([]float64, n)
	}

	freqs := a.freqs[:n]
	for i := range freqs {
		freqs[i] = float64(lo+i) * binHz
	}

	if a.sp == nil || a.sp.Capacity() < n {
		sp, err := spline.NewFixed(n)
		if err != nil {
			return nil, err
		}

		a.sp = sp
	}

	if err := a.sp.Set(freqs, mag[lo:hi+1]); err != nil {
		return nil, err
	}

	if err := a.sp.MaximaInto(a.ps); err != nil {
		return nil, err
	}

	peaks := make([]Peak, a.ps.Len())
	for i := range peaks {
		p := a.ps.At(i)
		peaks[i] = Peak{Freq: p.X, Magnitude: p.Y}
	}

	return peaks, nil
}

func (a *Analyzer) prepare(fftSize int) error {
	if a.plan != nil && a.fftSize == fftSize {
		return nil
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return fmt.Errorf("spectralpeaks: failed to create FFT plan: %w", err)
	}

	bins := fftSize/2 + 1

	a.plan = plan
	a.fftSize = fftSize
	a.in = make([]complex128, fftSize)
	a.out = make([]complex128, fftSize)
	a.re = make([]float64, fftSize)
	a.im = make([]float64, bins)
	a.mag = make([]float64, bins)

	return nil
}

func (a *Analyzer) binHz(fftSize int) float64 {
	if a.cfg.SampleRate <= 0 {
		return 1
	}

	return a.cfg.SampleRate / float64(fftSize)
}

func normalizeConfig(cfg Config) (Config, error) {
	if cfg.FFTSize < 0 || (cfg.FFTSize > 0 && (cfg.FFTSize < 2 || cfg.FFTSize&(cfg.FFTSize-1) != 0)) {
		return cfg, fmt.Errorf("%w: FFT size %d is not a power of two >= 2", ErrInvalidConfig, cfg.FFTSize)
	}

	if !isFinite(cfg.MinFreq) || !isFinite(cfg.MaxFreq) {
		return cfg, fmt.Errorf("%w: non-finite frequency bound", ErrInvalidConfig)
	}

	if cfg.MaxPeaks <= 0 {
		cfg.MaxPeaks = defaultMaxPeaks
	}

	if cfg.MinFreq < 0 {
		cfg.MinFreq = 0
	}

	return cfg, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}

	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
