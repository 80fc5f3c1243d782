// Command splinepeaks fits a natural cubic spline through a sample file and
// prints its highest local maxima.
//
// Usage:
//
//	splinepeaks [flags] sample-file
//
// Sample files are YAML documents with "x" and "y" lists, or the raw binary
// layout: a uint64 count n followed by n x values and n y values (float64).
// The format is taken from the file extension unless -format is given.
//
// Examples:
//
//	splinepeaks samples.yaml
//	splinepeaks -k 3 -eval 0.5,1.25 samples.yaml
//	splinepeaks -format binary -byteorder big samples.dat
//	splinepeaks -spectrum -rate 48000 -window blackman-harris capture.yaml
package main

import (
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-spline/dsp/peakset"
	"github.com/cwbudde/algo-spline/dsp/spline"
	"github.com/cwbudde/algo-spline/dsp/window"
	"github.com/cwbudde/algo-spline/internal/sampleio"
	"github.com/cwbudde/algo-spline/measure/spectralpeaks"
)

type options struct {
	k         int
	format    string
	byteOrder string
	eval      string
	fixed     bool
	spectrum  bool
	rate      float64
	window    string
	path      string
}

func main() {
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	order, err := parseByteOrder(opts.byteOrder)
	if err != nil {
		return err
	}

	samples, err := loadSamples(opts.path, opts.format, order)
	if err != nil {
		return err
	}

	if opts.spectrum {
		return runSpectrum(stdout, samples, opts)
	}

	sp, err := buildSpline(samples, opts.fixed)
	if err != nil {
		return err
	}

	ps, err := sp.Maxima(opts.k)
	if err != nil {
		return err
	}

	if err := printMaxima(stdout, ps); err != nil {
		return err
	}

	if opts.eval == "" {
		return nil
	}

	points, err := parseEvalPoints(opts.eval)
	if err != nil {
		return err
	}

	return printEval(stdout, sp, points)
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("splinepeaks", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&opts.k, "k", 5, "number of maxima to report")
	fs.StringVar(&opts.format, "format", "", "sample file format: yaml or binary (default: from extension)")
	fs.StringVar(&opts.byteOrder, "byteorder", "little", "byte order of binary files: little, big or native")
	fs.StringVar(&opts.eval, "eval", "", "comma-separated x values to evaluate the spline at")
	fs.BoolVar(&opts.fixed, "fixed", false, "build with storage allocated once for the input size")
	fs.BoolVar(&opts.spectrum, "spectrum", false, "treat y as a signal and report spectral peaks")
	fs.Float64Var(&opts.rate, "rate", 0, "sample rate in Hz for -spectrum (default: frequencies in bins)")
	fs.StringVar(&opts.window, "window", "hann", "window for -spectrum: rectangular, hann, hamming, blackman, blackman-harris, flattop")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: splinepeaks [flags] sample-file\n\n")
		fmt.Fprintf(stderr, "Fits a natural cubic spline through the samples and prints its highest maxima.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  splinepeaks samples.yaml\n")
		fmt.Fprintf(stderr, "  splinepeaks -k 3 -eval 0.5,1.25 samples.yaml\n")
		fmt.Fprintf(stderr, "  splinepeaks -format binary -byteorder big samples.dat\n")
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return opts, fmt.Errorf("expected one sample file, got %d arguments", fs.NArg())
	}

	if opts.k < 1 {
		return opts, fmt.Errorf("-k must be >= 1, got %d", opts.k)
	}

	opts.path = fs.Arg(0)

	return opts, nil
}

func parseByteOrder(name string) (binary.ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "little", "le":
		return binary.LittleEndian, nil
	case "big", "be":
		return binary.BigEndian, nil
	case "native":
		return binary.NativeEndian, nil
	default:
		return nil, fmt.Errorf("unknown byte order %q", name)
	}
}

func loadSamples(path, format string, order binary.ByteOrder) (sampleio.Samples, error) {
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			format = "yaml"
		default:
			format = "binary"
		}
	}

	switch strings.ToLower(format) {
	case "yaml", "yml":
		return sampleio.LoadYAML(path)
	case "binary", "bin":
		return sampleio.LoadBinary(path, order)
	default:
		return sampleio.Samples{}, fmt.Errorf("unknown format %q", format)
	}
}

func buildSpline(s sampleio.Samples, fixed bool) (*spline.Spline, error) {
	if !fixed {
		return spline.Build(s.X, s.Y)
	}

	sp, err := spline.NewFixed(len(s.X))
	if err != nil {
		return nil, err
	}

	if err := sp.Set(s.X, s.Y); err != nil {
		return nil, err
	}

	return sp, nil
}

func parseEvalPoints(list string) ([]float64, error) {
	fields := strings.Split(list, ",")
	out := make([]float64, 0, len(fields))

	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}

		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid -eval value %q: %w", f, err)
		}

		out = append(out, v)
	}

	return out, nil
}

func printMaxima(w io.Writer, ps *peakset.PeakSet) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Rank\tx\ty\n")
	fmt.Fprintf(tw, "----\t-\t-\n")

	for i, p := range ps.Peaks() {
		fmt.Fprintf(tw, "%d\t%.6g\t%.6g\n", i+1, p.X, p.Y)
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write maxima: %w", err)
	}

	return nil
}

func printEval(w io.Writer, sp *spline.Spline, points []float64) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "\nx\tvalue\n")
	fmt.Fprintf(tw, "-\t-----\n")

	for i, v := range sp.EvalAll(points) {
		fmt.Fprintf(tw, "%.6g\t%.6g\n", points[i], v)
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write values: %w", err)
	}

	return nil
}

func runSpectrum(w io.Writer, s sampleio.Samples, opts options) error {
	wt, err := window.ParseType(opts.window)
	if err != nil {
		return err
	}

	peaks, err := spectralpeaks.AnalyzeSignal(s.Y, spectralpeaks.Config{
		SampleRate: opts.rate,
		MaxPeaks:   opts.k,
		WindowType: wt,
	})
	if err != nil {
		return err
	}

	unit := "Freq [bins]"
	if opts.rate > 0 {
		unit = "Freq [Hz]"
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Rank\t%s\tMagnitude\n", unit)
	fmt.Fprintf(tw, "----\t%s\t---------\n", strings.Repeat("-", len(unit)))

	for i, p := range peaks {
		fmt.Fprintf(tw, "%d\t%.6g\t%.6g\n", i+1, p.Freq, p.Magnitude)
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write peaks: %w", err)
	}

	info := window.Info(wt)
	fmt.Fprintf(w, "\nWindow: %s (ENBW %.2f bins, sidelobe %.1f dB)\n", info.Name, info.ENBW, info.HighestSidelobe)

	return nil
}
