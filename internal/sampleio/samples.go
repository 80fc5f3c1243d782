package sampleio

import (
	"encoding/binary"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Samples is a set of (x, y) points.
type Samples struct {
	X []float64 `yaml:"x"`
	Y []float64 `yaml:"y"`
}

func (s Samples) validate() error {
	if len(s.X) != len(s.Y) {
		return fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(s.X), len(s.Y))
	}

	return nil
}

// LoadBinary reads a sample set stored as a uint64 count n followed by n x
// values and n y values, all float64, in the given byte order.
func LoadBinary(path string, order binary.ByteOrder) (Samples, error) {
	f, err := Open(path, Read)
	if err != nil {
		return Samples{}, err
	}
	defer f.Close()

	f.SetByteOrder(order)

	var n uint64
	if err := f.ReadValue(&n); err != nil {
		return Samples{}, fmt.Errorf("sampleio: %s: reading count: %w", path, err)
	}

	size, err := f.Size()
	if err != nil {
		return Samples{}, err
	}

	if n > uint64(size-8)/16 {
		return Samples{}, fmt.Errorf("%w: %s: header claims %d samples in %d bytes", ErrShortRead, path, n, size)
	}

	x, err := f.ReadFloat64s(int(n))
	if err != nil {
		return Samples{}, fmt.Errorf("sampleio: %s: reading x: %w", path, err)
	}

	y, err := f.ReadFloat64s(int(n))
	if err != nil {
		return Samples{}, fmt.Errorf("sampleio: %s: reading y: %w", path, err)
	}

	return Samples{X: x, Y: y}, nil
}

// SaveBinary writes s in the LoadBinary format, replacing any existing file.
func SaveBinary(path string, order binary.ByteOrder, s Samples) error {
	if err := s.validate(); err != nil {
		return err
	}

	f, err := Open(path, Write|Truncate)
	if err != nil {
		return err
	}

	f.SetByteOrder(order)

	if err := f.WriteValue(uint64(len(s.X))); err != nil {
		f.Close()
		return err
	}

	if err := f.WriteFloat64s(s.X); err != nil {
		f.Close()
		return err
	}

	if err := f.WriteFloat64s(s.Y); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

// LoadYAML reads a sample set from a YAML document with "x" and "y" lists.
func LoadYAML(path string) (Samples, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Samples{}, err
	}

	var s Samples
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Samples{}, fmt.Errorf("sampleio: %s: %w", path, err)
	}

	if err := s.validate(); err != nil {
		return Samples{}, fmt.Errorf("sampleio: %s: %w", path, err)
	}

	return s, nil
}

// SaveYAML writes s as a YAML document readable by LoadYAML.
func SaveYAML(path string, s Samples) error {
	if err := s.validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
