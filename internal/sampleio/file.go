// Package sampleio reads and writes sample sets for the spline tools.
//
// File is a thin binary file handle with a configurable byte order. The
// loaders in samples.go build on it for the raw binary format and use YAML
// for the text format.
package sampleio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// Mode selects how a file is opened. Modes combine as bit flags.
type Mode uint8

const (
	Read Mode = 1 << iota
	Write
	Append
	Truncate
	// Create allows Read|Write to create a missing file. Write and Append
	// modes always create.
	Create
)

// File is an open binary file. The zero byte order is the host's.
type File struct {
	f     *os.File
	path  string
	mode  Mode
	order binary.ByteOrder
}

// Open opens path with mode. Read-only modes require an existing regular
// file. Supported combinations:
//
//	Write, Write|Truncate         truncate or create, write only
//	Append, Write|Append          create, writes go to the end
//	Read                          read only
//	Read|Write                    read and write in place
//	Read|Write|Truncate           truncate or create, read and write
//	Read|Append, Read|Write|Append  create, read anywhere, writes go to the end
func Open(path string, mode Mode) (*File, error) {
	flag, err := osFlag(mode)
	if err != nil {
		return nil, err
	}

	if mode&(Write|Append) == 0 {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("sampleio: open %s: %w", path, err)
		}

		if !info.Mode().IsRegular() {
			return nil, fmt.Errorf("sampleio: open %s: not a regular file", path)
		}
	}

	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, fmt.Errorf("sampleio: open %s: %w", path, err)
	}

	return &File{f: f, path: path, mode: mode, order: binary.NativeEndian}, nil
}

func osFlag(mode Mode) (int, error) {
	create := 0
	if mode&Create != 0 {
		create = os.O_CREATE
	}

	switch mode &^ Create {
	case Write, Write | Truncate:
		return os.O_WRONLY | os.O_CREATE | os.O_TRUNC, nil
	case Append, Write | Append:
		return os.O_WRONLY | os.O_CREATE | os.O_APPEND, nil
	case Read:
		return os.O_RDONLY | create, nil
	case Read | Write:
		return os.O_RDWR | create, nil
	case Read | Write | Truncate:
		return os.O_RDWR | os.O_CREATE | os.O_TRUNC, nil
	case Read | Append, Read | Write | Append:
		return os.O_RDWR | os.O_CREATE | os.O_APPEND, nil
	default:
		return 0, fmt.Errorf("%w: %#x", ErrInvalidMode, uint8(mode))
	}
}

// Path returns the path the file was opened with.
func (f *File) Path() string { return f.path }

// Mode returns the mode the file was opened with.
func (f *File) Mode() Mode { return f.mode }

// CanRead reports whether the file was opened for reading.
func (f *File) CanRead() bool { return f.mode&Read != 0 }

// CanWrite reports whether the file was opened for writing or appending.
func (f *File) CanWrite() bool { return f.mode&(Write|Append) != 0 }

// SetByteOrder sets the byte order used by the value and float64 helpers.
func (f *File) SetByteOrder(order binary.ByteOrder) {
	if order == nil {
		order = binary.NativeEndian
	}

	f.order = order
}

// ByteOrder returns the byte order used by the value and float64 helpers.
func (f *File) ByteOrder() binary.ByteOrder { return f.order }

// Close closes the file. Closing twice returns ErrClosed.
func (f *File) Close() error {
	if f.f == nil {
		return ErrClosed
	}

	err := f.f.Close()
	f.f = nil

	return err
}

// Seek sets the offset for the next read or write, as io.Seeker.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	if f.f == nil {
		return 0, ErrClosed
	}

	return f.f.Seek(offset, whence)
}

// Tell returns the current offset.
func (f *File) Tell() (int64, error) {
	return f.Seek(0, io.SeekCurrent)
}

// Size returns the current file size in bytes.
func (f *File) Size() (int64, error) {
	if f.f == nil {
		return 0, ErrClosed
	}

	info, err := f.f.Stat()
	if err != nil {
		return 0, err
	}

	return info.Size(), nil
}

// ReadBytes fills p completely or fails with ErrShortRead.
func (f *File) ReadBytes(p []byte) error {
	if err := f.readable(); err != nil {
		return err
	}

	if _, err := io.ReadFull(f.f, p); err != nil {
		return wrapRead(err)
	}

	return nil
}

// WriteBytes writes all of p.
func (f *File) WriteBytes(p []byte) error {
	if err := f.writable(); err != nil {
		return err
	}

	_, err := f.f.Write(p)

	return err
}

// ReadValue decodes a fixed-size value into v, which must be a pointer to a
// fixed-size number, an array or slice of them, or a struct of such fields.
func (f *File) ReadValue(v any) error {
	if err := f.readable(); err != nil {
		return err
	}

	return wrapRead(binary.Read(f.f, f.order, v))
}

// WriteValue encodes a fixed-size value, see ReadValue.
func (f *File) WriteValue(v any) error {
	if err := f.writable(); err != nil {
		return err
	}

	return binary.Write(f.f, f.order, v)
}

// ReadFloat64s reads n float64 values.
func (f *File) ReadFloat64s(n int) ([]float64, error) {
	if n < 0 {
		return nil, fmt.Errorf("sampleio: negative count %d", n)
	}

	buf := make([]byte, 8*n)
	if err := f.ReadBytes(buf); err != nil {
		return nil, err
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = math.Float64frombits(f.order.Uint64(buf[8*i:]))
	}

	return out, nil
}

// WriteFloat64s writes v as consecutive float64 values.
func (f *File) WriteFloat64s(v []float64) error {
	buf := make([]byte, 8*len(v))
	for i, x := range v {
		f.order.PutUint64(buf[8*i:], math.Float64bits(x))
	}

	return f.WriteBytes(buf)
}

func (f *File) readable() error {
	if f.f == nil {
		return ErrClosed
	}

	if !f.CanRead() {
		return fmt.Errorf("%w: %s not opened for reading", ErrInvalidMode, f.path)
	}

	return nil
}

func (f *File) writable() error {
	if f.f == nil {
		return ErrClosed
	}

	if !f.CanWrite() {
		return fmt.Errorf("%w: %s not opened for writing", ErrInvalidMode, f.path)
	}

	return nil
}

func wrapRead(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", ErrShortRead, err)
	}

	return err
}
