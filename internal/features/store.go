package features

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// headerSize is the byte length of the count and dimension fields.
const headerSize = 8

const (
	// MaxDimension is the largest descriptor length the format accepts.
	MaxDimension = 1 << 24

	// MaxBodySize is the largest descriptor payload, in bytes, the format accepts.
	MaxBodySize = 1 << 32
)

// Store is an ordered collection of descriptors of equal length.
//
// Descriptors are kept in insertion order, which the extractor makes equal to
// grid order. A Store is not safe for concurrent Add calls.
type Store struct {
	dimension   int
	descriptors []Descriptor
}

// NewStore creates an empty store for descriptors of the given dimension.
// capacity is a hint for the number of descriptors.
func NewStore(dimension, capacity int) *Store {
	if capacity < 0 {
		capacity = 0
	}
	return &Store{
		dimension:   dimension,
		descriptors: make([]Descriptor, 0, capacity),
	}
}

// Dimension returns the length every descriptor in the store has.
func (s *Store) Dimension() int { return s.dimension }

// Len returns the number of descriptors.
func (s *Store) Len() int { return len(s.descriptors) }

// At returns descriptor i. The returned slice must not be modified.
func (s *Store) At(i int) Descriptor { return s.descriptors[i] }

// Descriptors returns the descriptors in insertion order.
func (s *Store) Descriptors() []Descriptor { return s.descriptors }

// Add appends a descriptor. Returns ErrDimension if its length differs from
// the store's dimension.
func (s *Store) Add(d Descriptor) error {
	if len(d) != s.dimension {
		return fmt.Errorf("%w: got %d values, want %d", ErrDimension, len(d), s.dimension)
	}
	s.descriptors = append(s.descriptors, d)
	return nil
}

// Size returns the serialized byte length: 8 + count*dimension*4.
func (s *Store) Size() int64 {
	return headerSize + int64(len(s.descriptors))*int64(s.dimension)*4
}

// Release drops every descriptor, keeping the dimension.
func (s *Store) Release() {
	s.descriptors = nil
}

// WriteTo serializes the store to w. It implements io.WriterTo; the returned
// count is the number of bytes w accepted.
func (s *Store) WriteTo(w io.Writer) (int64, error) {
	if err := checkHeader(int64(len(s.descriptors)), int64(s.dimension)); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDimension, err)
	}

	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)

	var header [headerSize]byte
	binary.LittleEndian.PutUint32(header[0:4], uint32(int32(len(s.descriptors))))
	binary.LittleEndian.PutUint32(header[4:8], uint32(int32(s.dimension)))
	if _, err := bw.Write(header[:]); err != nil {
		return cw.n, err
	}

	buf := make([]byte, 4*s.dimension)
	for _, d := range s.descriptors {
		for i, v := range d {
			binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
		}
		if _, err := bw.Write(buf); err != nil {
			return cw.n, err
		}
	}

	if err := bw.Flush(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// countingWriter records how many bytes the underlying writer accepted.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Save writes the store to path, creating or truncating the file.
//
// Any open, write or close failure is returned wrapped in ErrIO together with
// its cause. A failed write may leave a truncated file behind.
func (s *Store) Save(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrIO, cerr)
		}
	}()

	if _, err := s.WriteTo(f); err != nil {
		if errors.Is(err, ErrDimension) {
			return err
		}
		return fmt.Errorf("%w: %s: %w", ErrIO, path, err)
	}
	return nil
}

// checkHeader validates a descriptor count and dimension against the limits
// of the artifact format.
func checkHeader(count, dimension int64) error {
	switch {
	case count < 0 || dimension < 0:
		return fmt.Errorf("negative header count=%d dimension=%d", count, dimension)
	case count > math.MaxInt32 || dimension > MaxDimension:
		return fmt.Errorf("count=%d dimension=%d exceed the format limits", count, dimension)
	case dimension == 0 && count > 0:
		return fmt.Errorf("%d descriptors of dimension 0", count)
	case count*dimension*4 > MaxBodySize:
		return fmt.Errorf("body of %d bytes exceeds %d", count*dimension*4, int64(MaxBodySize))
	}
	return nil
}

// ReadStore decodes an artifact produced by WriteTo.
//
// The header is validated before anything is allocated, and descriptors are
// only allocated once their bytes have been read, so memory use is bounded by
// the input actually consumed.
//
// Returns ErrCorrupt if the header holds negative values, exceeds MaxDimension
// or MaxBodySize, announces descriptors of dimension 0, or the body is shorter
// than the header announces.
func ReadStore(r io.Reader) (*Store, error) {
	br := bufio.NewReader(r)

	var header [headerSize]byte
	if _, err := io.ReadFull(br, header[:]); err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", ErrCorrupt, err)
	}
	count := int64(int32(binary.LittleEndian.Uint32(header[0:4])))
	dimension := int64(int32(binary.LittleEndian.Uint32(header[4:8])))
	if err := checkHeader(count, dimension); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	s := NewStore(int(dimension), int(min(count, 1<<16)))
	buf := make([]byte, 4*int(dimension))
	for i := int64(0); i < count; i++ {
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, fmt.Errorf("%w: descriptor %d of %d: %w", ErrCorrupt, i, count, err)
		}
		d := make(Descriptor, dimension)
		for j := range d {
			d[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[j*4:]))
		}
		s.descriptors = append(s.descriptors, d)
	}
	return s, nil
}

// Load reads an artifact from path.
//
// Errors:
//   - ErrIO if the file cannot be opened or stat'ed
//   - ErrCorrupt if the file size differs from the size its header announces,
//     or for any error of ReadStore
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	var header [headerSize]byte
	if _, err := io.ReadFull(f, header[:]); err != nil {
		return nil, fmt.Errorf("%w: %s: reading header: %w", ErrCorrupt, path, err)
	}
	count := int64(int32(binary.LittleEndian.Uint32(header[0:4])))
	dimension := int64(int32(binary.LittleEndian.Uint32(header[4:8])))
	if err := checkHeader(count, dimension); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, path, err)
	}
	if want := headerSize + count*dimension*4; fi.Size() != want {
		return nil, fmt.Errorf("%w: %s: file is %d bytes, header announces %d",
			ErrCorrupt, path, fi.Size(), want)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return ReadStore(f)
}
