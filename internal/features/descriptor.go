package features

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Descriptor is the flattened window of every filter response at one anchor.
type Descriptor []float32

// Dimension returns the length of a descriptor built from k responses and a
// window x window block.
func Dimension(k, window int) int {
	return k * window * window
}

// Assemble reads the window x window block whose top-left corner is at from
// every response and concatenates them.
//
// Values are appended filter by filter, then row offset, then column offset,
// and converted to float32 without any other change. The result always has
// Dimension(len(responses), window) elements.
//
// The window is checked against every response independently of how the
// anchor was produced:
//   - ErrInvalidGrid if window is not positive or responses is empty
//   - ErrOutOfBounds if the window does not fit inside a response
func Assemble(responses []*mat.Dense, at Point, window int) (Descriptor, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: window size must be positive, got %d", ErrInvalidGrid, window)
	}
	if len(responses) == 0 {
		return nil, fmt.Errorf("%w: no filter responses", ErrInvalidGrid)
	}

	d := make(Descriptor, 0, Dimension(len(responses), window))
	for f, resp := range responses {
		rows, cols := resp.Dims()
		if at.Row < 0 || at.Col < 0 || at.Row+window > rows || at.Col+window > cols {
			return nil, fmt.Errorf("%w: window %d at (%d,%d) exceeds response %d of size %dx%d",
				ErrOutOfBounds, window, at.Row, at.Col, f, rows, cols)
		}

		raw := resp.RawMatrix()
		for u := 0; u < window; u++ {
			start := (at.Row+u)*raw.Stride + at.Col
			for _, v := range raw.Data[start : start+window] {
				d = append(d, float32(v))
			}
		}
	}
	return d, nil
}
