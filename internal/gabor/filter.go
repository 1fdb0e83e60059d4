package gabor

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Border selects how pixels outside the image are synthesized during filtering.
type Border int

const (
	// BorderReflect101 mirrors around the edge pixel without repeating it.
	BorderReflect101 Border = iota

	// BorderReplicate repeats the edge pixel.
	BorderReplicate
)

func (b Border) String() string {
	switch b {
	case BorderReflect101:
		return "reflect101"
	case BorderReplicate:
		return "replicate"
	default:
		return fmt.Sprintf("Border(%d)", int(b))
	}
}

// ParseBorder converts a border name ("reflect101" or "replicate", case
// insensitive) to a Border. The empty string selects BorderReflect101.
func ParseBorder(name string) (Border, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "reflect101", "reflect_101", "default":
		return BorderReflect101, nil
	case "replicate", "clamp":
		return BorderReplicate, nil
	default:
		return 0, fmt.Errorf("%w: unknown border %q", ErrInvalidParams, name)
	}
}

// index maps a possibly out-of-range coordinate p onto [0, n).
func (b Border) index(p, n int) int {
	if p >= 0 && p < n {
		return p
	}
	if b == BorderReplicate {
		return clamp(p, 0, n-1)
	}
	if n == 1 {
		return 0
	}
	// Kernels wider than the image can overshoot more than once.
	for p < 0 || p >= n {
		if p < 0 {
			p = -p
		} else {
			p = 2*n - 2 - p
		}
	}
	return p
}

// Filter correlates src with the kernel anchored at its centre and returns a
// new matrix of the same dimensions. src is not modified.
func Filter(src *mat.Dense, k Kernel, border Border) *mat.Dense {
	rows, cols := src.Dims()
	size := k.Size()
	half := size / 2

	in := src.RawMatrix()
	kw := k.Weights.RawMatrix()
	dst := mat.NewDense(rows, cols, nil)
	out := dst.RawMatrix()

	// Precompute source row and column indices for every kernel tap.
	rowIdx := make([]int, rows*size)
	for r := 0; r < rows; r++ {
		for i := 0; i < size; i++ {
			rowIdx[r*size+i] = border.index(r+i-half, rows) * in.Stride
		}
	}
	colIdx := make([]int, cols*size)
	for c := 0; c < cols; c++ {
		for j := 0; j < size; j++ {
			colIdx[c*size+j] = border.index(c+j-half, cols)
		}
	}

	for r := 0; r < rows; r++ {
		rr := rowIdx[r*size : (r+1)*size]
		for c := 0; c < cols; c++ {
			cc := colIdx[c*size : (c+1)*size]
			var sum float64
			for i, base := range rr {
				krow := kw.Data[i*kw.Stride : i*kw.Stride+size]
				for j, off := range cc {
					sum += krow[j] * in.Data[base+off]
				}
			}
			out.Data[r*out.Stride+c] = sum
		}
	}
	return dst
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
