package features

import "fmt"

// Point is an anchor location: the top-left corner of a descriptor window.
type Point struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Grid is an ordered list of anchor points in row-major scan order.
type Grid []Point

// Gaps returns the row and column step sizes used by Sample:
// (rows - window) / perRow and (cols - window) / perRow, truncated.
func Gaps(rows, cols, window, perRow int) (rowGap, colGap int) {
	return (rows - window) / perRow, (cols - window) / perRow
}

// Sample computes a uniform grid of anchor points over a rows x cols image.
//
// Parameters:
//   - rows, cols: Image dimensions in pixels.
//   - window: Side length of the descriptor window. Must be positive.
//   - perRow: Target number of anchors along each axis. Must be positive.
//
// Returns:
//   - Grid: Anchors in row-major order. May be empty, never nil.
//   - error: ErrInvalidGrid if window or perRow is not positive.
//
// # Sampling Rule
//
// Rows are scanned from 0 in steps of the row gap and columns from 0 in steps
// of the column gap (see Gaps). A point is kept only when
// row+window < rows and col+window < cols, so every window is strictly
// contained in the image.
//
// A gap that is zero or negative (the image is too small for perRow windows)
// samples a single position, 0, along that axis instead of looping forever.
//
// Example for a 256x256 image, window 16 and 24 points per row: both gaps are
// (256-16)/24 = 10, anchors run 0, 10, ..., 230 on each axis, 576 in total.
func Sample(rows, cols, window, perRow int) (Grid, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: window size must be positive, got %d", ErrInvalidGrid, window)
	}
	if perRow <= 0 {
		return nil, fmt.Errorf("%w: points per row must be positive, got %d", ErrInvalidGrid, perRow)
	}

	rowGap, colGap := Gaps(rows, cols, window, perRow)
	grid := make(Grid, 0, estimate(rows, window, rowGap)*estimate(cols, window, colGap))
	for _, r := range positions(rows, rowGap) {
		if r+window >= rows {
			break
		}
		for _, c := range positions(cols, colGap) {
			if c+window >= cols {
				break
			}
			grid = append(grid, Point{Row: r, Col: c})
		}
	}
	return grid, nil
}

// positions lists 0, gap, 2*gap, ... below n, or just 0 when gap is not positive.
func positions(n, gap int) []int {
	if n <= 0 {
		return nil
	}
	if gap <= 0 {
		return []int{0}
	}
	out := make([]int, 0, (n+gap-1)/gap)
	for p := 0; p < n; p += gap {
		out = append(out, p)
	}
	return out
}

func estimate(n, window, gap int) int {
	if n <= window {
		return 0
	}
	if gap <= 0 {
		return 1
	}
	return (n-window-1)/gap + 1
}
