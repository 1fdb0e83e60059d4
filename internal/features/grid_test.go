package features

import (
	"errors"
	"testing"
)

func TestSample_SingleAnchor(t *testing.T) {
	// 4x4 image, window 2, one point per row: gaps are 2, rows {0,2} and
	// cols {0,2} are scanned, and only (0,0) satisfies strict containment.
	grid, err := Sample(4, 4, 2, 1)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	if len(grid) != 1 || grid[0] != (Point{0, 0}) {
		t.Errorf("got %v, want [{0 0}]", grid)
	}
}

func TestSample_WindowSizedImage(t *testing.T) {
	grid, err := Sample(16, 16, 16, 24)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	if grid == nil {
		t.Fatal("grid should be empty, not nil")
	}
	if len(grid) != 0 {
		t.Errorf("got %d anchors, want 0", len(grid))
	}
}

func TestSample_ImageSmallerThanWindow(t *testing.T) {
	grid, err := Sample(5, 40, 16, 24)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	if len(grid) != 0 {
		t.Errorf("got %v, want no anchors", grid)
	}
}

func TestSample_ZeroGap(t *testing.T) {
	// (20-16)/24 == 0: each axis samples position 0 only.
	grid, err := Sample(20, 20, 16, 24)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	if len(grid) != 1 || grid[0] != (Point{0, 0}) {
		t.Errorf("got %v, want [{0 0}]", grid)
	}
}

func TestSample_ZeroGapOnOneAxis(t *testing.T) {
	// Rows: (20-16)/2 == 2 -> {0, 2}; cols: (17-16)/2 == 0 -> {0}.
	grid, err := Sample(20, 17, 16, 2)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	want := Grid{{0, 0}, {2, 0}}
	if len(grid) != len(want) {
		t.Fatalf("got %v, want %v", grid, want)
	}
	for i := range want {
		if grid[i] != want[i] {
			t.Errorf("anchor %d: got %v, want %v", i, grid[i], want[i])
		}
	}
}

func TestSample_Defaults256(t *testing.T) {
	grid, err := Sample(256, 256, 16, 24)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	// Gap 10, valid positions 0..230: 24 per axis.
	if len(grid) != 24*24 {
		t.Errorf("got %d anchors, want 576", len(grid))
	}
	if last := grid[len(grid)-1]; last != (Point{230, 230}) {
		t.Errorf("last anchor: got %v, want {230 230}", last)
	}
}

func TestSample_RowMajorOrder(t *testing.T) {
	grid, err := Sample(50, 70, 8, 4)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	for i := 1; i < len(grid); i++ {
		prev, cur := grid[i-1], grid[i]
		if cur.Row < prev.Row || (cur.Row == prev.Row && cur.Col <= prev.Col) {
			t.Fatalf("anchors %d and %d out of row-major order: %v, %v", i-1, i, prev, cur)
		}
	}
}

func TestSample_Containment(t *testing.T) {
	tests := []struct {
		rows, cols, window, perRow int
	}{
		{256, 256, 16, 24},
		{100, 37, 16, 24},
		{37, 100, 7, 3},
		{33, 33, 16, 1},
		{17, 500, 16, 24},
		{64, 48, 1, 64},
	}

	for _, tt := range tests {
		grid, err := Sample(tt.rows, tt.cols, tt.window, tt.perRow)
		if err != nil {
			t.Fatalf("Sample(%d,%d,%d,%d) failed: %v", tt.rows, tt.cols, tt.window, tt.perRow, err)
		}
		rowGap, colGap := Gaps(tt.rows, tt.cols, tt.window, tt.perRow)
		for _, p := range grid {
			if p.Row+tt.window >= tt.rows || p.Col+tt.window >= tt.cols {
				t.Errorf("%dx%d window %d: anchor %v not strictly contained", tt.rows, tt.cols, tt.window, p)
			}
			if rowGap > 0 && p.Row%rowGap != 0 {
				t.Errorf("anchor row %d not a multiple of gap %d", p.Row, rowGap)
			}
			if colGap > 0 && p.Col%colGap != 0 {
				t.Errorf("anchor col %d not a multiple of gap %d", p.Col, colGap)
			}
		}
		if cap(grid) < len(grid) {
			t.Errorf("capacity %d below length %d", cap(grid), len(grid))
		}
	}
}

func TestSample_Invalid(t *testing.T) {
	tests := []struct {
		name           string
		window, perRow int
	}{
		{"zero window", 0, 24},
		{"negative window", -4, 24},
		{"zero points", 16, 0},
		{"negative points", 16, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Sample(64, 64, tt.window, tt.perRow)
			if !errors.Is(err, ErrInvalidGrid) {
				t.Errorf("got %v, want ErrInvalidGrid", err)
			}
		})
	}
}

func TestEstimateMatchesSample(t *testing.T) {
	for _, n := range []int{1, 16, 17, 40, 255, 256, 257} {
		for _, perRow := range []int{1, 3, 24} {
			grid, err := Sample(n, n, 16, perRow)
			if err != nil {
				t.Fatalf("Sample failed: %v", err)
			}
			gap, _ := Gaps(n, n, 16, perRow)
			if e := estimate(n, 16, gap); e*e != len(grid) {
				t.Errorf("n=%d perRow=%d: estimate %d^2, got %d anchors", n, perRow, e, len(grid))
			}
		}
	}
}
