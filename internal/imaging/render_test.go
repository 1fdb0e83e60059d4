package imaging

import (
	"encoding/base64"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestHeatmap_Dimensions(t *testing.T) {
	m := mat.NewDense(3, 5, nil)
	img := Heatmap(m)
	if img.Bounds().Dx() != 5 || img.Bounds().Dy() != 3 {
		t.Errorf("got %dx%d, want 5x3", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestHeatmap_Colors(t *testing.T) {
	m := mat.NewDense(1, 3, []float64{-2, 0, 2})
	img := Heatmap(m)

	neg := img.RGBAAt(0, 0)
	mid := img.RGBAAt(1, 0)
	pos := img.RGBAAt(2, 0)

	if neg.B <= neg.R {
		t.Errorf("negative extreme should be blue, got %+v", neg)
	}
	if pos.R <= pos.B {
		t.Errorf("positive extreme should be red, got %+v", pos)
	}
	if mid.R != mid.G || mid.G != mid.B {
		t.Errorf("zero should be grey, got %+v", mid)
	}
	if neg.A != 255 || pos.A != 255 {
		t.Error("heatmap should be opaque")
	}
}

func TestHeatmap_AllZero(t *testing.T) {
	img := Heatmap(mat.NewDense(2, 2, nil))
	want := img.RGBAAt(0, 0)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if img.RGBAAt(x, y) != want {
				t.Errorf("(%d,%d) differs from (0,0)", x, y)
			}
		}
	}
}

func TestSaveHeatmap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "response_0.png")
	m := mat.NewDense(4, 6, []float64{
		-1, 0, 1, 2, 3, 4,
		-1, 0, 1, 2, 3, 4,
		-1, 0, 1, 2, 3, 4,
		-1, 0, 1, 2, 3, 4,
	})

	if err := SaveHeatmap(path, m); err != nil {
		t.Fatalf("SaveHeatmap failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open heatmap: %v", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("heatmap is not a valid PNG: %v", err)
	}
	if img.Bounds().Dx() != 6 || img.Bounds().Dy() != 4 {
		t.Errorf("got %dx%d, want 6x4", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestEncodeHeatmap(t *testing.T) {
	m := mat.NewDense(3, 3, []float64{1, 0, -1, 1, 0, -1, 1, 0, -1})

	result, err := EncodeHeatmap(m, 4)
	if err != nil {
		t.Fatalf("EncodeHeatmap failed: %v", err)
	}
	if result.Width != 12 || result.Height != 12 {
		t.Errorf("dimensions: got %dx%d, want 12x12", result.Width, result.Height)
	}
	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}

	decoded, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	if _, err := png.Decode(strings.NewReader(string(decoded))); err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
}
