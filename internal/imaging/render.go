package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Diverging colour map endpoints for signed filter responses.
var (
	negativeColor = colorful.Color{R: 0.230, G: 0.299, B: 0.754}
	zeroColor     = colorful.Color{R: 0.865, G: 0.865, B: 0.865}
	positiveColor = colorful.Color{R: 0.706, G: 0.016, B: 0.150}
)

// Heatmap renders a signed matrix as an RGBA image using a blue-grey-red
// diverging colour map blended in CIE L*a*b* space.
//
// The scale is symmetric: the value with the largest magnitude maps to the
// saturated end of its sign, zero maps to grey. An all-zero matrix renders grey.
func Heatmap(m *mat.Dense) *image.RGBA {
	rows, cols := m.Dims()
	data := mat.DenseCopyOf(m).RawMatrix().Data
	limit := math.Max(math.Abs(floats.Min(data)), math.Abs(floats.Max(data)))

	img := image.NewRGBA(image.Rect(0, 0, cols, rows))
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			img.Set(c, r, divergingColor(m.At(r, c), limit))
		}
	}
	return img
}

func divergingColor(v, limit float64) colorful.Color {
	if v == 0 || limit == 0 || math.IsNaN(v) {
		return zeroColor
	}
	t := math.Max(-1, math.Min(1, v/limit))
	if t < 0 {
		return zeroColor.BlendLab(negativeColor, -t).Clamped()
	}
	return zeroColor.BlendLab(positiveColor, t).Clamped()
}

// SaveHeatmap writes the heatmap of m to path as a PNG file, creating parent
// directories as needed.
func SaveHeatmap(path string, m *mat.Dense) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create dump directory: %w", err)
	}
	if err := imgio.Save(path, Heatmap(m), imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to save heatmap %s: %w", path, err)
	}
	return nil
}

// HeatmapResult contains a rendered matrix encoded as base64 PNG.
type HeatmapResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodeHeatmap renders m, optionally enlarged by an integer factor with
// nearest-neighbour sampling, and returns it as base64 PNG.
func EncodeHeatmap(m *mat.Dense, scale int) (*HeatmapResult, error) {
	var img image.Image = Heatmap(m)
	if scale > 1 {
		b := img.Bounds()
		img = imaging.Resize(img, b.Dx()*scale, b.Dy()*scale, imaging.NearestNeighbor)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode heatmap: %w", err)
	}

	return &HeatmapResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
