package imaging

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// createTestImage creates a simple test image file and returns its path.
// The caller is responsible for removing the file.
func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return writeTestPNG(t, img)
}

// createGradientImage creates a grayscale file whose pixel (x, y) has value x + 10*y.
func createGradientImage(t *testing.T, width, height int) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x + 10*y)})
		}
	}
	return writeTestPNG(t, img)
}

func writeTestPNG(t *testing.T, img image.Image) string {
	t.Helper()
	tmpFile, err := os.CreateTemp("", "test-image-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer tmpFile.Close()

	if err := png.Encode(tmpFile, img); err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to encode image: %v", err)
	}

	return tmpFile.Name()
}

func TestNewImageCache(t *testing.T) {
	cache := NewImageCache()
	if cache == nil {
		t.Fatal("NewImageCache returned nil")
	}
	if cache.images == nil {
		t.Fatal("NewImageCache did not initialize images map")
	}
}

func TestImageCache_Load(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 100, 100, color.RGBA{255, 0, 0, 255})
	defer os.Remove(imgPath)

	img1, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	bounds := img1.Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 100 {
		t.Errorf("unexpected dimensions: got %dx%d, want 100x100", bounds.Dx(), bounds.Dy())
	}

	// Second load should return cached image
	img2, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if img1 != img2 {
		t.Error("second Load did not return cached image")
	}
}

func TestImageCache_Load_NonExistent(t *testing.T) {
	cache := NewImageCache()
	_, err := cache.Load("/nonexistent/path/to/image.png")
	if !errors.Is(err, ErrImageLoad) {
		t.Errorf("got %v, want ErrImageLoad", err)
	}
}

func TestImageCache_Load_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-an-image.png")
	if err := os.WriteFile(path, []byte("this is not a png"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	_, err := NewImageCache().Load(path)
	if !errors.Is(err, ErrImageLoad) {
		t.Errorf("got %v, want ErrImageLoad", err)
	}
}

func TestOpen_EmptyPath(t *testing.T) {
	if _, err := Open(""); !errors.Is(err, ErrImageLoad) {
		t.Errorf("got %v, want ErrImageLoad", err)
	}
}

func TestImageCache_EvictAndClear(t *testing.T) {
	cache := NewImageCache()
	path1 := createTestImage(t, 10, 10, color.White)
	path2 := createTestImage(t, 10, 10, color.Black)
	defer os.Remove(path1)
	defer os.Remove(path2)

	if _, err := cache.Load(path1); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := cache.Load(path2); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cache.Evict(path1)
	if _, ok := cache.images[path1]; ok {
		t.Error("Evict did not remove image")
	}
	if _, ok := cache.images[path2]; !ok {
		t.Error("Evict removed the wrong image")
	}

	cache.Evict("/not/cached.png")

	cache.Clear()
	if len(cache.images) != 0 {
		t.Errorf("Clear left %d images", len(cache.images))
	}
}

func TestImageCache_Concurrent(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 20, 20, color.White)
	defer os.Remove(imgPath)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.LoadGray(imgPath); err != nil {
				t.Errorf("LoadGray failed: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestToGray(t *testing.T) {
	imgPath := createGradientImage(t, 7, 5)
	defer os.Remove(imgPath)

	m, err := LoadGray(imgPath)
	if err != nil {
		t.Fatalf("LoadGray failed: %v", err)
	}

	rows, cols := m.Dims()
	if rows != 5 || cols != 7 {
		t.Fatalf("dims: got %dx%d, want 5x7 (rows x cols)", rows, cols)
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if got, want := m.At(r, c), float64(c+10*r); got != want {
				t.Errorf("(%d,%d): got %g, want %g", r, c, got, want)
			}
		}
	}
}

func TestToGray_ColorWeights(t *testing.T) {
	tests := []struct {
		name string
		c    color.Color
		want float64
	}{
		{"white", color.White, 255},
		{"black", color.Black, 0},
		{"red", color.RGBA{255, 0, 0, 255}, 76},   // 0.299*255 = 76.2
		{"green", color.RGBA{0, 255, 0, 255}, 150}, // 0.587*255 = 149.7
		{"blue", color.RGBA{0, 0, 255, 255}, 29},   // 0.114*255 = 29.1
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewRGBA(image.Rect(0, 0, 1, 1))
			img.Set(0, 0, tt.c)
			if got := ToGray(img).At(0, 0); got != tt.want {
				t.Errorf("got %g, want %g", got, tt.want)
			}
		})
	}
}

func TestToGray_OffsetBounds(t *testing.T) {
	img := image.NewGray(image.Rect(10, 20, 13, 22))
	img.SetGray(10, 20, color.Gray{Y: 9})
	img.SetGray(12, 21, color.Gray{Y: 200})

	m := ToGray(img)
	rows, cols := m.Dims()
	if rows != 2 || cols != 3 {
		t.Fatalf("dims: got %dx%d, want 2x3", rows, cols)
	}
	if m.At(0, 0) != 9 || m.At(1, 2) != 200 {
		t.Errorf("corner values: got %g and %g, want 9 and 200", m.At(0, 0), m.At(1, 2))
	}
}

func TestLoadImageInfo(t *testing.T) {
	cache := NewImageCache()
	imgPath := createGradientImage(t, 12, 8)
	defer os.Remove(imgPath)

	info, err := LoadImageInfo(cache, imgPath)
	if err != nil {
		t.Fatalf("LoadImageInfo failed: %v", err)
	}
	if info.Width != 12 || info.Height != 8 {
		t.Errorf("dimensions: got %dx%d, want 12x8", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("Format: got %s, want png", info.Format)
	}
	if !info.Grayscale {
		t.Error("Grayscale: got false, want true")
	}
	if info.FileSizeBytes <= 0 {
		t.Errorf("FileSizeBytes: got %d, want > 0", info.FileSizeBytes)
	}
}

func TestGetDimensions(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 30, 40, color.White)
	defer os.Remove(imgPath)

	dims, err := GetDimensions(cache, imgPath)
	if err != nil {
		t.Fatalf("GetDimensions failed: %v", err)
	}
	if dims.Width != 30 || dims.Height != 40 {
		t.Errorf("got %dx%d, want 30x40", dims.Width, dims.Height)
	}
}

func TestFormatFromExt(t *testing.T) {
	tests := map[string]string{
		"a.png":  "png",
		"a.JPG":  "jpeg",
		"a.jpeg": "jpeg",
		"a.gif":  "gif",
		"a.bmp":  "bmp",
		"a.tif":  "tiff",
		"a.webp": "webp",
		"a.raw":  "unknown",
	}
	for path, want := range tests {
		if got := formatFromExt(path); got != want {
			t.Errorf("formatFromExt(%q): got %s, want %s", path, got, want)
		}
	}
}
