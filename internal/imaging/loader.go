package imaging

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
	"gonum.org/v1/gonum/mat"
)

// ErrImageLoad is wrapped by every failure to produce pixels from an image file.
var ErrImageLoad = errors.New("image load failed")

// ImageCache provides thread-safe caching of decoded images to avoid redundant disk reads.
//
// The cache stores decoded image.Image objects keyed by their file path. Once an image
// is loaded, subsequent Load() calls for the same path return the cached copy without
// disk I/O. Cached images remain in memory until removed via Evict() or Clear().
//
// ImageCache is safe for concurrent use by multiple goroutines.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves an image from the cache or decodes it from disk if not cached.
//
// Supported formats are PNG, JPEG, GIF, BMP, TIFF and WebP. JPEG EXIF orientation
// tags are applied so that rows and columns match what a viewer shows.
//
// # Errors
//
// All errors wrap ErrImageLoad:
//   - the file does not exist or cannot be read
//   - the file is not a decodable image
//   - the decoded image has zero width or height
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := Open(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// LoadGray loads an image through the cache and converts it to a grayscale
// float matrix (see ToGray).
func (c *ImageCache) LoadGray(path string) (*mat.Dense, error) {
	img, err := c.Load(path)
	if err != nil {
		return nil, err
	}
	return ToGray(img), nil
}

// Clear removes all images from the cache, freeing the associated memory.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
//
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Open decodes an image file without caching it.
//
// Parameters:
//   - path: Image file path. PNG, JPEG, GIF, BMP, TIFF and WebP are supported.
//
// Returns:
//   - image.Image: The decoded image with EXIF orientation applied.
//   - error: Wraps ErrImageLoad and, when there is one, the decoder or file
//     system error.
func Open(path string) (image.Image, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrImageLoad)
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrImageLoad, path, err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: %s: image has no pixels", ErrImageLoad, path)
	}
	return img, nil
}

// LoadGray decodes an image file and converts it to a grayscale float matrix.
// See Open for the errors and ToGray for the conversion.
func LoadGray(path string) (*mat.Dense, error) {
	img, err := Open(path)
	if err != nil {
		return nil, err
	}
	return ToGray(img), nil
}

// ToGray converts an image to an 8-bit grayscale intensity matrix stored as float64.
//
// Luminance uses ITU-R BT.601 weights (0.299*R + 0.587*G + 0.114*B) rounded to the
// nearest integer, so values are whole numbers in [0, 255]. Matrix row r, column c
// is the pixel at (X=c, Y=r) relative to the image's top-left corner.
func ToGray(img image.Image) *mat.Dense {
	gray := imaging.Grayscale(img)
	b := gray.Bounds()
	rows, cols := b.Dy(), b.Dx()

	m := mat.NewDense(rows, cols, nil)
	for r := 0; r < rows; r++ {
		line := gray.Pix[r*gray.Stride : r*gray.Stride+cols*4]
		for c := 0; c < cols; c++ {
			m.Set(r, c, float64(line[c*4]))
		}
	}
	return m
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the format implied by the file extension: "png", "jpeg", "gif",
	// "bmp", "tiff", "webp", or "unknown".
	Format string `json:"format"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// Grayscale indicates whether the decoded image is single-channel.
	Grayscale bool `json:"grayscale"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image through the cache and returns metadata about it.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	colorDepth := "8-bit"
	grayscale := false
	switch img.(type) {
	case *image.Gray:
		grayscale = true
	case *image.Gray16:
		grayscale = true
		colorDepth = "16-bit"
	case *image.RGBA64, *image.NRGBA64:
		colorDepth = "16-bit"
	}

	bounds := img.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        formatFromExt(path),
		ColorDepth:    colorDepth,
		Grayscale:     grayscale,
		FileSizeBytes: stat.Size(),
	}, nil
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions returns the dimensions of an image without additional metadata.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &DimensionsResult{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	case ".bmp":
		return "bmp"
	case ".tif", ".tiff":
		return "tiff"
	case ".webp":
		return "webp"
	}
	return "unknown"
}
