// Package imaging loads source images for feature extraction and renders
// float matrices (filter responses, kernels) back to viewable images.
//
// Decoding goes through github.com/disintegration/imaging with EXIF
// auto-orientation. PNG, JPEG and GIF decoders come from the standard library;
// BMP, TIFF and WebP are registered from golang.org/x/image.
//
// # Coordinate System
//
// Grayscale matrices returned by ToGray and LoadGray are gonum *mat.Dense values
// indexed (row, col):
//   - row: vertical position (0 = topmost pixel), the image Y coordinate
//   - col: horizontal position (0 = leftmost pixel), the image X coordinate
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. The conversion and rendering
// functions are stateless.
//
// # Error Handling
//
// Every failure to obtain pixels (missing file, undecodable data, zero-sized
// image) wraps ErrImageLoad, so callers can use errors.Is to tell decode
// problems from write problems.
package imaging
