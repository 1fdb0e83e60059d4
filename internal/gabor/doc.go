// Package gabor builds banks of oriented Gabor kernels and filters images with them.
//
// A bank holds K kernels that share every parameter except orientation. Kernel i
// is oriented at Theta + i*π/K, so the bank spans [Theta, Theta+π) evenly. All
// kernels use a quadrature phase offset of π/2 (see Phase), which makes them
// respond to step edges rather than thin ridges.
//
// # Image Representation
//
// Source images and filter responses are gonum *mat.Dense matrices: row index is
// the image row (Y, top = 0), column index is the image column (X, left = 0).
// Responses always have the same dimensions as the source; no cropping is done.
//
// # Filtering
//
// Filter computes a 2D correlation with the kernel anchored at its centre, the
// same operation OpenCV calls filter2D. Pixels outside the image are synthesized
// by a Border policy:
//   - BorderReflect101: gfedcb|abcdefgh|gfedcba (default)
//   - BorderReplicate:  aaaaaa|abcdefgh|hhhhhhh
//
// # Error Handling
//
// Invalid parameters are reported as errors wrapping ErrInvalidParams. A nil or
// zero-sized source image is reported as ErrEmptySource.
//
// # Thread Safety
//
// Kernels and Banks are read-only once built and safe to share between
// goroutines. Build itself filters kernels concurrently when WithWorkers > 1.
package gabor
