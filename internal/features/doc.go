// Package features samples local multi-orientation descriptors from a Gabor
// filter bank and stores them in a compact binary artifact.
//
// The pipeline has four stages:
//
//  1. gabor.Build filters the source image with K oriented kernels.
//  2. Sample places anchor points on a uniform grid, keeping only points whose
//     window lies strictly inside the image.
//  3. Assemble reads a window x window block from every response at an anchor
//     and concatenates them into one Descriptor.
//  4. Store collects descriptors in grid order and serializes them.
//
// Extractor runs all four stages; the individual functions are exported so each
// contract can be exercised on its own.
//
// # Artifact Format
//
// All fields are little-endian:
//
//	int32   count       number of descriptors
//	int32   dimension   K * window * window
//	float32 values[count*dimension]
//
// Descriptor values are laid out filter-major, then row offset, then column
// offset. There is no padding, so a file is exactly 8 + count*dimension*4 bytes.
package features
