// Package conv provides discrete 2D convolution of sampled images with
// small, centered, odd-sized kernels.
//
// The output always has the dimensions of the source image ("same" mode).
// Outside the source rows and columns the image is taken to be zero, except
// along a periodic x axis (an all-sky longitude axis), where the
// convolution wraps around instead of truncating.
//
// Two strategies are offered:
//
//   - Direct: O(H*W*Kh*Kw) shifted-row accumulation, exact for delta kernels
//   - FFT:    row/column transforms on a zero-padded power-of-two grid
//
// [Convolve2D] selects between them by kernel size:
//
//	out, err := conv.Convolve2D(counts, kernel, periodic)
//
// Kernels are usually normalized first:
//
//	if err := conv.Normalize(kernel); err != nil { ... }
package conv
