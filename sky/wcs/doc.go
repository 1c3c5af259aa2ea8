// Package wcs implements energy-layered sky images on a WCS projection.
//
// An [Image] stores one plane of pixel values per energy. Pixels are
// addressed with 1-based (x, y) coordinates as in FITS, so pixel (1, 1) is
// the centre of the first column of the first row. Images support nearest
// and bilinear sampling, log-log interpolation between planes,
// solid-angle-weighted integrals, PSF convolution into predicted counts,
// and integer rebinning.
//
// Images whose first axis spans exactly 360 degrees are periodic in x:
// sampling and convolution wrap across the longitude seam.
package wcs
