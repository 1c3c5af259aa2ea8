// Package spatial defines the spatial source templates: a closed set of
// point, disk, Gaussian and map-based intensity distributions.
//
// Every [Template] can be evaluated at a sky direction, and can convolve
// itself with a radially symmetric response such as a mean PSF. Radial
// templates also provide DiffuseResponse, the convolution expressed as a
// function of the separation between template centre and evaluation point.
//
// Angles are in degrees and intensities in sr^-1.
package spatial
