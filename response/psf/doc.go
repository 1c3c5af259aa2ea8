// Package psf tabulates the exposure-weighted mean point-spread function
// for a source direction.
//
// A [Table] averages the per-event-type PSF over the livetime the source
// spends at each inclination, weighted by effective area:
//
//	psf(E, s) = sum_t sum_i lt_i aeff_t(E, i) psf_t(s, E, i) / exposure(E)
//
// The table is sampled on a logarithmic separation grid and a caller
// supplied energy grid, and is immutable once built. Besides point
// evaluation it provides cumulative integrals, containment radii, the
// radial derivative, the peak value and the exposure.
package psf
