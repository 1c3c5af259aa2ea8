// Package interp provides the tabulation and interpolation primitives shared by
// the image, PSF and event-response packages.
//
// Available methods:
//
//   - [Linear]:    2-point linear interpolation
//   - [Bilinear]:  4-point bilinear interpolation on a unit cell
//   - [PowerLaw]:  2-point log-log (power-law) interpolation
//
// [EnergyAxis] is a validated, strictly ascending axis with bracketing
// lookups. [LogSpace] and [LinSpace] build sample grids.
package interp
