// Package coord provides immutable sky directions in the equatorial (J2000)
// and galactic frames, angular separations, great-circle offsets and the
// frame rotations used to anchor local sampling grids on the sky.
//
// All public angles are in degrees except [Direction.Separation], which
// returns radians to match the solid-angle arithmetic it feeds.
package coord
