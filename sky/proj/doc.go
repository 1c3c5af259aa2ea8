// Package proj implements the World Coordinate System mappings between
// 1-based image pixel coordinates and celestial coordinates for the
// plate carrée (CAR), gnomonic (TAN) and Hammer-Aitoff (AIT) projections,
// following Calabretta & Greisen (2002).
//
// Pixel coordinates follow the FITS convention: the centre of the first
// pixel is (1, 1).
package proj
