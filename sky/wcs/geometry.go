package wcs

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-likelihood/sky/coord"
)

// ErrNoValidPixels is returned when no edge pixel maps onto the sky.
var ErrNoValidPixels = errors.New("wcs: no valid edge pixels")

// SkyDir returns the direction of 1-based pixel coordinates (x, y).
func (img *Image) SkyDir(x, y float64) (coord.Direction, error) {
	dir, err := img.proj.Direction(x, y)
	if err != nil {
		return coord.Direction{}, fmt.Errorf("wcs: (%g, %g): %w", x, y, err)
	}
	return dir, nil
}

// InsideMap reports whether dir falls within the cells bounded by the
// outermost pixel centres. The x test is skipped for periodic images.
func (img *Image) InsideMap(dir coord.Direction) bool {
	x, y, err := img.proj.Project(dir)
	if err != nil {
		return false
	}
	ix, iy := int(x), int(y)
	if !img.periodic && (x < 1 || ix >= img.naxis1) {
		return false
	}
	return y >= 1 && iy < img.naxis2
}

// Corners returns the directions of the corner pixel centres in the order
// (1, 1), (1, naxis2), (naxis1, naxis2), (naxis1, 1).
func (img *Image) Corners() ([4]coord.Direction, error) {
	var out [4]coord.Direction
	pix := [4][2]int{{1, 1}, {1, img.naxis2}, {img.naxis1, img.naxis2}, {img.naxis1, 1}}
	for i, p := range pix {
		dir, err := img.SkyDir(float64(p[0]), float64(p[1]))
		if err != nil {
			return out, err
		}
		out[i] = dir
	}
	return out, nil
}

// MinMaxDistPixels returns the directions of the edge pixels closest to and
// farthest from dir. Edge pixels outside the projection domain are skipped.
func (img *Image) MinMaxDistPixels(dir coord.Direction) (closest, farthest coord.Direction, err error) {
	minDist, maxDist := -1.0, -1.0
	visit := func(x, y int) {
		d, err := img.proj.Direction(float64(x), float64(y))
		if err != nil {
			return
		}
		sep := dir.Separation(d)
		if minDist < 0 || sep < minDist {
			minDist, closest = sep, d
		}
		if maxDist < 0 || sep > maxDist {
			maxDist, farthest = sep, d
		}
	}
	for x := 1; x <= img.naxis1; x++ {
		visit(x, 1)
		if img.naxis2 > 1 {
			visit(x, img.naxis2)
		}
	}
	for y := 2; y < img.naxis2; y++ {
		visit(1, y)
		if img.naxis1 > 1 {
			visit(img.naxis1, y)
		}
	}
	if minDist < 0 {
		return coord.Direction{}, coord.Direction{}, ErrNoValidPixels
	}
	return closest, farthest, nil
}
