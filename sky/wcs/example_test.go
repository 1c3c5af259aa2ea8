package wcs_test

import (
	"fmt"

	"github.com/cwbudde/algo-likelihood/sky/coord"
	"github.com/cwbudde/algo-likelihood/sky/proj"
	"github.com/cwbudde/algo-likelihood/sky/wcs"
)

func ExampleImage_MapIntegral() {
	p, err := wcs.CenteredWCS(proj.CAR, coord.NewEquatorial(180, 0), false, 1, 10)
	if err != nil {
		panic(err)
	}
	img, err := wcs.FromFunc(p, 10, 10, 1000, func(coord.Direction) (float64, error) { return 2, nil })
	if err != nil {
		panic(err)
	}
	integral, err := img.MapIntegral(1000)
	if err != nil {
		panic(err)
	}
	fmt.Printf("%.3f sr\n", integral)

	// Output:
	// 0.061 sr
}

func ExampleImage_Rebin() {
	p, err := wcs.CenteredWCS(proj.TAN, coord.NewGalactic(0, 0), true, 0.1, 100)
	if err != nil {
		panic(err)
	}
	img, err := wcs.FromFunc(p, 100, 100, 1000, func(coord.Direction) (float64, error) { return 1, nil })
	if err != nil {
		panic(err)
	}
	coarse, err := img.Rebin(4, true)
	if err != nil {
		panic(err)
	}
	n1, n2 := coarse.Size()
	h := coarse.Header()
	fmt.Println(n1, n2, h.Ctype1, h.Cdelt2)

	// Output:
	// 25 25 GLON-TAN 0.4
}
