package wcs

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-likelihood/dsp/core"
	"github.com/cwbudde/algo-likelihood/internal/testutil"
	"github.com/cwbudde/algo-likelihood/response/irf"
	"github.com/cwbudde/algo-likelihood/response/psf"
	"github.com/cwbudde/algo-likelihood/sky/coord"
	"github.com/cwbudde/algo-likelihood/sky/proj"
)

type constExposure float64

func (c constExposure) Value(float64, coord.Direction) (float64, error) { return float64(c), nil }

// deltaPSF is non-zero only within a quarter degree of the centre.
type deltaPSF struct{}

func (deltaPSF) Evaluate(_, theta, _ float64) (float64, error) {
	if theta < 0.25 {
		return 1, nil
	}
	return 0, nil
}

type failingPSF struct{}

var errPSF = errors.New("psf unavailable")

func (failingPSF) Evaluate(float64, float64, float64) (float64, error) { return 0, errPSF }

func TestConvolveWithoutPSF(t *testing.T) {
	img := rampImage(t, 8)
	out, err := img.Convolve(1000, deltaPSF{}, constExposure(1e10), false, 0)
	if err != nil {
		t.Fatal(err)
	}
	src, _ := img.Plane(0)
	got, _ := out.Plane(0)
	for i := range src {
		if math.Abs(got[i]-src[i]*1e10) > 1e-6 {
			t.Fatalf("pixel %d = %v, want %v", i, got[i], src[i]*1e10)
		}
	}
	if e := out.Energies(); len(e) != 1 || e[0] != 1000 {
		t.Fatalf("Energies() = %v", e)
	}
}

func TestConvolveDeltaKernel(t *testing.T) {
	for _, n := range []int{11, 41} {
		img := rampImage(t, n)
		out, err := img.Convolve(1000, deltaPSF{}, constExposure(2), true, 0)
		if err != nil {
			t.Fatal(err)
		}
		src, _ := img.Plane(0)
		got, _ := out.Plane(0)
		for i, v := range src {
			if got[i] != 2*v {
				t.Fatalf("n=%d pixel %d = %v, want %v", n, i, got[i], 2*v)
			}
		}
	}
}

func TestConvolvePointSourceHasNoNegativeCounts(t *testing.T) {
	center := coord.NewEquatorial(83.63, 22.01)
	tl, err := irf.ConstantPointing(center, 1e5, 0.9)
	if err != nil {
		t.Fatal(err)
	}
	reg, err := irf.NewRegistry(map[int]irf.Response{0: irf.DefaultAnalytic()})
	if err != nil {
		t.Fatal(err)
	}
	table, err := psf.New(center, []float64{100, 1000, 10000}, reg, tl)
	if err != nil {
		t.Fatal(err)
	}
	expo, err := irf.NewExposureCalculator(reg, tl, 0)
	if err != nil {
		t.Fatal(err)
	}

	const n = 41
	p, _ := CenteredWCS(proj.CAR, center, false, 0.1, n)
	img, err := New(p, n, n, [][]float64{testutil.Impulse(n, n, n/2, n/2)}, []float64{10000})
	if err != nil {
		t.Fatal(err)
	}
	out, err := img.Convolve(10000, table, expo, true, 0)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := out.Plane(0)
	testutil.RequireFinite(t, got)
	for i, v := range got {
		if v < 0 {
			t.Fatalf("pixel (%d, %d) = %v is negative", i/n, i%n, v)
		}
	}
	if got[(n/2)*n+n/2] <= 0 {
		t.Fatal("point source vanished")
	}
}

func TestConvolveWithMeanPsf(t *testing.T) {
	center := coord.NewEquatorial(83.63, 22.01)
	tl, err := irf.ConstantPointing(center, 1e5, 0.9)
	if err != nil {
		t.Fatal(err)
	}
	reg, err := irf.NewRegistry(map[int]irf.Response{0: irf.DefaultAnalytic()})
	if err != nil {
		t.Fatal(err)
	}
	table, err := psf.New(center, []float64{100, 1000, 10000}, reg, tl)
	if err != nil {
		t.Fatal(err)
	}
	expo, err := irf.NewExposureCalculator(reg, tl, 0)
	if err != nil {
		t.Fatal(err)
	}

	const n = 21
	p, _ := CenteredWCS(proj.CAR, center, false, 0.2, n)
	plane := make([]float64, n*n)
	plane[(n/2)*n+n/2] = 1
	img, err := New(p, n, n, [][]float64{plane}, []float64{1000})
	if err != nil {
		t.Fatal(err)
	}

	counts, err := img.Convolve(1000, table, expo, false, 0)
	if err != nil {
		t.Fatal(err)
	}
	smoothed, err := img.Convolve(1000, table, expo, true, 0)
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := counts.Plane(0)
	got, _ := smoothed.Plane(0)
	testutil.RequireFinite(t, got)

	sumRaw, sumGot := 0.0, 0.0
	for i := range raw {
		sumRaw += raw[i]
		sumGot += got[i]
	}
	if math.Abs(sumGot-sumRaw) > 1e-9*sumRaw {
		t.Fatalf("convolved total = %v, want %v", sumGot, sumRaw)
	}
	peak := got[(n/2)*n+n/2]
	if peak >= raw[(n/2)*n+n/2] || peak <= got[(n/2)*n+n/2+1] {
		t.Fatal("convolution should spread the point source around its centre")
	}
	// Radial symmetry of the spread.
	left, right := got[(n/2)*n+n/2-2], got[(n/2)*n+n/2+2]
	if !core.NearlyEqual(left, right, 1e-6) {
		t.Fatalf("asymmetric profile: %v vs %v", left, right)
	}
}

func TestConvolveErrors(t *testing.T) {
	img := rampImage(t, 5)
	if _, err := img.Convolve(1000, failingPSF{}, constExposure(1), true, 0); !errors.Is(err, errPSF) {
		t.Fatalf("err = %v, want errPSF", err)
	}
	if _, err := img.Convolve(1000, deltaPSF{}, constExposure(1), true, 4); !errors.Is(err, ErrPlaneOutOfRange) {
		t.Fatalf("err = %v, want ErrPlaneOutOfRange", err)
	}
}
