package wcs

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/cwbudde/algo-likelihood/dsp/interp"
	"github.com/cwbudde/algo-likelihood/sky/coord"
	"github.com/cwbudde/algo-likelihood/sky/proj"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func uniformImage(t *testing.T, t0 proj.Type, center coord.Direction, pix float64, npts int, value float64, energies []float64, opts ...Option) *Image {
	t.Helper()
	p, err := CenteredWCS(t0, center, false, pix, npts)
	if err != nil {
		t.Fatal(err)
	}
	planes := make([][]float64, len(energies))
	for k := range planes {
		planes[k] = make([]float64, npts*npts)
		for i := range planes[k] {
			planes[k][i] = value
		}
	}
	img, err := New(p, npts, npts, planes, energies, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return img
}

// columnImage returns an image whose pixels hold their 0-based column index.
func columnImage(t *testing.T, opts ...Option) *Image {
	t.Helper()
	p, err := CenteredWCS(proj.CAR, coord.NewEquatorial(180, 0), false, 1, 11)
	if err != nil {
		t.Fatal(err)
	}
	plane := make([]float64, 11*11)
	for i := range plane {
		plane[i] = float64(i % 11)
	}
	img, err := New(p, 11, 11, [][]float64{plane}, []float64{1000}, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return img
}

func TestNewValidation(t *testing.T) {
	p, _ := CenteredWCS(proj.CAR, coord.NewEquatorial(0, 0), false, 1, 4)
	tests := []struct {
		name     string
		planes   [][]float64
		energies []float64
		want     error
	}{
		{name: "axis mismatch", planes: [][]float64{make([]float64, 16)}, energies: []float64{100, 200}, want: ErrEnergyAxisMismatch},
		{name: "shape", planes: [][]float64{make([]float64, 15)}, energies: []float64{100}, want: ErrShapeMismatch},
		{name: "energies", planes: [][]float64{make([]float64, 16), make([]float64, 16)}, energies: []float64{200, 100}, want: interp.ErrNotAscending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(p, 4, 4, tt.planes, tt.energies); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
	if _, err := New(p, 0, 4, nil, nil); !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("err = %v, want ErrInvalidSize", err)
	}
}

func TestMapIntegralSmallCAR(t *testing.T) {
	img := uniformImage(t, proj.CAR, coord.NewEquatorial(180, 0), 1, 10, 2, []float64{1000})
	got, err := img.MapIntegral(1000)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-0.06092)/0.06092 > 0.01 {
		t.Fatalf("MapIntegral() = %v, want ~0.06092", got)
	}

	direct := 0.0
	plane, _ := img.Plane(0)
	for i, omega := range img.SolidAngles() {
		direct += plane[i] * omega
	}
	if math.Abs(got-direct) > 1e-12 {
		t.Fatalf("MapIntegral() = %v, direct sum = %v", got, direct)
	}
	if total := img.MapIntegralTotal(); total != got {
		t.Fatalf("MapIntegralTotal() = %v, want %v", total, got)
	}
}

func TestMapIntegralAcrossPlanes(t *testing.T) {
	p, _ := CenteredWCS(proj.TAN, coord.NewGalactic(0, 0), false, 0.5, 8)
	one := make([]float64, 64)
	hundred := make([]float64, 64)
	for i := range one {
		one[i], hundred[i] = 1, 100
	}
	img, err := New(p, 8, 8, [][]float64{one, hundred}, []float64{100, 1000})
	if err != nil {
		t.Fatal(err)
	}
	i0, _ := img.PlaneIntegral(0)
	i1, _ := img.PlaneIntegral(1)
	if math.Abs(i1/i0-100) > 1e-9 {
		t.Fatalf("plane integral ratio = %v, want 100", i1/i0)
	}
	mid, err := img.MapIntegral(math.Sqrt(100 * 1000))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(mid/i0-10) > 1e-9 {
		t.Fatalf("MapIntegral(geometric mean)/I0 = %v, want 10", mid/i0)
	}
	if _, err := img.MapIntegral(5000); !errors.Is(err, ErrEnergyOutOfRange) {
		t.Fatalf("err = %v, want ErrEnergyOutOfRange", err)
	}
	if _, err := img.PlaneIntegral(2); !errors.Is(err, ErrPlaneOutOfRange) {
		t.Fatalf("err = %v, want ErrPlaneOutOfRange", err)
	}
}

func TestSolidAnglesInvalidPixelsZero(t *testing.T) {
	// A 400 x 200 one-degree AIT grid overflows the projection boundary
	// in its corners.
	p, err := proj.New(proj.WCS{Type: proj.AIT, Crpix1: 200.5, Crpix2: 100.5, Cdelt1: -1, Cdelt2: 1})
	if err != nil {
		t.Fatal(err)
	}
	img, err := New(p, 400, 200, [][]float64{make([]float64, 400*200)}, []float64{100})
	if err != nil {
		t.Fatal(err)
	}
	omega := img.SolidAngles()
	if omega[0] != 0 {
		t.Fatalf("corner solid angle = %v, want 0", omega[0])
	}
	// Hammer-Aitoff is equal-area: near the origin a pixel covers one
	// square degree.
	want := math.Pow(math.Pi/180, 2)
	if centre := omega[100*400+200]; math.Abs(centre-want)/want > 1e-3 {
		t.Fatalf("centre solid angle = %v, want %v", centre, want)
	}
}

func TestSampleAtPixelCentres(t *testing.T) {
	for _, interpolate := range []bool{true, false} {
		img := columnImage(t, WithInterpolation(interpolate))
		for _, x := range []int{1, 4, 11} {
			dir, err := img.SkyDir(float64(x), 6)
			if err != nil {
				t.Fatal(err)
			}
			got, err := img.Sample(dir, 0)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(got-float64(x-1)) > 1e-9 {
				t.Fatalf("interpolate=%v: Sample(pixel %d) = %v, want %d", interpolate, x, got, x-1)
			}
		}
	}
}

func TestSampleBilinearMidpoint(t *testing.T) {
	img := columnImage(t)
	dir, _ := img.SkyDir(4.5, 6)
	got, _ := img.Sample(dir, 0)
	if math.Abs(got-3.5) > 1e-9 {
		t.Fatalf("bilinear midpoint = %v, want 3.5", got)
	}

	nearest := columnImage(t, WithInterpolation(false))
	dir, _ = nearest.SkyDir(4.4, 6)
	if got, _ := nearest.Sample(dir, 0); got != 3 {
		t.Fatalf("nearest = %v, want 3", got)
	}
}

func TestSampleOutsideMap(t *testing.T) {
	img := columnImage(t)
	outside := coord.NewEquatorial(180, 30)
	if got, err := img.Sample(outside, 0); err != nil || got != 0 {
		t.Fatalf("Sample(outside) = %v, %v; want 0, nil", got, err)
	}
	if _, err := img.Sample(outside, 3); !errors.Is(err, ErrPlaneOutOfRange) {
		t.Fatalf("err = %v, want ErrPlaneOutOfRange", err)
	}
}

func fullSkyImage(t *testing.T, opts ...Option) *Image {
	t.Helper()
	p, err := proj.New(proj.WCS{Type: proj.CAR, Crpix1: 180.5, Crpix2: 90.5, Cdelt1: -1, Cdelt2: 1})
	if err != nil {
		t.Fatal(err)
	}
	plane := make([]float64, 360*180)
	for row := 0; row < 180; row++ {
		plane[row*360] = 1
		plane[row*360+359] = 3
	}
	img, err := New(p, 360, 180, [][]float64{plane}, []float64{100}, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return img
}

func TestPeriodicImage(t *testing.T) {
	img := fullSkyImage(t)
	if !img.Periodic() {
		t.Fatal("full-sky CAR image should be periodic")
	}
	a, _ := img.Sample(coord.NewEquatorial(0, 10.3), 0)
	b, _ := img.Sample(coord.NewEquatorial(360, 10.3), 0)
	if a != b {
		t.Fatalf("lon 0 and 360 differ: %v vs %v", a, b)
	}

	// The seam at lon 180 lies halfway between the first and last columns.
	seam, _ := img.Sample(coord.NewEquatorial(180, 10.3), 0)
	if math.Abs(seam-2) > 1e-9 {
		t.Fatalf("seam value = %v, want 2", seam)
	}

	nearest := fullSkyImage(t, WithInterpolation(false))
	west, _ := nearest.Sample(coord.NewEquatorial(180.2, 10.3), 0)
	east, _ := nearest.Sample(coord.NewEquatorial(179.8, 10.3), 0)
	if west+east != 4 || west == east {
		t.Fatalf("seam neighbours = %v, %v; want 1 and 3", west, east)
	}

	if columnImage(t).Periodic() {
		t.Fatal("small image should not be periodic")
	}
}

func TestSampleEnergy(t *testing.T) {
	img := uniformImage(t, proj.CAR, coord.NewEquatorial(30, 10), 1, 5, 1, []float64{100, 1000})
	hundred := make([]float64, 25)
	for i := range hundred {
		hundred[i] = 100
	}
	if err := img.SetPlane(1, hundred); err != nil {
		t.Fatal(err)
	}
	dir := coord.NewEquatorial(30, 10)
	tests := []struct {
		energy float64
		want   float64
	}{
		{energy: 100, want: 1},
		{energy: 1000, want: 100},
		{energy: math.Sqrt(1e5), want: 10},
	}
	for _, tt := range tests {
		got, err := img.SampleEnergy(dir, tt.energy)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(got-tt.want) > 1e-9*tt.want {
			t.Fatalf("SampleEnergy(%v) = %v, want %v", tt.energy, got, tt.want)
		}
	}
	if _, err := img.SampleEnergy(dir, 50); !errors.Is(err, ErrEnergyOutOfRange) {
		t.Fatalf("err = %v, want ErrEnergyOutOfRange", err)
	}

	if err := img.SetPlane(0, make([]float64, 25)); err != nil {
		t.Fatal(err)
	}
	if _, err := img.SampleEnergy(dir, 300); !errors.Is(err, interp.ErrNonPositive) {
		t.Fatalf("err = %v, want ErrNonPositive", err)
	}
}

func TestSetPlaneInvalidatesIntegrals(t *testing.T) {
	img := uniformImage(t, proj.CAR, coord.NewEquatorial(0, 0), 1, 4, 1, []float64{100})
	before, _ := img.MapIntegral(100)
	twos := make([]float64, 16)
	for i := range twos {
		twos[i] = 2
	}
	if err := img.SetPlane(0, twos); err != nil {
		t.Fatal(err)
	}
	after, _ := img.MapIntegral(100)
	if math.Abs(after-2*before) > 1e-12 {
		t.Fatalf("integral after SetPlane = %v, want %v", after, 2*before)
	}
	if err := img.SetPlane(0, twos[:3]); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("err = %v, want ErrShapeMismatch", err)
	}
}

func TestFromFunc(t *testing.T) {
	p, _ := CenteredWCS(proj.TAN, coord.NewEquatorial(83.6, 22), false, 0.25, 9)
	center := coord.NewEquatorial(83.6, 22)
	img, err := FromFunc(p, 9, 9, 500, func(dir coord.Direction) (float64, error) {
		return center.SeparationDeg(dir), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := img.Pixel(5, 5, 0); v > 1e-9 {
		t.Fatalf("centre pixel = %v, want 0", v)
	}
	if v, _ := img.Pixel(6, 5, 0); math.Abs(v-0.25) > 1e-3 {
		t.Fatalf("neighbour pixel = %v, want 0.25", v)
	}
	if got := img.Energies(); len(got) != 1 || got[0] != 500 {
		t.Fatalf("Energies() = %v", got)
	}

	boom := errors.New("boom")
	if _, err := FromFunc(p, 9, 9, 500, func(coord.Direction) (float64, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	img := uniformImage(t, proj.AIT, coord.NewEquatorial(266.4, -28.9), 0.5, 6, 3, []float64{100, 300, 1000})
	h := img.Header()
	if h.Naxis != 3 || h.Naxis3 != 3 || h.Ctype1 != "RA---AIT" || h.Ctype2 != "DEC--AIT" {
		t.Fatalf("Header() = %+v", h)
	}
	back, err := FromHeader(h, img.Data(), img.Energies())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(h, back.Header()); diff != "" {
		t.Fatalf("header mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(img.Data(), back.Data(), cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}

	if _, err := FromHeader(h, img.Data(), []float64{100, 300}); !errors.Is(err, ErrEnergyAxisMismatch) {
		t.Fatalf("err = %v, want ErrEnergyAxisMismatch", err)
	}

	flat := Header{Naxis: 2, Naxis1: 2, Naxis2: 2, Ctype1: "GLON-CAR", Ctype2: "GLAT-CAR", Crpix1: 1.5, Crpix2: 1.5, Cdelt1: -1, Cdelt2: 1}
	img2, err := FromHeader(flat, []float64{1, 2, 3, 4}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if e := img2.Energies(); len(e) != 1 || e[0] != DefaultEnergy {
		t.Fatalf("Energies() = %v, want [%v]", e, DefaultEnergy)
	}
	if !img2.Projection().Galactic {
		t.Fatal("GLON header should give a galactic projection")
	}
	if _, err := FromHeader(flat, []float64{1, 2, 3}, nil); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("err = %v, want ErrShapeMismatch", err)
	}
}

func TestGeometry(t *testing.T) {
	center := coord.NewEquatorial(120, -40)
	img := uniformImage(t, proj.TAN, center, 1, 11, 1, []float64{100})
	if !img.InsideMap(center) {
		t.Fatal("centre should be inside the map")
	}
	if img.InsideMap(coord.NewEquatorial(120, 0)) {
		t.Fatal("distant direction should be outside the map")
	}
	corners, err := img.Corners()
	if err != nil {
		t.Fatal(err)
	}
	d0 := center.SeparationDeg(corners[0])
	for i, c := range corners {
		if math.Abs(center.SeparationDeg(c)-d0) > 1e-6 {
			t.Fatalf("corner %d not equidistant from the centre", i)
		}
	}
	closest, farthest, err := img.MinMaxDistPixels(center)
	if err != nil {
		t.Fatal(err)
	}
	if near, far := center.SeparationDeg(closest), center.SeparationDeg(farthest); near >= far || math.Abs(far-d0) > 1e-6 {
		t.Fatalf("closest %v, farthest %v, corner %v", near, far, d0)
	}
}

func TestConcurrentIntegrals(t *testing.T) {
	img := uniformImage(t, proj.CAR, coord.NewEquatorial(10, 10), 0.5, 20, 1, []float64{100, 1000})
	want, _ := img.MapIntegral(300)
	var wg sync.WaitGroup
	results := make(chan float64, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, _ := img.MapIntegral(300)
			results <- got
		}()
	}
	wg.Wait()
	close(results)
	for got := range results {
		if got != want {
			t.Fatalf("concurrent MapIntegral() = %v, want %v", got, want)
		}
	}
}

func TestSinglePlaneIgnoresEnergy(t *testing.T) {
	img := uniformImage(t, proj.CAR, coord.NewEquatorial(180, 0), 1, 10, 2, []float64{1000})
	dir := coord.NewEquatorial(180, 0)
	want, err := img.MapIntegral(1000)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range []float64{1, 1000, 1e6} {
		v, err := img.SampleEnergy(dir, e)
		if err != nil || v != 2 {
			t.Fatalf("SampleEnergy(%v) = %v, %v; want 2", e, v, err)
		}
		got, err := img.MapIntegral(e)
		if err != nil || got != want {
			t.Fatalf("MapIntegral(%v) = %v, %v; want %v", e, got, err, want)
		}
	}
}
