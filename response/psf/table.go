package psf

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-likelihood/dsp/core"
	"github.com/cwbudde/algo-likelihood/dsp/interp"
	"github.com/cwbudde/algo-likelihood/internal/logging"
	"github.com/cwbudde/algo-likelihood/response/irf"
	"github.com/cwbudde/algo-likelihood/sky/coord"
	"gonum.org/v1/gonum/floats"
)

// Errors returned by Table.
var (
	ErrEnergyOutOfRange = errors.New("psf: energy outside table range")
	ErrInvalidFraction  = errors.New("psf: containment fraction must be in (0, 1]")
	ErrNoExposure       = errors.New("psf: zero exposure")
)

// Table is an exposure-weighted mean PSF for one source direction.
type Table struct {
	src      coord.Direction
	energies interp.EnergyAxis
	seps     []float64 // deg
	logSeps  []float64
	values   [][]float64 // [energy][sep], sr^-1
	partials [][]float64 // [energy][sep], cumulative integral over solid angle
	peak     []float64
	exposure []float64 // cm^2 s
}

// New builds the mean PSF of src on the given energy grid (MeV) from the
// responses in reg and the livetime in hist.
func New(src coord.Direction, energies []float64, reg *irf.Registry, hist irf.History, opts ...Option) (*Table, error) {
	if reg == nil {
		return nil, irf.ErrNilRegistry
	}
	cfg := applyOptions(opts...)
	axis, err := interp.NewEnergyAxis(energies)
	if err != nil {
		return nil, fmt.Errorf("psf: energies: %w", err)
	}
	seps, err := interp.LogSpace(cfg.SepMin, cfg.SepMax, cfg.SepPoints)
	if err != nil {
		return nil, fmt.Errorf("psf: separations: %w", err)
	}
	profile, err := irf.NewLivetimeProfile(hist, src, cfg.ProfileBins)
	if err != nil {
		return nil, fmt.Errorf("psf: livetime: %w", err)
	}

	t := &Table{
		src:      src,
		energies: axis,
		seps:     seps,
		logSeps:  make([]float64, len(seps)),
		values:   make([][]float64, axis.Len()),
		partials: make([][]float64, axis.Len()),
		peak:     make([]float64, axis.Len()),
		exposure: make([]float64, axis.Len()),
	}
	for j, s := range seps {
		t.logSeps[j] = math.Log(s)
	}
	for k := range t.values {
		t.fillEnergy(k, profile, reg)
	}
	t.computePartialIntegrals()

	logging.Logger().Debug("psf table built",
		"ra", src.RA(), "dec", src.Dec(),
		"energies", axis.Len(), "separations", len(seps),
		"livetime", profile.Total())
	return t, nil
}

func (t *Table) fillEnergy(k int, profile *irf.LivetimeProfile, reg *irf.Registry) {
	energy := t.energies.At(k)
	row := make([]float64, len(t.seps))
	t.values[k] = row
	t.exposure[k] = profile.Exposure(reg, energy)
	if t.exposure[k] <= 0 {
		return
	}
	for _, evtType := range reg.EventTypes() {
		resp, _ := reg.Response(evtType)
		maxInc := resp.MaxInclination()
		for i := 0; i < profile.Bins(); i++ {
			lt := profile.Livetime(i)
			inc := profile.Inclination(i)
			if lt == 0 || inc > maxInc {
				continue
			}
			w := lt * resp.Aeff(energy, inc)
			if w == 0 {
				continue
			}
			for j, s := range t.seps {
				row[j] += w * resp.Psf(s, energy, inc)
			}
		}
	}
	floats.Scale(1/t.exposure[k], row)
	t.peak[k] = row[0]
}

// computePartialIntegrals fills partials[k][j] with the integral of the PSF
// over the cone of radius seps[j]. The innermost cap uses the peak value.
func (t *Table) computePartialIntegrals() {
	n := len(t.seps)
	for k, row := range t.values {
		seg := make([]float64, n)
		theta0 := t.seps[0] * core.DegToRad
		seg[0] = t.peak[k] * 2 * math.Pi * (1 - math.Cos(theta0))
		prev := ringIntegrand(theta0, row[0])
		for j := 1; j < n; j++ {
			th1 := t.seps[j-1] * core.DegToRad
			th2 := t.seps[j] * core.DegToRad
			cur := ringIntegrand(th2, row[j])
			seg[j] = 0.5 * (prev + cur) * (th2 - th1)
			prev = cur
		}
		t.partials[k] = floats.CumSum(make([]float64, n), seg)
	}
}

func ringIntegrand(theta, value float64) float64 {
	return 2 * math.Pi * math.Sin(theta) * value
}

// Source returns the source direction.
func (t *Table) Source() coord.Direction { return t.src }

// Energies returns a copy of the energy grid (MeV).
func (t *Table) Energies() []float64 { return t.energies.Values() }

// Separations returns a copy of the separation grid (deg).
func (t *Table) Separations() []float64 { return core.Clone(t.seps) }

// Exposures returns a copy of the exposure per grid energy (cm^2 s).
func (t *Table) Exposures() []float64 { return core.Clone(t.exposure) }

// energyCell locates energy on the grid. For a single-energy table k is 0
// and uu is 0.
func (t *Table) energyCell(energy float64) (k int, uu float64, err error) {
	k, err = t.energies.Bracket(energy)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %g MeV", ErrEnergyOutOfRange, energy)
	}
	return k, t.energies.LogFraction(k, energy), nil
}

// acrossEnergy linearly combines per-row values at log-energy fraction uu.
func (t *Table) acrossEnergy(k int, uu float64, f func(k int) float64) float64 {
	if t.energies.Len() < 2 {
		return f(0)
	}
	return (1-uu)*f(k) + uu*f(k+1)
}

// Evaluate returns the PSF (sr^-1) at separation theta (deg) from the
// source. phi is accepted for interface compatibility and ignored.
func (t *Table) Evaluate(energy, theta, _ float64) (float64, error) {
	k, uu, err := t.energyCell(energy)
	if err != nil {
		return 0, err
	}
	if theta < t.seps[0] {
		return t.acrossEnergy(k, uu, func(k int) float64 { return t.peak[k] }), nil
	}
	if theta > t.seps[len(t.seps)-1] {
		return 0, nil
	}
	j, tt := t.sepCell(theta)
	if t.energies.Len() < 2 {
		return interp.Linear(tt, 0, 1, t.values[0][j], t.values[0][j+1]), nil
	}
	return interp.Bilinear(tt, uu,
		t.values[k][j], t.values[k][j+1],
		t.values[k+1][j+1], t.values[k+1][j]), nil
}

// sepCell brackets theta (within the grid) in log separation.
func (t *Table) sepCell(theta float64) (int, float64) {
	j, _ := interp.Bracket(t.seps, theta)
	tt := (math.Log(theta) - t.logSeps[j]) / (t.logSeps[j+1] - t.logSeps[j])
	return j, tt
}

// Response returns the PSF at separation (deg); it lets a Table serve as
// the radial response of spatial templates.
func (t *Table) Response(energy, separation float64) (float64, error) {
	return t.Evaluate(energy, separation, 0)
}

// PeakValue returns the PSF at zero separation.
func (t *Table) PeakValue(energy float64) (float64, error) {
	k, uu, err := t.energyCell(energy)
	if err != nil {
		return 0, err
	}
	return t.acrossEnergy(k, uu, func(k int) float64 { return t.peak[k] }), nil
}

// Exposure returns the exposure (cm^2 s) at energy, power-law interpolated
// between grid energies.
func (t *Table) Exposure(energy float64) (float64, error) {
	k, _, err := t.energyCell(energy)
	if err != nil {
		return 0, err
	}
	if t.energies.Len() < 2 {
		return t.exposure[0], nil
	}
	v, err := interp.PowerLaw(energy, t.energies.At(k), t.energies.At(k+1), t.exposure[k], t.exposure[k+1])
	if err != nil {
		return 0, fmt.Errorf("psf: exposure: %w", err)
	}
	return v, nil
}

// Integral returns the PSF integrated over the cone of radius angle (deg).
func (t *Table) Integral(angle, energy float64) (float64, error) {
	k, uu, err := t.energyCell(energy)
	if err != nil {
		return 0, err
	}
	return t.acrossEnergy(k, uu, func(k int) float64 { return t.rowIntegral(k, angle) }), nil
}

func (t *Table) rowIntegral(k int, angle float64) float64 {
	if angle <= 0 {
		return 0
	}
	last := len(t.seps) - 1
	if angle >= t.seps[last] {
		return t.partials[k][last]
	}
	if angle < t.seps[0] {
		return t.peak[k] * 2 * math.Pi * (1 - math.Cos(angle*core.DegToRad))
	}
	j, tt := t.sepCell(angle)
	value := interp.Linear(tt, 0, 1, t.values[k][j], t.values[k][j+1])
	th1 := t.seps[j] * core.DegToRad
	th := angle * core.DegToRad
	return t.partials[k][j] + 0.5*(ringIntegrand(th1, t.values[k][j])+ringIntegrand(th, value))*(th-th1)
}

// ContainmentRadius returns the cone radius (deg) containing frac of the
// tabulated PSF, found by bisection to relative precision rtol.
func (t *Table) ContainmentRadius(energy, frac, rtol float64) (float64, error) {
	if !(frac > 0 && frac <= 1) {
		return 0, fmt.Errorf("%w: %g", ErrInvalidFraction, frac)
	}
	if rtol <= 0 {
		rtol = 1e-3
	}
	total, err := t.Integral(t.seps[len(t.seps)-1], energy)
	if err != nil {
		return 0, err
	}
	if total <= 0 {
		return 0, ErrNoExposure
	}
	target := frac * total
	lo, hi := 0.0, t.seps[len(t.seps)-1]
	for (hi-lo)/hi > rtol {
		mid := 0.5 * (lo + hi)
		v, _ := t.Integral(mid, energy)
		if v < target {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi), nil
}

// Derivative returns dPSF/dtheta (sr^-1 deg^-1) at angle (deg), estimated
// by a central difference with a step of half the local grid spacing.
func (t *Table) Derivative(angle, energy float64) (float64, error) {
	if _, _, err := t.energyCell(energy); err != nil {
		return 0, err
	}
	step := 0.5 * angle * (t.logSeps[1] - t.logSeps[0])
	lo := math.Max(angle-step, 0)
	hi := angle + step
	if lo == hi {
		return 0, nil
	}
	f1, err := t.Evaluate(energy, lo, 0)
	if err != nil {
		return 0, err
	}
	f2, err := t.Evaluate(energy, hi, 0)
	if err != nil {
		return 0, err
	}
	return (f2 - f1) / (hi - lo), nil
}

// Image evaluates the PSF centred on (lon0, lat0) over the grid spanned by
// lons and lats (deg). The result is indexed [lat][lon].
func (t *Table) Image(energy, lon0, lat0 float64, lons, lats []float64) ([][]float64, error) {
	if _, _, err := t.energyCell(energy); err != nil {
		return nil, err
	}
	center := coord.NewEquatorial(lon0, lat0)
	image := make([][]float64, len(lats))
	for i, lat := range lats {
		row := make([]float64, len(lons))
		for j, lon := range lons {
			sep := center.SeparationDeg(coord.NewEquatorial(lon, lat))
			row[j], _ = t.Evaluate(energy, sep, 0)
		}
		image[i] = row
	}
	return image, nil
}

// ImageAt evaluates the PSF centred on (lon0, lat0) at each (lon, lat)
// pair in dirs (deg).
func (t *Table) ImageAt(energy, lon0, lat0 float64, dirs [][2]float64) ([]float64, error) {
	if _, _, err := t.energyCell(energy); err != nil {
		return nil, err
	}
	center := coord.NewEquatorial(lon0, lat0)
	out := make([]float64, len(dirs))
	for i, d := range dirs {
		sep := center.SeparationDeg(coord.NewEquatorial(d[0], d[1]))
		out[i], _ = t.Evaluate(energy, sep, 0)
	}
	return out, nil
}
