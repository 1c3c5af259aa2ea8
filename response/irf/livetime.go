package irf

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-likelihood/dsp/core"
	"github.com/cwbudde/algo-likelihood/sky/coord"
)

// DefaultProfileBins is the default number of cos(inclination) bins.
const DefaultProfileBins = 40

// LivetimeProfile is the livetime (s) accumulated by a history for one sky
// direction, binned uniformly in cos(inclination) over [0, 1]. Livetime
// spent with the direction behind the instrument is dropped.
type LivetimeProfile struct {
	dir      coord.Direction
	livetime []float64
}

// NewLivetimeProfile bins the livetime of h for dir into nbins bins.
func NewLivetimeProfile(h History, dir coord.Direction, nbins int) (*LivetimeProfile, error) {
	if nbins <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBinCount, nbins)
	}
	ivs := h.Intervals()
	if len(ivs) == 0 {
		return nil, ErrEmptyHistory
	}
	p := &LivetimeProfile{dir: dir, livetime: make([]float64, nbins)}
	for _, iv := range ivs {
		lt := iv.Livetime()
		if lt <= 0 {
			continue
		}
		cosInc := math.Cos(iv.ZAxis.Separation(dir))
		if cosInc < 0 {
			continue
		}
		bin := int(cosInc * float64(nbins))
		if bin >= nbins {
			bin = nbins - 1
		}
		p.livetime[bin] += lt
	}
	return p, nil
}

// Direction returns the sky direction the profile was built for.
func (p *LivetimeProfile) Direction() coord.Direction { return p.dir }

// Bins returns the number of bins.
func (p *LivetimeProfile) Bins() int { return len(p.livetime) }

// Livetime returns the livetime in bin i.
func (p *LivetimeProfile) Livetime(i int) float64 { return p.livetime[i] }

// Inclination returns the inclination (degrees) at the centre of bin i.
func (p *LivetimeProfile) Inclination(i int) float64 {
	cosInc := (float64(i) + 0.5) / float64(len(p.livetime))
	return math.Acos(cosInc) * core.RadToDeg
}

// Total returns the summed livetime.
func (p *LivetimeProfile) Total() float64 {
	total := 0.0
	for _, lt := range p.livetime {
		total += lt
	}
	return total
}

// Exposure returns the exposure (cm^2 s) at energy, summed over the event
// types of reg. Bins beyond a response's maximum inclination contribute 0.
func (p *LivetimeProfile) Exposure(reg *Registry, energy float64) float64 {
	total := 0.0
	for _, evtType := range reg.types {
		resp := reg.responses[evtType]
		maxInc := resp.MaxInclination()
		for i, lt := range p.livetime {
			if lt == 0 {
				continue
			}
			inc := p.Inclination(i)
			if inc > maxInc {
				continue
			}
			total += lt * resp.Aeff(energy, inc)
		}
	}
	return total
}
