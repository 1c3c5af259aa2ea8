package diffuse

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cwbudde/algo-likelihood/internal/logging"
	"github.com/cwbudde/algo-likelihood/response/irf"
	"github.com/cwbudde/algo-likelihood/response/spatial"
	"github.com/cwbudde/algo-likelihood/sky/coord"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/integrate"
)

// Errors returned by the integrator.
var (
	ErrNilEvent           = errors.New("diffuse: nil event")
	ErrNilTemplate        = errors.New("diffuse: nil template")
	ErrDispersionMismatch = errors.New("diffuse: event and registry disagree on energy dispersion")
)

// progressEvery is the number of events between progress log records.
const progressEvery = 1000

// Component is a named diffuse source.
type Component struct {
	Name     string
	Template spatial.Template
}

// Integrator computes diffuse responses over a fixed source region.
type Integrator struct {
	reg    *irf.Registry
	center coord.Direction
	cfg    Config

	gridOnce sync.Once
	grid     *Grid
}

// NewIntegrator returns an integrator over the cone about roiCenter.
func NewIntegrator(reg *irf.Registry, roiCenter coord.Direction, opts ...Option) (*Integrator, error) {
	if reg == nil {
		return nil, irf.ErrNilRegistry
	}
	return &Integrator{reg: reg, center: roiCenter, cfg: applyOptions(opts...)}, nil
}

// Config returns the sampling settings.
func (in *Integrator) Config() Config { return in.cfg }

// Center returns the ROI centre.
func (in *Integrator) Center() coord.Direction { return in.center }

// Grid returns the source-region grid, building it on first use.
func (in *Integrator) Grid() *Grid {
	in.gridOnce.Do(func() {
		in.grid = newGrid(in.center, in.cfg)
		logging.Logger().Debug("source region grid built",
			"radius", in.cfg.Radius,
			"mu", in.cfg.MuPoints,
			"phi", in.cfg.PhiPoints)
	})
	return in.grid
}

// NewEvent builds an event whose true-energy grid follows the registry's
// energy-dispersion setting.
func (in *Integrator) NewEvent(params EventParams, opts ...EventOption) (*Event, error) {
	opts = append([]EventOption{WithEnergyDispersion(in.reg.UseEdisp())}, opts...)
	return NewEvent(params, opts...)
}

// Compute fills ev's responses for every component not yet cached.
func (in *Integrator) Compute(ev *Event, components []Component) error {
	if ev == nil {
		return ErrNilEvent
	}
	if ev.edisp != in.reg.UseEdisp() {
		return ErrDispersionMismatch
	}

	var pending []Component
	seen := make(map[string]bool, len(components))
	for _, c := range components {
		if c.Template == nil {
			return fmt.Errorf("%w: %q", ErrNilTemplate, c.Name)
		}
		name := strings.ToLower(c.Name)
		if seen[name] || ev.HasResponse(name) {
			continue
		}
		seen[name] = true
		pending = append(pending, Component{Name: name, Template: c.Template})
	}
	if len(pending) == 0 {
		return nil
	}

	p := ev.params
	eff, err := in.reg.Efficiency(p.EventType, p.Energy, p.LivetimeFrac)
	if err != nil {
		return err
	}

	grid := in.Grid()
	nmu, nphi := len(grid.mu), len(grid.phi)
	buf := getScratch(grid)
	defer putScratch(buf)
	resp, phiVals, muVals := buf.resp, buf.phi, buf.mu
	results := make([][]float64, len(pending))
	for c := range results {
		results[c] = make([]float64, len(ev.energies))
	}

	for k, trueE := range ev.energies {
		for idx, dir := range grid.dirs {
			v, err := in.reg.TotalResponse(irf.Query{
				TrueEnergy: trueE,
				AppEnergy:  p.Energy,
				SrcDir:     dir,
				AppDir:     p.Dir,
				ZAxis:      p.ZAxis,
				EventType:  p.EventType,
			})
			if err != nil {
				return err
			}
			resp[idx] = v * eff
		}
		for c, comp := range pending {
			for i := 0; i < nmu; i++ {
				for j := 0; j < nphi; j++ {
					idx := i*nphi + j
					if resp[idx] == 0 {
						phiVals[j] = 0
						continue
					}
					t, err := comp.Template.Value(grid.dirs[idx], trueE)
					if err != nil {
						return fmt.Errorf("diffuse: component %q: %w", comp.Name, err)
					}
					phiVals[j] = resp[idx] * t
				}
				muVals[i] = integrate.Trapezoidal(grid.phi, phiVals)
			}
			results[c][k] = integrate.Trapezoidal(grid.mu, muVals)
		}
	}

	for c, comp := range pending {
		if err := ev.SetDiffuseResponse(comp.Name, results[c]); err != nil {
			return err
		}
	}
	return nil
}

// ComputeAll runs Compute for every event on up to GOMAXPROCS goroutines.
// Cancelling ctx stops scheduling further events.
func (in *Integrator) ComputeAll(ctx context.Context, events []*Event, components []Component) error {
	// Build the shared grid before fanning out.
	in.Grid()

	log := logging.Logger()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	var done atomic.Int64
	for _, ev := range events {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := in.Compute(ev, components); err != nil {
				return err
			}
			if n := done.Add(1); n%progressEvery == 0 {
				log.Debug("diffuse responses", "done", n, "total", len(events))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	log.Info("diffuse responses complete", "events", len(events), "components", len(components))
	return nil
}
