package diffuse

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/cwbudde/algo-likelihood/dsp/core"
	"github.com/cwbudde/algo-likelihood/dsp/interp"
	"github.com/cwbudde/algo-likelihood/response/irf"
	"github.com/cwbudde/algo-likelihood/sky/coord"
)

// Errors returned by events.
var (
	ErrUnknownComponent = errors.New("diffuse: unknown diffuse component")
	ErrLengthMismatch   = errors.New("diffuse: response length does not match true-energy grid")
	ErrInvalidEnergy    = errors.New("diffuse: energy must be positive")
	ErrInvalidLivetime  = errors.New("diffuse: livetime fraction must be in [0, 1]")
)

// EventParams describes a detected photon.
type EventParams struct {
	Dir    coord.Direction // apparent direction
	Energy float64         // apparent energy (MeV)
	Time   float64         // mission elapsed time (s)
	// ZAxis is the spacecraft z axis at Time.
	ZAxis        coord.Direction
	EventType    int
	LivetimeFrac float64
}

// ParamsFromHistory fills the spacecraft attitude of an event from hist.
func ParamsFromHistory(hist irf.History, dir coord.Direction, energy, t float64, evtType int) (EventParams, error) {
	att, err := hist.Attitude(t)
	if err != nil {
		return EventParams{}, fmt.Errorf("diffuse: event at t=%g: %w", t, err)
	}
	return EventParams{
		Dir:          dir,
		Energy:       energy,
		Time:         t,
		ZAxis:        att.ZAxis,
		EventType:    evtType,
		LivetimeFrac: att.LivetimeFrac,
	}, nil
}

// Event is a photon together with its cached diffuse responses.
type Event struct {
	params   EventParams
	edisp    bool
	energies []float64 // true-energy grid (MeV)

	mu        sync.RWMutex
	responses map[string][]float64
}

// NewEvent builds an event. Without energy dispersion the true-energy grid
// is the apparent energy alone.
func NewEvent(params EventParams, opts ...EventOption) (*Event, error) {
	if !(params.Energy > 0) {
		return nil, fmt.Errorf("%w: %g", ErrInvalidEnergy, params.Energy)
	}
	if params.LivetimeFrac < 0 || params.LivetimeFrac > 1 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidLivetime, params.LivetimeFrac)
	}
	cfg := applyEventOptions(opts...)
	ev := &Event{
		params:    params,
		edisp:     cfg.EnergyDispersion,
		responses: make(map[string][]float64),
	}
	if cfg.EnergyDispersion {
		e, err := interp.LinSpace(cfg.LowFrac*params.Energy, cfg.HighFrac*params.Energy, cfg.Points)
		if err != nil {
			return nil, err
		}
		ev.energies = e
	} else {
		ev.energies = []float64{params.Energy}
	}
	return ev, nil
}

// Params returns the event description.
func (e *Event) Params() EventParams { return e.params }

// Dir returns the apparent direction.
func (e *Event) Dir() coord.Direction { return e.params.Dir }

// Energy returns the apparent energy (MeV).
func (e *Event) Energy() float64 { return e.params.Energy }

// EnergyDispersion reports whether the event carries a true-energy grid.
func (e *Event) EnergyDispersion() bool { return e.edisp }

// TrueEnergies returns a copy of the true-energy grid.
func (e *Event) TrueEnergies() []float64 { return core.Clone(e.energies) }

// HasResponse reports whether a response for name is cached.
func (e *Event) HasResponse(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.responses[strings.ToLower(name)]
	return ok
}

// Components returns the cached component names in sorted order.
func (e *Event) Components() []string {
	e.mu.RLock()
	names := make([]string, 0, len(e.responses))
	for name := range e.responses {
		names = append(names, name)
	}
	e.mu.RUnlock()
	sort.Strings(names)
	return names
}

// DiffuseResponse returns the response to component name for a photon of
// trueEnergy. With energy dispersion the grid values are linearly
// interpolated and energies off the grid give 0.
func (e *Event) DiffuseResponse(trueEnergy float64, name string) (float64, error) {
	e.mu.RLock()
	values, ok := e.responses[strings.ToLower(name)]
	e.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownComponent, name)
	}
	if !e.edisp {
		return values[0], nil
	}
	k, err := interp.Bracket(e.energies, trueEnergy)
	if err != nil {
		return 0, nil
	}
	return interp.Linear(trueEnergy, e.energies[k], e.energies[k+1], values[k], values[k+1]), nil
}

// SetDiffuseResponse stores precomputed responses for name, one per
// true energy.
func (e *Event) SetDiffuseResponse(name string, values []float64) error {
	if len(values) != len(e.energies) {
		return fmt.Errorf("%w: got %d, want %d", ErrLengthMismatch, len(values), len(e.energies))
	}
	e.mu.Lock()
	e.responses[strings.ToLower(name)] = core.Clone(values)
	e.mu.Unlock()
	return nil
}

// WriteDiffuseResponses writes one "trueEnergy  response" line per grid
// point for every cached component, each block headed by "# name".
func (e *Event) WriteDiffuseResponses(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, name := range e.Components() {
		e.mu.RLock()
		values := e.responses[name]
		e.mu.RUnlock()
		if _, err := fmt.Fprintf(bw, "# %s\n", name); err != nil {
			return err
		}
		for k, v := range values {
			if _, err := fmt.Fprintf(bw, "%g  %g\n", e.energies[k], v); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
