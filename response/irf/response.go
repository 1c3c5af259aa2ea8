package irf

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cwbudde/algo-likelihood/sky/coord"
)

// Errors returned by the registry.
var (
	ErrNoResponses        = errors.New("irf: no response functions")
	ErrNilResponse        = errors.New("irf: nil response function")
	ErrUnknownEventType   = errors.New("irf: unknown event type")
	ErrNegativeEfficiency = errors.New("irf: efficiency < 0")
)

// Response is the per-event-type instrument response. Energies are in MeV,
// angles in degrees.
type Response interface {
	// Aeff returns the effective area (cm^2) at the given inclination from
	// the instrument axis.
	Aeff(energy, inclination float64) float64
	// Psf returns the PSF density (sr^-1) at angular separation from the
	// true direction.
	Psf(separation, energy, inclination float64) float64
	// Edisp returns the energy-dispersion density (MeV^-1) of measuring
	// appEnergy for a photon of trueEnergy.
	Edisp(appEnergy, trueEnergy, inclination float64) float64
	// MaxInclination returns the largest inclination for which the
	// response is valid.
	MaxInclination() float64
}

// EfficiencyFactor is implemented by responses that carry a livetime- and
// energy-dependent efficiency correction.
type EfficiencyFactor interface {
	Efficiency(energy, livetimeFrac float64) float64
}

// RegistryConfig holds the registry settings.
type RegistryConfig struct {
	Name             string
	EnergyDispersion bool
}

// RegistryOption mutates a RegistryConfig.
type RegistryOption func(*RegistryConfig)

// WithName labels the response set (e.g. "P8R3_SOURCE_V3").
func WithName(name string) RegistryOption {
	return func(cfg *RegistryConfig) {
		cfg.Name = name
	}
}

// WithEnergyDispersion enables energy-dispersion handling.
func WithEnergyDispersion(enabled bool) RegistryOption {
	return func(cfg *RegistryConfig) {
		cfg.EnergyDispersion = enabled
	}
}

// Registry is an immutable set of responses indexed by event type.
type Registry struct {
	cfg       RegistryConfig
	responses map[int]Response
	types     []int
}

// NewRegistry copies responses into a registry.
func NewRegistry(responses map[int]Response, opts ...RegistryOption) (*Registry, error) {
	if len(responses) == 0 {
		return nil, ErrNoResponses
	}
	var cfg RegistryConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	r := &Registry{cfg: cfg, responses: make(map[int]Response, len(responses))}
	for evtType, resp := range responses {
		if resp == nil {
			return nil, fmt.Errorf("%w: event type %d", ErrNilResponse, evtType)
		}
		r.responses[evtType] = resp
		r.types = append(r.types, evtType)
	}
	sort.Ints(r.types)
	return r, nil
}

// Name returns the response set label.
func (r *Registry) Name() string { return r.cfg.Name }

// UseEdisp reports whether energy dispersion is enabled.
func (r *Registry) UseEdisp() bool { return r.cfg.EnergyDispersion }

// EventTypes returns the registered event types in ascending order.
func (r *Registry) EventTypes() []int {
	out := make([]int, len(r.types))
	copy(out, r.types)
	return out
}

// Response returns the response for evtType.
func (r *Registry) Response(evtType int) (Response, error) {
	resp, ok := r.responses[evtType]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownEventType, evtType)
	}
	return resp, nil
}

// Efficiency returns the efficiency factor for an event of evtType, or 1
// when the response has none.
func (r *Registry) Efficiency(evtType int, energy, livetimeFrac float64) (float64, error) {
	resp, err := r.Response(evtType)
	if err != nil {
		return 0, err
	}
	ef, ok := resp.(EfficiencyFactor)
	if !ok {
		return 1, nil
	}
	eff := ef.Efficiency(energy, livetimeFrac)
	if eff < 0 {
		return 0, fmt.Errorf("%w: %g at %g MeV", ErrNegativeEfficiency, eff, energy)
	}
	return eff, nil
}

// Query describes a single total-response evaluation.
type Query struct {
	TrueEnergy float64
	AppEnergy  float64
	SrcDir     coord.Direction
	AppDir     coord.Direction
	ZAxis      coord.Direction
	EventType  int
}

// TotalResponse returns aeff x psf (x edisp when enabled) for q. Source
// directions beyond the response's maximum inclination give 0.
func (r *Registry) TotalResponse(q Query) (float64, error) {
	resp, err := r.Response(q.EventType)
	if err != nil {
		return 0, err
	}
	inc := q.ZAxis.SeparationDeg(q.SrcDir)
	if inc > resp.MaxInclination() {
		return 0, nil
	}
	sep := q.AppDir.SeparationDeg(q.SrcDir)
	value := resp.Aeff(q.TrueEnergy, inc) * resp.Psf(sep, q.TrueEnergy, inc)
	if r.cfg.EnergyDispersion {
		value *= resp.Edisp(q.AppEnergy, q.TrueEnergy, inc)
	}
	return value, nil
}
