package diffuse

// Config holds the source-region sampling settings.
type Config struct {
	// Radius is the source-region radius (deg) around the ROI centre.
	Radius float64
	// MuPoints and PhiPoints are the quadrature sizes in cos(colatitude)
	// and azimuth.
	MuPoints  int
	PhiPoints int
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the standard source region.
func DefaultConfig() Config {
	return Config{
		Radius:    30,
		MuPoints:  100,
		PhiPoints: 50,
	}
}

// WithRadius sets the source-region radius (deg).
func WithRadius(deg float64) Option {
	return func(cfg *Config) {
		if deg > 0 && deg <= 180 {
			cfg.Radius = deg
		}
	}
}

// WithMuPoints sets the number of cos(colatitude) samples.
func WithMuPoints(n int) Option {
	return func(cfg *Config) {
		if n >= 2 {
			cfg.MuPoints = n
		}
	}
}

// WithPhiPoints sets the number of azimuth samples.
func WithPhiPoints(n int) Option {
	return func(cfg *Config) {
		if n >= 2 {
			cfg.PhiPoints = n
		}
	}
}

func applyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// EventConfig holds the true-energy grid settings of an Event.
type EventConfig struct {
	EnergyDispersion bool
	// LowFrac and HighFrac bound the true-energy grid as fractions of the
	// apparent energy.
	LowFrac  float64
	HighFrac float64
	Points   int
}

// EventOption mutates an EventConfig.
type EventOption func(*EventConfig)

// DefaultEventConfig returns the grid used when dispersion is enabled.
func DefaultEventConfig() EventConfig {
	return EventConfig{
		LowFrac:  0.55,
		HighFrac: 1.45,
		Points:   100,
	}
}

// WithEnergyDispersion enables the true-energy grid.
func WithEnergyDispersion(enabled bool) EventOption {
	return func(cfg *EventConfig) {
		cfg.EnergyDispersion = enabled
	}
}

// WithTrueEnergyGrid sets the true-energy grid to n linear points over
// [lo, hi] x apparent energy.
func WithTrueEnergyGrid(lo, hi float64, n int) EventOption {
	return func(cfg *EventConfig) {
		if lo > 0 && hi > lo && n >= 2 {
			cfg.LowFrac = lo
			cfg.HighFrac = hi
			cfg.Points = n
		}
	}
}

func applyEventOptions(opts ...EventOption) EventConfig {
	cfg := DefaultEventConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
