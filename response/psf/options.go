package psf

// Config holds the table sampling settings.
type Config struct {
	// SepMin and SepMax bound the separation grid (deg).
	SepMin float64
	SepMax float64
	// SepPoints is the number of log-spaced separations.
	SepPoints int
	// ProfileBins is the number of cos(inclination) livetime bins.
	ProfileBins int
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the standard sampling.
func DefaultConfig() Config {
	return Config{
		SepMin:      1e-4,
		SepMax:      70,
		SepPoints:   200,
		ProfileBins: 40,
	}
}

// WithSeparationRange sets the separation grid bounds (deg).
func WithSeparationRange(min, max float64) Option {
	return func(cfg *Config) {
		if min > 0 && max > min && max <= 180 {
			cfg.SepMin = min
			cfg.SepMax = max
		}
	}
}

// WithSeparationPoints sets the number of separation samples.
func WithSeparationPoints(n int) Option {
	return func(cfg *Config) {
		if n >= 2 {
			cfg.SepPoints = n
		}
	}
}

// WithProfileBins sets the number of livetime inclination bins.
func WithProfileBins(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.ProfileBins = n
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
