// Package likelihood computes exposure-weighted mean PSFs, PSF-convolved
// WCS source maps and per-event diffuse-source responses for gamma-ray
// likelihood analyses.
//
// The work is split across sub-packages:
//
//   - sky/coord, sky/proj, sky/wcs: directions, projections and images
//   - dsp/interp, dsp/conv: interpolation and 2D convolution
//   - response/irf: instrument response and livetime history
//   - response/psf: mean PSF tables
//   - response/spatial: spatial source templates
//   - response/diffuse: per-event diffuse responses
//
// This package only carries the module-wide logger.
package likelihood

import (
	"log/slog"

	"github.com/cwbudde/algo-likelihood/internal/logging"
)

// SetLogger configures the logger for all packages of the module. By
// default nothing is logged. Pass nil to restore silent operation.
//
// Levels used:
//   - [slog.LevelDebug]: table builds, rebin geometry, per-event progress
//   - [slog.LevelInfo]: batch summaries
//
// Example:
//
//	likelihood.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return logging.Logger()
}
