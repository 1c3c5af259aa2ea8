// Package irf defines the instrument-response and pointing-history
// capabilities consumed by the PSF, image and event-response packages.
//
// Response tables themselves live outside this module; they are plugged in
// through the [Response] interface and collected, per event type, in an
// immutable [Registry] that is passed explicitly to every component that
// needs it. [Timeline] is an in-memory livetime/attitude history, and
// [LivetimeProfile] bins its livetime by inclination for a sky direction,
// which is what exposure and mean-PSF calculations integrate over.
//
// [Analytic] is a closed-form response model used by tools and tests.
package irf
