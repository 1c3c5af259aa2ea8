// Package diffuse computes per-event responses to extended and diffuse
// sources.
//
// An Integrator samples a cone (the source region) around the region of
// interest once, then for every event integrates
//
//	aeff x psf x efficiency (x edisp) x template
//
// over that cone on the event's true-energy grid. The results are cached on
// the Event under the lower-cased component name.
package diffuse
