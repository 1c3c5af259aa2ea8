package diffuse

import (
	"sync"

	"github.com/cwbudde/algo-likelihood/dsp/core"
)

// scratch holds the work buffers of one Compute call. Every element is
// overwritten before it is read.
type scratch struct {
	resp []float64 // total response per grid direction
	phi  []float64
	mu   []float64
}

var scratchPool = sync.Pool{
	New: func() any { return new(scratch) },
}

func getScratch(g *Grid) *scratch {
	s := scratchPool.Get().(*scratch)
	s.resp = core.EnsureLen(s.resp, g.Len())
	s.phi = core.EnsureLen(s.phi, len(g.phi))
	s.mu = core.EnsureLen(s.mu, len(g.mu))
	return s
}

func putScratch(s *scratch) {
	if s != nil {
		scratchPool.Put(s)
	}
}
