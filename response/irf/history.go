package irf

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cwbudde/algo-likelihood/sky/coord"
)

// Errors returned by livetime histories.
var (
	ErrEmptyHistory    = errors.New("irf: empty livetime history")
	ErrBadInterval     = errors.New("irf: invalid livetime interval")
	ErrTimeOutOfRange  = errors.New("irf: time outside livetime history")
	ErrInvalidBinCount = errors.New("irf: invalid number of bins")
)

// Attitude is the spacecraft orientation and livetime fraction at a time.
type Attitude struct {
	ZAxis        coord.Direction
	XAxis        coord.Direction
	LivetimeFrac float64
}

// Interval is a span [Start, Stop) of mission elapsed time (s) with a
// constant attitude.
type Interval struct {
	Start float64
	Stop  float64
	Attitude
}

// Livetime returns the live seconds in the interval.
func (iv Interval) Livetime() float64 {
	return (iv.Stop - iv.Start) * iv.LivetimeFrac
}

// History is a pointing and livetime history.
type History interface {
	// Attitude returns the attitude at time t.
	Attitude(t float64) (Attitude, error)
	// Intervals returns the history as constant-attitude intervals.
	Intervals() []Interval
}

// Timeline is a History backed by sorted, non-overlapping intervals.
type Timeline struct {
	intervals []Interval
}

// NewTimeline validates and copies intervals. They are sorted by start
// time; overlaps, empty spans and livetime fractions outside [0, 1] are
// rejected.
func NewTimeline(intervals []Interval) (*Timeline, error) {
	if len(intervals) == 0 {
		return nil, ErrEmptyHistory
	}
	ivs := make([]Interval, len(intervals))
	copy(ivs, intervals)
	sort.Slice(ivs, func(i, j int) bool { return ivs[i].Start < ivs[j].Start })
	for i, iv := range ivs {
		if iv.Stop <= iv.Start {
			return nil, fmt.Errorf("%w: [%g, %g)", ErrBadInterval, iv.Start, iv.Stop)
		}
		if iv.LivetimeFrac < 0 || iv.LivetimeFrac > 1 {
			return nil, fmt.Errorf("%w: livetime fraction %g", ErrBadInterval, iv.LivetimeFrac)
		}
		if i > 0 && iv.Start < ivs[i-1].Stop {
			return nil, fmt.Errorf("%w: [%g, %g) overlaps previous interval", ErrBadInterval, iv.Start, iv.Stop)
		}
	}
	return &Timeline{intervals: ivs}, nil
}

// Span returns the first start and last stop time.
func (tl *Timeline) Span() (start, stop float64) {
	return tl.intervals[0].Start, tl.intervals[len(tl.intervals)-1].Stop
}

// Intervals returns a copy of the intervals.
func (tl *Timeline) Intervals() []Interval {
	out := make([]Interval, len(tl.intervals))
	copy(out, tl.intervals)
	return out
}

// Attitude returns the attitude of the interval containing t.
func (tl *Timeline) Attitude(t float64) (Attitude, error) {
	i := sort.Search(len(tl.intervals), func(i int) bool { return tl.intervals[i].Stop > t })
	if i == len(tl.intervals) || t < tl.intervals[i].Start {
		return Attitude{}, fmt.Errorf("%w: %g", ErrTimeOutOfRange, t)
	}
	return tl.intervals[i].Attitude, nil
}

// TotalLivetime returns the summed live seconds.
func (tl *Timeline) TotalLivetime() float64 {
	total := 0.0
	for _, iv := range tl.intervals {
		total += iv.Livetime()
	}
	return total
}

// ConstantPointing returns a single-interval timeline of duration seconds
// with the instrument axis fixed on zAxis.
func ConstantPointing(zAxis coord.Direction, duration, livetimeFrac float64) (*Timeline, error) {
	return NewTimeline([]Interval{{
		Start:    0,
		Stop:     duration,
		Attitude: Attitude{ZAxis: zAxis, XAxis: zAxis.Offset(90, 0), LivetimeFrac: livetimeFrac},
	}})
}

// SurveyTimeline returns n contiguous intervals of step seconds whose
// instrument axis scans right ascension in equal steps while rocking
// between declinations +rock and -rock.
func SurveyTimeline(n int, step, rock, livetimeFrac float64) (*Timeline, error) {
	if n <= 0 {
		return nil, ErrEmptyHistory
	}
	ivs := make([]Interval, n)
	for i := range ivs {
		dec := rock
		if i%2 == 1 {
			dec = -rock
		}
		z := coord.NewEquatorial(360*float64(i)/float64(n), dec)
		ivs[i] = Interval{
			Start:    float64(i) * step,
			Stop:     float64(i+1) * step,
			Attitude: Attitude{ZAxis: z, XAxis: z.Offset(90, 0), LivetimeFrac: livetimeFrac},
		}
	}
	return NewTimeline(ivs)
}
