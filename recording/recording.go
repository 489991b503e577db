// Package recording keeps per-frame processing times for later reporting.
package recording

import (
	"errors"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"drumtracker/types"
)

// ErrNoSamples is returned when a report is requested before any frame was processed
var ErrNoSamples = errors.New("no processing samples recorded")

// Sample is the processing time of one tracker tick
type Sample struct {
	Channel types.Channel
	Tick    uint64 // per-channel tick number, starting at 1
	Elapsed time.Duration
}

// Summary aggregates processing times in seconds
type Summary struct {
	Count int
	Mean  float64
	Min   float64
	Max   float64
	P95   float64
}

// SampleRecorder is an append-only, thread-safe sequence of samples shared
// by all trackers of a run.
type SampleRecorder struct {
	mu      sync.Mutex
	samples []Sample
	ticks   map[types.Channel]uint64
}

// NewSampleRecorder creates an empty recorder
func NewSampleRecorder() *SampleRecorder {
	return &SampleRecorder{ticks: make(map[types.Channel]uint64)}
}

// Append records one tick's processing time for a channel
func (r *SampleRecorder) Append(ch types.Channel, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ticks[ch]++
	r.samples = append(r.samples, Sample{Channel: ch, Tick: r.ticks[ch], Elapsed: elapsed})
}

// Len returns the number of recorded samples
func (r *SampleRecorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

// Samples returns a copy of all samples in append order
func (r *SampleRecorder) Samples() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Sample, len(r.samples))
	copy(out, r.samples)
	return out
}

// ChannelSamples returns a copy of one channel's samples in append order
func (r *SampleRecorder) ChannelSamples(ch types.Channel) []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Sample
	for _, s := range r.samples {
		if s.Channel == ch {
			out = append(out, s)
		}
	}
	return out
}

// Summary computes statistics over every recorded sample
func (r *SampleRecorder) Summary() (Summary, error) {
	return Summarize(r.Samples())
}

// Summarize computes statistics over samples
func Summarize(samples []Sample) (Summary, error) {
	if len(samples) == 0 {
		return Summary{}, ErrNoSamples
	}

	secs := make([]float64, len(samples))
	for i, s := range samples {
		secs[i] = s.Elapsed.Seconds()
	}
	sort.Float64s(secs)

	return Summary{
		Count: len(secs),
		Mean:  stat.Mean(secs, nil),
		Min:   secs[0],
		Max:   secs[len(secs)-1],
		P95:   stat.Quantile(0.95, stat.Empirical, secs, nil),
	}, nil
}
