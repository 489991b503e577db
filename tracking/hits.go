package tracking

import (
	"context"
	"time"

	"drumtracker/types"
)

// PredictionReader is the query side of a PredictionStore
type PredictionReader interface {
	Read(ch types.Channel) types.Prediction
}

// HitDetector turns the level signal of a channel's prediction into
// edge-triggered hits: a hit fires once when the marker enters a zone and
// again only after it leaves that zone or moves to another one.
type HitDetector struct {
	reader  PredictionReader
	channel types.Channel
	last    types.Prediction
}

// NewHitDetector creates a detector that has not seen the marker in any zone
func NewHitDetector(reader PredictionReader, ch types.Channel) *HitDetector {
	return &HitDetector{reader: reader, channel: ch, last: types.None}
}

// Poll reads the current prediction and reports whether it is a new hit
func (h *HitDetector) Poll() (types.Prediction, bool) {
	p := h.reader.Read(h.channel)
	hit := p != types.None && p != h.last
	h.last = p
	return p, hit
}

// WatchHits polls every channel at interval and calls onHit for each new
// hit until ctx is done. onHit runs on the watcher goroutine.
func WatchHits(ctx context.Context, reader PredictionReader, channels []types.Channel, interval time.Duration, onHit func(ch types.Channel, zone types.Prediction)) {
	detectors := make([]*HitDetector, len(channels))
	for i, ch := range channels {
		detectors[i] = NewHitDetector(reader, ch)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, d := range detectors {
				if zone, hit := d.Poll(); hit {
					onHit(d.channel, zone)
				}
			}
		}
	}
}
