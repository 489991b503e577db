package tracking

import (
	"sync"
	"time"

	"drumtracker/types"
)

// Reading is a consistent view of one channel's slot
type Reading struct {
	Prediction types.Prediction
	Seq        uint64    // number of publishes so far, 0 if never published
	UpdatedAt  time.Time // zero if never published
}

// predictionSlot is a single-value mailbox: each publish overwrites the last.
type predictionSlot struct {
	mu         sync.RWMutex
	prediction types.Prediction
	seq        uint64
	updatedAt  time.Time
}

// PredictionStore holds the latest prediction for every channel. Each
// channel has its own lock so trackers never contend with each other, and
// readers of the same channel only wait for an in-flight publish.
type PredictionStore struct {
	slots [2]predictionSlot
}

// NewPredictionStore returns a store with every channel reading types.None
func NewPredictionStore() *PredictionStore {
	s := &PredictionStore{}
	for i := range s.slots {
		s.slots[i].prediction = types.None
	}
	return s
}

func (s *PredictionStore) slot(ch types.Channel) *predictionSlot {
	if !ch.Valid() {
		return nil
	}
	return &s.slots[ch]
}

// Publish replaces the channel's prediction. Unknown channels are ignored.
func (s *PredictionStore) Publish(ch types.Channel, p types.Prediction) {
	slot := s.slot(ch)
	if slot == nil {
		return
	}

	now := time.Now()
	slot.mu.Lock()
	slot.prediction = p
	slot.seq++
	slot.updatedAt = now
	slot.mu.Unlock()
}

// Read returns the channel's most recent prediction, or types.None
func (s *PredictionStore) Read(ch types.Channel) types.Prediction {
	slot := s.slot(ch)
	if slot == nil {
		return types.None
	}

	slot.mu.RLock()
	defer slot.mu.RUnlock()
	return slot.prediction
}

// Snapshot returns the prediction together with its publish sequence and time
func (s *PredictionStore) Snapshot(ch types.Channel) Reading {
	slot := s.slot(ch)
	if slot == nil {
		return Reading{Prediction: types.None}
	}

	slot.mu.RLock()
	defer slot.mu.RUnlock()
	return Reading{
		Prediction: slot.prediction,
		Seq:        slot.seq,
		UpdatedAt:  slot.updatedAt,
	}
}
