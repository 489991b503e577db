// Package tracking classifies marker positions into zones and runs the
// per-channel frame loop that keeps the latest prediction available.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"drumtracker/input"
	"drumtracker/types"
)

var errAlreadyStarted = errors.New("tracker already started")

// State is the lifecycle state of a Tracker
type State int32

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// Detector finds the marker blob for a color profile in a frame
type Detector interface {
	Detect(frame gocv.Mat, profile types.ColorProfile) (types.Blob, bool, error)
}

// SampleSink receives the processing time of every tick
type SampleSink interface {
	Append(ch types.Channel, elapsed time.Duration)
}

// Tick describes one processed frame
type Tick struct {
	Channel    types.Channel
	Number     uint64
	Blob       types.Blob
	Found      bool
	Prediction types.Prediction
	Elapsed    time.Duration
}

// Observer is called synchronously after every tick, with the frame still valid
type Observer interface {
	OnTick(frame gocv.Mat, tick Tick)
}

// TrackerOptions configures a Tracker. Source, Detector, Zones and Store are required.
type TrackerOptions struct {
	Channel  types.Channel
	Profile  types.ColorProfile
	Zones    types.ZoneSet
	Source   input.FrameSource
	Detector Detector
	Store    *PredictionStore
	Samples  SampleSink
	Observer Observer
	Logger   *logrus.Logger
}

// Tracker drives one color channel: it pulls frames, finds the marker,
// classifies it and publishes the result. Profile and zones are fixed for
// the tracker's lifetime.
type Tracker struct {
	runID    uuid.UUID
	channel  types.Channel
	profile  types.ColorProfile
	zones    types.ZoneSet
	source   input.FrameSource
	detector Detector
	store    *PredictionStore
	samples  SampleSink
	observer Observer
	log      *logrus.Entry

	started  atomic.Bool
	state    atomic.Int32
	ticks    atomic.Uint64
	restarts atomic.Uint64

	errMu sync.Mutex
	err   error
}

// NewTracker validates options and creates a stopped tracker
func NewTracker(opts TrackerOptions) (*Tracker, error) {
	if !opts.Channel.Valid() {
		return nil, fmt.Errorf("invalid channel %d", int(opts.Channel))
	}
	if err := opts.Profile.Validate(); err != nil {
		return nil, fmt.Errorf("%s profile: %w", opts.Channel, err)
	}
	if opts.Zones.Len() == 0 {
		return nil, fmt.Errorf("%w: tracker needs at least one zone", types.ErrInvalidZone)
	}
	if opts.Source == nil || opts.Detector == nil || opts.Store == nil {
		return nil, errors.New("tracker needs a source, a detector and a store")
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	runID := uuid.New()

	return &Tracker{
		runID:    runID,
		channel:  opts.Channel,
		profile:  opts.Profile,
		zones:    opts.Zones,
		source:   opts.Source,
		detector: opts.Detector,
		store:    opts.Store,
		samples:  opts.Samples,
		observer: opts.Observer,
		log: logger.WithFields(logrus.Fields{
			"channel": opts.Channel.String(),
			"run_id":  runID.String(),
		}),
	}, nil
}

// RunID identifies this tracker in logs
func (t *Tracker) RunID() uuid.UUID { return t.runID }

// Channel returns the tracked channel
func (t *Tracker) Channel() types.Channel { return t.channel }

// State returns Running while Run is looping, Stopped otherwise
func (t *Tracker) State() State { return State(t.state.Load()) }

// Ticks returns the number of frames processed so far
func (t *Tracker) Ticks() uint64 { return t.ticks.Load() }

// Restarts returns how many times the source was rewound after running dry
func (t *Tracker) Restarts() uint64 { return t.restarts.Load() }

// Err returns the error that stopped the tracker, or nil
func (t *Tracker) Err() error {
	t.errMu.Lock()
	defer t.errMu.Unlock()
	return t.err
}

// Run processes frames until ctx is cancelled or the source becomes
// unavailable. Cancellation is checked between ticks only; a tick in
// progress always completes and publishes. It returns nil on cancellation
// and an error wrapping types.ErrSourceUnavailable otherwise.
// A tracker can only be run once.
func (t *Tracker) Run(ctx context.Context) error {
	if !t.started.CompareAndSwap(false, true) {
		return errAlreadyStarted
	}
	t.state.Store(int32(Running))
	defer t.state.Store(int32(Stopped))

	t.log.WithField("profile", t.profile.String()).Info("Tracker started")

	frame := gocv.NewMat()
	defer frame.Close()

	for {
		if ctx.Err() != nil {
			t.log.WithFields(logrus.Fields{
				"ticks":    t.Ticks(),
				"restarts": t.Restarts(),
			}).Info("Tracker stopped")
			return nil
		}

		if !t.source.IsOpened() {
			err := fmt.Errorf("%s tracker: %w", t.channel, types.ErrSourceUnavailable)
			t.setErr(err)
			t.log.WithError(err).Error("Could not open frame source")
			return err
		}

		if ok := t.source.Read(&frame); !ok || frame.Empty() {
			// End of a looped clip: rewind and try again straight away
			n := t.restarts.Add(1)
			t.log.WithField("restarts", n).Debug("Frame source exhausted, restarting")
			t.source.Restart()
			continue
		}

		t.tick(frame)
	}
}

// tick runs detection and classification on one frame and publishes the result
func (t *Tracker) tick(frame gocv.Mat) {
	start := time.Now()

	blob, found, err := t.detector.Detect(frame, t.profile)
	if err != nil {
		t.log.WithError(err).Warn("Detection failed, publishing no prediction")
		found = false
	}
	prediction := ClassifyBlob(t.zones, blob, found)
	t.store.Publish(t.channel, prediction)

	elapsed := time.Since(start)
	n := t.ticks.Add(1)
	if t.samples != nil {
		t.samples.Append(t.channel, elapsed)
	}

	if found {
		t.log.WithFields(logrus.Fields{
			"tick":       n,
			"x":          blob.CenterX,
			"y":          blob.CenterY,
			"radius":     blob.Radius,
			"prediction": int(prediction),
		}).Trace("Marker detected")
	}

	if t.observer != nil {
		t.observer.OnTick(frame, Tick{
			Channel:    t.channel,
			Number:     n,
			Blob:       blob,
			Found:      found,
			Prediction: prediction,
			Elapsed:    elapsed,
		})
	}
}

func (t *Tracker) setErr(err error) {
	t.errMu.Lock()
	defer t.errMu.Unlock()
	t.err = err
}
