package ui

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"drumtracker/input"
	"drumtracker/tracking"
	"drumtracker/types"
)

// previewKeyDelay is how long Run waits for a key, and so how often it
// pumps window events, between frames.
const previewKeyDelay = 10

type previewFrame struct {
	frame gocv.Mat
	tick  tracking.Tick
}

// pauseGate blocks tracker ticks while the preview is paused
type pauseGate struct {
	mu     sync.Mutex
	resume chan struct{} // nil while running
}

func (g *pauseGate) pause() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.resume == nil {
		g.resume = make(chan struct{})
	}
}

func (g *pauseGate) unpause() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.resume != nil {
		close(g.resume)
		g.resume = nil
	}
}

func (g *pauseGate) paused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.resume != nil
}

// wait returns once the gate is open or done is closed
func (g *pauseGate) wait(done <-chan struct{}) {
	g.mu.Lock()
	resume := g.resume
	g.mu.Unlock()
	if resume == nil {
		return
	}
	select {
	case <-resume:
	case <-done:
	}
}

// Preview shows processed frames with zones and the detected tip.
//
// OnTick implements tracking.Observer and only hands a copy of the frame
// over; every window call happens in Run, which must be called from the
// goroutine that created the preview (the main goroutine). Feed it from
// one tracker only.
type Preview struct {
	window *gocv.Window
	canvas gocv.Mat
	zones  types.ZoneSet
	config types.UIConfig
	log    *logrus.Entry

	frames chan previewFrame
	gate   pauseGate
	done   <-chan struct{}
	debug  bool
}

// NewPreview opens a window titled title. Ticks blocked by a pause are
// released when ctx is done.
func NewPreview(ctx context.Context, title string, zones types.ZoneSet, config types.UIConfig, logger *logrus.Logger) *Preview {
	p := newPreview(ctx, zones, config, logger)
	p.window = gocv.NewWindow(title)
	return p
}

func newPreview(ctx context.Context, zones types.ZoneSet, config types.UIConfig, logger *logrus.Logger) *Preview {
	return &Preview{
		canvas: gocv.NewMat(),
		zones:  zones,
		config: config,
		log:    logger.WithField("component", "preview"),
		frames: make(chan previewFrame, 1),
		done:   ctx.Done(),
	}
}

// OnTick waits while the preview is paused, then queues the frame for
// display. Frames arriving while the previous one is still queued are
// dropped.
func (p *Preview) OnTick(frame gocv.Mat, tick tracking.Tick) {
	p.gate.wait(p.done)

	item := previewFrame{frame: frame.Clone(), tick: tick}
	select {
	case p.frames <- item:
	default:
		item.frame.Close()
	}
}

// Run displays queued frames and handles window keys until ctx is done or
// the user quits with q or ESC. It reports whether the user quit.
func (p *Preview) Run(ctx context.Context) bool {
	defer p.gate.unpause()

	for {
		select {
		case <-ctx.Done():
			return false
		case item := <-p.frames:
			p.show(item)
		default:
		}

		switch input.ProcessPreviewKey(p.window.WaitKey(previewKeyDelay)) {
		case input.ActionQuit:
			return true
		case input.ActionToggleDebug:
			p.debug = !p.debug
			p.log.WithField("debug", p.debug).Info("Preview debug details toggled")
		case input.ActionTogglePause:
			if p.gate.paused() {
				p.gate.unpause()
				p.log.Info("Tracking resumed")
			} else {
				p.gate.pause()
				p.log.Info("Tracking paused")
			}
		}
	}
}

func (p *Preview) show(item previewFrame) {
	defer item.frame.Close()

	if err := item.frame.CopyTo(&p.canvas); err != nil {
		p.log.WithError(err).Warn("Copying frame failed")
		return
	}
	if err := RenderFrame(&p.canvas, p.zones, item.tick, p.debug, p.config); err != nil {
		p.log.WithError(err).Warn("Overlay rendering failed")
	}
	p.window.IMShow(p.canvas)
}

// Close destroys the window and frees any frame still queued
func (p *Preview) Close() error {
	select {
	case item := <-p.frames:
		item.frame.Close()
	default:
	}
	if err := p.canvas.Close(); err != nil {
		return err
	}
	if p.window == nil {
		return nil
	}
	return p.window.Close()
}
