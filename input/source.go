package input

import (
	"fmt"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"drumtracker/types"
	"drumtracker/utils"
)

// FrameSource supplies video frames. Read returns false when no frame is
// available right now (end of a clip, a dropped grab); Restart rewinds to
// the beginning. IsOpened reports whether the source can be used at all.
type FrameSource interface {
	IsOpened() bool
	Read(dst *gocv.Mat) bool
	Restart()
}

// Capture adapts a gocv video capture (camera or file) to FrameSource
type Capture struct {
	capture *gocv.VideoCapture
	device  string
}

// OpenCapture opens device as a video file if the path exists, otherwise
// as a camera id.
func OpenCapture(device string) (*Capture, error) {
	var capture *gocv.VideoCapture
	var err error
	if _, err = os.Stat(device); err == nil {
		capture, err = gocv.VideoCaptureFile(device)
	} else {
		capture, err = gocv.VideoCaptureDevice(utils.ParseCameraID(device))
	}
	if err != nil {
		return nil, fmt.Errorf("open %q: %w: %v", device, types.ErrSourceUnavailable, err)
	}
	return &Capture{capture: capture, device: device}, nil
}

// Device returns the path or camera id the capture was opened with
func (c *Capture) Device() string { return c.device }

func (c *Capture) IsOpened() bool {
	return c.capture.IsOpened()
}

func (c *Capture) Read(dst *gocv.Mat) bool {
	return c.capture.Read(dst)
}

// Restart seeks back to the first frame. Cameras ignore it.
func (c *Capture) Restart() {
	c.capture.Set(gocv.VideoCapturePosFrames, 0)
}

// Close releases the capture device
func (c *Capture) Close() error {
	return c.capture.Close()
}

// SharedSource serializes access to a source so several trackers can pull
// frames from one capture. Each frame goes to exactly one caller. When
// several callers see the end of a clip, only the first Restart rewinds;
// later ones are no-ops until a read fails again.
type SharedSource struct {
	mu        sync.Mutex
	src       FrameSource
	exhausted bool
}

// NewSharedSource wraps src for concurrent use
func NewSharedSource(src FrameSource) *SharedSource {
	return &SharedSource{src: src}
}

func (s *SharedSource) IsOpened() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.IsOpened()
}

func (s *SharedSource) Read(dst *gocv.Mat) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.src.Read(dst)
	if !ok {
		s.exhausted = true
	}
	return ok
}

func (s *SharedSource) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.exhausted {
		return
	}
	s.exhausted = false
	s.src.Restart()
}
