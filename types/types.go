package types

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSourceUnavailable is returned when the frame source cannot be opened or queried.
	ErrSourceUnavailable = errors.New("frame source unavailable")
	// ErrInvalidProfile is returned for color profiles with inverted bounds.
	ErrInvalidProfile = errors.New("invalid color profile")
	// ErrInvalidZone is returned for malformed zones or zone sets.
	ErrInvalidZone = errors.New("invalid zone")
)

// Channel identifies one of the independently tracked marker colors
type Channel int

const (
	Primary Channel = iota
	Secondary
)

// Channels lists every trackable channel in slot order
var Channels = []Channel{Primary, Secondary}

func (c Channel) String() string {
	switch c {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// Valid reports whether c names a known channel
func (c Channel) Valid() bool {
	return c == Primary || c == Secondary
}

// ParseChannel parses a channel name as printed by Channel.String
func ParseChannel(s string) (Channel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "primary":
		return Primary, nil
	case "secondary":
		return Secondary, nil
	}
	return 0, fmt.Errorf("unknown channel %q", s)
}

// Prediction is a zone id, or None when no zone holds the marker
type Prediction int

// None means no blob was found or no zone matched.
const None Prediction = -1

func (p Prediction) String() string {
	if p == None {
		return "none"
	}
	return fmt.Sprintf("zone %d", int(p))
}

// Blob is the marker region selected in one frame, reduced to a circle
type Blob struct {
	CenterX float64
	CenterY float64
	Radius  float64
	Area    float64
}

// DetectionConfig holds segmentation and blob extraction constants
type DetectionConfig struct {
	CLAHEClipLimit float64
	CLAHETileGrid  int
	BlurKernel     int
	BlurSigma      float64
	MinArea        float64
}

// DefaultDetectionConfig returns the default detection configuration
func DefaultDetectionConfig() DetectionConfig {
	return DetectionConfig{
		CLAHEClipLimit: 2.0,
		CLAHETileGrid:  8,
		BlurKernel:     5,
		BlurSigma:      2.0,
		MinArea:        20,
	}
}

// Validate checks that the detection constants are usable by OpenCV
func (c DetectionConfig) Validate() error {
	if c.CLAHEClipLimit <= 0 {
		return fmt.Errorf("clahe clip limit must be positive, got %v", c.CLAHEClipLimit)
	}
	if c.CLAHETileGrid <= 0 {
		return fmt.Errorf("clahe tile grid must be positive, got %d", c.CLAHETileGrid)
	}
	if c.BlurKernel <= 0 || c.BlurKernel%2 == 0 {
		return fmt.Errorf("blur kernel must be odd and positive, got %d", c.BlurKernel)
	}
	if c.BlurSigma < 0 {
		return fmt.Errorf("blur sigma must not be negative, got %v", c.BlurSigma)
	}
	if c.MinArea < 0 {
		return fmt.Errorf("min area must not be negative, got %v", c.MinArea)
	}
	return nil
}

// UIConfig holds preview and calibration window constants
type UIConfig struct {
	StatusFontSize float64
	LabelFontSize  float64
	ZoneThickness  int
	TipMinRadius   float64
	StatusOffsetY  int
}

// DefaultUIConfig returns the default UI configuration
func DefaultUIConfig() UIConfig {
	return UIConfig{
		StatusFontSize: 1.5,
		LabelFontSize:  0.5,
		ZoneThickness:  2,
		TipMinRadius:   4,
		StatusOffsetY:  30,
	}
}
