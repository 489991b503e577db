package types

import (
	"fmt"

	"gocv.io/x/gocv"
)

// MaxHue is the largest hue in OpenCV's 8-bit HSV space
const MaxHue = 179

// HSV is a color in OpenCV's 8-bit HSV space (hue 0-179, saturation and value 0-255).
type HSV struct {
	H, S, V uint8
}

// Scalar converts the color to a gocv scalar for range thresholding.
func (c HSV) Scalar() gocv.Scalar {
	return gocv.NewScalar(float64(c.H), float64(c.S), float64(c.V), 0)
}

// ColorProfile is the inclusive HSV range that counts as marker color.
// Profiles are values; the tracker never mutates one after start.
type ColorProfile struct {
	Lower HSV
	Upper HSV
}

// NewColorProfile builds a validated profile.
func NewColorProfile(lower, upper HSV) (ColorProfile, error) {
	p := ColorProfile{Lower: lower, Upper: upper}
	if err := p.Validate(); err != nil {
		return ColorProfile{}, err
	}
	return p, nil
}

// Validate enforces Lower <= Upper on every component and hue within 0..MaxHue.
func (p ColorProfile) Validate() error {
	switch {
	case p.Upper.H > MaxHue:
		return fmt.Errorf("%w: hue %d exceeds %d", ErrInvalidProfile, p.Upper.H, MaxHue)
	case p.Lower.H > p.Upper.H:
		return fmt.Errorf("%w: hue %d > %d", ErrInvalidProfile, p.Lower.H, p.Upper.H)
	case p.Lower.S > p.Upper.S:
		return fmt.Errorf("%w: saturation %d > %d", ErrInvalidProfile, p.Lower.S, p.Upper.S)
	case p.Lower.V > p.Upper.V:
		return fmt.Errorf("%w: value %d > %d", ErrInvalidProfile, p.Lower.V, p.Upper.V)
	}
	return nil
}

// Contains reports whether c falls inside the profile bounds.
func (p ColorProfile) Contains(c HSV) bool {
	return c.H >= p.Lower.H && c.H <= p.Upper.H &&
		c.S >= p.Lower.S && c.S <= p.Upper.S &&
		c.V >= p.Lower.V && c.V <= p.Upper.V
}

func (p ColorProfile) String() string {
	return fmt.Sprintf("[%d,%d,%d]-[%d,%d,%d]",
		p.Lower.H, p.Lower.S, p.Lower.V, p.Upper.H, p.Upper.S, p.Upper.V)
}

// DefaultProfile returns the reference deployment's range for a channel:
// green for primary, blue for secondary.
func DefaultProfile(ch Channel) ColorProfile {
	if ch == Secondary {
		return ColorProfile{
			Lower: HSV{H: 90, S: 77, V: 50},
			Upper: HSV{H: 115, S: 255, V: 255},
		}
	}
	return ColorProfile{
		Lower: HSV{H: 43, S: 70, V: 70},
		Upper: HSV{H: 85, S: 255, V: 255},
	}
}
