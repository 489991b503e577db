package detection

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"drumtracker/types"
)

var errEmptyFrame = errors.New("empty frame")

// Segmenter turns BGR frames into binary marker masks. It owns a CLAHE
// instance and is not safe for concurrent use; give each tracker its own.
type Segmenter struct {
	clahe gocv.CLAHE
}

// NewSegmenter creates a segmenter with the configured contrast normalization
func NewSegmenter(config types.DetectionConfig) *Segmenter {
	tile := image.Pt(config.CLAHETileGrid, config.CLAHETileGrid)
	return &Segmenter{clahe: gocv.NewCLAHEWithParams(config.CLAHEClipLimit, tile)}
}

// Segment writes into mask a single-channel image that is 255 wherever the
// frame's HSV color, after equalizing the value channel, lies inside profile.
func (s *Segmenter) Segment(frame gocv.Mat, profile types.ColorProfile, mask *gocv.Mat) error {
	if frame.Empty() {
		return errEmptyFrame
	}

	hsv := gocv.NewMat()
	defer hsv.Close()
	if err := gocv.CvtColor(frame, &hsv, gocv.ColorBGRToHSV); err != nil {
		return fmt.Errorf("convert to hsv: %w", err)
	}

	planes := gocv.Split(hsv)
	defer func() {
		for i := range planes {
			planes[i].Close()
		}
	}()
	if len(planes) != 3 {
		return fmt.Errorf("expected 3 hsv planes, got %d", len(planes))
	}

	// Lighting mostly shifts V, so only that plane is equalized.
	equalized := gocv.NewMat()
	defer equalized.Close()
	if err := s.clahe.Apply(planes[2], &equalized); err != nil {
		return fmt.Errorf("equalize value plane: %w", err)
	}
	if err := equalized.CopyTo(&planes[2]); err != nil {
		return fmt.Errorf("copy value plane: %w", err)
	}
	if err := gocv.Merge(planes, &hsv); err != nil {
		return fmt.Errorf("merge hsv planes: %w", err)
	}

	if err := gocv.InRangeWithScalar(hsv, profile.Lower.Scalar(), profile.Upper.Scalar(), mask); err != nil {
		return fmt.Errorf("threshold: %w", err)
	}
	return nil
}

// Close releases the CLAHE instance
func (s *Segmenter) Close() error {
	return s.clahe.Close()
}
