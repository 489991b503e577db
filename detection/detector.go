// Package detection locates a colored marker in a video frame.
package detection

import (
	"fmt"

	"gocv.io/x/gocv"

	"drumtracker/types"
)

// Detector runs segmentation and blob extraction on a frame, reusing one
// mask buffer between calls. It is not safe for concurrent use.
type Detector struct {
	segmenter *Segmenter
	extractor *BlobExtractor
	mask      gocv.Mat
}

// NewDetector validates the configuration and allocates the pipeline
func NewDetector(config types.DetectionConfig) (*Detector, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("detection config: %w", err)
	}
	return &Detector{
		segmenter: NewSegmenter(config),
		extractor: NewBlobExtractor(config),
		mask:      gocv.NewMat(),
	}, nil
}

// Detect returns the marker blob for profile, or false if none qualifies
func (d *Detector) Detect(frame gocv.Mat, profile types.ColorProfile) (types.Blob, bool, error) {
	if err := d.segmenter.Segment(frame, profile, &d.mask); err != nil {
		return types.Blob{}, false, fmt.Errorf("segment: %w", err)
	}
	blob, ok, err := d.extractor.Extract(d.mask)
	if err != nil {
		return types.Blob{}, false, fmt.Errorf("extract: %w", err)
	}
	return blob, ok, nil
}

// Close releases OpenCV resources
func (d *Detector) Close() error {
	if err := d.mask.Close(); err != nil {
		return err
	}
	return d.segmenter.Close()
}
