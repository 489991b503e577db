package detection

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"drumtracker/types"
)

// BlobExtractor reduces a marker mask to at most one circular blob.
//
// Only the first external contour OpenCV reports is considered. It is not
// the largest one by construction; callers tuned against this behavior, so
// it is kept as is.
type BlobExtractor struct {
	kernel  image.Point
	sigma   float64
	minArea float64
}

// NewBlobExtractor creates an extractor from the detection configuration
func NewBlobExtractor(config types.DetectionConfig) *BlobExtractor {
	return &BlobExtractor{
		kernel:  image.Pt(config.BlurKernel, config.BlurKernel),
		sigma:   config.BlurSigma,
		minArea: config.MinArea,
	}
}

// Accepts reports whether a region of the given area is large enough to be
// reported. An area equal to the minimum is accepted.
func (e *BlobExtractor) Accepts(area float64) bool {
	return area >= e.minArea
}

// Extract smooths the mask, finds its outer contours and returns the
// enclosing circle of the first one if it passes the area threshold.
func (e *BlobExtractor) Extract(mask gocv.Mat) (types.Blob, bool, error) {
	if mask.Empty() {
		return types.Blob{}, false, errEmptyFrame
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	if err := gocv.GaussianBlur(mask, &blurred, e.kernel, e.sigma, e.sigma, gocv.BorderDefault); err != nil {
		return types.Blob{}, false, fmt.Errorf("blur mask: %w", err)
	}

	contours := gocv.FindContours(blurred, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()
	if contours.Size() == 0 {
		return types.Blob{}, false, nil
	}

	first := contours.At(0)
	area := gocv.ContourArea(first)
	if !e.Accepts(area) {
		return types.Blob{}, false, nil
	}

	x, y, r := gocv.MinEnclosingCircle(first)
	return types.Blob{
		CenterX: float64(x),
		CenterY: float64(y),
		Radius:  float64(r),
		Area:    area,
	}, true, nil
}
