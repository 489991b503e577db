package detection

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"drumtracker/types"
)

var (
	gray  = color.RGBA{R: 128, G: 128, B: 128}
	green = color.RGBA{G: 255}
	blue  = color.RGBA{B: 255}
)

// newFrame returns a BGR frame filled with bg and the given disks drawn on it
func newFrame(t *testing.T, width, height int, bg color.RGBA, disks ...disk) gocv.Mat {
	t.Helper()
	frame := gocv.NewMatWithSizeFromScalar(
		gocv.NewScalar(float64(bg.B), float64(bg.G), float64(bg.R), 0),
		height, width, gocv.MatTypeCV8UC3)
	for _, d := range disks {
		gocv.Circle(&frame, image.Pt(d.x, d.y), d.r, d.c, -1)
	}
	t.Cleanup(func() { frame.Close() })
	return frame
}

type disk struct {
	x, y, r int
	c       color.RGBA
}

func newMask(t *testing.T, width, height int) gocv.Mat {
	t.Helper()
	mask := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8U)
	mask.SetTo(gocv.NewScalar(0, 0, 0, 0))
	t.Cleanup(func() { mask.Close() })
	return mask
}

func TestSegmentMarksOnlyProfileColor(t *testing.T) {
	frame := newFrame(t, 320, 240, gray,
		disk{x: 80, y: 120, r: 20, c: green},
		disk{x: 240, y: 120, r: 20, c: blue})

	seg := NewSegmenter(types.DefaultDetectionConfig())
	defer seg.Close()

	mask := gocv.NewMat()
	defer mask.Close()
	require.NoError(t, seg.Segment(frame, types.DefaultProfile(types.Primary), &mask))

	require.Equal(t, 240, mask.Rows())
	require.Equal(t, 320, mask.Cols())
	assert.Equal(t, gocv.MatTypeCV8U, mask.Type())

	assert.Equal(t, uint8(255), mask.GetUCharAt(120, 80), "green disk center")
	assert.Equal(t, uint8(0), mask.GetUCharAt(120, 240), "blue disk center")
	assert.Equal(t, uint8(0), mask.GetUCharAt(10, 10), "gray background")

	count := gocv.CountNonZero(mask)
	assert.InDelta(t, 3.14159*20*20, float64(count), 200)
}

func TestSegmentRejectsEmptyFrame(t *testing.T) {
	seg := NewSegmenter(types.DefaultDetectionConfig())
	defer seg.Close()

	empty := gocv.NewMat()
	defer empty.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	assert.Error(t, seg.Segment(empty, types.DefaultProfile(types.Primary), &mask))
}

func TestBlobExtractorAccepts(t *testing.T) {
	t.Parallel()

	e := NewBlobExtractor(types.DefaultDetectionConfig())
	assert.True(t, e.Accepts(20), "area at the minimum is accepted")
	assert.False(t, e.Accepts(19), "one pixel below is rejected")
	assert.False(t, e.Accepts(19.5))
	assert.True(t, e.Accepts(500))
}

func TestExtract(t *testing.T) {
	e := NewBlobExtractor(types.DefaultDetectionConfig())

	t.Run("empty mask has no blob", func(t *testing.T) {
		mask := newMask(t, 200, 160)
		_, ok, err := e.Extract(mask)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("filled disk becomes a circle", func(t *testing.T) {
		mask := newMask(t, 200, 160)
		gocv.Circle(&mask, image.Pt(100, 80), 20, color.RGBA{R: 255, G: 255, B: 255}, -1)

		blob, ok, err := e.Extract(mask)
		require.NoError(t, err)
		require.True(t, ok)
		assert.InDelta(t, 100, blob.CenterX, 1.5)
		assert.InDelta(t, 80, blob.CenterY, 1.5)
		// blurring grows the region by up to half the kernel
		assert.InDelta(t, 21, blob.Radius, 2.5)
		assert.Greater(t, blob.Area, 20.0)
	})

	t.Run("single pixel speck is rejected", func(t *testing.T) {
		mask := newMask(t, 64, 64)
		mask.SetUCharAt(32, 32, 255)

		_, ok, err := e.Extract(mask)
		require.NoError(t, err)
		assert.False(t, ok, "a 5x5 blurred speck has contour area 16")
	})

	t.Run("two by two block is accepted", func(t *testing.T) {
		mask := newMask(t, 64, 64)
		for _, p := range []image.Point{{32, 32}, {33, 32}, {32, 33}, {33, 33}} {
			mask.SetUCharAt(p.Y, p.X, 255)
		}

		blob, ok, err := e.Extract(mask)
		require.NoError(t, err)
		require.True(t, ok, "a 6x6 blurred block has contour area 25")
		assert.InDelta(t, 32.5, blob.CenterX, 1)
		assert.InDelta(t, 32.5, blob.CenterY, 1)
	})

	t.Run("empty mat is an error", func(t *testing.T) {
		empty := gocv.NewMat()
		defer empty.Close()
		_, _, err := e.Extract(empty)
		assert.Error(t, err)
	})
}

func TestDetectorFindsMarker(t *testing.T) {
	d, err := NewDetector(types.DefaultDetectionConfig())
	require.NoError(t, err)
	defer d.Close()

	frame := newFrame(t, 800, 480, gray, disk{x: 677, y: 180, r: 12, c: green})

	blob, ok, err := d.Detect(frame, types.DefaultProfile(types.Primary))
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 677, blob.CenterX, 1.5)
	assert.InDelta(t, 180, blob.CenterY, 1.5)

	_, ok, err = d.Detect(frame, types.DefaultProfile(types.Secondary))
	require.NoError(t, err)
	assert.False(t, ok, "no blue marker in frame")
}

func TestDetectorFailureDoesNotReuseMask(t *testing.T) {
	d, err := NewDetector(types.DefaultDetectionConfig())
	require.NoError(t, err)
	defer d.Close()

	frame := newFrame(t, 800, 480, gray, disk{x: 677, y: 180, r: 12, c: green})
	_, ok, err := d.Detect(frame, types.DefaultProfile(types.Primary))
	require.NoError(t, err)
	require.True(t, ok)

	// a single-channel frame cannot be converted to HSV
	mono := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(128, 0, 0, 0), 480, 800, gocv.MatTypeCV8U)
	defer mono.Close()

	blob, ok, err := d.Detect(mono, types.DefaultProfile(types.Primary))
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, types.Blob{}, blob, "previous mask must not be reported again")
}

func TestNewDetectorRejectsBadConfig(t *testing.T) {
	t.Parallel()

	cfg := types.DefaultDetectionConfig()
	cfg.BlurKernel = 2
	_, err := NewDetector(cfg)
	assert.Error(t, err)
}
