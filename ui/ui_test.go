package ui

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"drumtracker/tracking"
	"drumtracker/types"
)

func TestStatusText(t *testing.T) {
	t.Parallel()

	tick := tracking.Tick{
		Channel:    types.Secondary,
		Found:      true,
		Blob:       types.Blob{CenterX: 380.4, CenterY: 259.6, Radius: 8.3},
		Prediction: 3,
		Elapsed:    2500 * time.Microsecond,
	}

	assert.Equal(t, "secondary: zone 3", StatusText(tick, false))
	assert.Equal(t, "secondary: zone 3  tip=(380,260) r=8.3  2.5ms", StatusText(tick, true))

	tick.Found = false
	tick.Prediction = types.None
	assert.Equal(t, "secondary: none", StatusText(tick, true))
}

func TestRenderFrameDrawsOverlay(t *testing.T) {
	zones, err := types.NewZoneSet(types.DefaultZones())
	require.NoError(t, err)

	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 480, 800, gocv.MatTypeCV8UC3)
	defer frame.Close()

	tick := tracking.Tick{
		Channel:    types.Primary,
		Found:      true,
		Blob:       types.Blob{CenterX: 677, CenterY: 180, Radius: 10},
		Prediction: 0,
	}
	require.NoError(t, RenderFrame(&frame, zones, tick, true, types.DefaultUIConfig()))

	gray := gocv.NewMat()
	defer gray.Close()
	require.NoError(t, gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray))
	assert.Greater(t, gocv.CountNonZero(gray), 0, "overlay drew something")
}

func TestDrawTipSkipsTinyCircles(t *testing.T) {
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 100, 100, gocv.MatTypeCV8UC3)
	defer frame.Close()

	require.NoError(t, DrawTip(&frame, types.Blob{CenterX: 50, CenterY: 50, Radius: 3}, types.DefaultUIConfig()))

	gray := gocv.NewMat()
	defer gray.Close()
	require.NoError(t, gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray))
	assert.Zero(t, gocv.CountNonZero(gray))
}

func newTestPreview(t *testing.T, ctx context.Context) *Preview {
	t.Helper()
	zones, err := types.NewZoneSet(types.DefaultZones())
	require.NoError(t, err)
	logger, _ := test.NewNullLogger()
	p := newPreview(ctx, zones, types.DefaultUIConfig(), logger)
	t.Cleanup(func() { p.Close() })
	return p
}

func tickInBackground(p *Preview, frame gocv.Mat) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.OnTick(frame, tracking.Tick{Channel: types.Primary, Prediction: types.None})
	}()
	return done
}

func TestPreviewPauseReleasedOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := newTestPreview(t, ctx)

	frame := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8UC3)
	defer frame.Close()

	p.gate.pause()
	done := tickInBackground(p, frame)
	select {
	case <-done:
		t.Fatal("tick returned while paused")
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestPreviewPauseReleasedOnResume(t *testing.T) {
	p := newTestPreview(t, context.Background())

	frame := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8UC3)
	defer frame.Close()

	p.gate.pause()
	assert.True(t, p.gate.paused())
	done := tickInBackground(p, frame)

	p.gate.unpause()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("tick still blocked after resume")
	}
	assert.False(t, p.gate.paused())
	assert.Len(t, p.frames, 1)
}

func TestPreviewDropsFramesWhileBusy(t *testing.T) {
	p := newTestPreview(t, context.Background())

	frame := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8UC3)
	defer frame.Close()

	for i := 0; i < 3; i++ {
		<-tickInBackground(p, frame)
	}
	assert.Len(t, p.frames, 1, "only the oldest undisplayed frame is queued")
}
