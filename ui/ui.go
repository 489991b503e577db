package ui

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"drumtracker/tracking"
	"drumtracker/types"
	"drumtracker/utils"
)

var (
	Blue   = color.RGBA{B: 255}
	Red    = color.RGBA{R: 255}
	Green  = color.RGBA{G: 255}
	Yellow = color.RGBA{R: 255, G: 255}
	White  = color.RGBA{R: 255, G: 255, B: 255}
	Black  = color.RGBA{R: 0, G: 0, B: 0, A: 120}
)

// DrawZones draws every zone circle with its id, highlighting the active one
func DrawZones(frame *gocv.Mat, zones types.ZoneSet, active types.Prediction, config types.UIConfig) error {
	var errs []error
	for i := 0; i < zones.Len(); i++ {
		z := zones.Zone(i)
		center := utils.CirclePoint(z.CenterX, z.CenterY)
		radius := int(z.Radius)

		zoneColor := Yellow
		if types.Prediction(z.ID) == active {
			zoneColor = Green
		}
		if err := gocv.Circle(frame, center, radius, zoneColor, config.ZoneThickness); err != nil {
			errs = append(errs, fmt.Errorf("drawing zone %d: %w", z.ID, err))
			continue
		}

		label := utils.LabelPoint(center, radius, frame.Cols(), frame.Rows())
		if err := gocv.PutText(frame, fmt.Sprintf("%d", z.ID), label, gocv.FontHersheySimplex, config.LabelFontSize, zoneColor, 1); err != nil {
			errs = append(errs, fmt.Errorf("adding zone label: %w", err))
		}
	}
	return errors.Join(errs...)
}

// DrawTip draws the detected marker circle and its label. Tiny circles are
// skipped, they are usually noise that only just passed the area threshold.
func DrawTip(frame *gocv.Mat, blob types.Blob, config types.UIConfig) error {
	if blob.Radius <= config.TipMinRadius {
		return nil
	}

	center := utils.CirclePoint(blob.CenterX, blob.CenterY)
	if err := gocv.Circle(frame, center, int(blob.Radius), Green, 2); err != nil {
		return fmt.Errorf("drawing tip: %w", err)
	}
	if err := gocv.PutText(frame, "Tip Detected", image.Pt(center.X, center.Y-10), gocv.FontHersheySimplex, config.LabelFontSize, Green, 2); err != nil {
		return fmt.Errorf("adding tip label: %w", err)
	}
	return nil
}

// StatusText formats the status line for a tick
func StatusText(tick tracking.Tick, debug bool) string {
	text := fmt.Sprintf("%s: %s", tick.Channel, tick.Prediction)
	if debug && tick.Found {
		text += fmt.Sprintf("  tip=(%.0f,%.0f) r=%.1f  %.1fms",
			tick.Blob.CenterX, tick.Blob.CenterY, tick.Blob.Radius, float64(tick.Elapsed.Microseconds())/1000)
	}
	return text
}

// DrawStatusMessage draws the channel and current prediction on a dark band
func DrawStatusMessage(frame *gocv.Mat, tick tracking.Tick, debug bool, config types.UIConfig) error {
	text := StatusText(tick, debug)
	textColor := Red
	if tick.Prediction != types.None {
		textColor = Green
	}

	size := gocv.GetTextSize(text, gocv.FontHersheyPlain, config.StatusFontSize, 2)
	band := utils.ClampRect(image.Rect(5, config.StatusOffsetY-size.Y-5, size.X+15, config.StatusOffsetY+8), frame.Cols(), frame.Rows())
	if err := gocv.Rectangle(frame, band, Black, -1); err != nil {
		return fmt.Errorf("drawing status background: %w", err)
	}

	if err := gocv.PutText(frame, text, image.Pt(10, config.StatusOffsetY), gocv.FontHersheyPlain, config.StatusFontSize, textColor, 2); err != nil {
		return fmt.Errorf("adding status text: %w", err)
	}
	return nil
}

// RenderFrame renders all overlay elements on the frame
func RenderFrame(frame *gocv.Mat, zones types.ZoneSet, tick tracking.Tick, debug bool, config types.UIConfig) error {
	errs := []error{DrawZones(frame, zones, tick.Prediction, config)}
	if tick.Found {
		errs = append(errs, DrawTip(frame, tick.Blob, config))
	}
	errs = append(errs, DrawStatusMessage(frame, tick, debug, config))
	return errors.Join(errs...)
}

// PrintStartupInstructions prints the preview window controls
func PrintStartupInstructions() {
	fmt.Println("Controls:")
	fmt.Println("- Press 'p' to pause/resume tracking")
	fmt.Println("- Press 'd' to toggle debug details")
	fmt.Println("- Press 'q' or ESC to quit")
}
