// Package calibration lets an operator pick a channel's HSV bounds with
// trackbars while watching the resulting mask live.
package calibration

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"drumtracker/detection"
	"drumtracker/input"
	"drumtracker/types"
)

// ErrCancelled is returned when the operator closes calibration with ESC
var ErrCancelled = errors.New("calibration cancelled")

const (
	maxHue   = 179
	maxLevel = 255
)

var trackbarNames = [6]string{"L-H", "L-S", "L-V", "U-H", "U-S", "U-V"}

// Positions are trackbar values in lower H, S, V then upper H, S, V order
type Positions [6]int

// PositionsOf returns the trackbar positions that represent p
func PositionsOf(p types.ColorProfile) Positions {
	return Positions{
		int(p.Lower.H), int(p.Lower.S), int(p.Lower.V),
		int(p.Upper.H), int(p.Upper.S), int(p.Upper.V),
	}
}

// Profile converts positions to a profile, clamping each to its valid range.
// The result is not validated: while dragging, lower may exceed upper.
func (pos Positions) Profile() types.ColorProfile {
	c := func(i int) uint8 {
		limit := maxLevel
		if i%3 == 0 {
			limit = maxHue
		}
		v := pos[i]
		if v < 0 {
			v = 0
		}
		if v > limit {
			v = limit
		}
		return uint8(v)
	}
	return types.ColorProfile{
		Lower: types.HSV{H: c(0), S: c(1), V: c(2)},
		Upper: types.HSV{H: c(3), S: c(4), V: c(5)},
	}
}

// Calibrator runs the interactive calibration window
type Calibrator struct {
	detection types.DetectionConfig
	log       *logrus.Entry
}

// NewCalibrator creates a calibrator whose preview mask matches what the
// tracker will compute with the same detection configuration.
func NewCalibrator(config types.DetectionConfig, logger *logrus.Logger) *Calibrator {
	return &Calibrator{
		detection: config,
		log:       logger.WithField("component", "calibration"),
	}
}

// Run shows the mask for ch's bounds until the operator confirms with
// ENTER, cancels with ESC, or ctx is done. 'r' restores start.
func (c *Calibrator) Run(ctx context.Context, ch types.Channel, source input.FrameSource, start types.ColorProfile) (types.ColorProfile, error) {
	if err := start.Validate(); err != nil {
		return types.ColorProfile{}, err
	}

	segmenter := detection.NewSegmenter(c.detection)
	defer segmenter.Close()

	window := gocv.NewWindow(fmt.Sprintf("Mask-%s", ch))
	defer window.Close()

	var bars [6]*gocv.Trackbar
	for i, name := range trackbarNames {
		limit := maxLevel
		if i%3 == 0 {
			limit = maxHue
		}
		bars[i] = window.CreateTrackbar(name, limit)
	}
	setPositions(bars, PositionsOf(start))

	frame := gocv.NewMat()
	defer frame.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	log := c.log.WithField("channel", ch.String())
	log.Info("Calibrating, press ENTER to confirm or ESC to cancel")

	for {
		if err := ctx.Err(); err != nil {
			return types.ColorProfile{}, err
		}
		if !source.IsOpened() {
			return types.ColorProfile{}, fmt.Errorf("calibration: %w", types.ErrSourceUnavailable)
		}
		if ok := source.Read(&frame); !ok || frame.Empty() {
			source.Restart()
			continue
		}

		profile := positionsOf(bars).Profile()
		if profile.Validate() == nil {
			if err := segmenter.Segment(frame, profile, &mask); err != nil {
				log.WithError(err).Warn("Segmentation failed")
			} else {
				window.IMShow(mask)
			}
		}

		switch input.ProcessCalibrationKey(window.WaitKey(1)) {
		case input.ActionConfirm:
			if err := profile.Validate(); err != nil {
				log.WithError(err).Warn("Lower bound exceeds upper bound, adjust before confirming")
				continue
			}
			log.WithField("profile", profile.String()).Info("Calibration confirmed")
			return profile, nil
		case input.ActionCancel:
			return types.ColorProfile{}, ErrCancelled
		case input.ActionReset:
			setPositions(bars, PositionsOf(start))
		}
	}
}

func positionsOf(bars [6]*gocv.Trackbar) Positions {
	var pos Positions
	for i, b := range bars {
		pos[i] = b.GetPos()
	}
	return pos
}

func setPositions(bars [6]*gocv.Trackbar, pos Positions) {
	for i, b := range bars {
		b.SetPos(pos[i])
	}
}
