package main

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drumtracker/calibration"
	"drumtracker/config"
	"drumtracker/input"
	"drumtracker/types"
)

// scriptedCalibrator returns one result per call in channel order
type scriptedCalibrator struct {
	results []error
	profile types.ColorProfile
	calls   int
}

func (c *scriptedCalibrator) Run(_ context.Context, _ types.Channel, _ input.FrameSource, start types.ColorProfile) (types.ColorProfile, error) {
	err := c.results[c.calls]
	c.calls++
	if err != nil {
		return types.ColorProfile{}, err
	}
	return c.profile, nil
}

func TestCalibrate(t *testing.T) {
	t.Parallel()

	tuned := types.ColorProfile{Lower: types.HSV{H: 50, S: 80, V: 80}, Upper: types.HSV{H: 70, S: 255, V: 255}}

	t.Run("confirmed profiles replace the configured ones", func(t *testing.T) {
		t.Parallel()
		logger, _ := test.NewNullLogger()
		cfg := config.Default()
		cal := &scriptedCalibrator{results: []error{nil, calibration.ErrCancelled}, profile: tuned}

		require.NoError(t, calibrate(context.Background(), cal, types.Channels, nil, cfg, logger))
		assert.Equal(t, tuned, cfg.Profile(types.Primary))
		assert.Equal(t, types.DefaultProfile(types.Secondary), cfg.Profile(types.Secondary), "cancelled keeps the default")
	})

	t.Run("interrupt is not an error", func(t *testing.T) {
		t.Parallel()
		logger, _ := test.NewNullLogger()
		cfg := config.Default()
		cal := &scriptedCalibrator{results: []error{context.Canceled, nil}, profile: tuned}

		require.NoError(t, calibrate(context.Background(), cal, types.Channels, nil, cfg, logger))
		assert.Equal(t, 1, cal.calls, "stops at the first interrupted channel")
		assert.Equal(t, types.DefaultProfile(types.Primary), cfg.Profile(types.Primary))
	})

	t.Run("source failure is returned", func(t *testing.T) {
		t.Parallel()
		logger, _ := test.NewNullLogger()
		cfg := config.Default()
		lost := errors.Join(errors.New("calibration"), types.ErrSourceUnavailable)
		cal := &scriptedCalibrator{results: []error{lost}}

		err := calibrate(context.Background(), cal, types.Channels, nil, cfg, logger)
		assert.ErrorIs(t, err, types.ErrSourceUnavailable)
	})
}

func TestParseChannels(t *testing.T) {
	t.Parallel()

	got, err := parseChannels("both")
	require.NoError(t, err)
	assert.Equal(t, types.Channels, got)

	got, err = parseChannels("secondary")
	require.NoError(t, err)
	assert.Equal(t, []types.Channel{types.Secondary}, got)

	_, err = parseChannels("red")
	assert.Error(t, err)
}
