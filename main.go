package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"drumtracker/calibration"
	"drumtracker/config"
	"drumtracker/detection"
	"drumtracker/input"
	"drumtracker/recording"
	"drumtracker/tracking"
	"drumtracker/types"
	"drumtracker/ui"
)

const hitPollInterval = 10 * time.Millisecond

var (
	sourceFlag    = flag.String("source", "", "camera ID or video file (required)")
	configFlag    = flag.String("config", "", "zone and color configuration file (.json)")
	channelsFlag  = flag.String("channels", "both", "channels to track: primary, secondary or both")
	calibrateFlag = flag.Bool("calibrate", false, "adjust color bounds with trackbars before tracking")
	previewFlag   = flag.Bool("preview", false, "show the annotated frames of the first tracker")
	plotFlag      = flag.String("plot", "", "write a processing time scatter plot to this PNG path on exit")
	debugFlag     = flag.Bool("debug", false, "enable debug logging")
)

// HighGUI windows must be created and pumped from one thread, the main
// thread on macOS.
func init() {
	runtime.LockOSThread()
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -source <camera ID or video file> [flags]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := initLogger(*debugFlag)
	if *sourceFlag == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(logger); err != nil {
		logger.WithError(err).Error("Tracking failed")
		os.Exit(1)
	}
}

func initLogger(debug bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if debug {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetLevel(logrus.InfoLevel)
	}
	return logger
}

func parseChannels(s string) ([]types.Channel, error) {
	if s == "both" {
		return types.Channels, nil
	}
	ch, err := types.ParseChannel(s)
	if err != nil {
		return nil, err
	}
	return []types.Channel{ch}, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func run(logger *logrus.Logger) error {
	channels, err := parseChannels(*channelsFlag)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(*configFlag)
	if err != nil {
		return err
	}

	capture, err := input.OpenCapture(*sourceFlag)
	if err != nil {
		return err
	}
	defer capture.Close()
	logger.WithFields(logrus.Fields{
		"source":   capture.Device(),
		"channels": *channelsFlag,
	}).Info("Source opened")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *calibrateFlag {
		calibrator := calibration.NewCalibrator(cfg.Detection, logger)
		if err := calibrate(ctx, calibrator, channels, capture, cfg, logger); err != nil {
			return err
		}
		if ctx.Err() != nil {
			logger.Info("Interrupted during calibration")
			return nil
		}
	}

	var source input.FrameSource = capture
	if len(channels) > 1 {
		source = input.NewSharedSource(capture)
	}

	store := tracking.NewPredictionStore()
	samples := recording.NewSampleRecorder()

	var preview *ui.Preview
	trackers := make([]*tracking.Tracker, 0, len(channels))
	for i, ch := range channels {
		detector, err := detection.NewDetector(cfg.Detection)
		if err != nil {
			return err
		}
		defer detector.Close()

		opts := tracking.TrackerOptions{
			Channel:  ch,
			Profile:  cfg.Profile(ch),
			Zones:    cfg.Zones,
			Source:   source,
			Detector: detector,
			Store:    store,
			Samples:  samples,
			Logger:   logger,
		}
		if *previewFlag && i == 0 {
			preview = ui.NewPreview(ctx, fmt.Sprintf("Tracker-%s", ch), cfg.Zones, types.DefaultUIConfig(), logger)
			defer preview.Close()
			ui.PrintStartupInstructions()
			opts.Observer = preview
		}

		tracker, err := tracking.NewTracker(opts)
		if err != nil {
			return err
		}
		trackers = append(trackers, tracker)
	}

	go tracking.WatchHits(ctx, store, channels, hitPollInterval, func(ch types.Channel, zone types.Prediction) {
		logger.WithFields(logrus.Fields{
			"channel": ch.String(),
			"zone":    int(zone),
		}).Info("Hit")
	})

	var (
		wg      sync.WaitGroup
		errMu   sync.Mutex
		runErrs []error
	)
	for _, tracker := range trackers {
		wg.Add(1)
		go func(t *tracking.Tracker) {
			defer wg.Done()
			if err := t.Run(ctx); err != nil {
				errMu.Lock()
				runErrs = append(runErrs, err)
				errMu.Unlock()
				cancel()
			}
		}(tracker)
	}
	if preview != nil && preview.Run(ctx) {
		cancel()
	}
	wg.Wait()

	for _, t := range trackers {
		logger.WithFields(logrus.Fields{
			"channel":  t.Channel().String(),
			"run_id":   t.RunID().String(),
			"ticks":    t.Ticks(),
			"restarts": t.Restarts(),
		}).Info("Tracker finished")
	}
	report(logger, samples)

	return errors.Join(runErrs...)
}

type profileCalibrator interface {
	Run(ctx context.Context, ch types.Channel, source input.FrameSource, start types.ColorProfile) (types.ColorProfile, error)
}

// calibrate replaces cfg's profile for each channel the operator confirms.
// A cancelled calibration keeps the configured bounds; an interrupted run
// stops calibrating without error.
func calibrate(ctx context.Context, calibrator profileCalibrator, channels []types.Channel, source input.FrameSource, cfg *config.Config, logger *logrus.Logger) error {
	for _, ch := range channels {
		profile, err := calibrator.Run(ctx, ch, source, cfg.Profile(ch))
		switch {
		case errors.Is(err, calibration.ErrCancelled):
			logger.WithField("channel", ch.String()).Info("Calibration cancelled, keeping configured bounds")
			continue
		case errors.Is(err, context.Canceled):
			return nil
		case err != nil:
			return err
		}
		cfg.Profiles[ch] = profile
	}
	return nil
}

func report(logger *logrus.Logger, samples *recording.SampleRecorder) {
	summary, err := samples.Summary()
	if err != nil {
		logger.WithError(err).Warn("No processing time summary")
		return
	}
	logger.WithFields(logrus.Fields{
		"samples": summary.Count,
		"mean_s":  summary.Mean,
		"min_s":   summary.Min,
		"max_s":   summary.Max,
		"p95_s":   summary.P95,
	}).Info("Processing time summary")

	if *plotFlag == "" {
		return
	}
	if err := samples.SavePlot(*plotFlag); err != nil {
		logger.WithError(err).Error("Failed to save processing time plot")
		return
	}
	logger.WithField("path", *plotFlag).Info("Processing time plot saved")
}
