package recording

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"drumtracker/types"
)

var channelColors = map[types.Channel]color.RGBA{
	types.Primary:   {G: 160, A: 255},
	types.Secondary: {B: 200, A: 255},
}

// SavePlot writes a scatter plot of per-frame processing time, one series
// per channel, to path. The image format follows the file extension.
func (r *SampleRecorder) SavePlot(path string) error {
	samples := r.Samples()
	if len(samples) == 0 {
		return ErrNoSamples
	}

	p := plot.New()
	p.Title.Text = "CV Processing Times per Frame"
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Processing Time (s)"
	p.Add(plotter.NewGrid())

	for _, ch := range types.Channels {
		var chSamples []Sample
		for _, s := range samples {
			if s.Channel == ch {
				chSamples = append(chSamples, s)
			}
		}
		summary, err := Summarize(chSamples)
		if err != nil {
			continue
		}

		pts := make(plotter.XYs, len(chSamples))
		for i, s := range chSamples {
			pts[i] = plotter.XY{X: float64(s.Tick), Y: s.Elapsed.Seconds()}
		}

		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("failed to build %s scatter: %w", ch, err)
		}
		scatter.GlyphStyle.Color = channelColors[ch]
		scatter.GlyphStyle.Radius = vg.Points(1.5)
		p.Add(scatter)
		p.Legend.Add(fmt.Sprintf("%s (mean %.4fs)", ch, summary.Mean), scatter)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}
