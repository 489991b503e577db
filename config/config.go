// Package config loads zone layout, color profiles and detection tuning
// from a JSON file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"drumtracker/types"
)

// ZoneCount is the number of zones a deployment must configure
const ZoneCount = 4

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid config")

// File is the JSON schema of a configuration file. Omitted sections keep
// their defaults.
type File struct {
	Zones     []ZoneEntry     `json:"zones"`
	Primary   *ProfileEntry   `json:"primary,omitempty"`
	Secondary *ProfileEntry   `json:"secondary,omitempty"`
	Detection *DetectionEntry `json:"detection,omitempty"`
}

// ZoneEntry is one circular zone
type ZoneEntry struct {
	ID     int     `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// ProfileEntry holds inclusive HSV bounds as [h, s, v]
type ProfileEntry struct {
	Lower [3]uint8 `json:"lower"`
	Upper [3]uint8 `json:"upper"`
}

// DetectionEntry overrides individual detection constants
type DetectionEntry struct {
	MinArea        *float64 `json:"min_area,omitempty"`
	BlurKernel     *int     `json:"blur_kernel,omitempty"`
	BlurSigma      *float64 `json:"blur_sigma,omitempty"`
	CLAHEClipLimit *float64 `json:"clahe_clip_limit,omitempty"`
	CLAHETileGrid  *int     `json:"clahe_tile_grid,omitempty"`
}

// Config is the validated runtime configuration
type Config struct {
	Zones     types.ZoneSet
	Profiles  map[types.Channel]types.ColorProfile
	Detection types.DetectionConfig
}

// Default returns the reference deployment: four drum pads, green and blue markers
func Default() *Config {
	zones, err := types.NewZoneSet(types.DefaultZones())
	if err != nil {
		panic(err) // default zones are static and valid
	}
	return &Config{
		Zones: zones,
		Profiles: map[types.Channel]types.ColorProfile{
			types.Primary:   types.DefaultProfile(types.Primary),
			types.Secondary: types.DefaultProfile(types.Secondary),
		},
		Detection: types.DefaultDetectionConfig(),
	}
}

// Profile returns the color profile for a channel
func (c *Config) Profile(ch types.Channel) types.ColorProfile {
	if p, ok := c.Profiles[ch]; ok {
		return p
	}
	return types.DefaultProfile(ch)
}

// Load reads and validates a configuration file.
// The file must have a .json extension and be at most 1MB.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return file.Resolve()
}

// Resolve validates the file contents and applies them over the defaults
func (f File) Resolve() (*Config, error) {
	cfg := Default()

	if len(f.Zones) != ZoneCount {
		return nil, fmt.Errorf("%w: expected %d zones, got %d", ErrInvalidConfig, ZoneCount, len(f.Zones))
	}
	zones := make([]types.Zone, len(f.Zones))
	for i, z := range f.Zones {
		zones[i] = types.Zone{ID: z.ID, CenterX: z.X, CenterY: z.Y, Radius: z.Radius}
	}
	set, err := types.NewZoneSet(zones)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	cfg.Zones = set

	for _, pe := range []struct {
		ch    types.Channel
		entry *ProfileEntry
	}{
		{types.Primary, f.Primary},
		{types.Secondary, f.Secondary},
	} {
		ch, entry := pe.ch, pe.entry
		if entry == nil {
			continue
		}
		p, err := entry.profile()
		if err != nil {
			return nil, fmt.Errorf("%w: %s profile: %w", ErrInvalidConfig, ch, err)
		}
		cfg.Profiles[ch] = p
	}

	if f.Detection != nil {
		f.Detection.apply(&cfg.Detection)
		if err := cfg.Detection.Validate(); err != nil {
			return nil, fmt.Errorf("%w: detection: %w", ErrInvalidConfig, err)
		}
	}
	return cfg, nil
}

func (e ProfileEntry) profile() (types.ColorProfile, error) {
	return types.NewColorProfile(
		types.HSV{H: e.Lower[0], S: e.Lower[1], V: e.Lower[2]},
		types.HSV{H: e.Upper[0], S: e.Upper[1], V: e.Upper[2]},
	)
}

func (e DetectionEntry) apply(dst *types.DetectionConfig) {
	if e.MinArea != nil {
		dst.MinArea = *e.MinArea
	}
	if e.BlurKernel != nil {
		dst.BlurKernel = *e.BlurKernel
	}
	if e.BlurSigma != nil {
		dst.BlurSigma = *e.BlurSigma
	}
	if e.CLAHEClipLimit != nil {
		dst.CLAHEClipLimit = *e.CLAHEClipLimit
	}
	if e.CLAHETileGrid != nil {
		dst.CLAHETileGrid = *e.CLAHETileGrid
	}
}
