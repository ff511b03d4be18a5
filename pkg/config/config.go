// Package config loads and defaults the tunable parameters of the
// alignment pipeline (rounding precision, snap distances, floor ladder,
// and the object-rule thresholds). Defaults match spec.md exactly; an
// optional TOML file overrides them, and CLI flags override the file —
// the same layered-defaults idiom as the teacher's pipeline.Options.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"structuralign/pkg/model"
)

// Config holds every tunable named in spec.md §4.
type Config struct {
	// Axis Discovery (§4.1)
	RoundingPrecision float64 `toml:"rounding_precision"`
	ZTolerance        float64 `toml:"z_tolerance"`
	ClusterRadius     float64 `toml:"cluster_radius"`
	MinFloors         int     `toml:"min_floors"`

	// Snap Engine (§4.3)
	MaxSnapDistance     float64 `toml:"max_snap_distance"`
	OutlierSnapDistance float64 `toml:"outlier_snap_distance"`

	// Object Transform Engine (§4.4)
	RoofZThreshold      float64   `toml:"roof_z_threshold"`
	ConsolidationGap    float64   `toml:"consolidation_gap"`
	ThinWallThreshold   float64   `toml:"thin_wall_threshold"`
	ProximityTolerance  float64   `toml:"proximity_tolerance"`
	DedupRadius         float64   `toml:"dedup_radius"`
	SupportFloorZLevels []float64 `toml:"support_floor_z_levels"`
	FloorLadder         []float64 `toml:"floor_ladder"`

	// Validator (§4.5)
	MinAlignedFraction   float64 `toml:"min_aligned_fraction"`
	ReferenceMatchRadius float64 `toml:"reference_match_radius"`
	MinReferenceMatch    float64 `toml:"min_reference_match"`
}

// Default returns the configuration with every default value from spec.md.
func Default() Config {
	return Config{
		RoundingPrecision:   0.005,
		ZTolerance:          0.020,
		ClusterRadius:       0.002,
		MinFloors:           3,
		MaxSnapDistance:     0.75,
		OutlierSnapDistance: 4.0,
		RoofZThreshold:      30.0,
		ConsolidationGap:    2.0,
		ThinWallThreshold:   0.05,
		ProximityTolerance:  0.5,
		DedupRadius:         0.1,
		SupportFloorZLevels: []float64{-4.44, 2.12},
		FloorLadder:         append(model.FloorLadder{}, model.DefaultFloorLadder...),

		MinAlignedFraction:   0.85,
		ReferenceMatchRadius: 0.005,
		MinReferenceMatch:    0.95,
	}
}

// Load reads a TOML file and overlays it on Default(). A missing path
// (empty string) just returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}

// Ladder returns the configured floor ladder as a model.FloorLadder.
func (c Config) Ladder() model.FloorLadder {
	return model.FloorLadder(c.FloorLadder)
}
