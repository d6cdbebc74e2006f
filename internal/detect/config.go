package detect

import "fmt"

// Config carries one independently enableable sub-configuration per detector
// plus the worker count for parallel per-layer analysis.
type Config struct {
	Workers int // parallel layer workers; <=0 means GOMAXPROCS
	Verbose bool

	Island        IslandConfig
	Overhang      OverhangConfig
	ResinTrap     ResinTrapConfig
	TouchingBound TouchingBoundConfig
	PrintHeight   PrintHeightConfig
	EmptyLayer    EmptyLayerConfig
}

// IslandConfig tunes island detection.
type IslandConfig struct {
	Enabled bool

	// EnhancedMode additionally requires overhang evidence near a candidate
	// before confirming it, suppressing components that are disconnected
	// in-plane but still supported through an overhang.
	EnhancedMode bool

	BinaryThreshold       uint8 // pixel brightness considered solid
	RequiredAreaToProcess int   // minimum component pixel count to analyze
	Connectivity          int   // 4 or 8

	// A pixel on the previous layer supports the component when its
	// brightness is at least RequiredSupportBrightness. The component is an
	// island when supporting pixels < max(1, pixels * SupportMultiplier).
	RequiredSupportBrightness uint8
	SupportMultiplier         float64

	// Layers optionally restricts analysis to the listed layer indices.
	Layers []int
}

// OverhangConfig tunes overhang detection.
type OverhangConfig struct {
	Enabled bool

	BinaryThreshold uint8
	ErodeIterations int
	RequiredPixels  int // minimum surviving region size to report
}

// ResinTrapConfig tunes the air-map propagation, trap grouping and suction
// cup classification.
type ResinTrapConfig struct {
	Enabled           bool
	DetectSuctionCups bool

	// StartLayerIndex is the lowest layer pass 1 analyzes. Hollow regions on
	// the plate layer rest against the build plate, so the default is 1.
	StartLayerIndex int

	BinaryThreshold uint8

	// RequiredAreaToProcess is the minimum hollow contour bounding area, in
	// pixels, worth testing against the air map.
	RequiredAreaToProcess int

	// RequiredPixelsToDrain is the air-map overlap at which a hollow region
	// counts as drained. Ties at exactly this value drain.
	RequiredPixelsToDrain int

	// Suction cup report gates; both must hold independently.
	SuctionCupRequiredArea   float64 // square pixels, geometric contour area
	SuctionCupRequiredHeight float64 // millimeters
}

// TouchingBoundConfig tunes build-area boundary checks.
type TouchingBoundConfig struct {
	Enabled bool

	MinimumBrightness uint8
	MarginLeft        int
	MarginRight       int
	MarginTop         int
	MarginBottom      int
}

// PrintHeightConfig tunes the machine-height check.
type PrintHeightConfig struct {
	Enabled bool
	Offset  float64 // extra tolerance in millimeters above machine MaxZ
}

// EmptyLayerConfig tunes empty-layer reporting.
type EmptyLayerConfig struct {
	Enabled bool
}

// DefaultConfig returns the configuration used when the caller has no
// machine-specific overrides.
func DefaultConfig() Config {
	return Config{
		Island: IslandConfig{
			Enabled:                   true,
			EnhancedMode:              true,
			BinaryThreshold:           1,
			RequiredAreaToProcess:     1,
			Connectivity:              4,
			RequiredSupportBrightness: 100,
			SupportMultiplier:         0.25,
		},
		Overhang: OverhangConfig{
			Enabled:         true,
			BinaryThreshold: 1,
			ErodeIterations: 4,
			RequiredPixels:  1,
		},
		ResinTrap: ResinTrapConfig{
			Enabled:                  true,
			DetectSuctionCups:        true,
			StartLayerIndex:          1,
			BinaryThreshold:          127,
			RequiredAreaToProcess:    17,
			RequiredPixelsToDrain:    30,
			SuctionCupRequiredArea:   100,
			SuctionCupRequiredHeight: 0.5,
		},
		TouchingBound: TouchingBoundConfig{
			Enabled:           true,
			MinimumBrightness: 127,
			MarginLeft:        5,
			MarginRight:       5,
			MarginTop:         5,
			MarginBottom:      5,
		},
		PrintHeight: PrintHeightConfig{Enabled: true},
		EmptyLayer:  EmptyLayerConfig{Enabled: true},
	}
}

// Validate checks the configuration and returns advisory messages. A run may
// proceed despite warnings; nothing here is fatal.
func (c *Config) Validate() []string {
	var warnings []string

	if c.Island.Enabled {
		if c.Island.Connectivity != 4 && c.Island.Connectivity != 8 {
			warnings = append(warnings,
				fmt.Sprintf("island: connectivity %d is not 4 or 8; 8 will be used", c.Island.Connectivity))
		}
		if c.Island.SupportMultiplier < 0 || c.Island.SupportMultiplier > 1 {
			warnings = append(warnings,
				fmt.Sprintf("island: support multiplier %.2f outside [0,1]", c.Island.SupportMultiplier))
		}
		if c.Island.RequiredAreaToProcess < 1 {
			warnings = append(warnings, "island: required area below 1 pixel; every speck will be analyzed")
		}
	}

	if c.Overhang.Enabled {
		if c.Overhang.ErodeIterations < 1 {
			warnings = append(warnings, "overhang: erode iterations below 1 disables the tolerance margin")
		}
		if c.Overhang.RequiredPixels < 1 {
			warnings = append(warnings, "overhang: required pixels below 1; single-pixel noise will be reported")
		}
	}

	if c.ResinTrap.Enabled {
		if c.ResinTrap.StartLayerIndex < 1 {
			warnings = append(warnings, "resin trap: start layer 0 analyzes the plate layer; hollow regions there rest on the plate")
		}
		if c.ResinTrap.RequiredPixelsToDrain < 1 {
			warnings = append(warnings, "resin trap: drain threshold below 1 pixel classifies every touched region as drained")
		}
		if c.ResinTrap.DetectSuctionCups && c.ResinTrap.SuctionCupRequiredArea <= 0 {
			warnings = append(warnings, "suction cup: required area is zero; every candidate will be reported")
		}
	}

	if c.PrintHeight.Enabled && c.PrintHeight.Offset < 0 {
		warnings = append(warnings, "print height: negative offset shrinks the usable build volume")
	}

	return warnings
}
