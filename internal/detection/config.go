package detection

import (
	"fmt"
	"strings"

	"patternScout/internal/detection/features"
	"patternScout/internal/detection/levels"
	"patternScout/internal/detection/patterns"
	"patternScout/internal/detection/trendlines"
)

// Config collects every tunable constant of the pipeline.
type Config struct {
	PivotRadius   int     // Half-width of the fractal pivot window
	MinConfidence float64 // Patterns scoring below this are dropped

	Levels     levels.Config
	Trendlines trendlines.Config
	Patterns   patterns.Config
	Features   features.Config
}

// DefaultConfig returns the calibrated defaults.
func DefaultConfig() Config {
	return Config{
		PivotRadius:   2,
		MinConfidence: 40,
		Levels:        levels.DefaultConfig(),
		Trendlines:    trendlines.DefaultConfig(),
		Patterns:      patterns.DefaultConfig(),
		Features:      features.DefaultConfig(),
	}
}

// Validate checks the configuration, reporting every problem at once.
func (c Config) Validate() error {
	var errs []string
	if c.PivotRadius < 1 {
		errs = append(errs, "pivot radius must be at least 1")
	}
	if c.MinConfidence < 0 || c.MinConfidence > 100 {
		errs = append(errs, "min confidence must be between 0 and 100")
	}
	if c.Levels.TolerancePct <= 0 {
		errs = append(errs, "level tolerance must be positive")
	}
	if c.Levels.TopN < 0 {
		errs = append(errs, "level top-N cannot be negative")
	}
	if c.Levels.RecencyFloor < 0 || c.Levels.RecencyFloor > 1 {
		errs = append(errs, "recency floor must be between 0 and 1")
	}
	if c.Trendlines.TouchTolerancePct <= 0 || c.Trendlines.ResidualTolerancePct <= 0 {
		errs = append(errs, "trendline tolerances must be positive")
	}
	if c.Trendlines.BodyTolerancePct < 0 {
		errs = append(errs, "trendline body tolerance cannot be negative")
	}
	if c.Patterns.VolumeMultiplier <= 0 {
		errs = append(errs, "volume multiplier must be positive")
	}
	if c.Patterns.VolumeLookback < 1 {
		errs = append(errs, "volume lookback must be at least 1")
	}
	if c.Patterns.ConfirmationBars < 0 {
		errs = append(errs, "confirmation bars cannot be negative")
	}
	if c.Patterns.BaseFloor < 0 || c.Patterns.BaseFloor > 100 {
		errs = append(errs, "base confidence floor must be between 0 and 100")
	}
	if w := c.Patterns.TouchWeight + c.Patterns.VolumeWeight + c.Patterns.SymmetryWeight; w <= 0 || w > 1.0000001 {
		errs = append(errs, "confidence weights must sum to a value in (0, 1]")
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid detection config:\n - %s", strings.Join(errs, "\n - "))
	}
	return nil
}
