package analyzer

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// Thresholds bound the function metrics. A value <= 0 disables its check;
// NewAnalyzer replaces an all-zero Thresholds with DefaultThresholds.
type Thresholds struct {
	MaxComplexity    int
	MaxFunctionLines int
	MaxParams        int
}

// DefaultThresholds returns the thresholds used when none are configured
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxComplexity:    10,
		MaxFunctionLines: 50,
		MaxParams:        4,
	}
}

// ThresholdOverride replaces thresholds for files matching Pattern.
// Zero fields inherit the base value.
type ThresholdOverride struct {
	Pattern    string
	Thresholds Thresholds
}

func validateOverrides(overrides []ThresholdOverride) error {
	for _, o := range overrides {
		if !doublestar.ValidatePattern(o.Pattern) {
			return fmt.Errorf("invalid threshold override pattern %q", o.Pattern)
		}
	}
	return nil
}

// ResolveThresholds applies every override whose pattern matches path, in
// order, so later overrides win.
func ResolveThresholds(path string, base Thresholds, overrides []ThresholdOverride) Thresholds {
	resolved := base
	p := slashPath(path)
	for _, o := range overrides {
		if ok, _ := doublestar.Match(o.Pattern, p); !ok {
			continue
		}
		if o.Thresholds.MaxComplexity > 0 {
			resolved.MaxComplexity = o.Thresholds.MaxComplexity
		}
		if o.Thresholds.MaxFunctionLines > 0 {
			resolved.MaxFunctionLines = o.Thresholds.MaxFunctionLines
		}
		if o.Thresholds.MaxParams > 0 {
			resolved.MaxParams = o.Thresholds.MaxParams
		}
	}
	return resolved
}
