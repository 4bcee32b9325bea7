package scoring

import (
	"fmt"
	"sort"
)

// MaxWeight is the upper end of the nominal weight range.
const MaxWeight = 2.0

// WeightSet holds the multipliers of the four induction factors. Weights are
// free multipliers in [0, MaxWeight]; they are not required to sum to 1, so
// composite totals are only comparable between plans that share a WeightSet.
type WeightSet struct {
	Reliability      float64 `json:"reliability" yaml:"reliability"`
	Branding         float64 `json:"branding" yaml:"branding"`
	Cleaning         float64 `json:"cleaning" yaml:"cleaning"`
	MileageBalancing float64 `json:"mileage_balancing" yaml:"mileage_balancing"`
}

// Preset names.
const (
	PresetBalanced              = "balanced"
	PresetPrioritiseBranding    = "prioritise_branding"
	PresetPrioritiseCleanliness = "prioritise_cleanliness"
	PresetCostSavings           = "cost_savings"
)

var presets = map[string]WeightSet{
	PresetBalanced:              {Reliability: 1.0, Branding: 0.4, Cleaning: 0.2, MileageBalancing: 0.8},
	PresetPrioritiseBranding:    {Reliability: 1.0, Branding: 1.5, Cleaning: 0.2, MileageBalancing: 0.4},
	PresetPrioritiseCleanliness: {Reliability: 1.0, Branding: 0.2, Cleaning: 1.5, MileageBalancing: 0.4},
	PresetCostSavings:           {Reliability: 1.0, Branding: 0.1, Cleaning: 0.2, MileageBalancing: 1.5},
}

// DefaultWeights returns the balanced preset.
func DefaultWeights() WeightSet {
	return presets[PresetBalanced]
}

// Preset looks up a named scenario.
func Preset(name string) (WeightSet, bool) {
	w, ok := presets[name]
	return w, ok
}

// Presets returns a copy of every named scenario.
func Presets() map[string]WeightSet {
	out := make(map[string]WeightSet, len(presets))
	for k, v := range presets {
		out[k] = v
	}
	return out
}

// PresetNames returns the scenario names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for k := range presets {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Sum returns the total of all weights.
func (w WeightSet) Sum() float64 {
	return w.Reliability + w.Branding + w.Cleaning + w.MileageBalancing
}

// Validate checks every weight lies in [0, MaxWeight].
func (w WeightSet) Validate() error {
	for i, v := range w.asList() {
		if v < 0 {
			return fmt.Errorf("negative %s weight: %f", factorNames[i], v)
		}
		if v > MaxWeight {
			return fmt.Errorf("%s weight %.2f exceeds maximum %.1f", factorNames[i], v, MaxWeight)
		}
	}
	return nil
}

// AsMap keys each weight by its factor name.
func (w WeightSet) AsMap() map[string]float64 {
	out := make(map[string]float64, len(factorNames))
	for i, v := range w.asList() {
		out[factorNames[i]] = v
	}
	return out
}

func (w WeightSet) asList() []float64 {
	return []float64{w.Reliability, w.Branding, w.Cleaning, w.MileageBalancing}
}
