package pricing

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidRatio  = errors.New("exclusive ratio must be a positive finite number")
	ErrInvalidWeight = errors.New("weights must be finite and compose to a non-negative value")
	ErrInvalidPrice  = errors.New("unit price must be a positive finite number")
)

// WeightSet is a preset baseline plus user-adjustable deltas. The location
// weight α is the preset baseline plus the transit, school, commercial and
// development deltas, each added once; the brand weight β is the preset
// baseline plus the brand tier delta. Both are floored at zero.
type WeightSet struct {
	Preset      string  `json:"preset"`
	Transit     float64 `json:"transit"`
	School      float64 `json:"school"`
	Commercial  float64 `json:"commercial"`
	Development float64 `json:"development"`
	BrandTier   float64 `json:"brand_tier"`
}

type baseline struct {
	alpha, beta float64
}

// presets are the baselines by development positioning. An empty preset
// means standard.
var presets = map[string]baseline{
	"standard": {alpha: 1.00, beta: 1.00},
	"premium":  {alpha: 1.05, beta: 1.03},
	"value":    {alpha: 0.97, beta: 0.98},
}

// Compose resolves the weight set into the α and β multipliers.
func (w WeightSet) Compose() (alpha, beta float64, err error) {
	name := w.Preset
	if name == "" {
		name = "standard"
	}
	base, ok := presets[name]
	if !ok {
		return 0, 0, fmt.Errorf("unknown weight preset %q", name)
	}

	for _, d := range []float64{w.Transit, w.School, w.Commercial, w.Development, w.BrandTier} {
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return 0, 0, ErrInvalidWeight
		}
	}

	alpha = base.alpha + w.Transit + w.School + w.Commercial + w.Development
	beta = base.beta + w.BrandTier
	if alpha < 0 {
		alpha = 0
	}
	if beta < 0 {
		beta = 0
	}
	return alpha, beta, nil
}

// ToSupplyPrice converts an exclusive-area unit price into a supply-area
// unit price: exclusiveUnitPrice × exclusiveRatio × α × β. Inputs are
// validated before any computation.
func ToSupplyPrice(exclusiveUnitPrice, exclusiveRatio float64, weights WeightSet) (float64, error) {
	if !isPositiveFinite(exclusiveUnitPrice) {
		return 0, ErrInvalidPrice
	}
	if !isPositiveFinite(exclusiveRatio) {
		return 0, ErrInvalidRatio
	}
	alpha, beta, err := weights.Compose()
	if err != nil {
		return 0, err
	}
	return exclusiveUnitPrice * exclusiveRatio * alpha * beta, nil
}

func isPositiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
