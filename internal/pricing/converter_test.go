package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeWeights(t *testing.T) {
	tests := []struct {
		name          string
		weights       WeightSet
		expectedAlpha float64
		expectedBeta  float64
		expectError   bool
	}{
		{
			name:          "Empty preset defaults to standard",
			weights:       WeightSet{},
			expectedAlpha: 1.0,
			expectedBeta:  1.0,
		},
		{
			name:          "Premium baseline",
			weights:       WeightSet{Preset: "premium"},
			expectedAlpha: 1.05,
			expectedBeta:  1.03,
		},
		{
			name: "Additive sub-factor deltas",
			weights: WeightSet{
				Preset:      "standard",
				Transit:     0.03,
				School:      0.02,
				Commercial:  0.01,
				Development: 0.01,
				BrandTier:   0.05,
			},
			expectedAlpha: 1.07,
			expectedBeta:  1.05,
		},
		{
			name:          "Negative composition floors at zero",
			weights:       WeightSet{Preset: "standard", Transit: -2.0},
			expectedAlpha: 0,
			expectedBeta:  1.0,
		},
		{
			name:        "Unknown preset",
			weights:     WeightSet{Preset: "luxurious"},
			expectError: true,
		},
		{
			name:        "NaN delta",
			weights:     WeightSet{Transit: math.NaN()},
			expectError: true,
		},
		{
			name:        "Infinite delta",
			weights:     WeightSet{BrandTier: math.Inf(1)},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alpha, beta, err := tt.weights.Compose()
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.expectedAlpha, alpha, 1e-9)
			assert.InDelta(t, tt.expectedBeta, beta, 1e-9)
		})
	}
}

func TestToSupplyPriceScenario(t *testing.T) {
	// Mean exclusive unit price 1100, ratio 0.8, α=1.05, β=1.0 → 924.
	weights := WeightSet{Preset: "standard", Transit: 0.05}
	price, err := ToSupplyPrice(1100, 0.8, weights)
	require.NoError(t, err)
	assert.InDelta(t, 924, price, 1e-9)
}

func TestToSupplyPriceValidation(t *testing.T) {
	valid := WeightSet{}

	_, err := ToSupplyPrice(1100, 0, valid)
	assert.ErrorIs(t, err, ErrInvalidRatio)

	_, err = ToSupplyPrice(1100, -0.5, valid)
	assert.ErrorIs(t, err, ErrInvalidRatio)

	_, err = ToSupplyPrice(1100, math.NaN(), valid)
	assert.ErrorIs(t, err, ErrInvalidRatio)

	_, err = ToSupplyPrice(0, 0.8, valid)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = ToSupplyPrice(math.Inf(1), 0.8, valid)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = ToSupplyPrice(1100, 0.8, WeightSet{School: math.NaN()})
	assert.Error(t, err)
}

func TestToSupplyPriceMonotonicity(t *testing.T) {
	base := WeightSet{}
	ref, err := ToSupplyPrice(1000, 0.8, base)
	require.NoError(t, err)

	// Increasing in unit price.
	higher, err := ToSupplyPrice(1200, 0.8, base)
	require.NoError(t, err)
	assert.Greater(t, higher, ref)

	// Increasing in α.
	higher, err = ToSupplyPrice(1000, 0.8, WeightSet{Transit: 0.1})
	require.NoError(t, err)
	assert.Greater(t, higher, ref)

	// Increasing in β.
	higher, err = ToSupplyPrice(1000, 0.8, WeightSet{BrandTier: 0.1})
	require.NoError(t, err)
	assert.Greater(t, higher, ref)
}
