package pricing

import (
	"errors"
	"math"
)

// DefaultVATRate is applied when a request leaves the VAT rate unset.
const DefaultVATRate = 0.10

var ErrInvalidCostInputs = errors.New("cost inputs must be finite, non-negative, and sum to a positive base cost")

// CostInputs are the user-supplied components of the simplified price cap,
// each expressed in 만원 per supply 평.
type CostInputs struct {
	LandCost         float64 `json:"land_cost"`
	ConstructionCost float64 `json:"construction_cost"`
	OtherCost        float64 `json:"other_cost"`
	ProfitRate       float64 `json:"profit_rate"`
	VATRate          float64 `json:"vat_rate"`
}

// CapFormula computes the regulatory ceiling from cost inputs. The statutory
// calculation is approximated, not reproduced; implementations can be
// swapped for a stricter formula without touching callers.
type CapFormula interface {
	CapPrice(in CostInputs) (float64, error)
}

// SimpleCapFormula is the cost + profit + VAT approximation:
// (land + construction + other) × (1 + profit rate) × (1 + VAT rate),
// already normalized to a supply-area unit price by its inputs.
type SimpleCapFormula struct{}

func (SimpleCapFormula) CapPrice(in CostInputs) (float64, error) {
	for _, v := range []float64{in.LandCost, in.ConstructionCost, in.OtherCost, in.ProfitRate, in.VATRate} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return 0, ErrInvalidCostInputs
		}
	}
	base := in.LandCost + in.ConstructionCost + in.OtherCost
	if base <= 0 {
		return 0, ErrInvalidCostInputs
	}
	return base * (1 + in.ProfitRate) * (1 + in.VATRate), nil
}
