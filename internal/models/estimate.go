package models

// EstimateBasis records which price sources backed a recommendation.
type EstimateBasis string

const (
	BasisBoth       EstimateBasis = "both"
	BasisCapOnly    EstimateBasis = "cap_only"
	BasisMarketOnly EstimateBasis = "market_only"
)

// PriceEstimate is the final output of one estimation request: the simplified
// regulatory cap, the weighted market-based price, and the recommended supply
// area unit price. All prices are 만원 per supply 평. Missing sources stay
// nil; Basis tells the consumer whether the recommendation used one source
// or both.
type PriceEstimate struct {
	CapPrice    *float64      `json:"cap_price,omitempty"`
	MarketPrice *float64      `json:"market_price,omitempty"`
	Recommended float64       `json:"recommended"`
	Basis       EstimateBasis `json:"basis"`
}
