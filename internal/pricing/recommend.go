package pricing

import (
	"errors"

	"bunyang/server/internal/models"
)

// ErrNoPriceSources means neither the cap nor the market price was
// available; the recommendation is withheld rather than guessed.
var ErrNoPriceSources = errors.New("no price source available: recommendation withheld")

// Recommend picks min(cap, market) when both prices are present. With a
// single source the recommendation is that value, flagged single-source via
// the basis field. Nil inputs mark unavailable sources.
func Recommend(capPrice, marketPrice *float64) (models.PriceEstimate, error) {
	if capPrice != nil && !isPositiveFinite(*capPrice) {
		return models.PriceEstimate{}, ErrInvalidPrice
	}
	if marketPrice != nil && !isPositiveFinite(*marketPrice) {
		return models.PriceEstimate{}, ErrInvalidPrice
	}

	switch {
	case capPrice == nil && marketPrice == nil:
		return models.PriceEstimate{}, ErrNoPriceSources
	case marketPrice == nil:
		return models.PriceEstimate{
			CapPrice:    capPrice,
			Recommended: *capPrice,
			Basis:       models.BasisCapOnly,
		}, nil
	case capPrice == nil:
		return models.PriceEstimate{
			MarketPrice: marketPrice,
			Recommended: *marketPrice,
			Basis:       models.BasisMarketOnly,
		}, nil
	}

	recommended := *capPrice
	if *marketPrice < recommended {
		recommended = *marketPrice
	}
	return models.PriceEstimate{
		CapPrice:    capPrice,
		MarketPrice: marketPrice,
		Recommended: recommended,
		Basis:       models.BasisBoth,
	}, nil
}
