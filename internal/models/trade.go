package models

import "fmt"

// PropertyType selects which trade registry a record comes from.
type PropertyType string

const (
	Apartment PropertyType = "apartment"
	Officetel PropertyType = "officetel"
)

// ParsePropertyType validates a raw property type string.
func ParsePropertyType(raw string) (PropertyType, error) {
	switch PropertyType(raw) {
	case Apartment, Officetel:
		return PropertyType(raw), nil
	}
	return "", fmt.Errorf("unknown property type: %q", raw)
}

// PyeongInSquareMeters converts between m² and the 평 unit presale prices are
// quoted in.
const PyeongInSquareMeters = 3.305785

// TradeRecord is one observed transaction from the registry. Records are
// immutable once fetched.
type TradeRecord struct {
	ComplexName   string       `json:"complex_name"`
	DistrictCode  string       `json:"district_code"`
	Neighborhood  string       `json:"neighborhood,omitempty"`
	ExclusiveArea float64      `json:"exclusive_area"` // m²
	Price         int64        `json:"price"`          // 만원
	ContractYM    string       `json:"contract_ym"`    // YYYYMM
	Floor         *int         `json:"floor,omitempty"`
	Jibun         string       `json:"jibun,omitempty"`
	PropertyType  PropertyType `json:"property_type"`
}

// UnitPricePerPyeong is the transaction price divided by the exclusive area
// expressed in 평.
func (t TradeRecord) UnitPricePerPyeong() float64 {
	return float64(t.Price) / (t.ExclusiveArea / PyeongInSquareMeters)
}

// AggregatedStat holds unit-price statistics over a set of trade records.
// A zero-count stat is valid and carries zero prices.
type AggregatedStat struct {
	Count           int     `json:"count"`
	MeanUnitPrice   float64 `json:"mean_unit_price"`
	MedianUnitPrice float64 `json:"median_unit_price"`
}
