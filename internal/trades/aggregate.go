package trades

import (
	"sort"
	"strings"

	"bunyang/server/internal/models"
)

// Filter narrows trade records before aggregation. Zero values leave the
// corresponding dimension unbounded.
type Filter struct {
	MinArea float64 `json:"min_area"` // m², inclusive
	MaxArea float64 `json:"max_area"` // m², inclusive; 0 = no upper bound
	Keyword string  `json:"keyword"`  // substring match on complex name
	RecentN int     `json:"recent_n"` // keep the N most recent by contract month
}

// Aggregation is the per-complex breakdown plus the blended overall stat.
type Aggregation struct {
	Overall   models.AggregatedStat            `json:"overall"`
	ByComplex map[string]models.AggregatedStat `json:"by_complex"`
}

// Aggregate filters records and computes unit-price statistics, overall and
// grouped by complex. An empty filtered set yields a zero-count stat, never
// an error.
func Aggregate(records []models.TradeRecord, f Filter) Aggregation {
	filtered := make([]models.TradeRecord, 0, len(records))
	for _, r := range records {
		if r.ExclusiveArea < f.MinArea {
			continue
		}
		if f.MaxArea > 0 && r.ExclusiveArea > f.MaxArea {
			continue
		}
		if f.Keyword != "" && !strings.Contains(r.ComplexName, f.Keyword) {
			continue
		}
		filtered = append(filtered, r)
	}

	// YYYYMM sorts lexicographically; most recent first.
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].ContractYM > filtered[j].ContractYM
	})
	if f.RecentN > 0 && len(filtered) > f.RecentN {
		filtered = filtered[:f.RecentN]
	}

	byComplex := make(map[string]models.AggregatedStat)
	groups := make(map[string][]models.TradeRecord)
	for _, r := range filtered {
		groups[r.ComplexName] = append(groups[r.ComplexName], r)
	}
	for name, group := range groups {
		byComplex[name] = statOf(group)
	}

	return Aggregation{
		Overall:   statOf(filtered),
		ByComplex: byComplex,
	}
}

func statOf(records []models.TradeRecord) models.AggregatedStat {
	if len(records) == 0 {
		return models.AggregatedStat{}
	}

	prices := make([]float64, len(records))
	var sum float64
	for i, r := range records {
		prices[i] = r.UnitPricePerPyeong()
		sum += prices[i]
	}
	sort.Float64s(prices)

	median := prices[len(prices)/2]
	if len(prices)%2 == 0 {
		median = (prices[len(prices)/2-1] + prices[len(prices)/2]) / 2
	}

	return models.AggregatedStat{
		Count:           len(records),
		MeanUnitPrice:   sum / float64(len(records)),
		MedianUnitPrice: median,
	}
}
