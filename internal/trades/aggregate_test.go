package trades

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bunyang/server/internal/models"
)

// rec builds a record whose unit price per 평 is exactly unitPrice, using a
// one-평 exclusive area.
func rec(complex, ym string, unitPrice float64) models.TradeRecord {
	return models.TradeRecord{
		ComplexName:   complex,
		ContractYM:    ym,
		ExclusiveArea: models.PyeongInSquareMeters,
		Price:         int64(unitPrice),
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	agg := Aggregate(nil, Filter{})
	assert.Equal(t, 0, agg.Overall.Count)
	assert.Zero(t, agg.Overall.MeanUnitPrice)
	assert.Zero(t, agg.Overall.MedianUnitPrice)
	assert.Empty(t, agg.ByComplex)
}

func TestAggregateEmptyAfterFilter(t *testing.T) {
	records := []models.TradeRecord{rec("단지A", "202606", 1000)}
	agg := Aggregate(records, Filter{Keyword: "없는단지"})
	assert.Equal(t, 0, agg.Overall.Count)
	assert.Zero(t, agg.Overall.MeanUnitPrice)
}

func TestAggregateMeanAndMedian(t *testing.T) {
	records := []models.TradeRecord{
		rec("단지A", "202606", 1000),
		rec("단지A", "202605", 1100),
		rec("단지B", "202604", 1200),
	}
	agg := Aggregate(records, Filter{})

	assert.Equal(t, 3, agg.Overall.Count)
	assert.InDelta(t, 1100, agg.Overall.MeanUnitPrice, 1e-6)
	assert.InDelta(t, 1100, agg.Overall.MedianUnitPrice, 1e-6)

	require.Len(t, agg.ByComplex, 2)
	assert.Equal(t, 2, agg.ByComplex["단지A"].Count)
	assert.InDelta(t, 1050, agg.ByComplex["단지A"].MeanUnitPrice, 1e-6)
	assert.Equal(t, 1, agg.ByComplex["단지B"].Count)
	assert.InDelta(t, 1200, agg.ByComplex["단지B"].MeanUnitPrice, 1e-6)
}

func TestAggregateMedianEvenCount(t *testing.T) {
	records := []models.TradeRecord{
		rec("A", "202606", 1000),
		rec("A", "202606", 1100),
		rec("A", "202606", 1300),
		rec("A", "202606", 1500),
	}
	agg := Aggregate(records, Filter{})
	assert.InDelta(t, 1200, agg.Overall.MedianUnitPrice, 1e-6)
}

func TestAggregateAreaBand(t *testing.T) {
	records := []models.TradeRecord{
		{ComplexName: "A", ContractYM: "202606", ExclusiveArea: 59.84, Price: 60000},
		{ComplexName: "A", ContractYM: "202606", ExclusiveArea: 84.97, Price: 82000},
		{ComplexName: "A", ContractYM: "202606", ExclusiveArea: 114.5, Price: 120000},
	}

	// Band bounds are inclusive.
	agg := Aggregate(records, Filter{MinArea: 59.84, MaxArea: 84.97})
	assert.Equal(t, 2, agg.Overall.Count)

	agg = Aggregate(records, Filter{MinArea: 100})
	assert.Equal(t, 1, agg.Overall.Count)
}

func TestAggregateKeyword(t *testing.T) {
	records := []models.TradeRecord{
		rec("래미안강남", "202606", 1000),
		rec("자이서초", "202606", 1200),
	}
	agg := Aggregate(records, Filter{Keyword: "래미안"})
	assert.Equal(t, 1, agg.Overall.Count)
	assert.Contains(t, agg.ByComplex, "래미안강남")
	assert.NotContains(t, agg.ByComplex, "자이서초")
}

func TestAggregateRecentN(t *testing.T) {
	records := []models.TradeRecord{
		rec("A", "202601", 900),
		rec("A", "202606", 1200),
		rec("A", "202603", 1000),
	}
	// Most recent two by contract month: 202606 and 202603.
	agg := Aggregate(records, Filter{RecentN: 2})
	assert.Equal(t, 2, agg.Overall.Count)
	assert.InDelta(t, 1100, agg.Overall.MeanUnitPrice, 1e-6)
}
