package trades

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"

	"bunyang/server/internal/models"
)

// MonthSource fetches one registry month. Satisfied by provider.RTMSClient.
type MonthSource interface {
	FetchMonth(ctx context.Context, propertyType models.PropertyType, lawdCode, yearMonth string) ([]models.TradeRecord, error)
}

// MonthError records one failed month of a fetch that otherwise succeeded.
type MonthError struct {
	YearMonth    string              `json:"year_month"`
	PropertyType models.PropertyType `json:"property_type"`
	Message      string              `json:"message"`
	Err          error               `json:"-"`
}

// Fetcher retrieves trade records for a district over a month range. Each
// call is self-contained; nothing is cached across calls.
type Fetcher struct {
	source MonthSource
	logger *logrus.Logger
}

func NewFetcher(source MonthSource, logger *logrus.Logger) *Fetcher {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Fetcher{source: source, logger: logger}
}

// MonthRange expands an end month (YYYYMM) and a look-back count into the
// list of contract months to query, most recent first.
func MonthRange(endYM string, monthsBack int) ([]string, error) {
	if len(endYM) != 6 {
		return nil, fmt.Errorf("invalid contract month %q: want YYYYMM", endYM)
	}
	year, err := strconv.Atoi(endYM[:4])
	if err != nil {
		return nil, fmt.Errorf("invalid contract month %q: want YYYYMM", endYM)
	}
	month, err := strconv.Atoi(endYM[4:])
	if err != nil || month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid contract month %q: want YYYYMM", endYM)
	}
	if monthsBack < 1 {
		return nil, fmt.Errorf("months back must be at least 1, got %d", monthsBack)
	}

	months := make([]string, 0, monthsBack)
	for i := 0; i < monthsBack; i++ {
		months = append(months, fmt.Sprintf("%04d%02d", year, month))
		month--
		if month == 0 {
			month = 12
			year--
		}
	}
	return months, nil
}

// FetchTrades queries every month in range for each requested property type.
// Months run concurrently and are merged by concatenation. A failed month
// becomes a MonthError alongside the successfully fetched records; it never
// discards other months.
func (f *Fetcher) FetchTrades(ctx context.Context, districtCode string, types []models.PropertyType, endYM string, monthsBack int) ([]models.TradeRecord, []MonthError, error) {
	code, err := models.ParseDistrictCode(districtCode)
	if err != nil {
		return nil, nil, err
	}
	months, err := MonthRange(endYM, monthsBack)
	if err != nil {
		return nil, nil, err
	}
	if len(types) == 0 {
		types = []models.PropertyType{models.Apartment, models.Officetel}
	}
	lawdCode := models.MunicipalityCode(code)

	type monthResult struct {
		records []models.TradeRecord
		failure *MonthError
	}

	results := make(chan monthResult, len(months)*len(types))
	var wg sync.WaitGroup
	for _, propertyType := range types {
		for _, ym := range months {
			wg.Add(1)
			go func(pt models.PropertyType, ym string) {
				defer wg.Done()
				records, err := f.source.FetchMonth(ctx, pt, lawdCode, ym)
				if err != nil {
					f.logger.WithError(err).WithFields(logrus.Fields{
						"district":      code,
						"property_type": pt,
						"deal_ymd":      ym,
					}).Warn("Month fetch failed")
					results <- monthResult{failure: &MonthError{
						YearMonth:    ym,
						PropertyType: pt,
						Message:      err.Error(),
						Err:          err,
					}}
					return
				}
				results <- monthResult{records: records}
			}(propertyType, ym)
		}
	}
	wg.Wait()
	close(results)

	var records []models.TradeRecord
	var failures []MonthError
	for res := range results {
		if res.failure != nil {
			failures = append(failures, *res.failure)
			continue
		}
		records = append(records, res.records...)
	}

	f.logger.WithFields(logrus.Fields{
		"district":      code,
		"months":        len(months),
		"records":       len(records),
		"failed_months": len(failures),
	}).Info("Fetched trade records")
	return records, failures, nil
}
