package api

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"

	"bunyang/server/config"
	"bunyang/server/internal/geocode"
	"bunyang/server/internal/models"
	"bunyang/server/internal/pricing"
	"bunyang/server/internal/provider"
	"bunyang/server/internal/trades"
)

type Handler struct {
	resolver *geocode.Resolver
	fetcher  *trades.Fetcher
	cap      pricing.CapFormula
	logger   *logrus.Logger
}

func NewHandler(cfg *config.Config, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	timeout := time.Duration(cfg.Provider.TimeoutSeconds) * time.Second
	retryDelay := time.Duration(cfg.Provider.RetryDelayMS) * time.Millisecond

	rtms := provider.NewRTMSClient(
		provider.NewClient(timeout, cfg.Provider.MaxRetries, retryDelay, logger),
		cfg.ServiceKey, logger)
	vworld := provider.NewVWorldClient(
		provider.NewClient(timeout, cfg.Provider.MaxRetries, retryDelay, logger),
		cfg.VWorldKey, logger)
	kakao := provider.NewKakaoClient(
		provider.NewClient(timeout, cfg.Provider.MaxRetries, retryDelay, logger),
		cfg.KakaoRESTKey, logger)

	return &Handler{
		resolver: geocode.NewResolver(vworld, kakao, logger),
		fetcher:  trades.NewFetcher(rtms, logger),
		cap:      pricing.SimpleCapFormula{},
		logger:   logger,
	}
}

// GeocodeQuery binds /api/geocode parameters. Either a coordinate pair or a
// free-text address must be supplied.
type GeocodeQuery struct {
	Lat      *float64 `form:"lat"`
	Lon      *float64 `form:"lon"`
	Address  string   `form:"address"`
	Provider string   `form:"provider"`
}

func (h *Handler) Geocode(c *gin.Context) {
	var q GeocodeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid geocode query"})
		return
	}

	query := geocode.Query{Address: q.Address}
	switch {
	case q.Lat != nil && q.Lon != nil:
		point := orb.Point{*q.Lon, *q.Lat}
		query.Point = &point
	case q.Address == "":
		c.JSON(http.StatusBadRequest, gin.H{"error": "either lat/lon or address is required"})
		return
	}

	result, err := h.resolver.Resolve(c.Request.Context(), query, q.Provider)
	if err != nil {
		h.logger.WithError(err).Error("Failed to resolve location")
		c.JSON(http.StatusBadGateway, gin.H{"error": "location could not be resolved"})
		return
	}

	// A degraded result (label only) is still a 200; the caller decides
	// whether a trade query is possible.
	if result.DistrictCode != "" {
		if name := config.DistrictName(result.DistrictCode); name != "" {
			result.Label = name
		}
	}
	c.JSON(http.StatusOK, result)
}

// TradesQuery binds /api/trades parameters.
type TradesQuery struct {
	District string `form:"district" binding:"required"`
	Type     string `form:"type"`
	EndYM    string `form:"endYm" binding:"required"`
	Months   int    `form:"months"`
}

func (h *Handler) GetTrades(c *gin.Context) {
	var q TradesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "district and endYm are required"})
		return
	}
	if q.Months == 0 {
		q.Months = 6
	}

	types, err := propertyTypes(q.Type)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, monthErrors, err := h.fetcher.FetchTrades(c.Request.Context(), q.District, types, q.EndYM, q.Months)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":        len(records),
		"records":      records,
		"month_errors": monthErrors,
	})
}

func (h *Handler) SearchDistricts(c *gin.Context) {
	query := c.Query("q")
	c.JSON(http.StatusOK, gin.H{"districts": config.SearchDistricts(query)})
}

// EstimateRequest drives the full pipeline: fetch, aggregate, convert, cap,
// recommend.
type EstimateRequest struct {
	DistrictCode   string            `json:"district_code" binding:"required"`
	PropertyType   string            `json:"property_type"`
	EndYM          string            `json:"end_ym" binding:"required"`
	MonthsBack     int               `json:"months_back"`
	Filter         trades.Filter     `json:"filter"`
	ExclusiveRatio float64           `json:"exclusive_ratio" binding:"required"`
	Weights        pricing.WeightSet `json:"weights"`
	Costs          *EstimateCosts    `json:"costs"`
}

// EstimateCosts mirrors pricing.CostInputs with an optional VAT rate so the
// default applies when the field is omitted.
type EstimateCosts struct {
	LandCost         float64  `json:"land_cost"`
	ConstructionCost float64  `json:"construction_cost"`
	OtherCost        float64  `json:"other_cost"`
	ProfitRate       float64  `json:"profit_rate"`
	VATRate          *float64 `json:"vat_rate"`
}

func (e EstimateCosts) toInputs() pricing.CostInputs {
	vat := pricing.DefaultVATRate
	if e.VATRate != nil {
		vat = *e.VATRate
	}
	return pricing.CostInputs{
		LandCost:         e.LandCost,
		ConstructionCost: e.ConstructionCost,
		OtherCost:        e.OtherCost,
		ProfitRate:       e.ProfitRate,
		VATRate:          vat,
	}
}

func (h *Handler) Estimate(c *gin.Context) {
	var req EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid estimate request: " + err.Error()})
		return
	}
	if req.MonthsBack == 0 {
		req.MonthsBack = 6
	}

	types, err := propertyTypes(req.PropertyType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, monthErrors, err := h.fetcher.FetchTrades(c.Request.Context(), req.DistrictCode, types, req.EndYM, req.MonthsBack)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	aggregation := trades.Aggregate(records, req.Filter)

	var marketPrice *float64
	if aggregation.Overall.Count > 0 {
		supply, err := pricing.ToSupplyPrice(aggregation.Overall.MeanUnitPrice, req.ExclusiveRatio, req.Weights)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		marketPrice = &supply
	}

	var capPrice *float64
	if req.Costs != nil {
		capValue, err := h.cap.CapPrice(req.Costs.toInputs())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		capPrice = &capValue
	}

	estimate, err := pricing.Recommend(capPrice, marketPrice)
	if err != nil {
		if errors.Is(err, pricing.ErrNoPriceSources) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":        "recommendation withheld: no trades matched and no cost inputs supplied",
				"month_errors": monthErrors,
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"district":    req.DistrictCode,
		"records":     aggregation.Overall.Count,
		"basis":       estimate.Basis,
		"recommended": estimate.Recommended,
	}).Info("Produced price estimate")

	c.JSON(http.StatusOK, gin.H{
		"estimate":      estimate,
		"overall":       aggregation.Overall,
		"by_complex":    aggregation.ByComplex,
		"record_count":  len(records),
		"month_errors":  monthErrors,
		"district_name": config.DistrictName(req.DistrictCode),
	})
}

func propertyTypes(raw string) ([]models.PropertyType, error) {
	switch raw {
	case "", "both":
		return []models.PropertyType{models.Apartment, models.Officetel}, nil
	}
	pt, err := models.ParsePropertyType(raw)
	if err != nil {
		return nil, err
	}
	return []models.PropertyType{pt}, nil
}
