package provider

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"bunyang/server/internal/models"
)

// Production trade registry endpoints. The endpoint is a fixed mapping per
// property type, not user-configurable.
const (
	aptTradeURL  = "https://apis.data.go.kr/1613000/RTMSDataSvcAptTrade/getRTMSDataSvcAptTrade"
	offiTradeURL = "https://apis.data.go.kr/1613000/RTMSDataSvcOffiTrade/getRTMSDataSvcOffiTrade"
)

const rtmsPageSize = 1000

// rtmsSuccessCodes holds the result codes the portal uses for success. The
// sentinel varies across endpoints: an absent header, "00" and "000" have
// all been observed on valid responses. Unknown codes are treated as
// failure.
var rtmsSuccessCodes = map[string]bool{
	"":    true,
	"00":  true,
	"000": true,
}

// RTMSClient fetches real transaction records from the MOLIT trade
// registries.
type RTMSClient struct {
	client     *Client
	serviceKey string
	logger     *logrus.Logger
}

// NewRTMSClient builds a registry client. The service key is normalized
// (decoded at most once) here so every request uses the same credential
// form.
func NewRTMSClient(client *Client, serviceKey string, logger *logrus.Logger) *RTMSClient {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	client.ParseUpstream = parseRTMSUpstream
	return &RTMSClient{
		client:     client,
		serviceKey: NormalizeServiceKey(serviceKey),
		logger:     logger,
	}
}

func endpointFor(propertyType models.PropertyType) string {
	if propertyType == models.Officetel {
		return offiTradeURL
	}
	return aptTradeURL
}

// FetchMonth retrieves all trade records for one municipality and contract
// month. Records missing a price or area are dropped, not fatal.
func (r *RTMSClient) FetchMonth(ctx context.Context, propertyType models.PropertyType, lawdCode, yearMonth string) ([]models.TradeRecord, error) {
	return r.fetchMonthFrom(ctx, endpointFor(propertyType), propertyType, lawdCode, yearMonth)
}

func (r *RTMSClient) fetchMonthFrom(ctx context.Context, endpoint string, propertyType models.PropertyType, lawdCode, yearMonth string) ([]models.TradeRecord, error) {
	if r.serviceKey == "" {
		return nil, &Error{Kind: KindPermanent, ResultMsg: "service key is empty"}
	}

	params := url.Values{
		"serviceKey": []string{r.serviceKey},
		"LAWD_CD":    []string{lawdCode},
		"DEAL_YMD":   []string{yearMonth},
		"numOfRows":  []string{strconv.Itoa(rtmsPageSize)},
	}

	body, err := r.client.Get(ctx, endpoint, params, nil)
	if err != nil {
		return nil, err
	}

	var resp rtmsResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, &Error{Kind: KindUpstream, BodyExcerpt: excerpt(body), cause: fmt.Errorf("parse registry response: %w", err)}
	}
	if !rtmsSuccessCodes[strings.TrimSpace(resp.Header.ResultCode)] {
		return nil, &Error{
			Kind:        KindUpstream,
			ResultCode:  resp.Header.ResultCode,
			ResultMsg:   resp.Header.ResultMsg,
			BodyExcerpt: excerpt(body),
		}
	}

	records := make([]models.TradeRecord, 0, len(resp.Body.Items.Item))
	dropped := 0
	for _, item := range resp.Body.Items.Item {
		rec, ok := item.toRecord(propertyType, lawdCode)
		if !ok {
			dropped++
			continue
		}
		records = append(records, rec)
	}
	if dropped > 0 {
		r.logger.WithFields(logrus.Fields{
			"lawd_cd":  lawdCode,
			"deal_ymd": yearMonth,
			"dropped":  dropped,
		}).Warn("Dropped trade records with missing price or area")
	}
	return records, nil
}

type rtmsResponse struct {
	Header struct {
		ResultCode string `xml:"resultCode"`
		ResultMsg  string `xml:"resultMsg"`
	} `xml:"header"`
	Body struct {
		Items struct {
			Item []rtmsItem `xml:"item"`
		} `xml:"items"`
	} `xml:"body"`
}

type rtmsItem struct {
	AptName       string `xml:"aptNm"`
	OffiName      string `xml:"offiNm"`
	DealAmount    string `xml:"dealAmount"`
	ExclusiveArea string `xml:"excluUseAr"`
	DealYear      string `xml:"dealYear"`
	DealMonth     string `xml:"dealMonth"`
	Floor         string `xml:"floor"`
	Jibun         string `xml:"jibun"`
	Neighborhood  string `xml:"umdNm"`
	DistrictCode  string `xml:"sggCd"`
}

func (it rtmsItem) toRecord(propertyType models.PropertyType, lawdCode string) (models.TradeRecord, bool) {
	// dealAmount arrives comma-grouped, e.g. "82,500" 만원.
	amount := strings.ReplaceAll(strings.TrimSpace(it.DealAmount), ",", "")
	price, err := strconv.ParseInt(amount, 10, 64)
	if err != nil || price <= 0 {
		return models.TradeRecord{}, false
	}
	area, err := strconv.ParseFloat(strings.TrimSpace(it.ExclusiveArea), 64)
	if err != nil || area <= 0 {
		return models.TradeRecord{}, false
	}

	name := strings.TrimSpace(it.AptName)
	if name == "" {
		name = strings.TrimSpace(it.OffiName)
	}

	rec := models.TradeRecord{
		ComplexName:   name,
		DistrictCode:  lawdCode,
		Neighborhood:  strings.TrimSpace(it.Neighborhood),
		ExclusiveArea: area,
		Price:         price,
		ContractYM:    contractYM(it.DealYear, it.DealMonth),
		Jibun:         strings.TrimSpace(it.Jibun),
		PropertyType:  propertyType,
	}
	if fl, err := strconv.Atoi(strings.TrimSpace(it.Floor)); err == nil {
		rec.Floor = &fl
	}
	return rec, true
}

func contractYM(year, month string) string {
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil {
		return ""
	}
	m, err := strconv.Atoi(strings.TrimSpace(month))
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%04d%02d", y, m)
}

// parseRTMSUpstream reads the portal's error envelopes. Errors arrive either
// in the standard header or, for key problems, in an OpenAPI_ServiceResponse
// wrapper.
func parseRTMSUpstream(body []byte) (string, string, bool) {
	var resp rtmsResponse
	if err := xml.Unmarshal(body, &resp); err == nil {
		code := strings.TrimSpace(resp.Header.ResultCode)
		if code != "" && !rtmsSuccessCodes[code] {
			return code, strings.TrimSpace(resp.Header.ResultMsg), true
		}
	}

	var svc struct {
		ReasonCode string `xml:"cmmMsgHeader>returnReasonCode"`
		ErrMsg     string `xml:"cmmMsgHeader>errMsg"`
	}
	if err := xml.Unmarshal(body, &svc); err == nil && strings.TrimSpace(svc.ReasonCode) != "" {
		return strings.TrimSpace(svc.ReasonCode), strings.TrimSpace(svc.ErrMsg), true
	}
	return "", "", false
}
