package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"

	"bunyang/server/internal/models"
)

const (
	kakaoRegionURL  = "https://dapi.kakao.com/v2/local/geo/coord2regioncode.json"
	kakaoAddressURL = "https://dapi.kakao.com/v2/local/search/address.json"
)

// KakaoClient resolves coordinates and free-text addresses through the Kakao
// local API.
type KakaoClient struct {
	client     *Client
	key        string
	regionURL  string
	addressURL string
	logger     *logrus.Logger
}

func NewKakaoClient(client *Client, restKey string, logger *logrus.Logger) *KakaoClient {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &KakaoClient{
		client:     client,
		key:        strings.TrimSpace(restKey),
		regionURL:  kakaoRegionURL,
		addressURL: kakaoAddressURL,
		logger:     logger,
	}
}

func (k *KakaoClient) authHeader() map[string]string {
	return map[string]string{"Authorization": "KakaoAK " + k.key}
}

type kakaoRegionDoc struct {
	RegionType string `json:"region_type"`
	Code       string `json:"code"`
	Region1    string `json:"region_1depth_name"`
	Region2    string `json:"region_2depth_name"`
	Region3    string `json:"region_3depth_name"`
}

func (d kakaoRegionDoc) label() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{d.Region1, d.Region2, d.Region3} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// RegionCode resolves a point to a legal district code (법정동, region type
// "B") with its display label.
func (k *KakaoClient) RegionCode(ctx context.Context, point orb.Point) (code, label string, err error) {
	doc, err := k.regionDoc(ctx, point)
	if err != nil {
		return "", "", err
	}
	label = doc.label()
	if c, cerr := models.ParseDistrictCode(doc.Code); cerr == nil {
		return c, label, nil
	}
	return "", label, nil
}

// RegionLabel resolves a point to a display label only, the tertiary
// fallback when no provider could produce a code.
func (k *KakaoClient) RegionLabel(ctx context.Context, point orb.Point) (string, error) {
	doc, err := k.regionDoc(ctx, point)
	if err != nil {
		return "", err
	}
	return doc.label(), nil
}

func (k *KakaoClient) regionDoc(ctx context.Context, point orb.Point) (kakaoRegionDoc, error) {
	if k.key == "" {
		return kakaoRegionDoc{}, &Error{Kind: KindPermanent, ResultMsg: "kakao REST key is empty"}
	}

	params := url.Values{
		"x": []string{fmt.Sprintf("%f", point.Lon())},
		"y": []string{fmt.Sprintf("%f", point.Lat())},
	}
	body, err := k.client.Get(ctx, k.regionURL, params, k.authHeader())
	if err != nil {
		return kakaoRegionDoc{}, err
	}

	var resp struct {
		Documents []kakaoRegionDoc `json:"documents"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return kakaoRegionDoc{}, &Error{Kind: KindUpstream, BodyExcerpt: excerpt(body), cause: err}
	}
	if len(resp.Documents) == 0 {
		return kakaoRegionDoc{}, ErrNoMatch
	}

	// Prefer the legal district document over the administrative one.
	docs := resp.Documents
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].RegionType == "B" && docs[j].RegionType != "B"
	})
	return docs[0], nil
}

// AddressSearch resolves a free-text address to a district code and label.
func (k *KakaoClient) AddressSearch(ctx context.Context, address string) (code, label string, err error) {
	if k.key == "" {
		return "", "", &Error{Kind: KindPermanent, ResultMsg: "kakao REST key is empty"}
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return "", "", ErrNoMatch
	}

	params := url.Values{"query": []string{address}}
	body, err := k.client.Get(ctx, k.addressURL, params, k.authHeader())
	if err != nil {
		return "", "", err
	}

	var resp struct {
		Documents []struct {
			AddressName string `json:"address_name"`
			Address     struct {
				BCode string `json:"b_code"`
			} `json:"address"`
		} `json:"documents"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", &Error{Kind: KindUpstream, BodyExcerpt: excerpt(body), cause: err}
	}
	if len(resp.Documents) == 0 {
		return "", "", ErrNoMatch
	}

	doc := resp.Documents[0]
	label = strings.TrimSpace(doc.AddressName)
	if c, cerr := models.ParseDistrictCode(doc.Address.BCode); cerr == nil {
		return c, label, nil
	}
	return "", label, nil
}
