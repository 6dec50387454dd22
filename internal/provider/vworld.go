package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"

	"bunyang/server/internal/models"
)

const vworldAddressURL = "https://api.vworld.kr/req/address"

// vworldModes are the geometry query modes tried in order for a point. A
// single mode can return no result for a given coordinate, so all three are
// attempted before the lookup counts as a miss.
var vworldModes = []string{"PARCEL", "BOTH", "ROAD"}

// VWorldClient resolves coordinates to legal district codes through the
// VWorld reverse-geocoding API.
type VWorldClient struct {
	client  *Client
	key     string
	baseURL string
	logger  *logrus.Logger
}

func NewVWorldClient(client *Client, key string, logger *logrus.Logger) *VWorldClient {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &VWorldClient{client: client, key: strings.TrimSpace(key), baseURL: vworldAddressURL, logger: logger}
}

type vworldResponse struct {
	Response struct {
		Status string `json:"status"`
		Result []struct {
			Text      string `json:"text"`
			ID        string `json:"id"`
			Structure struct {
				Level4LC string `json:"level4LC"`
			} `json:"structure"`
		} `json:"result"`
	} `json:"response"`
}

// RegionCode resolves a point to a 10-digit district code and a display
// label. When no mode yields a structured code but a parcel identifier was
// returned, the code is derived by truncating the identifier.
func (v *VWorldClient) RegionCode(ctx context.Context, point orb.Point) (code, label string, err error) {
	if v.key == "" {
		return "", "", &Error{Kind: KindPermanent, ResultMsg: "vworld key is empty"}
	}

	for _, mode := range vworldModes {
		params := url.Values{
			"service": []string{"address"},
			"request": []string{"getAddress"},
			"version": []string{"2.0"},
			"crs":     []string{"epsg:4326"},
			"format":  []string{"json"},
			"type":    []string{mode},
			"point":   []string{fmt.Sprintf("%f,%f", point.Lon(), point.Lat())},
			"key":     []string{v.key},
		}

		body, err := v.client.Get(ctx, v.baseURL, params, nil)
		if err != nil {
			return "", "", err
		}

		var resp vworldResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", "", &Error{Kind: KindUpstream, BodyExcerpt: excerpt(body), cause: err}
		}
		if resp.Response.Status != "OK" || len(resp.Response.Result) == 0 {
			v.logger.WithFields(logrus.Fields{
				"mode":   mode,
				"status": resp.Response.Status,
			}).Debug("VWorld mode returned no result")
			continue
		}

		result := resp.Response.Result[0]
		if label == "" {
			label = strings.TrimSpace(result.Text)
		}
		if c, err := models.ParseDistrictCode(result.Structure.Level4LC); err == nil {
			return c, label, nil
		}
		if c, err := models.DistrictFromParcel(result.ID); err == nil {
			return c, label, nil
		}
	}
	if label != "" {
		// Address found but no usable code in any mode.
		return "", label, nil
	}
	return "", "", ErrNoMatch
}
