package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVWorldClient(t *testing.T, serverURL string) *VWorldClient {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	client := NewClient(2*time.Second, 0, time.Millisecond, logger)
	vw := NewVWorldClient(client, "test-vworld-key", logger)
	vw.baseURL = serverURL
	return vw
}

var testPoint = orb.Point{127.0365, 37.5002}

func TestVWorldRegionCodeFirstMode(t *testing.T) {
	var modes []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		modes = append(modes, r.URL.Query().Get("type"))
		fmt.Fprint(w, `{"response":{"status":"OK","result":[{"text":"서울특별시 강남구 역삼동 649","structure":{"level4LC":"1168010100"}}]}}`)
	}))
	defer server.Close()

	code, label, err := newTestVWorldClient(t, server.URL).RegionCode(context.Background(), testPoint)
	require.NoError(t, err)
	assert.Equal(t, "1168010100", code)
	assert.Equal(t, "서울특별시 강남구 역삼동 649", label)
	assert.Equal(t, []string{"PARCEL"}, modes, "first mode answered; no further modes tried")
}

func TestVWorldRegionCodeTriesAllModes(t *testing.T) {
	// The first two geometry modes miss; the road-based mode answers with
	// only a parcel identifier, which is truncated to the district code.
	var modes []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mode := r.URL.Query().Get("type")
		modes = append(modes, mode)
		if mode != "ROAD" {
			fmt.Fprint(w, `{"response":{"status":"NOT_FOUND"}}`)
			return
		}
		fmt.Fprint(w, `{"response":{"status":"OK","result":[{"text":"서울특별시 송파구 잠실동","id":"1171010100102340000"}]}}`)
	}))
	defer server.Close()

	code, label, err := newTestVWorldClient(t, server.URL).RegionCode(context.Background(), testPoint)
	require.NoError(t, err)
	assert.Equal(t, "1171010100", code)
	assert.Equal(t, "서울특별시 송파구 잠실동", label)
	assert.Equal(t, []string{"PARCEL", "BOTH", "ROAD"}, modes)
}

func TestVWorldRegionCodeAllModesMiss(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response":{"status":"NOT_FOUND"}}`)
	}))
	defer server.Close()

	_, _, err := newTestVWorldClient(t, server.URL).RegionCode(context.Background(), testPoint)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestVWorldRegionCodeLabelWithoutCode(t *testing.T) {
	// An address text without any usable code still comes back so the
	// resolver can degrade to a label-only result.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response":{"status":"OK","result":[{"text":"어딘가 도로명"}]}}`)
	}))
	defer server.Close()

	code, label, err := newTestVWorldClient(t, server.URL).RegionCode(context.Background(), testPoint)
	require.NoError(t, err)
	assert.Empty(t, code)
	assert.Equal(t, "어딘가 도로명", label)
}

func TestVWorldRegionCodeEmptyKey(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	vw := NewVWorldClient(NewClient(time.Second, 0, time.Millisecond, logger), "", logger)

	_, _, err := vw.RegionCode(context.Background(), testPoint)
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, KindPermanent, perr.Kind)
}
