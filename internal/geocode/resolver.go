package geocode

import (
	"context"
	"errors"
	"os"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"

	"bunyang/server/internal/models"
	"bunyang/server/internal/provider"
)

// Query is a location to resolve: a map coordinate or a free-text address.
type Query struct {
	Point   *orb.Point
	Address string
}

// Provider turns a query into a GeocodeResult. A provider that answered but
// found nothing returns an error; the resolver treats every error as "try
// the next provider".
type Provider interface {
	Name() string
	Locate(ctx context.Context, q Query) (models.GeocodeResult, error)
}

// ErrUnresolved is returned when every provider in the chain failed,
// label-only fallback included.
var ErrUnresolved = errors.New("geocode: all providers failed")

const preferenceAuto = "auto"

// Resolver runs an ordered provider chain: VWorld first, Kakao second, the
// Kakao label-only lookup last. The first result carrying a district code
// wins; if only labels were found the best label is returned as a degraded
// result rather than an error.
type Resolver struct {
	providers []Provider
	logger    *logrus.Logger
}

// NewResolver wires the default provider chain.
func NewResolver(vworld *provider.VWorldClient, kakao *provider.KakaoClient, logger *logrus.Logger) *Resolver {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Resolver{
		providers: []Provider{
			vworldProvider{vworld},
			kakaoProvider{kakao},
			labelProvider{kakao},
		},
		logger: logger,
	}
}

// NewResolverWith builds a resolver over an explicit provider list, in
// priority order. Used by tests and by callers with custom chains.
func NewResolverWith(logger *logrus.Logger, providers ...Provider) *Resolver {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Resolver{providers: providers, logger: logger}
}

// Resolve walks the chain. preference selects a single named provider (the
// label-only fallback stays appended) or "auto"/"" for the full chain.
// Provider failures are absorbed and logged, never propagated as a crash.
func (r *Resolver) Resolve(ctx context.Context, q Query, preference string) (models.GeocodeResult, error) {
	chain := r.chainFor(preference)

	var degraded *models.GeocodeResult
	for _, p := range chain {
		res, err := p.Locate(ctx, q)
		if err != nil {
			r.logger.WithError(err).WithField("provider", p.Name()).Warn("Geocode provider failed, trying next")
			continue
		}
		if res.DistrictCode != "" {
			return res, nil
		}
		if res.Label != "" && degraded == nil {
			d := res
			degraded = &d
		}
	}

	if degraded != nil {
		r.logger.WithFields(logrus.Fields{
			"source": degraded.Source,
			"label":  degraded.Label,
		}).Info("Geocoding degraded to label-only result")
		return *degraded, nil
	}
	return models.GeocodeResult{}, ErrUnresolved
}

func (r *Resolver) chainFor(preference string) []Provider {
	if preference == "" || preference == preferenceAuto {
		return r.providers
	}
	chain := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		if p.Name() == preference {
			chain = append(chain, p)
		}
	}
	if len(chain) == 0 {
		return r.providers
	}
	// Keep the label-only tail so a miss still degrades instead of failing.
	last := r.providers[len(r.providers)-1]
	if chain[len(chain)-1] != last {
		chain = append(chain, last)
	}
	return chain
}

type vworldProvider struct {
	client *provider.VWorldClient
}

func (p vworldProvider) Name() string { return "vworld" }

func (p vworldProvider) Locate(ctx context.Context, q Query) (models.GeocodeResult, error) {
	if q.Point == nil {
		return models.GeocodeResult{}, provider.ErrNoMatch
	}
	code, label, err := p.client.RegionCode(ctx, *q.Point)
	if err != nil {
		return models.GeocodeResult{}, err
	}
	return models.GeocodeResult{DistrictCode: code, Label: label, Source: p.Name()}, nil
}

type kakaoProvider struct {
	client *provider.KakaoClient
}

func (p kakaoProvider) Name() string { return "kakao" }

func (p kakaoProvider) Locate(ctx context.Context, q Query) (models.GeocodeResult, error) {
	if q.Point != nil {
		code, label, err := p.client.RegionCode(ctx, *q.Point)
		if err != nil {
			return models.GeocodeResult{}, err
		}
		return models.GeocodeResult{DistrictCode: code, Label: label, Source: p.Name()}, nil
	}
	code, label, err := p.client.AddressSearch(ctx, q.Address)
	if err != nil {
		return models.GeocodeResult{}, err
	}
	return models.GeocodeResult{DistrictCode: code, Label: label, Source: p.Name()}, nil
}

type labelProvider struct {
	client *provider.KakaoClient
}

func (p labelProvider) Name() string { return "kakao-label" }

func (p labelProvider) Locate(ctx context.Context, q Query) (models.GeocodeResult, error) {
	if q.Point == nil {
		_, label, err := p.client.AddressSearch(ctx, q.Address)
		if err != nil {
			return models.GeocodeResult{}, err
		}
		return models.GeocodeResult{Label: label, Source: p.Name()}, nil
	}
	label, err := p.client.RegionLabel(ctx, *q.Point)
	if err != nil {
		return models.GeocodeResult{}, err
	}
	return models.GeocodeResult{Label: label, Source: p.Name()}, nil
}
