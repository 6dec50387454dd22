package config

import "github.com/caarlos0/env/v6"

type Config struct {
    // Server configuration
    Port string `env:"PORT" envDefault:"5250"`

    // ServiceKey is the data portal credential for the trade registries.
    // Both the decoded and the URL-encoded portal key are accepted; encoded
    // keys are decoded once at client construction.
    ServiceKey string `env:"SERVICE_KEY"`

    // KakaoRESTKey authorizes the Kakao local API (secondary geocoder and
    // label fallback).
    KakaoRESTKey string `env:"KAKAO_REST_API_KEY"`

    // VWorldKey authorizes the VWorld address API (primary geocoder).
    VWorldKey string `env:"VWORLD_API_KEY"`

    // DistrictTablePath points at the legal district reference table.
    DistrictTablePath string `env:"DISTRICT_TABLE_PATH" envDefault:"config/legal_districts.json"`

    // Provider HTTP behaviour
    Provider struct {
        // Request timeout in seconds
        TimeoutSeconds int `env:"PROVIDER_TIMEOUT" envDefault:"20"`

        // Maximum number of retries for transient failures
        MaxRetries int `env:"PROVIDER_MAX_RETRIES" envDefault:"2"`

        // Delay between retries in milliseconds
        RetryDelayMS int `env:"PROVIDER_RETRY_DELAY_MS" envDefault:"500"`
    }
}

func LoadConfig() (*Config, error) {
    cfg := &Config{}
    if err := env.Parse(cfg); err != nil {
        return nil, err
    }
    return cfg, nil
}
