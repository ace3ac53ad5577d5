package config

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
	"github.com/verihub/verify-engine/internal/provider"
)

type Config struct {
	DatabaseDSN       string `env:"DATABASE_DSN,required=true"`
	RabbitMQURL       string `env:"RABBITMQ_URL,required=true"`
	RedisURL          string `env:"REDIS_URL,required=true"`
	RateLimitPerSec   int    `env:"RATE_LIMIT_PER_SEC,default=100"`
	WorkerConcurrency int    `env:"WORKER_CONCURRENCY,default=16"`
	APIPort           int    `env:"API_PORT,default=8080"`
	LogLevel          string `env:"LOG_LEVEL,default=info"`

	ProviderTimeoutSeconds int `env:"PROVIDER_TIMEOUT_SECONDS,default=10"`

	// Provider credentials. An adapter without its credential is disabled
	// and excluded from aggregate dispatch.
	ZeroBounceAPIKey   string `env:"ZEROBOUNCE_API_KEY"`
	MailboxLayerAPIKey string `env:"MAILBOXLAYER_API_KEY"`
	NeutrinoUserID     string `env:"NEUTRINOAPI_USER_ID"`
	NeutrinoAPIKey     string `env:"NEUTRINOAPI_API_KEY"`
	SpokeoAPIKey       string `env:"SPOKEO_API_KEY"`
	HunterAPIKey       string `env:"HUNTER_API_KEY"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// ProviderConfig maps environment credentials into the adapter
// construction config.
func (c *Config) ProviderConfig() provider.Config {
	return provider.Config{
		ZeroBounceAPIKey:   c.ZeroBounceAPIKey,
		MailboxLayerAPIKey: c.MailboxLayerAPIKey,
		NeutrinoUserID:     c.NeutrinoUserID,
		NeutrinoAPIKey:     c.NeutrinoAPIKey,
		SpokeoAPIKey:       c.SpokeoAPIKey,
		HunterAPIKey:       c.HunterAPIKey,
		Timeout:            time.Duration(c.ProviderTimeoutSeconds) * time.Second,
	}
}
