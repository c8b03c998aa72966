package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// JWTSecret verifies the identity provider's access tokens on API
	// routes. Must match the provider's signing secret.
	JWTSecret string `env:"JWT_SECRET"`

	// WebhookSecret authenticates session-change notifications pushed by
	// the identity provider.
	WebhookSecret string `env:"WEBHOOK_SECRET"`

	Mongo     MongoConfig
	Redis     RedisConfig
	Identity  IdentityConfig
	Documents DocumentsConfig
	Chat      ChatConfig
	Storage   StorageConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=invoicing"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// IdentityConfig points at the hosted identity/storage project. Leaving
// BaseURL or APIKey empty keeps the dependent features disabled instead of
// failing startup.
type IdentityConfig struct {
	BaseURL string `env:"IDENTITY_URL"`
	APIKey  string `env:"IDENTITY_API_KEY"`
}

type DocumentsConfig struct {
	BaseURL string `env:"DOCUMENTS_API_URL"`
}

type ChatConfig struct {
	APIKey  string `env:"CHAT_API_KEY"`
	BaseURL string `env:"CHAT_API_URL"`
	Model   string `env:"CHAT_MODEL"`
}

type StorageConfig struct {
	LogoBucket string `env:"STORAGE_LOGO_BUCKET, default=company-logos"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
