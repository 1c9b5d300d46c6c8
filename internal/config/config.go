// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every environment variable name
const Prefix = "WALLETAUTH"

type Config struct {
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":9000" validate:"required"`
	// Empty RedisURL selects the in-memory store and an in-process event bus
	RedisURL string `envconfig:"REDIS_URL" validate:"omitempty,url"`
	// Origin is the execution context used by the login command
	Origin string `envconfig:"ORIGIN" default:"http://localhost:9000" validate:"required,url"`

	WalletPrivateKey string `envconfig:"WALLET_PRIVATE_KEY" validate:"omitempty,hexadecimal"`
	JWTKeyFile       string `envconfig:"JWT_KEY_FILE" validate:"omitempty,file"`
	JWTIssuer        string `envconfig:"JWT_ISSUER" default:"walletauth" validate:"required"`

	ChainID int64 `envconfig:"CHAIN_ID" default:"1" validate:"gt=0"`
	// Statement is one line of the signed message
	Statement  string        `envconfig:"STATEMENT" validate:"singleline"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"24h" validate:"gt=0"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json text"`
}

// Load reads envFiles (missing files are ignored) and then the process environment
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := newValidator().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails for an empty tag or nil func
	_ = v.RegisterValidation("singleline", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), "\r\n")
	})
	return v
}
