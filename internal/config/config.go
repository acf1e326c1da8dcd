package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config interface {
	EnvConfig
	SessionConfig
	TenantConfig
	BackendConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	IsProduction() bool
}

// SessionConfig holds the cookie layout of a browser session.
type SessionConfig interface {
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
	GetUserCookieTTL() time.Duration
	GetSchoolCookieTTL() time.Duration
	GetCookieDomain() string
}

// TenantConfig describes how hosts map onto schools.
type TenantConfig interface {
	GetRootDomain() string
	GetPreviewDomain() string
	GetReservedSubdomains() []string
}

type BackendConfig interface {
	GetBackendURL() string
	GetBackendTimeout() time.Duration
}

type mainConfig struct {
	v *viper.Viper
}

var _ Config = mainConfig{}

// New loads configuration from the environment and an optional config.yaml found in
// the working directory or ./config.
func New() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("[config New] load config file: %w", err)
		}
	}
	return mainConfig{v: v}, nil
}

// FromViper wraps an already populated viper instance. Defaults are applied to keys
// the instance does not set.
func FromViper(v *viper.Viper) Config {
	setDefaults(v)
	return mainConfig{v: v}
}
