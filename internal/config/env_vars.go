package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	portEnvVar    = "PORT"
	appNameVar    = "APP_NAME"
	envVar        = "ENV"
	rootDomainVar = "ROOT_DOMAIN"
	previewVar    = "PREVIEW_DOMAIN"
	reservedVar   = "RESERVED_SUBDOMAINS"
	cookieDomVar  = "COOKIE_DOMAIN"
	backendURLVar = "BACKEND_URL"
	backendTOVar  = "BACKEND_TIMEOUT"
	accessTTLVar  = "ACCESS_TOKEN_TTL"
	refreshTTLVar = "REFRESH_TOKEN_TTL"
	userTTLVar    = "USER_COOKIE_TTL"
	schoolTTLVar  = "SCHOOL_COOKIE_TTL"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault(portEnvVar, "3000")
	v.SetDefault(appNameVar, "School Portal")
	v.SetDefault(envVar, "DEV")
	v.SetDefault(rootDomainVar, "localhost:3000")
	v.SetDefault(previewVar, "vercel.app")
	v.SetDefault(reservedVar, "www,app")
	v.SetDefault(cookieDomVar, "")
	v.SetDefault(backendURLVar, "http://localhost:4000")
	v.SetDefault(backendTOVar, "10s")
	v.SetDefault(accessTTLVar, "15m")
	v.SetDefault(refreshTTLVar, "720h") // 30 days
	v.SetDefault(userTTLVar, "24h")
	v.SetDefault(schoolTTLVar, "168h") // 7 days
}

func (c mainConfig) GetPort() string {
	port := c.v.GetString(portEnvVar)
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (c mainConfig) GetAppName() string {
	return c.v.GetString(appNameVar)
}

func (c mainConfig) GetEnv() string {
	return c.v.GetString(envVar)
}

// IsProduction reports whether cookies must be marked Secure.
func (c mainConfig) IsProduction() bool {
	switch strings.ToUpper(c.GetEnv()) {
	case "PROD", "PRODUCTION":
		return true
	}
	return false
}

func (c mainConfig) GetAccessTokenTTL() time.Duration {
	return c.v.GetDuration(accessTTLVar)
}

func (c mainConfig) GetRefreshTokenTTL() time.Duration {
	return c.v.GetDuration(refreshTTLVar)
}

func (c mainConfig) GetUserCookieTTL() time.Duration {
	return c.v.GetDuration(userTTLVar)
}

func (c mainConfig) GetSchoolCookieTTL() time.Duration {
	return c.v.GetDuration(schoolTTLVar)
}

func (c mainConfig) GetCookieDomain() string {
	return c.v.GetString(cookieDomVar)
}

// GetRootDomain returns the application's primary host, port included when set
// (e.g. "localhost:3000" or "example.com").
func (c mainConfig) GetRootDomain() string {
	return strings.ToLower(strings.TrimSpace(c.v.GetString(rootDomainVar)))
}

func (c mainConfig) GetPreviewDomain() string {
	return strings.ToLower(strings.TrimSpace(c.v.GetString(previewVar)))
}

func (c mainConfig) GetReservedSubdomains() []string {
	var labels []string
	for _, label := range strings.Split(c.v.GetString(reservedVar), ",") {
		if label = strings.ToLower(strings.TrimSpace(label)); label != "" {
			labels = append(labels, label)
		}
	}
	return labels
}

func (c mainConfig) GetBackendURL() string {
	return strings.TrimRight(c.v.GetString(backendURLVar), "/")
}

func (c mainConfig) GetBackendTimeout() time.Duration {
	return c.v.GetDuration(backendTOVar)
}
