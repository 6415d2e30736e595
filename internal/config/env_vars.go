package config

import (
	"strconv"
	"strings"
	"time"
)

const (
	appNameVar      = "APP_NAME"
	usernameVar     = "RDP_USERNAME"
	passwordVar     = "RDP_PASSWORD"
	appKeyVar       = "RDP_APP_KEY"
	clientSecretVar = "RDP_CLIENT_SECRET"
	baseURLVar      = "RDP_BASE_URL"
	httpTimeoutVar  = "RDP_HTTP_TIMEOUT"
	rateLimitVar    = "RDP_RATE_LIMIT"
	logLevelVar     = "LOG_LEVEL"
	envVar          = "ENV"

	// ConfigFileVar names the optional YAML config file.
	ConfigFileVar = "RDP_CONFIG_FILE"

	DefaultBaseURL = "https://api.refinitiv.com"
)

type EnvVars struct {
	file FileValues
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return e.file.lookup(appNameVar, "RDP Session")
}

func (e EnvVars) GetUsername() string {
	return e.file.lookup(usernameVar, "")
}

func (e EnvVars) GetPassword() string {
	return e.file.lookup(passwordVar, "")
}

// GetAppKey returns the vendor issued app key, used as the OAuth2 client id.
func (e EnvVars) GetAppKey() string {
	return e.file.lookup(appKeyVar, "")
}

func (e EnvVars) GetClientSecret() string {
	return e.file.lookup(clientSecretVar, "")
}

// GetBaseURL returns the platform root (e.g., "https://api.refinitiv.com")
// without a trailing slash.
func (e EnvVars) GetBaseURL() string {
	return strings.TrimRight(e.file.lookup(baseURLVar, DefaultBaseURL), "/")
}

// GetHTTPTimeout returns the transport timeout. Zero means no timeout.
func (e EnvVars) GetHTTPTimeout() time.Duration {
	return e.file.duration(httpTimeoutVar, 30*time.Second)
}

// GetRateLimit returns the permitted data requests per second. Zero disables limiting.
func (e EnvVars) GetRateLimit() float64 {
	raw := e.file.lookup(rateLimitVar, "")
	if raw == "" {
		return 0
	}
	limit, err := strconv.ParseFloat(raw, 64)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

func (e EnvVars) GetLogLevel() string {
	return strings.ToLower(e.file.lookup(logLevelVar, "info"))
}

// GetEnv names the deployment environment. "DEV" makes the mock platform log its routes.
func (e EnvVars) GetEnv() string {
	return e.file.lookup(envVar, "DEV")
}
