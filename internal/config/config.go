package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config interface {
	EnvConfig
	OAuthConfig
}

type EnvConfig interface {
	GetAppName() string
	GetUsername() string
	GetPassword() string
	GetAppKey() string
	GetClientSecret() string
	GetBaseURL() string
	GetHTTPTimeout() time.Duration
	GetRateLimit() float64
	GetLogLevel() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	OAuth
}

// New returns a Config backed by environment variables only.
func New() Config {
	return mainConfig{}
}

// FileConfig is the YAML layout of an optional config file. Every key maps onto
// the environment variable of the same meaning; a set environment variable wins.
type FileConfig struct {
	AppName       string `yaml:"app_name"`
	Username      string `yaml:"username"`
	Password      string `yaml:"password"`
	AppKey        string `yaml:"app_key"`
	ClientSecret  string `yaml:"client_secret"`
	BaseURL       string `yaml:"base_url"`
	Scope         string `yaml:"scope"`
	HTTPTimeout   string `yaml:"http_timeout"`
	RateLimit     string `yaml:"rate_limit"`
	RefreshMargin string `yaml:"refresh_margin"`
	LogLevel      string `yaml:"log_level"`
	Env           string `yaml:"env"`
}

// FileValues holds file-sourced settings keyed by environment variable name.
type FileValues map[string]string

// Load reads the YAML file at path and overlays it beneath the environment.
// An empty path falls back to RDP_CONFIG_FILE; with neither it behaves like New.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		path = os.Getenv(ConfigFileVar)
	}
	if strings.TrimSpace(path) == "" {
		return New(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("[config Load] read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML document into a Config.
func Parse(data []byte) (Config, error) {
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("[config Parse] decode yaml: %w", err)
	}
	values := fc.values()
	return mainConfig{
		EnvVars: EnvVars{file: values},
		OAuth:   OAuth{file: values},
	}, nil
}

func (fc FileConfig) values() FileValues {
	v := FileValues{
		appNameVar:       fc.AppName,
		usernameVar:      fc.Username,
		passwordVar:      fc.Password,
		appKeyVar:        fc.AppKey,
		clientSecretVar:  fc.ClientSecret,
		baseURLVar:       fc.BaseURL,
		scopeVar:         fc.Scope,
		httpTimeoutVar:   fc.HTTPTimeout,
		rateLimitVar:     fc.RateLimit,
		refreshMarginVar: fc.RefreshMargin,
		logLevelVar:      fc.LogLevel,
		envVar:           fc.Env,
	}
	for k, val := range v {
		if val == "" {
			delete(v, k)
		}
	}
	return v
}

func (f FileValues) lookup(envVar, defaultValue string) string {
	if value := os.Getenv(envVar); value != "" {
		return value
	}
	if value, ok := f[envVar]; ok {
		return value
	}
	return defaultValue
}

func (f FileValues) duration(envVar string, defaultValue time.Duration) time.Duration {
	raw := f.lookup(envVar, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return defaultValue
	}
	return d
}
