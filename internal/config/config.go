package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile           = ".env"
	defaultPort              = "5173"
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultBasePath          = "/"
	defaultLogLevel          = "info"
	defaultAPIBaseURL        = "http://localhost:8080/api"
	defaultFetchMaxBody      = 10 << 20
	defaultGeocoderBenchmark = "4"
	defaultGeocoderUpstream  = "https://geocoding.geo.census.gov/geocoder"
	defaultOAuthAuthURL      = "https://www.facebook.com/v18.0/dialog/oauth"
	defaultOAuthRedirectURL  = "http://localhost:8080/auth"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Geocoder GeocoderConfig
	OAuth    OAuthConfig
	Dev      DevConfig
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port         string
	BasePath     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// BackendConfig points at the vendor/event API.
type BackendConfig struct {
	APIBaseURL   string
	FetchTimeout time.Duration
	MaxBodyBytes int64
}

// GeocoderConfig controls one-line address lookups and the local geocoder proxy.
type GeocoderConfig struct {
	BaseURL      string
	Benchmark    string
	UpstreamURL  string
	ProxyEnabled bool

	// BaseURLDerived is set when BaseURL was not configured and points at this server.
	BaseURLDerived bool
}

// OAuthConfig feeds the login and registration links. No token exchange happens here.
type OAuthConfig struct {
	ClientID    string
	AuthURL     string
	RedirectURL string
}

// DevConfig holds developer conveniences.
type DevConfig struct {
	Enabled      bool
	LogLevel     string
	TemplatesDir string
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the application configuration by combining defaults, .env overrides,
// environment variables and explicit maps.
func Load(_ context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	// Cloud Run style PORT is honoured when the prefixed key is absent.
	port := stringWithDefault(lookup, "FTF_WEB_PORT", "")
	if port == "" {
		port = stringWithDefault(lookup, "PORT", defaultPort)
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         port,
			BasePath:     normalizeBasePath(stringWithDefault(lookup, "FTF_WEB_BASE_PATH", defaultBasePath)),
			ReadTimeout:  durationWithDefault(lookup, "FTF_WEB_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "FTF_WEB_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "FTF_WEB_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Backend: BackendConfig{
			APIBaseURL:   strings.TrimRight(stringWithDefault(lookup, "FTF_WEB_API_BASE_URL", defaultAPIBaseURL), "/"),
			FetchTimeout: durationWithDefault(lookup, "FTF_WEB_FETCH_TIMEOUT", 0),
			MaxBodyBytes: int64(intWithDefault(lookup, "FTF_WEB_FETCH_MAX_BODY", defaultFetchMaxBody)),
		},
		Geocoder: GeocoderConfig{
			BaseURL:      strings.TrimRight(stringWithDefault(lookup, "FTF_WEB_GEOCODER_BASE_URL", ""), "/"),
			Benchmark:    strings.TrimSpace(stringWithDefault(lookup, "FTF_WEB_GEOCODER_BENCHMARK", defaultGeocoderBenchmark)),
			UpstreamURL:  strings.TrimRight(stringWithDefault(lookup, "FTF_WEB_GEOCODER_UPSTREAM", defaultGeocoderUpstream), "/"),
			ProxyEnabled: boolWithDefault(lookup, "FTF_WEB_GEOCODER_PROXY", true),
		},
		OAuth: OAuthConfig{
			ClientID:    strings.TrimSpace(stringWithDefault(lookup, "FTF_WEB_OAUTH_CLIENT_ID", "")),
			AuthURL:     stringWithDefault(lookup, "FTF_WEB_OAUTH_AUTH_URL", defaultOAuthAuthURL),
			RedirectURL: stringWithDefault(lookup, "FTF_WEB_OAUTH_REDIRECT_URL", defaultOAuthRedirectURL),
		},
		Dev: DevConfig{
			Enabled:      boolWithDefault(lookup, "FTF_WEB_DEV", false),
			LogLevel:     strings.ToLower(stringWithDefault(lookup, "FTF_WEB_LOG_LEVEL", defaultLogLevel)),
			TemplatesDir: stringWithDefault(lookup, "FTF_WEB_TEMPLATES_DIR", ""),
		},
	}

	if cfg.Geocoder.BaseURL == "" {
		cfg.Geocoder.BaseURLDerived = true
		cfg.Geocoder.BaseURL = cfg.DefaultGeocoderURL(cfg.Server.Addr())
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultGeocoderURL is the geocoder base used when none is configured: the local proxy
// reached through listenAddr under the base path, or the upstream when the proxy is off.
func (c Config) DefaultGeocoderURL(listenAddr string) string {
	if !c.Geocoder.ProxyEnabled {
		return c.Geocoder.UpstreamURL
	}
	host, port, err := net.SplitHostPort(listenAddr)
	if err != nil {
		host, port = "", strings.TrimPrefix(listenAddr, ":")
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	base := strings.TrimRight(c.Server.BasePath, "/")
	return "http://" + net.JoinHostPort(host, port) + base + "/geocoder"
}

// Addr returns the listen address for the configured port.
func (c ServerConfig) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func validateConfig(cfg Config) error {
	var missing []string

	if strings.TrimSpace(cfg.Server.Port) == "" {
		missing = append(missing, "Server.Port")
	}
	if cfg.Server.ReadTimeout <= 0 {
		missing = append(missing, "Server.ReadTimeout")
	}
	if cfg.Server.WriteTimeout <= 0 {
		missing = append(missing, "Server.WriteTimeout")
	}
	if !isHTTPURL(cfg.Backend.APIBaseURL) {
		missing = append(missing, "Backend.APIBaseURL")
	}
	if cfg.Backend.FetchTimeout < 0 {
		missing = append(missing, "Backend.FetchTimeout")
	}
	if cfg.Backend.MaxBodyBytes <= 0 {
		missing = append(missing, "Backend.MaxBodyBytes")
	}
	if !isHTTPURL(cfg.Geocoder.BaseURL) {
		missing = append(missing, "Geocoder.BaseURL")
	}
	if cfg.Geocoder.Benchmark == "" {
		missing = append(missing, "Geocoder.Benchmark")
	}
	if cfg.Geocoder.ProxyEnabled && !isHTTPURL(cfg.Geocoder.UpstreamURL) {
		missing = append(missing, "Geocoder.UpstreamURL")
	}
	if !isHTTPURL(cfg.OAuth.AuthURL) {
		missing = append(missing, "OAuth.AuthURL")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == "/" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.TrimRight(p, "/")
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		values[key] = strings.Trim(strings.TrimSpace(value), "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
