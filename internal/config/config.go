// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Metadata  MetadataConfig
	Store     StoreConfig
	Search    SearchConfig
	Server    ServerConfig
	Auth      AuthConfig
	Provider  ProviderConfig
	Media     MediaConfig
	Sweep     SweepConfig
	RateLimit RateLimitConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// MetadataConfig holds metadata storage configuration (auth keys, local state).
type MetadataConfig struct {
	BasePath string
}

// StoreConfig holds the embedded record store configuration.
type StoreConfig struct {
	// Path is the BadgerDB directory (default: {metadata}/store)
	Path string
}

// SearchConfig holds the search index configuration.
type SearchConfig struct {
	// Path is the Bleve index directory (default: {metadata}/search)
	Path string
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Name         string
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 120s, generation is synchronous)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
	CORSOrigins  []string      // Allowed CORS origins (default: *)
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// PASETO v4 symmetric key for access tokens (32 bytes)
	AccessTokenKey []byte
	// Session durations
	AccessTokenDuration  time.Duration // e.g., 15m
	RefreshTokenDuration time.Duration // e.g., 720h (30 days)
	// AllowRegistration permits self-service signups after initial setup (default: true)
	AllowRegistration bool
}

// ProviderConfig holds generative image provider configuration.
type ProviderConfig struct {
	// BaseURL of the provider API (default: https://generativelanguage.googleapis.com)
	BaseURL string
	// APIKey authenticates requests. Required to start the server.
	APIKey string
	// Model is the image-capable model name (default: gemini-2.5-flash-image)
	Model string
	// Timeout bounds a single generation call (default: 60s)
	Timeout time.Duration
	// RequestsPerMinute caps provider calls per owner (default: 6)
	RequestsPerMinute int
	// Burst allows short bursts above the per-minute rate (default: 2)
	Burst int
}

// MediaConfig holds media host (S3-compatible object storage) configuration.
type MediaConfig struct {
	Endpoint  string // host:port of the media host (default: localhost:9000)
	AccessKey string
	SecretKey string
	Bucket    string // default: thumblify
	Folder    string // fixed upload folder inside the bucket (default: thumbnails)
	UseSSL    bool
	// PublicBaseURL overrides the URL prefix for stored objects (optional;
	// defaults to scheme://endpoint)
	PublicBaseURL string
}

// SweepConfig holds the stale-generation reconciliation settings.
type SweepConfig struct {
	// Interval between sweeps (default: 5m)
	Interval time.Duration
	// StaleAfter is how long a record may stay generating before the sweep
	// marks it failed (default: 15m)
	StaleAfter time.Duration
}

// RateLimitConfig holds login rate limiting configuration.
type RateLimitConfig struct {
	LoginPerSecond float64 // default: 1
	LoginBurst     int     // default: 5
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	// Define command-line flags.
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	metadataPath := flag.String("metadata-path", "", "Base path for metadata storage")
	storePath := flag.String("store-path", "", "Path to the record store directory")
	searchPath := flag.String("search-path", "", "Path to the search index directory")
	serverName := flag.String("server-name", "", "Name for the server")

	// Auth flags
	accessTokenDuration := flag.String("access-token-duration", "", "Access token lifetime (e.g., 15m)")
	refreshTokenDuration := flag.String("refresh-token-duration", "", "Refresh token lifetime (e.g., 720h)")
	allowRegistration := flag.String("allow-registration", "", "Allow self-service signups (default: true)")

	// Server flags
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 120s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := flag.String("cors-origins", "", "Comma-separated list of allowed CORS origins")

	// Provider flags
	providerBaseURL := flag.String("provider-base-url", "", "Image provider API base URL")
	providerAPIKey := flag.String("provider-api-key", "", "Image provider API key")
	providerModel := flag.String("provider-model", "", "Image provider model name")
	providerTimeout := flag.String("provider-timeout", "", "Image provider request timeout (default: 60s)")
	providerRPM := flag.String("provider-rpm", "", "Provider calls per minute per user (default: 6)")

	// Media host flags
	mediaEndpoint := flag.String("media-endpoint", "", "Media host endpoint (host:port)")
	mediaBucket := flag.String("media-bucket", "", "Media host bucket (default: thumblify)")
	mediaFolder := flag.String("media-folder", "", "Upload folder inside the bucket (default: thumbnails)")

	// Sweep flags
	sweepInterval := flag.String("sweep-interval", "", "Stale generation sweep interval (default: 5m)")
	sweepStaleAfter := flag.String("sweep-stale-after", "", "Age at which a generating record is marked failed (default: 15m)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	// Parse flags but don't exit on error - we want to handle it gracefully.
	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	// Build config with proper precedence.
	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Metadata: MetadataConfig{
			BasePath: getConfigValue(*metadataPath, "METADATA_PATH", ""),
		},
		Store: StoreConfig{
			Path: getConfigValue(*storePath, "STORE_PATH", ""),
		},
		Search: SearchConfig{
			Path: getConfigValue(*searchPath, "SEARCH_PATH", ""),
		},

		Server: ServerConfig{
			Name:        getConfigValue(*serverName, "SERVER_NAME", "Thumblify Server"),
			Port:        getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			CORSOrigins: splitAndTrim(getConfigValue(*corsOrigins, "CORS_ORIGINS", "*")),
		},

		Auth: AuthConfig{
			AccessTokenKey:    nil, // Will be set by auth.LoadOrGenerateKey in main
			AllowRegistration: getBoolConfigValue(*allowRegistration, "ALLOW_REGISTRATION", true),
		},

		Provider: ProviderConfig{
			BaseURL:           getConfigValue(*providerBaseURL, "PROVIDER_BASE_URL", "https://generativelanguage.googleapis.com"),
			APIKey:            getConfigValue(*providerAPIKey, "PROVIDER_API_KEY", ""),
			Model:             getConfigValue(*providerModel, "PROVIDER_MODEL", "gemini-2.5-flash-image"),
			RequestsPerMinute: getIntConfigValue(*providerRPM, "PROVIDER_RPM", 6),
			Burst:             getIntConfigValue("", "PROVIDER_BURST", 2),
		},

		Media: MediaConfig{
			Endpoint:      getConfigValue(*mediaEndpoint, "MEDIA_ENDPOINT", "localhost:9000"),
			AccessKey:     getConfigValue("", "MEDIA_ACCESS_KEY", "minioadmin"),
			SecretKey:     getConfigValue("", "MEDIA_SECRET_KEY", "minioadmin"),
			Bucket:        getConfigValue(*mediaBucket, "MEDIA_BUCKET", "thumblify"),
			Folder:        getConfigValue(*mediaFolder, "MEDIA_FOLDER", "thumbnails"),
			UseSSL:        getBoolConfigValue("", "MEDIA_USE_SSL", false),
			PublicBaseURL: getConfigValue("", "MEDIA_PUBLIC_URL", ""),
		},

		RateLimit: RateLimitConfig{
			LoginPerSecond: 1,
			LoginBurst:     getIntConfigValue("", "LOGIN_BURST", 5),
		},
	}

	// Parse auth durations.
	accessDurationStr := getConfigValue(*accessTokenDuration, "ACCESS_TOKEN_DURATION", "15m")
	accessDuration, err := time.ParseDuration(accessDurationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid access token duration %q: %w", accessDurationStr, err)
	}
	cfg.Auth.AccessTokenDuration = accessDuration

	refreshDurationStr := getConfigValue(*refreshTokenDuration, "REFRESH_TOKEN_DURATION", "720h")
	refreshDuration, err := time.ParseDuration(refreshDurationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token duration %q: %w", refreshDurationStr, err)
	}
	cfg.Auth.RefreshTokenDuration = refreshDuration

	// Parse server timeouts. Write timeout defaults high because generation
	// requests block on the provider round trip.
	readTimeoutStr := getConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s")
	readTimeoutDuration, err := time.ParseDuration(readTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid read timeout %q: %w", readTimeoutStr, err)
	}
	cfg.Server.ReadTimeout = readTimeoutDuration

	writeTimeoutStr := getConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "120s")
	writeTimeoutDuration, err := time.ParseDuration(writeTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid write timeout %q: %w", writeTimeoutStr, err)
	}
	cfg.Server.WriteTimeout = writeTimeoutDuration

	idleTimeoutStr := getConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s")
	idleTimeoutDuration, err := time.ParseDuration(idleTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid idle timeout %q: %w", idleTimeoutStr, err)
	}
	cfg.Server.IdleTimeout = idleTimeoutDuration

	// Parse provider timeout.
	providerTimeoutStr := getConfigValue(*providerTimeout, "PROVIDER_TIMEOUT", "60s")
	providerTimeoutDuration, err := time.ParseDuration(providerTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid provider timeout %q: %w", providerTimeoutStr, err)
	}
	cfg.Provider.Timeout = providerTimeoutDuration

	// Parse sweep settings.
	sweepIntervalStr := getConfigValue(*sweepInterval, "SWEEP_INTERVAL", "5m")
	sweepIntervalDuration, err := time.ParseDuration(sweepIntervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid sweep interval %q: %w", sweepIntervalStr, err)
	}
	cfg.Sweep.Interval = sweepIntervalDuration

	sweepStaleAfterStr := getConfigValue(*sweepStaleAfter, "SWEEP_STALE_AFTER", "15m")
	sweepStaleAfterDuration, err := time.ParseDuration(sweepStaleAfterStr)
	if err != nil {
		return nil, fmt.Errorf("invalid sweep stale-after %q: %w", sweepStaleAfterStr, err)
	}
	cfg.Sweep.StaleAfter = sweepStaleAfterDuration

	// Expand and validate metadata path.
	if err := cfg.expandMetadataPath(); err != nil {
		return nil, fmt.Errorf("invalid metadata path: %w", err)
	}

	// Expand store path (defaults to {metadata}/store).
	if err := cfg.expandStorePath(); err != nil {
		return nil, fmt.Errorf("invalid store path: %w", err)
	}

	// Expand search path (defaults to {metadata}/search).
	if err := cfg.expandSearchPath(); err != nil {
		return nil, fmt.Errorf("invalid search path: %w", err)
	}

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Metadata.BasePath == "" {
		return errors.New("metadata base path cannot be empty after expansion")
	}

	if c.Provider.APIKey == "" {
		return errors.New("PROVIDER_API_KEY is required")
	}

	if c.Media.Bucket == "" {
		return errors.New("media bucket cannot be empty")
	}

	if c.Sweep.StaleAfter <= 0 {
		return errors.New("sweep stale-after must be positive")
	}

	// Auth durations are validated during LoadConfig parsing.
	// Auth key is set by auth.LoadOrGenerateKey in main.

	return nil
}

// CookiesSecure reports whether session cookies need Secure + SameSite=None
// attributes. Cross-origin production deployments require them; local
// development uses Lax so plain http works.
func (c *Config) CookiesSecure() bool {
	return c.App.Environment == "production"
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandMetadataPath expands ~ and makes the path absolute.
func (c *Config) expandMetadataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "Thumblify", "metadata")

	expanded, err := expandPath(c.Metadata.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Metadata.BasePath = expanded
	return nil
}

// expandStorePath expands ~ and makes the path absolute.
// Defaults to {metadata}/store if not specified.
func (c *Config) expandStorePath() error {
	defaultPath := filepath.Join(c.Metadata.BasePath, "store")

	expanded, err := expandPath(c.Store.Path, defaultPath)
	if err != nil {
		return err
	}
	c.Store.Path = expanded
	return nil
}

// expandSearchPath expands ~ and makes the path absolute.
// Defaults to {metadata}/search if not specified.
func (c *Config) expandSearchPath() error {
	defaultPath := filepath.Join(c.Metadata.BasePath, "search")

	expanded, err := expandPath(c.Search.Path, defaultPath)
	if err != nil {
		return err
	}
	c.Search.Path = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// splitAndTrim splits a comma-separated list and trims whitespace.
func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=value.
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present.
		value = strings.Trim(value, `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
