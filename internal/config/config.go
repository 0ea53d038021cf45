// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	Exchange ExchangeConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DatabaseConfig holds persistence configuration.
type DatabaseConfig struct {
	// BasePath is the directory holding the sqlite database, the auth key,
	// and the search index (default: ./data).
	BasePath string
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Name         string
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// PASETO v4 symmetric key for access tokens (32 bytes).
	// Set by auth.LoadOrGenerateKey during bootstrap.
	AccessTokenKey []byte
	// Session durations
	AccessTokenDuration  time.Duration // e.g., 15m
	RefreshTokenDuration time.Duration // e.g., 720h (30 days)
}

// ExchangeConfig holds exchange rate fetching configuration.
type ExchangeConfig struct {
	// FetchEnabled allows disabling remote rate fetching entirely; the static
	// fallback table is used instead (default: true).
	FetchEnabled bool
	// FixerAPIKey is the optional access key for the fixer.io fallback API.
	FixerAPIKey string
}

// flagSpec maps a flag name to its parsed value. Flags are registered once in
// LoadConfig; the indirection keeps the precedence helpers testable.
type flagValues struct {
	env                  string
	logLevel             string
	dataPath             string
	serverName           string
	serverPort           string
	readTimeout          string
	writeTimeout         string
	idleTimeout          string
	accessTokenDuration  string
	refreshTokenDuration string
	envFile              string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	fv := parseFlags(os.Args[1:])
	return loadConfig(fv)
}

func loadConfig(fv flagValues) (*Config, error) {
	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(fv.envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(fv.env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(fv.logLevel, "LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			BasePath: getConfigValue(fv.dataPath, "DATA_PATH", "./data"),
		},
		Server: ServerConfig{
			Name: getConfigValue(fv.serverName, "SERVER_NAME", "RoyaltyDesk Server"),
			Port: getConfigValue(fv.serverPort, "SERVER_PORT", "8080"),
		},
		Auth: AuthConfig{
			AccessTokenKey: nil, // Set by auth.LoadOrGenerateKey during bootstrap
		},
		Exchange: ExchangeConfig{
			FetchEnabled: getBoolConfigValue("", "EXCHANGE_FETCH_ENABLED", true),
			FixerAPIKey:  getConfigValue("", "FIXER_API_KEY", ""),
		},
	}

	// Parse auth durations.
	accessDurationStr := getConfigValue(fv.accessTokenDuration, "ACCESS_TOKEN_DURATION", "15m")
	accessDuration, err := time.ParseDuration(accessDurationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid access token duration %q: %w", accessDurationStr, err)
	}
	cfg.Auth.AccessTokenDuration = accessDuration

	refreshDurationStr := getConfigValue(fv.refreshTokenDuration, "REFRESH_TOKEN_DURATION", "720h")
	refreshDuration, err := time.ParseDuration(refreshDurationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token duration %q: %w", refreshDurationStr, err)
	}
	cfg.Auth.RefreshTokenDuration = refreshDuration

	// Parse server timeouts.
	cfg.Server.ReadTimeout, err = parseDurationValue(fv.readTimeout, "SERVER_READ_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	cfg.Server.WriteTimeout, err = parseDurationValue(fv.writeTimeout, "SERVER_WRITE_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	cfg.Server.IdleTimeout, err = parseDurationValue(fv.idleTimeout, "SERVER_IDLE_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// parseFlags scans args for the flags we understand. Unknown flags are left
// for the flag package consumers in cmd/ (none today).
func parseFlags(args []string) flagValues {
	fv := flagValues{envFile: ".env"}
	lookup := map[string]*string{
		"env":                    &fv.env,
		"log-level":              &fv.logLevel,
		"data-path":              &fv.dataPath,
		"server-name":            &fv.serverName,
		"port":                   &fv.serverPort,
		"read-timeout":           &fv.readTimeout,
		"write-timeout":          &fv.writeTimeout,
		"idle-timeout":           &fv.idleTimeout,
		"access-token-duration":  &fv.accessTokenDuration,
		"refresh-token-duration": &fv.refreshTokenDuration,
		"env-file":               &fv.envFile,
	}

	for i := 0; i < len(args); i++ {
		arg := strings.TrimLeft(args[i], "-")
		name, value, hasValue := strings.Cut(arg, "=")
		dest, ok := lookup[name]
		if !ok {
			continue
		}
		if hasValue {
			*dest = value
			continue
		}
		if i+1 < len(args) {
			i++
			*dest = args[i]
		}
	}

	return fv
}

// expandDataPath resolves the data path to an absolute directory.
func (c *Config) expandDataPath() error {
	abs, err := filepath.Abs(c.Database.BasePath)
	if err != nil {
		return fmt.Errorf("resolve data path %q: %w", c.Database.BasePath, err)
	}
	c.Database.BasePath = abs
	return nil
}

// parseDurationValue resolves a duration setting with flag/env/default precedence.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	raw := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(envKey), raw, err)
	}
	return d, nil
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

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
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
