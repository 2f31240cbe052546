// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package config loads the server configuration from the environment, an
// optional .env file and the command line flags bound through viper.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/stacklok/toolhive-core/env"

	"github.com/stacklok/salla-mcp/pkg/authserver/server/keys"
	"github.com/stacklok/salla-mcp/pkg/authserver/storage"
	"github.com/stacklok/salla-mcp/pkg/authserver/upstream"
	"github.com/stacklok/salla-mcp/pkg/salla"
)

// Environment variables.
const (
	EnvSallaAuthURL           = "SALLA_AUTH_URL"
	EnvSallaTokenURL          = "SALLA_TOKEN_URL"
	EnvSallaBaseURL           = "SALLA_BASE_URL"
	EnvSallaAPIURL            = "SALLA_API_URL"
	EnvSallaClientID          = "SALLA_CLIENT_ID"
	EnvSallaClientSecret      = "SALLA_CLIENT_SECRET"
	EnvCookieEncryptionKey    = "COOKIE_ENCRYPTION_KEY"
	EnvStateSigningKey        = "STATE_SIGNING_KEY"
	EnvHost                   = "MCP_HOST"
	EnvPort                   = "MCP_PORT"
	EnvIssuer                 = "MCP_ISSUER"
	EnvStorageType            = "STORAGE_TYPE"
	EnvRedisAddr              = "REDIS_ADDR"
	EnvRedisPassword          = "REDIS_PASSWORD"
	EnvRedisKeyPrefix         = "REDIS_KEY_PREFIX"
	EnvSigningKeyFile         = "SIGNING_KEY_FILE"
	EnvUpstreamCABundle       = "UPSTREAM_CA_BUNDLE"
	EnvUpstreamAllowPrivateIP = "UPSTREAM_ALLOW_PRIVATE_IPS"
	EnvHMACSecretFiles        = "HMAC_SECRET_FILES"
)

// Viper keys of the serve flags.
const (
	FlagHost      = "host"
	FlagPort      = "port"
	FlagIssuer    = "issuer"
	FlagStorage   = "storage"
	FlagRedisAddr = "redis-addr"
	FlagDebug     = "debug"
)

const (
	// DefaultHost is the listen host.
	DefaultHost = "localhost"

	// DefaultPort is the listen port.
	DefaultPort = "8787"
)

// requiredVars must be set before the server starts.
var requiredVars = []string{
	EnvSallaAuthURL,
	EnvSallaTokenURL,
	EnvSallaBaseURL,
	EnvSallaClientID,
	EnvSallaClientSecret,
	EnvCookieEncryptionKey,
}

// ErrMissingRequired is wrapped by Load when a required variable is unset.
var ErrMissingRequired = errors.New("missing required configuration")

// Config is the server configuration. It is built once by Load and passed by value.
type Config struct {
	// Host and Port are the listen address.
	Host string
	Port string

	// Issuer is the public base URL of this server.
	Issuer string

	Salla SallaConfig

	// CookieEncryptionKey keys the consent cookie.
	CookieEncryptionKey string

	// StateSigningKey, when set, signs the encoded authorization state.
	StateSigningKey string

	Storage StorageConfig

	// SigningKeyFile is the PEM key that signs access tokens. Empty generates one.
	SigningKeyFile string

	// HMACSecretFiles hold the secrets of opaque codes and refresh tokens,
	// current first. Empty derives a secret from CookieEncryptionKey.
	HMACSecretFiles []string

	Upstream UpstreamConfig

	Debug bool
}

// SallaConfig is the Salla OAuth application and API endpoints.
type SallaConfig struct {
	AuthURL      string
	TokenURL     string
	BaseURL      string
	APIURL       string
	ClientID     string
	ClientSecret string
}

// StorageConfig selects the storage backend.
type StorageConfig struct {
	Type           storage.Type
	RedisAddr      string
	RedisPassword  string
	RedisKeyPrefix string
}

// UpstreamConfig tunes the outbound HTTP client.
type UpstreamConfig struct {
	// CABundle is a PEM file of extra trusted roots.
	CABundle string

	// AllowPrivateIPs permits private and loopback upstream addresses.
	AllowPrivateIPs bool
}

// Load builds the configuration from envReader and the flags bound to the
// global viper instance. Flags that were set win over the environment.
func Load(envReader env.Reader) (Config, error) {
	return load(envReader, viper.GetViper())
}

func load(envReader env.Reader, v *viper.Viper) (Config, error) {
	var missing []string
	for _, name := range requiredVars {
		if strings.TrimSpace(envReader.Getenv(name)) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", ErrMissingRequired, strings.Join(missing, ", "))
	}

	allowPrivate, err := parseBool(envReader, EnvUpstreamAllowPrivateIP)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Host: pick(v, FlagHost, envReader.Getenv(EnvHost), DefaultHost),
		Port: pick(v, FlagPort, envReader.Getenv(EnvPort), DefaultPort),
		Salla: SallaConfig{
			AuthURL:      envReader.Getenv(EnvSallaAuthURL),
			TokenURL:     envReader.Getenv(EnvSallaTokenURL),
			BaseURL:      strings.TrimSuffix(envReader.Getenv(EnvSallaBaseURL), "/"),
			APIURL:       withDefault(envReader.Getenv(EnvSallaAPIURL), salla.DefaultBaseURL),
			ClientID:     envReader.Getenv(EnvSallaClientID),
			ClientSecret: envReader.Getenv(EnvSallaClientSecret),
		},
		CookieEncryptionKey: envReader.Getenv(EnvCookieEncryptionKey),
		StateSigningKey:     envReader.Getenv(EnvStateSigningKey),
		Storage: StorageConfig{
			Type:           storage.Type(strings.ToLower(pick(v, FlagStorage, envReader.Getenv(EnvStorageType), string(storage.TypeMemory)))),
			RedisAddr:      pick(v, FlagRedisAddr, envReader.Getenv(EnvRedisAddr), ""),
			RedisPassword:  envReader.Getenv(EnvRedisPassword),
			RedisKeyPrefix: withDefault(envReader.Getenv(EnvRedisKeyPrefix), storage.DefaultRedisKeyPrefix),
		},
		SigningKeyFile:  envReader.Getenv(EnvSigningKeyFile),
		HMACSecretFiles: splitList(envReader.Getenv(EnvHMACSecretFiles)),
		Upstream: UpstreamConfig{
			CABundle:        envReader.Getenv(EnvUpstreamCABundle),
			AllowPrivateIPs: allowPrivate,
		},
		Debug: v.GetBool(FlagDebug),
	}

	issuer := pick(v, FlagIssuer, envReader.Getenv(EnvIssuer), "")
	if issuer == "" {
		issuer = "http://" + net.JoinHostPort(cfg.Host, cfg.Port)
	}
	cfg.Issuer = strings.TrimSuffix(issuer, "/")

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if _, err := strconv.ParseUint(c.Port, 10, 16); err != nil {
		return fmt.Errorf("invalid port %q", c.Port)
	}
	if _, err := validateURLScheme(c.Issuer, true); err != nil {
		return fmt.Errorf("invalid issuer: %w", err)
	}

	for name, raw := range map[string]string{
		EnvSallaAuthURL:  c.Salla.AuthURL,
		EnvSallaTokenURL: c.Salla.TokenURL,
		EnvSallaBaseURL:  c.Salla.BaseURL,
		EnvSallaAPIURL:   c.Salla.APIURL,
	} {
		if _, err := validateURLScheme(raw, false); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	switch c.Storage.Type {
	case storage.TypeMemory:
	case storage.TypeRedis:
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("%s is required when %s is redis", EnvRedisAddr, EnvStorageType)
		}
	default:
		return fmt.Errorf("invalid %s %q (valid types: %s, %s)",
			EnvStorageType, c.Storage.Type, storage.TypeMemory, storage.TypeRedis)
	}

	for name, path := range map[string]string{
		EnvSigningKeyFile:   c.SigningKeyFile,
		EnvUpstreamCABundle: c.Upstream.CABundle,
	} {
		if path == "" {
			continue
		}
		if err := validateFileExists(path); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	for _, path := range c.HMACSecretFiles {
		if err := validateFileExists(path); err != nil {
			return fmt.Errorf("invalid %s: %w", EnvHMACSecretFiles, err)
		}
	}
	return nil
}

// UpstreamProviderConfig is the Salla OAuth client registration.
func (c *Config) UpstreamProviderConfig() *upstream.Config {
	return &upstream.Config{
		AuthorizeURL: c.Salla.AuthURL,
		TokenURL:     c.Salla.TokenURL,
		APIBaseURL:   c.Salla.BaseURL,
		ClientID:     c.Salla.ClientID,
		ClientSecret: c.Salla.ClientSecret,
	}
}

// StorageBackendConfig is the storage backend selection.
func (c *Config) StorageBackendConfig() *storage.Config {
	cfg := &storage.Config{Type: c.Storage.Type}
	if c.Storage.Type == storage.TypeRedis {
		cfg.Redis = storage.RedisConfig{
			Addr:      c.Storage.RedisAddr,
			Password:  c.Storage.RedisPassword,
			KeyPrefix: c.Storage.RedisKeyPrefix,
		}
	}
	return cfg
}

// KeysConfig selects the token signing key source.
func (c *Config) KeysConfig() keys.Config {
	return keys.Config{SigningKeyFile: c.SigningKeyFile}
}

// pick returns the flag value when the flag was set, then the environment
// value, then def.
func pick(v *viper.Viper, flag, envValue, def string) string {
	if v != nil && v.IsSet(flag) {
		if value := v.GetString(flag); value != "" {
			return value
		}
	}
	return withDefault(envValue, def)
}

func withDefault(value, def string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseBool(envReader env.Reader, name string) (bool, error) {
	raw := strings.TrimSpace(envReader.Getenv(name))
	if raw == "" {
		return false, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: must be true or false", name, raw)
	}
	return value, nil
}
