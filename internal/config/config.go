package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// Config is the fully resolved runtime configuration for both the
// "server" and "ingest" commands (cmd/linkproxy).
type Config struct {
	LogLevel string
	LogJSON  bool
	BindAddr string

	DatabaseDSN string

	RedisURL     string
	RedisChannel string

	DataServerURL     string
	DataServerTimeout time.Duration

	OAuthClientID     string
	OAuthClientSecret string
	JWTSigningKey     string

	SessionCookieName   string
	SessionCookieSecret string

	EnableUnsafeMethods bool
	DisablePersistence  bool
}

// BindFlags registers every setting as a persistent flag on cmd, with
// defaults sourced from the environment (spec.md's ambient deployment
// model is "configure via env, override via flag for local runs").
func BindFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()

	f.String("log-level", envOr("LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	f.Bool("log-json", envOrBool("LOG_JSON", false), "Output logs in JSON format")
	f.String("bind-addr", envOr("BIND_ADDR", "0.0.0.0:8080"), "HTTP listen address")

	f.String("database-dsn", envOr("DATABASE_DSN", "postgres://localhost:5432/linkproxy?sslmode=disable"), "PostgreSQL connection string")

	f.String("redis-url", envOr("REDIS_URL", "redis://localhost:6379/0"), "Redis connection URL")
	f.String("redis-channel", envOr("REDIS_CHANNEL", "cache"), "Redis Pub/Sub channel to subscribe to")

	f.String("data-server-url", envOr("DATA_SERVER_URL", ""), "Base URL of the backend data server")
	f.Duration("data-server-timeout", envOrDuration("DATA_SERVER_TIMEOUT", 20*time.Second), "Backend authorization call timeout")

	f.String("oauth-client-id", envOr("OAUTH_CLIENT_ID", ""), "OAuth2 client id for session refresh")
	f.String("oauth-client-secret", envOr("OAUTH_CLIENT_SECRET", ""), "OAuth2 client secret for session refresh")
	f.String("jwt-signing-key", envOr("JWT_SIGNING_KEY", ""), "HMAC key used to verify session JWTs")

	f.String("session-cookie-name", envOr("SESSION_COOKIE_NAME", "ontola_session"), "Session cookie name")
	f.String("session-cookie-secret", envOr("SESSION_COOKIE_SECRET", ""), "HMAC secret for session cookie signatures")

	f.Bool("enable-unsafe-methods", envOrBool("ENABLE_UNSAFE_METHODS", false), "Allow POST /update outside of pub/sub ingestion")
	f.Bool("disable-persistence", envOrBool("DISABLE_PERSISTENCE", false), "Parsed into the config but read by no component; the bulk orchestrator always writes non-private backend results through to the object store")
}

// FromCommand resolves a Config from cmd's bound flags.
func FromCommand(cmd *cobra.Command) (*Config, error) {
	f := cmd.Flags()
	var cfg Config
	var err error

	cfg.LogLevel, err = f.GetString("log-level")
	if err != nil {
		return nil, err
	}
	cfg.LogJSON, err = f.GetBool("log-json")
	if err != nil {
		return nil, err
	}
	cfg.BindAddr, err = f.GetString("bind-addr")
	if err != nil {
		return nil, err
	}
	cfg.DatabaseDSN, err = f.GetString("database-dsn")
	if err != nil {
		return nil, err
	}
	cfg.RedisURL, err = f.GetString("redis-url")
	if err != nil {
		return nil, err
	}
	cfg.RedisChannel, err = f.GetString("redis-channel")
	if err != nil {
		return nil, err
	}
	cfg.DataServerURL, err = f.GetString("data-server-url")
	if err != nil {
		return nil, err
	}
	cfg.DataServerTimeout, err = f.GetDuration("data-server-timeout")
	if err != nil {
		return nil, err
	}
	cfg.OAuthClientID, err = f.GetString("oauth-client-id")
	if err != nil {
		return nil, err
	}
	cfg.OAuthClientSecret, err = f.GetString("oauth-client-secret")
	if err != nil {
		return nil, err
	}
	cfg.JWTSigningKey, err = f.GetString("jwt-signing-key")
	if err != nil {
		return nil, err
	}
	cfg.SessionCookieName, err = f.GetString("session-cookie-name")
	if err != nil {
		return nil, err
	}
	cfg.SessionCookieSecret, err = f.GetString("session-cookie-secret")
	if err != nil {
		return nil, err
	}
	cfg.EnableUnsafeMethods, err = f.GetBool("enable-unsafe-methods")
	if err != nil {
		return nil, err
	}
	cfg.DisablePersistence, err = f.GetBool("disable-persistence")
	if err != nil {
		return nil, err
	}

	if cfg.DataServerURL == "" {
		return nil, fmt.Errorf("data-server-url is required")
	}
	return &cfg, nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envOrBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return v == "1" || v == "true" || v == "TRUE"
}

func envOrDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
