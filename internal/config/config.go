// Package config handles configuration for the client and the server:
// defaults, an optional YAML file, LOSTLIBRARY_* environment variables and,
// applied by the binaries last, command-line flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// EnvPrefix is the prefix of all environment variables read by Load*
const EnvPrefix = "LOSTLIBRARY_"

// Log holds logger settings shared by both binaries
type Log struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text или json
}

// Client holds settings of the lostlibrary CLI
type Client struct {
	Log            Log           `yaml:"log"`
	ServerURL      string        `yaml:"server_url"`
	DBPath         string        `yaml:"db_path"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// RateLimit ограничивает число запросов с одного IP за окно
type RateLimit struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// Server holds settings of the backend service
type Server struct {
	Log             Log           `yaml:"log"`
	Addr            string        `yaml:"addr"`
	DBPath          string        `yaml:"db_path"`
	JWTSecret       string        `yaml:"jwt_secret"`
	RateLimit       RateLimit     `yaml:"rate_limit"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DefaultClient returns development defaults for the client
func DefaultClient() Client {
	return Client{
		ServerURL:      "http://localhost:8080",
		DBPath:         "lostlibrary-client.db",
		RequestTimeout: 15 * time.Second,
		Log:            Log{Level: "warn", Format: "text"},
	}
}

// DefaultServer returns development defaults for the server.
// The JWT secret is empty on purpose: Validate rejects it.
func DefaultServer() Server {
	return Server{
		Addr:            ":8080",
		DBPath:          "lostlibrary.db",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 30 * 24 * time.Hour,
		ShutdownTimeout: 10 * time.Second,
		RateLimit:       RateLimit{Requests: 100, Window: time.Minute},
		Log:             Log{Level: "info", Format: "json"},
	}
}

// Validate проверяет настройки клиента
func (c Client) Validate() error {
	var errs []error

	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("server_url %q must be an http(s) URL", c.ServerURL))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path is required"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request_timeout must be positive"))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Validate проверяет настройки сервера
func (c Server) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path is required"))
	}
	if len(c.JWTSecret) < 32 {
		errs = append(errs, errors.New("jwt_secret must be at least 32 bytes"))
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		errs = append(errs, errors.New("token TTLs must be positive"))
	}
	if c.RefreshTokenTTL < c.AccessTokenTTL {
		errs = append(errs, errors.New("refresh_token_ttl must not be shorter than access_token_ttl"))
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rate_limit requests and window must be positive"))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Validate проверяет настройки логгера
func (l Log) Validate() error {
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level %q is not one of debug, info, warn, error", l.Level)
	}
	switch l.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log format %q is not one of text, json", l.Format)
	}
	return nil
}
