package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LookupFunc reads an environment variable; os.LookupEnv in production
type LookupFunc func(key string) (string, bool)

// LoadClient builds the client configuration: defaults, then the YAML file at
// path (skipped when path is empty), then environment variables.
func LoadClient(path string, lookup LookupFunc) (Client, error) {
	cfg := DefaultClient()

	if err := readYAML(path, &cfg); err != nil {
		return Client{}, err
	}

	env := envReader{lookup: lookup}
	env.str("SERVER_URL", &cfg.ServerURL)
	env.str("DB_PATH", &cfg.DBPath)
	env.duration("REQUEST_TIMEOUT", &cfg.RequestTimeout)
	env.str("LOG_LEVEL", &cfg.Log.Level)
	env.str("LOG_FORMAT", &cfg.Log.Format)

	if err := env.err(); err != nil {
		return Client{}, err
	}
	return cfg, nil
}

// LoadServer builds the server configuration the same way as LoadClient
func LoadServer(path string, lookup LookupFunc) (Server, error) {
	cfg := DefaultServer()

	if err := readYAML(path, &cfg); err != nil {
		return Server{}, err
	}

	env := envReader{lookup: lookup}
	env.str("ADDR", &cfg.Addr)
	env.str("DB_PATH", &cfg.DBPath)
	env.str("JWT_SECRET", &cfg.JWTSecret)
	env.duration("ACCESS_TOKEN_TTL", &cfg.AccessTokenTTL)
	env.duration("REFRESH_TOKEN_TTL", &cfg.RefreshTokenTTL)
	env.duration("SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout)
	env.integer("RATE_LIMIT_REQUESTS", &cfg.RateLimit.Requests)
	env.duration("RATE_LIMIT_WINDOW", &cfg.RateLimit.Window)
	env.str("LOG_LEVEL", &cfg.Log.Level)
	env.str("LOG_FORMAT", &cfg.Log.Format)

	if err := env.err(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// readYAML overlays the file at path onto out; fields missing in the file keep their value
func readYAML(path string, out any) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file %s not found: %w", path, err)
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// envReader collects parse errors so that all bad variables are reported at once
type envReader struct {
	lookup LookupFunc
	errs   []error
}

func (e *envReader) get(name string) (string, bool) {
	if e.lookup == nil {
		return "", false
	}
	v, ok := e.lookup(EnvPrefix + name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (e *envReader) str(name string, dst *string) {
	if v, ok := e.get(name); ok {
		*dst = v
	}
}

func (e *envReader) duration(name string, dst *time.Duration) {
	v, ok := e.get(name)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
		return
	}
	*dst = d
}

func (e *envReader) integer(name string, dst *int) {
	v, ok := e.get(name)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
		return
	}
	*dst = n
}

func (e *envReader) err() error {
	return errors.Join(e.errs...)
}
