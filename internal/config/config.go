// Package config loads weft settings from a YAML file, .env files and
// WEFT_* environment variables, in that order of precedence (lowest first).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/pkg/client"
	"github.com/aretw0/weft/pkg/dispatch"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/relay"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no config file is named. It may be absent.
const DefaultPath = "weft.yaml"

// Push transports.
const (
	TransportSSE   = "sse"
	TransportRedis = "redis"
)

type Config struct {
	BaseURL   string           `yaml:"base_url"`
	Timeout   time.Duration    `yaml:"timeout"`
	Endpoints client.Endpoints `yaml:"endpoints"`
	Push      PushConfig       `yaml:"push"`
	Relay     RelayConfig      `yaml:"relay"`
	Admin     AdminConfig      `yaml:"admin"`
	Log       LogConfig        `yaml:"log"`
}

type PushConfig struct {
	Transport string `yaml:"transport"`
	URL       string `yaml:"url"`
	RedisAddr string `yaml:"redis_addr"`
	Channel   string `yaml:"channel"`
	Event     string `yaml:"event"`
}

type RelayConfig struct {
	Policy string `yaml:"policy"`
}

// AdminConfig controls the admin HTTP server. An empty Addr disables it.
type AdminConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		BaseURL:   "http://127.0.0.1:5000",
		Timeout:   dispatch.DefaultTimeout,
		Endpoints: client.DefaultEndpoints(),
		Push: PushConfig{
			Transport: TransportSSE,
			RedisAddr: "localhost:6379",
			Channel:   "weft:events",
			Event:     domain.EventCompileLine,
		},
		Relay: RelayConfig{Policy: string(relay.PolicyAll)},
		Log:   LogConfig{Level: "info", Format: string(logging.FormatText)},
	}
}

// LoadDotEnv loads the given .env files into the process environment.
// Missing files are skipped; variables already set are kept.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads path (DefaultPath when empty) and applies WEFT_* overrides from
// the process environment. Only an explicitly named file must exist.
func Load(path string) (*Config, error) {
	return LoadWith(path, os.LookupEnv)
}

// LoadWith is Load with an injectable environment lookup.
func LoadWith(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"WEFT_BASE_URL":       &c.BaseURL,
		"WEFT_PUSH_TRANSPORT": &c.Push.Transport,
		"WEFT_PUSH_URL":       &c.Push.URL,
		"WEFT_PUSH_EVENT":     &c.Push.Event,
		"WEFT_REDIS_ADDR":     &c.Push.RedisAddr,
		"WEFT_REDIS_CHANNEL":  &c.Push.Channel,
		"WEFT_RELAY_POLICY":   &c.Relay.Policy,
		"WEFT_ADMIN_ADDR":     &c.Admin.Addr,
		"WEFT_LOG_LEVEL":      &c.Log.Level,
		"WEFT_LOG_FORMAT":     &c.Log.Format,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	if v, ok := lookup("WEFT_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("WEFT_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	return nil
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	var errs []error
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative"))
	}
	switch strings.ToLower(c.Push.Transport) {
	case TransportSSE, TransportRedis:
		c.Push.Transport = strings.ToLower(c.Push.Transport)
	default:
		errs = append(errs, fmt.Errorf("unknown push transport %q (sse, redis)", c.Push.Transport))
	}
	if _, err := relay.ParsePolicy(c.Relay.Policy); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch logging.Format(c.Log.Format) {
	case "", logging.FormatText, logging.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q (text, json)", c.Log.Format))
	}
	return errors.Join(errs...)
}

// PushURL is the SSE stream to follow. It defaults to BaseURL + "/events".
func (c *Config) PushURL() string {
	if c.Push.URL != "" {
		return c.Push.URL
	}
	return strings.TrimRight(c.BaseURL, "/") + "/events"
}
