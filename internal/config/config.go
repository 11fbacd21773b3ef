// Package config loads waterwheel CLI settings.
//
// Settings come from, in increasing precedence: built-in defaults, the TOML
// file at [Path] (or --config), WATERWHEEL_* environment variables, and
// command-line flags applied by the caller.
//
//	base = "https://example.com"
//
//	[credentials]
//	user = "admin"
//	pass = "secret"
//
//	[http]
//	timeout = "10s"
//	user_agent = "waterwheel"
//	retries = 0
//
//	[cache]
//	backend = "file"   # none, file, redis, mongo
//	ttl = "5m"
//	dir = ""           # defaults to $XDG_CACHE_HOME/waterwheel
//	redis_addr = "localhost:6379"
//	mongo_uri = "mongodb://localhost:27017"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/matzehuels/waterwheel/pkg/errors"
	"github.com/matzehuels/waterwheel/pkg/transport"
)

const appName = "waterwheel"

// Cache backends.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Environment variables read by [Config.ApplyEnv].
const (
	EnvBase = "WATERWHEEL_BASE"
	EnvUser = "WATERWHEEL_USER"
	EnvPass = "WATERWHEEL_PASS"
)

// Config is the complete CLI configuration.
type Config struct {
	Base        string                `toml:"base"`
	Credentials transport.Credentials `toml:"credentials"`
	HTTP        HTTP                  `toml:"http"`
	Cache       Cache                 `toml:"cache"`
}

// HTTP configures the transport.
type HTTP struct {
	Timeout   Duration `toml:"timeout"`
	UserAgent string   `toml:"user_agent"`
	Retries   uint64   `toml:"retries"`
}

// Cache configures GET response caching.
type Cache struct {
	Backend   string   `toml:"backend"`
	TTL       Duration `toml:"ttl"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	MongoURI  string   `toml:"mongo_uri"`
}

// Duration is a time.Duration written as a string ("10s") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		HTTP: HTTP{
			Timeout:   Duration{10 * time.Second},
			UserAgent: appName,
		},
		Cache: Cache{
			Backend: BackendNone,
			TTL:     Duration{5 * time.Minute},
		},
	}
}

// Path returns the default config file location,
// $XDG_CONFIG_HOME/waterwheel/config.toml or ~/.config/waterwheel/config.toml.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// CacheDir returns the default file cache directory,
// $XDG_CACHE_HOME/waterwheel or ~/.cache/waterwheel.
func CacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Load reads the file at path over the defaults. When path is empty the
// default location is used and a missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	return cfg, nil
}

// ApplyEnv overrides base and credentials from the environment. getenv is
// usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvBase); v != "" {
		c.Base = v
	}
	if v := getenv(EnvUser); v != "" {
		c.Credentials.User = v
	}
	if v := getenv(EnvPass); v != "" {
		c.Credentials.Pass = v
	}
}

// Creds returns the configured credentials, or nil when no user is set.
func (c Config) Creds() *transport.Credentials {
	if c.Credentials.User == "" {
		return nil
	}
	return c.Credentials.Clone()
}

// Validate checks the configuration. A missing base is not an error here;
// commands that talk to a server check it themselves.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Base, is.URL),
		validation.Field(&c.HTTP),
		validation.Field(&c.Cache),
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid configuration")
	}
	return nil
}

// Validate implements validation.Validatable.
func (h HTTP) Validate() error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.Timeout, validation.By(nonNegative)),
	)
}

// Validate implements validation.Validatable.
func (c Cache) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.In(BackendNone, BackendFile, BackendRedis, BackendMongo)),
		validation.Field(&c.TTL, validation.By(nonNegative)),
		validation.Field(&c.RedisAddr, validation.When(c.Backend == BackendRedis, validation.Required)),
		validation.Field(&c.MongoURI, validation.When(c.Backend == BackendMongo, validation.Required)),
	)
}

func nonNegative(v any) error {
	d, _ := v.(Duration)
	if d.Duration < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}
