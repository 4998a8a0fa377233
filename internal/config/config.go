// Package config loads the application configuration: built-in defaults, an
// optional YAML file, then DYNFORM_* environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dynform/pkg/persist"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DYNFORM_"

// Persistence backends.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Schema source kinds.
const (
	SchemaKindDocument   = "document"
	SchemaKindOpenAPI    = "openapi"
	SchemaKindJSONSchema = "jsonschema"
)

// Config holds the application configuration.
type Config struct {
	Addr     string        `yaml:"addr"`
	BasePath string        `yaml:"base_path"`
	Title    string        `yaml:"title"`
	Subtitle string        `yaml:"subtitle"`
	Log      LogConfig     `yaml:"log"`
	Schema   SchemaConfig  `yaml:"schema"`
	Persist  PersistConfig `yaml:"persist"`
	Submit   SubmitConfig  `yaml:"submit"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SchemaConfig describes where the form schema comes from. An empty Source
// means the built-in fallback schema is used.
type SchemaConfig struct {
	Source      string            `yaml:"source"`
	Kind        string            `yaml:"kind"`
	FieldsPath  string            `yaml:"fields_path"`
	OperationID string            `yaml:"operation_id"`
	Preset      string            `yaml:"preset"`
	Delay       time.Duration     `yaml:"delay"`
	Timeout     time.Duration     `yaml:"timeout"`
	Headers     map[string]string `yaml:"headers"`
}

// PersistConfig selects where entered values survive restarts.
type PersistConfig struct {
	Backend string      `yaml:"backend"`
	Key     string      `yaml:"key"`
	Dir     string      `yaml:"dir"`
	DSN     string      `yaml:"dsn"`
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

// SubmitConfig configures where confirmed submissions go. An empty Endpoint
// logs submissions instead.
type SubmitConfig struct {
	Endpoint string            `yaml:"endpoint"`
	Timeout  time.Duration     `yaml:"timeout"`
	Headers  map[string]string `yaml:"headers"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:     ":8080",
		Title:    "Dynamic Form Assignment",
		Subtitle: "Rendered from remote JSON schema with custom validation.",
		Log:      LogConfig{Level: "info", Format: "text"},
		Schema: SchemaConfig{
			Kind:    SchemaKindDocument,
			Timeout: 10 * time.Second,
		},
		Persist: PersistConfig{
			Backend: BackendMemory,
			Key:     persist.DefaultKey,
			Dir:     ".dynform",
			DSN:     "dynform.db",
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: "dynform:"},
		},
		Submit: SubmitConfig{Timeout: 10 * time.Second},
	}
}

// Load reads path (when non-empty) over the defaults and applies environment
// overrides from the process environment.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an injectable environment lookup.
func LoadWithEnv(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := decode(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	if lookup != nil {
		if err := applyEnv(&cfg, lookup); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(raw []byte, cfg *Config) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	var errs []error
	dur := func(name string, dst *time.Duration) {
		if v, ok := lookup(EnvPrefix + name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("config: %s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = d
		}
	}

	str("ADDR", &cfg.Addr)
	str("BASE_PATH", &cfg.BasePath)
	str("TITLE", &cfg.Title)
	str("SUBTITLE", &cfg.Subtitle)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	str("SCHEMA_SOURCE", &cfg.Schema.Source)
	str("SCHEMA_KIND", &cfg.Schema.Kind)
	str("SCHEMA_FIELDS_PATH", &cfg.Schema.FieldsPath)
	str("SCHEMA_OPERATION", &cfg.Schema.OperationID)
	str("SCHEMA_PRESET", &cfg.Schema.Preset)
	dur("SCHEMA_DELAY", &cfg.Schema.Delay)
	dur("SCHEMA_TIMEOUT", &cfg.Schema.Timeout)
	str("PERSIST_BACKEND", &cfg.Persist.Backend)
	str("PERSIST_KEY", &cfg.Persist.Key)
	str("PERSIST_DIR", &cfg.Persist.Dir)
	str("PERSIST_DSN", &cfg.Persist.DSN)
	str("REDIS_ADDR", &cfg.Persist.Redis.Addr)
	str("REDIS_PASSWORD", &cfg.Persist.Redis.Password)
	str("REDIS_PREFIX", &cfg.Persist.Redis.Prefix)
	dur("REDIS_TTL", &cfg.Persist.Redis.TTL)
	if v, ok := lookup(EnvPrefix + "REDIS_DB"); ok {
		db, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("config: %sREDIS_DB: %w", EnvPrefix, err))
		} else {
			cfg.Persist.Redis.DB = db
		}
	}
	str("SUBMIT_ENDPOINT", &cfg.Submit.Endpoint)
	dur("SUBMIT_TIMEOUT", &cfg.Submit.Timeout)

	// DEBUG=1 overrides the configured level.
	if v, ok := lookup("DEBUG"); ok && v == "1" {
		cfg.Log.Level = "debug"
	}
	return errors.Join(errs...)
}

// Validate rejects unknown enum values and negative durations.
func (c Config) Validate() error {
	switch c.Persist.Backend {
	case BackendNone, BackendMemory, BackendFile, BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("config: unknown persist backend %q", c.Persist.Backend)
	}
	switch c.Schema.Kind {
	case SchemaKindDocument, SchemaKindOpenAPI, SchemaKindJSONSchema:
	default:
		return fmt.Errorf("config: unknown schema kind %q", c.Schema.Kind)
	}
	if c.Schema.Delay < 0 || c.Schema.Timeout < 0 || c.Submit.Timeout < 0 {
		return errors.New("config: durations must not be negative")
	}
	if c.BasePath != "" && (!strings.HasPrefix(c.BasePath, "/") || strings.HasSuffix(c.BasePath, "/")) {
		return fmt.Errorf("config: base_path %q must start with / and not end with /", c.BasePath)
	}
	return nil
}
