// Package config loads the entity-schema command configuration.
//
// The configuration is a YAML file (entity-schema.yaml by default). Relative
// paths in it are resolved against the directory of the file, environment
// variables in it are expanded, and ENTITY_SCHEMA_* variables override
// selected values.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"entity-schema/descriptor"
	"entity-schema/primitive"
)

// DefaultFile is the configuration file looked up when none is given.
const DefaultFile = "entity-schema.yaml"

// Environment overrides.
const (
	EnvLogLevel  = "ENTITY_SCHEMA_LOG_LEVEL"
	EnvLogFormat = "ENTITY_SCHEMA_LOG_FORMAT"
	EnvWorkers   = "ENTITY_SCHEMA_WORKERS"
)

type Config struct {
	Packages     []string      `yaml:"packages"`
	Dir          string        `yaml:"dir"`           // package patterns are resolved here
	SchemaFile   string        `yaml:"schema_file"`   // pinned table schemas
	MetadataFile string        `yaml:"metadata_file"` // metadata outside struct tags
	Tags         TagsConfig    `yaml:"tags"`
	Naming       string        `yaml:"naming"` // "field" or "snake"
	DecimalTypes []string      `yaml:"decimal_types"`
	RawTypes     RawTypeConfig `yaml:"raw_types"`
	Workers      int           `yaml:"workers"`
	Logging      LoggingConfig `yaml:"logging"`
	Output       OutputConfig  `yaml:"output"`
	Watch        WatchConfig   `yaml:"watch"`
}

type TagsConfig struct {
	Key               string   `yaml:"key"`
	EntityMarkers     []string `yaml:"entity_markers"`
	EmbeddableMarkers []string `yaml:"embeddable_markers"`
}

type RawTypeConfig struct {
	// Categories of representation changes allowed between a Go scalar and
	// the primitive of a raw type definition, e.g. "safe_number".
	Categories []string `yaml:"categories"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

type OutputConfig struct {
	Dir     string `yaml:"dir"`
	Package string `yaml:"package"`
	File    string `yaml:"file"`
}

type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Load reads, expands, defaults and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	cfg.resolvePaths(filepath.Dir(path))

	return cfg, nil
}

// LoadWithFallback loads path when it exists and returns the defaults
// otherwise. An explicitly requested path must exist.
func LoadWithFallback(path string, explicit bool) (*Config, error) {
	if _, err := os.Stat(path); err == nil || explicit {
		return Load(path)
	}

	return Default()
}

// Default returns the configuration used without a file.
func Default() (*Config, error) {
	return Parse(nil)
}

// Parse parses YAML data into a Config.
func Parse(data []byte) (*Config, error) {
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}
}

func setDefaults(cfg *Config) {
	if len(cfg.Packages) == 0 {
		cfg.Packages = []string{"./..."}
	}
	if cfg.Tags.Key == "" {
		cfg.Tags.Key = "table"
	}
	if cfg.Naming == "" {
		cfg.Naming = "field"
	}
	if len(cfg.RawTypes.Categories) == 0 {
		cfg.RawTypes.Categories = []string{"default"}
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "schema"
	}
	if cfg.Output.Package == "" {
		cfg.Output.Package = filepath.Base(cfg.Output.Dir)
	}
	if cfg.Output.File == "" {
		cfg.Output.File = "tables_gen.go"
	}
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = 200 * time.Millisecond
	}
}

func validate(cfg *Config) error {
	validNaming := map[string]bool{"field": true, "snake": true}
	if !validNaming[cfg.Naming] {
		return fmt.Errorf("naming must be 'field' or 'snake', got %q", cfg.Naming)
	}

	if _, err := zerolog.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}

	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}

	if _, err := cfg.Categories(); err != nil {
		return err
	}

	for i, d := range cfg.DecimalTypes {
		if id := descriptor.ParseTypeID(d); id.PkgPath == "" || id.Name == "" {
			return fmt.Errorf("decimal_types[%d]: %q is not of the form import/path.Name", i, d)
		}
	}

	return nil
}

// resolvePaths makes relative paths relative to base.
func (cfg *Config) resolvePaths(base string) {
	for _, p := range []*string{&cfg.Dir, &cfg.SchemaFile, &cfg.MetadataFile, &cfg.Output.Dir} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}

	if cfg.Dir == "" {
		cfg.Dir = base
	}
}

// Categories returns the union of the configured raw type categories.
func (cfg *Config) Categories() (primitive.CategoryEnum, error) {
	var out primitive.CategoryEnum

	var errs []error
	for _, name := range cfg.RawTypes.Categories {
		c, ok := primitive.ParseCategory(name)
		if !ok {
			errs = append(errs, fmt.Errorf("raw_types.categories: unknown category %q", name))
			continue
		}

		out |= c
	}

	return out, errors.Join(errs...)
}

// DecimalTypeIDs returns the built-in decimal types plus the configured ones.
func (cfg *Config) DecimalTypeIDs() []descriptor.TypeID {
	ids := append([]descriptor.TypeID(nil), descriptor.DefaultDecimalTypes...)
	for _, d := range cfg.DecimalTypes {
		ids = append(ids, descriptor.ParseTypeID(d))
	}

	return ids
}

// MarkerIDs parses marker references of the form import/path.Name.
func MarkerIDs(refs []string) []descriptor.TypeID {
	ids := make([]descriptor.TypeID, 0, len(refs))
	for _, r := range refs {
		ids = append(ids, descriptor.ParseTypeID(r))
	}

	return ids
}

// NewLogger builds the logger described by the logging section.
func (l LoggingConfig) NewLogger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(l.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	if l.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
