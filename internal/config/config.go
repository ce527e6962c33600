// Package config assembles run settings from defaults, an optional YAML file,
// the environment (including a .env file) and command-line flags, in that
// order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/AnyUserName/printcurate-cli/internal/inspect"
	"github.com/AnyUserName/printcurate-cli/internal/phash"
	"github.com/AnyUserName/printcurate-cli/internal/policy"
	"github.com/AnyUserName/printcurate-cli/internal/printformat"
	"github.com/AnyUserName/printcurate-cli/internal/profile"
	"github.com/AnyUserName/printcurate-cli/internal/render"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "PRINTCURATE_"

const defaultEnvFile = ".env"

// Config is the full set of tunables for a run.
type Config struct {
	Output           string               `yaml:"output"`
	// Profile picks the formats and quality unless Formats or Quality are
	// set explicitly.
	Profile          string               `yaml:"profile"`
	Formats          []printformat.Format `yaml:"formats"`
	DedupThreshold   float64              `yaml:"dedupThreshold"`
	MaxImagesPerRole int                  `yaml:"maxImagesPerRole"` // 0 means unlimited
	Tolerance        float64              `yaml:"tolerance"`
	WideTolerance    float64              `yaml:"wideTolerance"`
	Workers          int                  `yaml:"workers"`
	MinFileSize      int64                `yaml:"minFileSize"`
	MaxPixels        int64                `yaml:"maxPixels"`
	Quality          int                  `yaml:"quality"` // 0 means the profile's
	CheckMetadata    bool                 `yaml:"checkMetadata"`
	Ledger           string               `yaml:"ledger"` // sqlite path, empty disables
	LogLevel         string               `yaml:"logLevel"`
	// Denylists extend the built-in policy lists.
	Denylists        policy.Lists         `yaml:"denylists"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Output:           "./output",
		Profile:          profile.Default,
		DedupThreshold:   phash.DefaultThreshold,
		MaxImagesPerRole: 0,
		Tolerance:        printformat.DefaultTolerance,
		WideTolerance:    printformat.DefaultWideTolerance,
		Workers:          runtime.NumCPU(),
		MinFileSize:      inspect.DefaultMinFileSize,
		MaxPixels:        inspect.DefaultMaxPixels,
		CheckMetadata:    true,
		LogLevel:         "info",
	}
}

type loaderOptions struct {
	file         string
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// Option customizes Load.
type Option func(*loaderOptions)

// WithFile reads a YAML config file. A missing file is an error.
func WithFile(path string) Option {
	return func(o *loaderOptions) { o.file = path }
}

// WithEnvFile overrides the .env path. Empty disables .env loading.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) { o.envFile = path }
}

// WithEnvMap injects values that take precedence over the process
// environment.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) { o.envMap = values }
}

// WithoutSystemEnv ignores the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) { o.useSystemEnv = false }
}

// Load builds a validated Config.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{envFile: defaultEnvFile, useSystemEnv: true}
	for _, opt := range opts {
		opt(&options)
	}

	cfg := Default()
	if options.file != "" {
		if err := cfg.mergeFile(options.file); err != nil {
			return Config{}, err
		}
	}

	dotEnv, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}
	lookup := func(key string) (string, bool) {
		if v, ok := options.envMap[key]; ok {
			return v, true
		}
		if options.useSystemEnv {
			if v, ok := os.LookupEnv(key); ok {
				return v, true
			}
		}
		v, ok := dotEnv[key]
		return v, ok
	}
	cfg.applyEnv(lookup)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	// Decode onto the current values so absent keys keep them.
	base := *c
	if err := yaml.Unmarshal(data, &base); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	*c = base
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	c.Output = stringWithDefault(lookup, "OUTPUT", c.Output)
	c.Profile = stringWithDefault(lookup, "PROFILE", c.Profile)
	c.DedupThreshold = floatWithDefault(lookup, "DEDUP_THRESHOLD", c.DedupThreshold)
	c.MaxImagesPerRole = intWithDefault(lookup, "MAX_IMAGES_PER_ROLE", c.MaxImagesPerRole)
	c.Tolerance = floatWithDefault(lookup, "TOLERANCE", c.Tolerance)
	c.WideTolerance = floatWithDefault(lookup, "WIDE_TOLERANCE", c.WideTolerance)
	c.Workers = intWithDefault(lookup, "WORKERS", c.Workers)
	c.MinFileSize = int64(intWithDefault(lookup, "MIN_FILE_SIZE", int(c.MinFileSize)))
	c.MaxPixels = int64(intWithDefault(lookup, "MAX_PIXELS", int(c.MaxPixels)))
	c.Quality = intWithDefault(lookup, "QUALITY", c.Quality)
	c.CheckMetadata = boolWithDefault(lookup, "CHECK_METADATA", c.CheckMetadata)
	c.Ledger = stringWithDefault(lookup, "LEDGER", c.Ledger)
	c.LogLevel = stringWithDefault(lookup, "LOG_LEVEL", c.LogLevel)
}

// ValidationError lists every invalid field.
type ValidationError struct {
	fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the invalid field list.
func (e *ValidationError) Fields() []string {
	return append([]string(nil), e.fields...)
}

// Validate rejects values the pipeline cannot run with.
func (c Config) Validate() error {
	var bad []string
	if strings.TrimSpace(c.Output) == "" {
		bad = append(bad, "Output")
	}
	if _, ok := profile.Get(c.Profile); !ok && (len(c.Formats) == 0 || c.Quality == 0) {
		bad = append(bad, "Profile")
	}
	seen := map[string]bool{}
	for i, f := range c.Formats {
		if f.Validate() != nil || seen[f.Name] {
			bad = append(bad, fmt.Sprintf("Formats[%d]", i))
		}
		seen[f.Name] = true
	}
	if c.DedupThreshold <= 0 || c.DedupThreshold > 1 {
		bad = append(bad, "DedupThreshold")
	}
	if c.MaxImagesPerRole < 0 {
		bad = append(bad, "MaxImagesPerRole")
	}
	if c.Tolerance <= 0 || c.Tolerance >= 1 {
		bad = append(bad, "Tolerance")
	}
	if c.WideTolerance < c.Tolerance || c.WideTolerance >= 1 {
		bad = append(bad, "WideTolerance")
	}
	if c.Workers < 1 {
		bad = append(bad, "Workers")
	}
	if c.MinFileSize < 0 {
		bad = append(bad, "MinFileSize")
	}
	if c.MaxPixels < 1 {
		bad = append(bad, "MaxPixels")
	}
	if c.Quality < 0 || c.Quality > 100 {
		bad = append(bad, "Quality")
	}
	if len(bad) > 0 {
		return &ValidationError{fields: bad}
	}
	return nil
}

// PrintFormats returns the explicit formats, or the profile's.
func (c Config) PrintFormats() []printformat.Format {
	if len(c.Formats) > 0 {
		return c.Formats
	}
	if p, ok := profile.Get(c.Profile); ok {
		return p.Formats
	}
	return printformat.Defaults()
}

// JPEGQuality returns the explicit quality, or the profile's.
func (c Config) JPEGQuality() int {
	if c.Quality > 0 {
		return c.Quality
	}
	if p, ok := profile.Get(c.Profile); ok {
		return p.Quality
	}
	return render.DefaultQuality
}

// Selector builds the format selector described by c.
func (c Config) Selector() *printformat.Selector {
	return printformat.NewSelector(c.PrintFormats(), c.Tolerance, c.WideTolerance)
}

// Lists returns the effective policy lists.
func (c Config) Lists() policy.Lists {
	return policy.DefaultLists().Merge(c.Denylists)
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(EnvPrefix + key); ok && value != "" {
		return value
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(EnvPrefix + key); ok && value != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

func floatWithDefault(lookup func(string) (string, bool), key string, fallback float64) float64 {
	if value, ok := lookup(EnvPrefix + key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(EnvPrefix + key); ok && value != "" {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
