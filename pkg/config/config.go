// Package config loads and validates INFIDEX's engine configuration from
// YAML files with environment-variable overrides, the way the teacher's
// pkg/config loads its per-service configuration.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/infidex/infidex/internal/coverage"
	"github.com/infidex/infidex/internal/engine"
	"github.com/infidex/infidex/internal/pipeline"
	"github.com/infidex/infidex/internal/tokenizer"
	"github.com/infidex/infidex/internal/vector"
	"github.com/infidex/infidex/internal/wordmatch"
)

// Config is the top-level application configuration: the engine's tunables
// plus the ambient logging and metrics settings that sit alongside it.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// EngineConfig mirrors the knobs spec §6 names: n-gram sizes and padding,
// field weights, the stop-term limit, coverage depth, and the word-matcher
// size windows.
type EngineConfig struct {
	IndexSizes     []int             `yaml:"indexSizes"`
	StartPadSize   int               `yaml:"startPadSize"`
	StopPadSize    int               `yaml:"stopPadSize"`
	FieldWeights   [3]float64        `yaml:"fieldWeights"`
	StopTermLimit  int32             `yaml:"stopTermLimit"`
	EnableCoverage bool              `yaml:"enableCoverage"`
	CoverageDepth  int               `yaml:"coverageDepth"`
	MaxResults     int               `yaml:"maxResults"`
	WordMatcher    WordMatcherConfig `yaml:"wordMatcherSetup"`
}

// WordMatcherConfig mirrors wordmatch.Config's word-length windows.
type WordMatcherConfig struct {
	MinExact int `yaml:"minExact"`
	MaxExact int `yaml:"maxExact"`
	MinLD1   int `yaml:"minLD1"`
	MaxLD1   int `yaml:"maxLD1"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the optional Prometheus scrape endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// ToEngineConfig converts the YAML-facing shape into internal/engine.Config.
func (c EngineConfig) ToEngineConfig() engine.Config {
	return engine.Config{
		Vector: vector.Config{
			FieldWeights:  c.FieldWeights,
			StopTermLimit: c.StopTermLimit,
			Tokenizer: tokenizer.Config{
				IndexSizes: c.IndexSizes,
				StartPad:   c.StartPadSize,
				StopPad:    c.StopPadSize,
				Delimiters: tokenizer.DefaultDelimiters(),
			},
		},
		Coverage: coverage.Config{Depth: c.CoverageDepth},
		Pipeline: pipeline.Config{
			CoverageDepth:  c.CoverageDepth,
			MaxResults:     c.MaxResults,
			EnableCoverage: c.EnableCoverage,
		},
		WordMatch: wordmatch.Config{
			MinExact: c.WordMatcher.MinExact,
			MaxExact: c.WordMatcher.MaxExact,
			MinLD1:   c.WordMatcher.MinLD1,
			MaxLD1:   c.WordMatcher.MaxLD1,
		},
	}
}

// Load reads a YAML config file (if provided) and applies environment
// variable overrides. It returns a Config populated with sensible
// defaults for any missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// defaultConfig returns a Config matching engine.DefaultConfig(), plus
// sensible ambient defaults.
func defaultConfig() *Config {
	def := engine.DefaultConfig()
	return &Config{
		Engine: EngineConfig{
			IndexSizes:     def.Vector.Tokenizer.IndexSizes,
			StartPadSize:   def.Vector.Tokenizer.StartPad,
			StopPadSize:    def.Vector.Tokenizer.StopPad,
			FieldWeights:   def.Vector.FieldWeights,
			StopTermLimit:  def.Vector.StopTermLimit,
			EnableCoverage: def.Pipeline.EnableCoverage,
			CoverageDepth:  def.Pipeline.CoverageDepth,
			MaxResults:     def.Pipeline.MaxResults,
			WordMatcher: WordMatcherConfig{
				MinExact: def.WordMatch.MinExact,
				MaxExact: def.WordMatch.MaxExact,
				MinLD1:   def.WordMatch.MinLD1,
				MaxLD1:   def.WordMatch.MaxLD1,
			},
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Metrics: MetricsConfig{Enabled: true, Port: 9090},
	}
}

// applyEnvOverrides reads INFIDEX_* environment variables and overrides the
// corresponding config fields, mirroring the teacher's SP_* convention
// under the new prefix.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("INFIDEX_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("INFIDEX_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("INFIDEX_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
		}
	}
	if v := os.Getenv("INFIDEX_STOP_TERM_LIMIT"); v != "" {
		if limit, err := strconv.ParseInt(v, 10, 32); err == nil {
			cfg.Engine.StopTermLimit = int32(limit)
		}
	}
	if v := os.Getenv("INFIDEX_COVERAGE_DEPTH"); v != "" {
		if depth, err := strconv.Atoi(v); err == nil {
			cfg.Engine.CoverageDepth = depth
		}
	}
	if v := os.Getenv("INFIDEX_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.MaxResults = n
		}
	}
	if v := os.Getenv("INFIDEX_ENABLE_COVERAGE"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Engine.EnableCoverage = enabled
		}
	}
}
