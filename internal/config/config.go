// ABOUTME: Runlog configuration layered with koanf: defaults, YAML file, env.
// ABOUTME: Converts settings into ingest, sink, logging, and storage options.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harperreed/runlog/internal/derive"
	"github.com/harperreed/runlog/internal/ingest"
	"github.com/harperreed/runlog/internal/logging"
	"github.com/harperreed/runlog/internal/match"
	"github.com/harperreed/runlog/internal/sink"
	"github.com/harperreed/runlog/internal/storage"
	"github.com/harperreed/runlog/internal/validation"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	// PathEnvVar overrides the config file location.
	PathEnvVar = "RUNLOG_CONFIG"

	envPrefix = "RUNLOG_"
)

// Config stores runlog configuration.
type Config struct {
	// DataDir is the root directory for runlog.db. Supports ~ expansion.
	// Defaults to $XDG_DATA_HOME/runlog.
	DataDir string `koanf:"data_dir" json:"data_dir"`

	// DBPath overrides <data_dir>/runlog.db when set.
	DBPath string `koanf:"db_path" json:"db_path"`

	Ingest IngestConfig `koanf:"ingest" json:"ingest"`
	Log    LogConfig    `koanf:"log" json:"log"`
	Sink   SinkConfig   `koanf:"sink" json:"sink"`
}

// IngestConfig tunes matching and derivation.
type IngestConfig struct {
	MatchToleranceKm   float64  `koanf:"match_tolerance_km" json:"match_tolerance_km" validate:"gt=0"`
	LongRunThresholdKm float64  `koanf:"long_run_threshold_km" json:"long_run_threshold_km" validate:"gt=0"`
	ActivityTypes      []string `koanf:"activity_types" json:"activity_types" validate:"dive,required"`
}

// LogConfig selects the zerolog level and output format.
type LogConfig struct {
	Level  string `koanf:"level" json:"level" validate:"oneof=debug info warn warning error"`
	Format string `koanf:"format" json:"format" validate:"oneof=console json"`
}

// SinkConfig holds the optional push destinations.
type SinkConfig struct {
	HTTP  HTTPSinkConfig  `koanf:"http" json:"http"`
	Kafka KafkaSinkConfig `koanf:"kafka" json:"kafka"`
}

// HTTPSinkConfig configures the HTTP collector sink.
type HTTPSinkConfig struct {
	URL     string        `koanf:"url" json:"url" validate:"omitempty,url"`
	Token   string        `koanf:"token" json:"token"`
	HEC     bool          `koanf:"hec" json:"hec"`
	Timeout time.Duration `koanf:"timeout" json:"timeout"`
}

// KafkaSinkConfig configures the Kafka sink.
type KafkaSinkConfig struct {
	Brokers []string `koanf:"brokers" json:"brokers" validate:"dive,hostname_port"`
	Topic   string   `koanf:"topic" json:"topic"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	return &Config{
		Ingest: IngestConfig{
			MatchToleranceKm:   match.DefaultToleranceKm,
			LongRunThresholdKm: derive.DefaultLongRunThresholdKm,
			ActivityTypes:      []string{"Run"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Sink: SinkConfig{
			HTTP: HTTPSinkConfig{Timeout: sink.DefaultHTTPTimeout},
		},
	}
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetDBPath returns db_path when set, else runlog.db under the data dir.
func (c *Config) GetDBPath() string {
	if c.DBPath != "" {
		return ExpandPath(c.DBPath)
	}
	return filepath.Join(c.GetDataDir(), storage.DBFileName)
}

// OpenStorage opens the SQLite store at GetDBPath.
func (c *Config) OpenStorage() (*storage.DB, error) {
	return storage.Open(c.GetDBPath())
}

// IngestOptions converts the ingest section into pipeline options.
func (c *Config) IngestOptions() ingest.Options {
	return ingest.Options{
		MatchToleranceKm: c.Ingest.MatchToleranceKm,
		Derive:           derive.Options{LongRunThresholdKm: c.Ingest.LongRunThresholdKm},
		ActivityTypes:    c.Ingest.ActivityTypes,
	}
}

// Logging converts the log section into logger settings.
func (c *Config) Logging() logging.Config {
	return logging.Config{Level: c.Log.Level, Format: c.Log.Format}
}

// HTTPSink converts the sink.http section.
func (c *Config) HTTPSink() sink.HTTPConfig {
	h := c.Sink.HTTP
	return sink.HTTPConfig{URL: h.URL, Token: h.Token, HEC: h.HEC, Timeout: h.Timeout}
}

// KafkaSink converts the sink.kafka section.
func (c *Config) KafkaSink() sink.KafkaConfig {
	return sink.KafkaConfig{Brokers: c.Sink.Kafka.Brokers, Topic: c.Sink.Kafka.Topic}
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	return validation.Struct(c)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// GetConfigPath returns the config file path, honoring RUNLOG_CONFIG.
func GetConfigPath() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		return ExpandPath(p)
	}
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "runlog", "config.yaml")
}

// Load reads the config from GetConfigPath. A missing file is not an error.
func Load() (*Config, error) {
	return LoadFile(GetConfigPath())
}

// LoadFile layers defaults, the YAML file at path (if present), and
// RUNLOG_* environment variables, then validates the result.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(c, "koanf"), nil); err != nil {
		return nil, err
	}
	return k.Marshal(yaml.Parser())
}

// Save writes the config as YAML to path.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// envKeys maps RUNLOG_* variables to config paths. Keys contain underscores
// themselves, so the split cannot be derived from the variable name.
var envKeys = map[string]string{
	"data_dir":                     "data_dir",
	"db_path":                      "db_path",
	"ingest_match_tolerance_km":    "ingest.match_tolerance_km",
	"ingest_long_run_threshold_km": "ingest.long_run_threshold_km",
	"ingest_activity_types":        "ingest.activity_types",
	"log_level":                    "log.level",
	"log_format":                   "log.format",
	"sink_http_url":                "sink.http.url",
	"sink_http_token":              "sink.http.token",
	"sink_http_hec":                "sink.http.hec",
	"sink_http_timeout":            "sink.http.timeout",
	"sink_kafka_brokers":           "sink.kafka.brokers",
	"sink_kafka_topic":             "sink.kafka.topic",
}

// envTransformFunc maps RUNLOG_LOG_LEVEL to log.level. Unknown variables,
// including RUNLOG_CONFIG, are ignored.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	return envKeys[key]
}

// sliceConfigPaths are parsed from comma-separated strings when set via env.
var sliceConfigPaths = []string{
	"ingest.activity_types",
	"sink.kafka.brokers",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		var parts []string
		for p := range strings.SplitSeq(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
