package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration. It is constructed
// once at startup and passed by reference into every component that
// needs it; there is no package-level mutable configuration state.
type Config struct {
	Source     SourceConfig     `toml:"source" yaml:"source"`
	Poll       PollConfig       `toml:"poll" yaml:"poll"`
	Checkpoint CheckpointConfig `toml:"checkpoint" yaml:"checkpoint"`
	CSV        CSVConfig        `toml:"csv" yaml:"csv"`
	Logging    LoggingConfig    `toml:"logging" yaml:"logging"`
}

// SourceConfig identifies the relational data source holding test
// records, measurements and the action catalog.
type SourceConfig struct {
	Driver        string `toml:"driver" yaml:"driver"`                   // database/sql driver name (default: "sqlite")
	DSN           string `toml:"dsn" yaml:"dsn" validate:"required"`     // connection string / file path
	PingOnConnect bool   `toml:"ping_on_connect" yaml:"ping_on_connect"` // verify connectivity at startup (default: true)
}

// PollConfig controls the poll loop cadence and fetch page size.
type PollConfig struct {
	IntervalSeconds int    `toml:"interval_seconds" yaml:"interval_seconds" validate:"required,gt=0"`
	Schedule        string `toml:"schedule" yaml:"schedule"`   // optional cron expression; overrides interval mode when set
	PageSize        int    `toml:"page_size" yaml:"page_size"` // max records fetched per cycle (default: 100)
}

// CheckpointConfig selects the watermark backend and its location.
type CheckpointConfig struct {
	Type string `toml:"type" yaml:"type"`                     // "file" (default) or "badger"
	Path string `toml:"path" yaml:"path" validate:"required"` // watermark file path, or badger directory
}

// CSVConfig controls the month-partitioned output files.
type CSVConfig struct {
	Dir    string `toml:"dir" yaml:"dir" validate:"required"` // output directory for partition files
	Prefix string `toml:"prefix" yaml:"prefix"`               // filename prefix before the MM-YYYY token (default: "finished_goods_")
}

// LoggingConfig controls arbor log output.
type LoggingConfig struct {
	Level  string   `toml:"level" yaml:"level"`                   // "debug", "info", "warn", "error"
	File   string   `toml:"file" yaml:"file" validate:"required"` // log file path
	Output []string `toml:"output" yaml:"output"`                 // "stdout", "file"
}

// NewDefaultConfig creates a configuration with default values.
// Options the contract treats as required (source DSN, poll interval,
// checkpoint path, CSV directory, log file) deliberately have no
// defaults so their absence fails validation at startup.
func NewDefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Driver:        "sqlite",
			PingOnConnect: true,
		},
		Poll: PollConfig{
			PageSize: 100,
		},
		Checkpoint: CheckpointConfig{
			Type: "file",
		},
		CSV: CSVConfig{
			Prefix: "finished_goods_",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
	}
}

// LoadFromFiles loads configuration from one or more files with
// priority: defaults -> file1 -> file2 -> ... -> env. Later files
// override earlier files. TOML is the native format; files ending in
// .yaml/.yml are accepted as well.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, config)
		default:
			err = toml.Unmarshal(data, config)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies TRACELINE_* environment variable overrides.
func applyEnvOverrides(config *Config) {
	if dsn := os.Getenv("TRACELINE_SOURCE_DSN"); dsn != "" {
		config.Source.DSN = dsn
	}
	if driver := os.Getenv("TRACELINE_SOURCE_DRIVER"); driver != "" {
		config.Source.Driver = driver
	}
	if interval := os.Getenv("TRACELINE_POLL_INTERVAL_SECONDS"); interval != "" {
		if i, err := strconv.Atoi(interval); err == nil {
			config.Poll.IntervalSeconds = i
		}
	}
	if schedule := os.Getenv("TRACELINE_POLL_SCHEDULE"); schedule != "" {
		config.Poll.Schedule = schedule
	}
	if pageSize := os.Getenv("TRACELINE_POLL_PAGE_SIZE"); pageSize != "" {
		if p, err := strconv.Atoi(pageSize); err == nil && p > 0 {
			config.Poll.PageSize = p
		}
	}
	if ckType := os.Getenv("TRACELINE_CHECKPOINT_TYPE"); ckType != "" {
		config.Checkpoint.Type = ckType
	}
	if ckPath := os.Getenv("TRACELINE_CHECKPOINT_PATH"); ckPath != "" {
		config.Checkpoint.Path = ckPath
	}
	if dir := os.Getenv("TRACELINE_CSV_DIR"); dir != "" {
		config.CSV.Dir = dir
	}
	if prefix := os.Getenv("TRACELINE_CSV_PREFIX"); prefix != "" {
		config.CSV.Prefix = prefix
	}
	if level := os.Getenv("TRACELINE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if file := os.Getenv("TRACELINE_LOG_FILE"); file != "" {
		config.Logging.File = file
	}
	if output := os.Getenv("TRACELINE_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
}

// Validate checks that all required options are present and
// internally consistent. A validation failure is a fatal startup
// condition.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	switch c.Checkpoint.Type {
	case "", "file", "badger":
	default:
		return fmt.Errorf("configuration invalid: unsupported checkpoint type %q (use \"file\" or \"badger\")", c.Checkpoint.Type)
	}

	return nil
}

// PollInterval returns the configured poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Poll.IntervalSeconds) * time.Second
}
