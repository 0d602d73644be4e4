package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const validTOML = `
[source]
dsn = "file:plant.db"

[poll]
interval_seconds = 30

[checkpoint]
path = "./data/last_id.txt"

[csv]
dir = "./export"

[logging]
file = "./logs/traceline.log"
`

func TestLoadFromFiles_TOML(t *testing.T) {
	path := writeConfigFile(t, "traceline.toml", validTOML)

	config, err := LoadFromFiles(path)
	require.NoError(t, err)
	require.NoError(t, config.Validate())

	assert.Equal(t, "file:plant.db", config.Source.DSN)
	assert.Equal(t, 30, config.Poll.IntervalSeconds)
	assert.Equal(t, 30*time.Second, config.PollInterval())

	// Defaults survive partial files
	assert.Equal(t, "sqlite", config.Source.Driver)
	assert.Equal(t, 100, config.Poll.PageSize)
	assert.Equal(t, "file", config.Checkpoint.Type)
	assert.Equal(t, "finished_goods_", config.CSV.Prefix)
	assert.Equal(t, "info", config.Logging.Level)
}

func TestLoadFromFiles_YAML(t *testing.T) {
	path := writeConfigFile(t, "traceline.yaml", `
source:
  dsn: "file:plant.db"
poll:
  interval_seconds: 10
checkpoint:
  path: "./data/last_id.txt"
csv:
  dir: "./export"
logging:
  file: "./logs/traceline.log"
`)

	config, err := LoadFromFiles(path)
	require.NoError(t, err)
	require.NoError(t, config.Validate())
	assert.Equal(t, 10, config.Poll.IntervalSeconds)
}

func TestLoadFromFiles_LaterFileOverrides(t *testing.T) {
	base := writeConfigFile(t, "base.toml", validTOML)
	override := writeConfigFile(t, "override.toml", `
[poll]
interval_seconds = 5
page_size = 25
`)

	config, err := LoadFromFiles(base, override)
	require.NoError(t, err)

	assert.Equal(t, 5, config.Poll.IntervalSeconds)
	assert.Equal(t, 25, config.Poll.PageSize)
	assert.Equal(t, "file:plant.db", config.Source.DSN)
}

func TestLoadFromFiles_EnvOverrides(t *testing.T) {
	t.Setenv("TRACELINE_SOURCE_DSN", "file:other.db")
	t.Setenv("TRACELINE_POLL_INTERVAL_SECONDS", "7")
	t.Setenv("TRACELINE_CSV_PREFIX", "units_")

	path := writeConfigFile(t, "traceline.toml", validTOML)
	config, err := LoadFromFiles(path)
	require.NoError(t, err)

	assert.Equal(t, "file:other.db", config.Source.DSN)
	assert.Equal(t, 7, config.Poll.IntervalSeconds)
	assert.Equal(t, "units_", config.CSV.Prefix)
}

func TestValidate_MissingRequiredOptions(t *testing.T) {
	// Only defaults: every required option is absent
	config := NewDefaultConfig()
	assert.Error(t, config.Validate())

	// One required option missing still fails
	path := writeConfigFile(t, "traceline.toml", `
[source]
dsn = "file:plant.db"

[poll]
interval_seconds = 30

[csv]
dir = "./export"

[logging]
file = "./logs/traceline.log"
`)
	config, err := LoadFromFiles(path)
	require.NoError(t, err)
	assert.Error(t, config.Validate(), "missing checkpoint path must fail validation")
}

func TestValidate_UnsupportedCheckpointType(t *testing.T) {
	path := writeConfigFile(t, "traceline.toml", `
[source]
dsn = "file:plant.db"

[poll]
interval_seconds = 30

[checkpoint]
type = "redis"
path = "./data/last_id.txt"

[csv]
dir = "./export"

[logging]
file = "./logs/traceline.log"
`)
	config, err := LoadFromFiles(path)
	require.NoError(t, err)
	assert.Error(t, config.Validate())
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
