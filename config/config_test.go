package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
  sync_interval: 30
data:
  path: /srv/taiex.csv
  encoding: big5
  date_column: 交易日期
backtest:
  config: strategies/ma.yaml
`)
	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.ReloadInterval)
	assert.Equal(t, "/srv/taiex.csv", cfg.DataPath)
	assert.Equal(t, "big5", cfg.DataEncoding)
	assert.Equal(t, "交易日期", cfg.DateColumn)
	assert.Empty(t, cfg.CloseColumn)
	assert.Equal(t, "strategies/ma.yaml", cfg.BacktestConfig)
}

func TestLoadFromFileKeepsDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, "server: {}\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig, *cfg)
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	_, err = LoadFromFile(writeConfig(t, "server: [\n"))
	assert.Error(t, err)
}

func TestGetConfigEnvOverrides(t *testing.T) {
	t.Setenv("TAIEXBT_PORT", "9000")
	t.Setenv("TAIEXBT_DATA", "env.csv")

	cfg := GetConfig(writeConfig(t, "server:\n  port: 8080\n"))
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "env.csv", cfg.DataPath)
}

func TestGetConfigIgnoresBadInput(t *testing.T) {
	t.Setenv("TAIEXBT_PORT", "not-a-port")
	t.Setenv("TAIEXBT_DATA", "")

	cfg := GetConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, DefaultConfig.Port, cfg.Port)
	assert.Equal(t, DefaultConfig.DataPath, cfg.DataPath)
}
