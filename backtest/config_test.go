package backtest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParamsDefaults(t *testing.T) {
	p, err := ParseParams([]byte("strategy:\n  type: ma_leverage\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultParams(), p)
}

func TestParseParamsOverrides(t *testing.T) {
	raw := []byte(`
strategy:
  type: ma_leverage
  params:
    ma10_period: 5
    x: 2
    b: -0.5
    fee_rate: 0.001
    max_leverage: 1.5
`)
	p, err := ParseParams(raw)
	require.NoError(t, err)
	assert.Equal(t, 5, p.MA10Period)
	assert.Equal(t, 20, p.MA20Period)
	assert.Equal(t, 2.0, p.X)
	assert.Equal(t, -1.0, p.Y)
	assert.Equal(t, -0.5, p.B)
	assert.Equal(t, 0.001, p.FeeRate)
	require.NotNil(t, p.MaxLeverage)
	assert.Equal(t, 1.5, *p.MaxLeverage)
}

func TestParseParamsErrors(t *testing.T) {
	_, err := ParseParams([]byte("strategy:\n  type: tsai_sen\n"))
	assert.ErrorContains(t, err, "unknown strategy.type")

	_, err = ParseParams([]byte("strategy:\n  params:\n    fee_rate: -0.1\n"))
	assert.True(t, errors.Is(err, ErrNegativeCost), "got %v", err)

	_, err = ParseParams([]byte("strategy:\n  params:\n    max_leverage: 0\n"))
	assert.True(t, errors.Is(err, ErrInvalidLeverage), "got %v", err)

	_, err = ParseParams([]byte("strategy: [\n"))
	assert.ErrorContains(t, err, "parse yaml")
}

func TestLoadParams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backtest.yaml")
	require.NoError(t, os.WriteFile(path, []byte("strategy:\n  params:\n    initial_leverage: 0.5\n"), 0o644))

	p, err := LoadParams(path)
	require.NoError(t, err)
	assert.Equal(t, 0.5, p.InitialLeverage)

	_, err = LoadParams(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config")
}

func TestLoadParamsOrDefault(t *testing.T) {
	p, found, err := LoadParamsOrDefault("")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, DefaultParams(), p)

	p, found, err = LoadParamsOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, DefaultParams(), p)

	path := filepath.Join(t.TempDir(), "backtest.yaml")
	require.NoError(t, os.WriteFile(path, []byte("strategy:\n  params:\n    y: -2\n"), 0o644))
	p, found, err = LoadParamsOrDefault(path)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, -2.0, p.Y)

	require.NoError(t, os.WriteFile(path, []byte("strategy:\n  type: rsi\n"), 0o644))
	_, _, err = LoadParamsOrDefault(path)
	assert.Error(t, err)
}
