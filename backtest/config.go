package backtest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// StrategyMALeverage is the only strategy type this engine runs.
const StrategyMALeverage = "ma_leverage"

type YAMLConfig struct {
	Strategy struct {
		Type   string         `yaml:"type"`
		Params map[string]any `yaml:"params"`
	} `yaml:"strategy"`
}

// LoadParams reads backtest.yaml. Missing keys keep their defaults.
func LoadParams(path string) (Params, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("read config: %w", err)
	}
	return ParseParams(raw)
}

// LoadParamsOrDefault is LoadParams, except that an empty path or a missing
// file yields DefaultParams. The bool reports whether a file was read.
func LoadParamsOrDefault(path string) (Params, bool, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultParams(), false, nil
	}
	p, err := LoadParams(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultParams(), false, nil
	}
	if err != nil {
		return Params{}, false, err
	}
	return p, true, nil
}

func ParseParams(raw []byte) (Params, error) {
	var yc YAMLConfig
	if err := yaml.Unmarshal(raw, &yc); err != nil {
		return Params{}, fmt.Errorf("parse yaml: %w", err)
	}

	switch yc.Strategy.Type {
	case "", StrategyMALeverage:
	default:
		return Params{}, fmt.Errorf("unknown strategy.type: %s", yc.Strategy.Type)
	}

	p := DefaultParams()
	if yc.Strategy.Params != nil {
		b, err := yaml.Marshal(yc.Strategy.Params)
		if err != nil {
			return Params{}, fmt.Errorf("strategy.params: %w", err)
		}
		if err := yaml.Unmarshal(b, &p); err != nil {
			return Params{}, fmt.Errorf("strategy.params: %w", err)
		}
	}
	if err := p.Validate(); err != nil {
		return Params{}, fmt.Errorf("strategy.params: %w", err)
	}
	return p, nil
}
