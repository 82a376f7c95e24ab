package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// YAMLConfig YAML配置文件结构
type YAMLConfig struct {
	Server struct {
		Port         int `yaml:"port"`
		SyncInterval int `yaml:"sync_interval"` // 秒，0 表示不自动重载
	} `yaml:"server"`

	Data struct {
		Path        string `yaml:"path"`
		Encoding    string `yaml:"encoding"`
		DateColumn  string `yaml:"date_column"`
		CloseColumn string `yaml:"close_column"`
	} `yaml:"data"`

	Backtest struct {
		Config string `yaml:"config"`
	} `yaml:"backtest"`
}

// Config 配置
type Config struct {
	// HTTP 服务端口
	Port int

	// 收盘价 CSV 路径
	DataPath string

	// CSV 编码: utf-8 / big5 / gbk
	DataEncoding string

	// 列名覆盖（为空时自动识别）
	DateColumn  string
	CloseColumn string

	// 数据文件变更检查间隔（0 表示不自动重载）
	ReloadInterval time.Duration

	// 策略参数文件 backtest.yaml（为空或不存在时使用默认参数）
	BacktestConfig string
}

// DefaultConfig 默认配置
var DefaultConfig = Config{
	Port:           19528,
	DataPath:       "data/taiex.csv",
	DataEncoding:   "utf-8",
	BacktestConfig: "backtest.yaml",
}

// LoadFromFile 从YAML文件加载配置
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var yamlConfig YAMLConfig
	if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	config := DefaultConfig

	// 服务配置
	if yamlConfig.Server.Port > 0 {
		config.Port = yamlConfig.Server.Port
	}
	if yamlConfig.Server.SyncInterval > 0 {
		config.ReloadInterval = time.Duration(yamlConfig.Server.SyncInterval) * time.Second
	}

	// 数据配置
	if v := strings.TrimSpace(yamlConfig.Data.Path); v != "" {
		config.DataPath = v
	}
	if v := strings.TrimSpace(yamlConfig.Data.Encoding); v != "" {
		config.DataEncoding = v
	}
	config.DateColumn = strings.TrimSpace(yamlConfig.Data.DateColumn)
	config.CloseColumn = strings.TrimSpace(yamlConfig.Data.CloseColumn)

	if v := strings.TrimSpace(yamlConfig.Backtest.Config); v != "" {
		config.BacktestConfig = v
	}

	return &config, nil
}

// GetConfig 获取配置 (优先级: 环境变量 > 配置文件 > 默认值)
func GetConfig(configPath string) *Config {
	config := DefaultConfig

	if configPath != "" {
		if cfg, err := LoadFromFile(configPath); err == nil {
			config = *cfg
		} else {
			fmt.Printf("警告: 无法加载配置文件 %s: %v\n", configPath, err)
		}
	}

	if port := getPort(); port > 0 {
		config.Port = port
	}
	if path := os.Getenv("TAIEXBT_DATA"); path != "" {
		config.DataPath = path
	}

	return &config
}

// getPort 读取 TAIEXBT_PORT，非法值忽略
func getPort() int {
	raw := strings.TrimSpace(os.Getenv("TAIEXBT_PORT"))
	if raw == "" {
		return 0
	}
	port, err := strconv.Atoi(raw)
	if err != nil || port <= 0 || port > 65535 {
		return 0
	}
	return port
}
