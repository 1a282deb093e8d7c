package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config 配置文件结构体
type Config struct {
	Version string `yaml:"version"`

	Sqlite struct {
		Dsn string `yaml:"dsn"`
	} `yaml:"sqlite"`

	Log struct {
		Level  string   `yaml:"level"`
		Writer []string `yaml:"writer"`
		File   string   `yaml:"file"`
	} `yaml:"log"`

	Capture struct {
		Capacity  int      `yaml:"capacity"`
		AllowList []string `yaml:"allowList"`
		DenyList  []string `yaml:"denyList"`
		Decrypt   bool     `yaml:"decrypt"`
	} `yaml:"capture"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	cfg := &Config{Version: "1.0.0"}
	cfg.Log.Level = "info"
	cfg.Log.Writer = []string{"console"}
	cfg.Capture.Capacity = 10000
	return cfg
}

// Load 从 YAML 文件加载配置，文件不存在时回退到默认配置
func Load(path string) (*Config, error) {
	cfg := NewConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
