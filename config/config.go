// Package config 读取 gridboard 的配置文件与环境变量。
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Board  BoardConfig
	Docker DockerConfig
	Render RenderConfig
	Log    LogConfig
}

// BoardConfig 是看板渲染会话的默认值。
type BoardConfig struct {
	Columns       int
	Edit          bool
	ViewportWidth int `mapstructure:"viewport_width"`
	SidebarHeight int `mapstructure:"sidebar_height"`
}

// DockerConfig 配置容器操作接口。
type DockerConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout time.Duration
}

// RenderConfig 配置输出文件。
type RenderConfig struct {
	Out   string
	Debug string
}

type LogConfig struct {
	Level string
}

// Load reads configuration from file and env. Env var overrides use prefix GRIDBOARD_.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("board.columns", 0)
	v.SetDefault("board.edit", false)
	v.SetDefault("board.viewport_width", 1920)
	v.SetDefault("board.sidebar_height", 640)
	v.SetDefault("docker.base_url", "http://localhost:7575")
	v.SetDefault("docker.timeout", 10*time.Second)
	v.SetDefault("render.out", "board.pdf")
	v.SetDefault("render.debug", "")
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("GRIDBOARD_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "gridboard"))
		v.SetConfigName("gridboard")
	}

	v.SetEnvPrefix("GRIDBOARD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// 显式指定的文件必须存在；默认搜索路径下缺失则只用默认值。
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}
