// Package config loads dispatch settings from TOML or YAML files and the
// environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"
)

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config はディスパッチ関連の設定を保持する
type Config struct {
	LogLevel string `toml:"log_level" yaml:"log_level"` // ログレベル（debug, info, warn, error）
	Trace    bool   `toml:"trace" yaml:"trace"`         // 各候補の試行をdebugログに出力
	Strict   bool   `toml:"strict" yaml:"strict"`       // 同名で関数と値を混在させたらエラー
	Color    string `toml:"color" yaml:"color"`         // 診断出力の色（auto, always, never）
}

// Default デフォルト設定を返す
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Color:    ColorAuto,
	}
}

// Load 設定ファイルを読み込む（拡張子でTOML/YAMLを判定）
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data, filepath.Ext(path))
}

// LoadFS fs.FSから設定ファイルを読み込む
func LoadFS(fsys fs.FS, name string) (*Config, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", name, err)
	}
	return Parse(data, filepath.Ext(name))
}

// Parse 設定データを解析する。未知のキーはエラーとする
func Parse(data []byte, ext string) (*Config, error) {
	cfg := Default()

	switch strings.ToLower(ext) {
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("invalid TOML config: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown config key: %s", undecoded[0].String())
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("invalid YAML config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %q", ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv 環境変数で設定を上書きする（getenvがnilならos.Getenv）
//
//	OVERLOAD_LOG_LEVEL, OVERLOAD_TRACE, OVERLOAD_STRICT, OVERLOAD_COLOR
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}

	if v := getenv("OVERLOAD_LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := getenv("OVERLOAD_TRACE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid OVERLOAD_TRACE: %q", v)
		}
		c.Trace = b
	}
	if v := getenv("OVERLOAD_STRICT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid OVERLOAD_STRICT: %q", v)
		}
		c.Strict = b
	}
	if v := getenv("OVERLOAD_COLOR"); v != "" {
		c.Color = strings.ToLower(v)
	}
	return c.Validate()
}

// Validate 設定値を検証する
func (c *Config) Validate() error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid color mode: %s (must be auto, always, or never)", c.Color)
	}
	return nil
}

// UseColor 診断出力に色を使うかどうか（autoの場合は端末かどうかで判定）
func (c *Config) UseColor(fd uintptr) bool {
	switch c.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
}
