package xmutex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Config 是互斥锁的生效配置。值类型，Mutex.Config() 返回副本。
//
// 文件中的时长使用字符串（如 "5s"、"250ms"）。
type Config struct {
	// Key 默认 key，Lock 未指定 key 时使用
	Key string `koanf:"key" json:"key"`
	// WaitTimeout 等待时限
	WaitTimeout time.Duration `koanf:"wait_timeout" json:"wait_timeout"`
	// HoldTimeout 持有时限
	HoldTimeout time.Duration `koanf:"hold_timeout" json:"hold_timeout"`
}

// DefaultConfig 返回不含 Key 的默认配置。
func DefaultConfig() Config {
	return Config{
		WaitTimeout: DefaultWaitTimeout,
		HoldTimeout: DefaultHoldTimeout,
	}
}

// Validate 校验完整配置：key 非空且两个时限为正。
func (c Config) Validate() error {
	if c.Key == "" {
		return ErrInvalidKey
	}
	if c.WaitTimeout <= 0 {
		return fmt.Errorf("%w: wait timeout must be positive, got %s", ErrInvalidTimeout, c.WaitTimeout)
	}
	if c.HoldTimeout <= 0 {
		return fmt.Errorf("%w: hold timeout must be positive, got %s", ErrInvalidTimeout, c.HoldTimeout)
	}
	return nil
}

// merge 以 o 中的非零字段覆盖 c 的副本。
func (c Config) merge(o Config) Config {
	if o.Key != "" {
		c.Key = o.Key
	}
	if o.WaitTimeout != 0 {
		c.WaitTimeout = o.WaitTimeout
	}
	if o.HoldTimeout != 0 {
		c.HoldTimeout = o.HoldTimeout
	}
	return c
}

// =============================================================================
// 文件配置
// =============================================================================

// Format 配置数据格式。
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath 按扩展名推断格式（.yaml/.yml/.json）。
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// LoadConfig 从文件读取 section 段（空表示根）下的配置。
// 返回值只包含文件中出现的字段，未出现的字段为零值，交给 [WithConfig] 合并。
func LoadConfig(path, section string) (Config, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	return ParseConfig(data, format, section)
}

// ParseConfig 从内存数据解析配置。
func ParseConfig(data []byte, format Format, section string) (Config, error) {
	var cfg Config
	if err := Unmarshal(data, format, section, &cfg); err != nil {
		return Config{}, err
	}
	if cfg.WaitTimeout < 0 || cfg.HoldTimeout < 0 {
		return Config{}, fmt.Errorf("%w: negative duration in config", ErrInvalidTimeout)
	}
	return cfg, nil
}

// Unmarshal 将 data 的 section 段解码到 target（使用 koanf 标签）。
// 供命令行工具解析自带的工作负载描述，与 ParseConfig 共享解析规则。
func Unmarshal(data []byte, format Format, section string, target any) error {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := k.UnmarshalWithConf(section, target, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	return nil
}
