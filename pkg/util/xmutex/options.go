package xmutex

import (
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/omeyang/xmutex/pkg/util/xid"
)

// =============================================================================
// Mutex 选项
// =============================================================================

type options struct {
	cfg            Config
	keySet         bool // 显式传入的空 key 视为错误，而非触发自动生成
	keyGen         xid.Generator
	shardCount     int
	logger         *slog.Logger
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
}

// Option 配置 [New]。nil Option 被跳过。
type Option func(*options)

func defaultOptions() *options {
	return &options{
		cfg:        DefaultConfig(),
		shardCount: defaultShardCount,
	}
}

// WithDefaultKey 指定默认 key，不再自动生成。
func WithDefaultKey(key string) Option {
	return func(o *options) {
		o.cfg.Key = key
		o.keySet = true
	}
}

// WithWaitTimeout 设置默认等待时限，必须为正数。
func WithWaitTimeout(d time.Duration) Option {
	return func(o *options) {
		o.cfg.WaitTimeout = d
	}
}

// WithHoldTimeout 设置默认持有时限，必须为正数。
func WithHoldTimeout(d time.Duration) Option {
	return func(o *options) {
		o.cfg.HoldTimeout = d
	}
}

// WithConfig 以 cfg 中的非零字段覆盖当前配置，通常配合 [LoadConfig] 使用。
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.cfg = o.cfg.merge(cfg)
	}
}

// WithKeyGenerator 设置默认 key 的生成器。默认 [xid.Default]。
// 生成结果会加上 [DefaultKeyPrefix] 前缀。
func WithKeyGenerator(g xid.Generator) Option {
	return func(o *options) {
		o.keyGen = g
	}
}

// WithShardCount 设置 key 表分片数。必须为 2 的幂，上限 65536，默认 32。
func WithShardCount(n int) Option {
	return func(o *options) {
		o.shardCount = n
	}
}

// WithLogger 设置日志记录器，默认 slog.Default()。
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMeterProvider 设置 MeterProvider。不设置时不收集指标。
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// WithTracerProvider 设置 TracerProvider。不设置时使用全局 TracerProvider。
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

func (o *options) validate() error {
	if o.keySet && o.cfg.Key == "" {
		return ErrInvalidKey
	}
	sc := o.shardCount
	if sc <= 0 || sc > maxShardCount || sc&(sc-1) != 0 {
		return fmt.Errorf("%w: must be a positive power of 2 (max %d), got %d",
			ErrInvalidShardCount, maxShardCount, sc)
	}
	if o.cfg.WaitTimeout <= 0 {
		return fmt.Errorf("%w: wait timeout must be positive, got %s", ErrInvalidTimeout, o.cfg.WaitTimeout)
	}
	if o.cfg.HoldTimeout <= 0 {
		return fmt.Errorf("%w: hold timeout must be positive, got %s", ErrInvalidTimeout, o.cfg.HoldTimeout)
	}
	return nil
}

// =============================================================================
// Lock 选项
// =============================================================================

// LockOption 单次 Lock 的覆盖项，作用于配置副本，不影响 Mutex 默认配置。
type LockOption func(*Config)

// LockWithKey 指定本次使用的 key。
func LockWithKey(key string) LockOption {
	return func(c *Config) {
		c.Key = key
	}
}

// LockWithWaitTimeout 覆盖本次等待时限。
func LockWithWaitTimeout(d time.Duration) LockOption {
	return func(c *Config) {
		c.WaitTimeout = d
	}
}

// LockWithHoldTimeout 覆盖本次持有时限。
func LockWithHoldTimeout(d time.Duration) LockOption {
	return func(c *Config) {
		c.HoldTimeout = d
	}
}

func (c Config) with(opts []LockOption) (Config, error) {
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
