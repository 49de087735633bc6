package xmutex

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/omeyang/xmutex/pkg/util/xid"
)

// Mutex 进程内按 key 互斥的异步锁。所有方法并发安全。
type Mutex interface {
	// IsLocked 报告 key 是否有排队或执行中的请求。key 为空时检查默认 key。
	// 不阻塞，无副作用。
	IsLocked(key string) bool

	// Lock 以互斥方式执行 fn。
	//
	// 返回 fn 的错误、[*Error]（WAIT_TIMEOUT/HOLD_TIMEOUT）、[*PanicError]，
	// 或调用方放弃等待时的 ctx 错误。fn 收到的 ctx 保留调用方的值但不随其取消，
	// 持有时限到达时取消。
	Lock(ctx context.Context, fn func(ctx context.Context) error, opts ...LockOption) error

	// Config 返回默认配置的副本。
	Config() Config

	// Len 返回当前有请求的 key 数量。
	Len() int

	// Keys 返回当前有请求的 key 快照，用于调试。
	Keys() []string
}

type mutex struct {
	cfg     Config
	table   *table
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

// New 创建 Mutex。
//
// 未通过 [WithDefaultKey] 指定默认 key 时，使用 key 生成器生成一次，
// 形如 "mutex-<id>"，在实例生命周期内不变。
func New(opts ...Option) (Mutex, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	if o.cfg.Key == "" {
		key, err := generateKey(o.keyGen)
		if err != nil {
			return nil, err
		}
		o.cfg.Key = key
	}

	metrics, err := NewMetrics(o.meterProvider)
	if err != nil {
		return nil, err
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &mutex{
		cfg:     o.cfg,
		table:   newTable(o.shardCount),
		logger:  logger,
		metrics: metrics,
		tracer:  getTracer(o.tracerProvider),
	}, nil
}

func generateKey(gen xid.Generator) (string, error) {
	if gen == nil {
		gen = xid.Default()
	}
	id, err := gen.NewString()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrKeyGeneration, err)
	}
	if id == "" {
		return "", fmt.Errorf("%w: empty id", ErrKeyGeneration)
	}
	return DefaultKeyPrefix + id, nil
}

func (m *mutex) IsLocked(key string) bool {
	if key == "" {
		key = m.cfg.Key
	}
	return m.table.isLocked(key)
}

func (m *mutex) Lock(ctx context.Context, fn func(ctx context.Context) error, opts ...LockOption) error {
	if ctx == nil {
		return ErrNilContext
	}
	if fn == nil {
		return ErrNilFunc
	}
	cfg, err := m.cfg.with(opts)
	if err != nil {
		return err
	}
	// 已取消的调用方不再入队，避免无人观察的临界区
	if err := ctx.Err(); err != nil {
		return err
	}

	ctx, span := startLockSpan(ctx, m.tracer, cfg)
	l := m.enqueue(ctx, cfg, fn)
	err = m.await(ctx, l)

	result := ResultOf(err)
	if result == ResultWaitTimeout {
		m.metrics.RecordTimeout(ctx, KindWaitTimeout)
		m.logger.LogAttrs(ctx, slog.LevelWarn, "xmutex: wait timeout",
			AttrKey(cfg.Key), AttrWaitTimeout(cfg.WaitTimeout), AttrCode(CodeWaitTimeout))
	}
	m.metrics.RecordLock(ctx, result)
	finishSpan(span, result, err)
	return err
}

func (m *mutex) Config() Config {
	return m.cfg
}

func (m *mutex) Len() int {
	return m.table.len()
}

func (m *mutex) Keys() []string {
	return m.table.keys()
}

// Do 以互斥方式执行 fn 并返回其结果。出错时返回零值。
func Do[T any](ctx context.Context, m Mutex, fn func(ctx context.Context) (T, error), opts ...LockOption) (T, error) {
	var zero T
	if m == nil {
		return zero, ErrNilMutex
	}
	if fn == nil {
		return zero, ErrNilFunc
	}

	var out T
	err := m.Lock(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	}, opts...)
	if err != nil {
		return zero, err
	}
	return out, nil
}

var _ Mutex = (*mutex)(nil)
