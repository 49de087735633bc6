package xid

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sony/sonyflake/v2"
)

// Generator 生成唯一字符串标识。实现必须并发安全。
type Generator interface {
	NewString() (string, error)
}

// Func 将普通函数适配为 [Generator]。
type Func func() (string, error)

// NewString 调用 f 本身。
func (f Func) NewString() (string, error) {
	if f == nil {
		return "", ErrNilGenerator
	}
	return f()
}

// =============================================================================
// Sonyflake
// =============================================================================

// Sonyflake 基于 sonyflake 的有序 ID 生成器。
type Sonyflake struct {
	sf *sonyflake.Sonyflake
}

// NewSonyflake 创建 Sonyflake 生成器。
//
// 未指定 WithMachineID 时使用 [DefaultMachineID]；其返回 [ErrNoMachineID]
// 时保留 sonyflake 自身的私有 IP 策略。
func NewSonyflake(opts ...Option) (*Sonyflake, error) {
	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	settings := sonyflake.Settings{}
	machineID := o.machineID
	if machineID == nil {
		if _, err := DefaultMachineID(); err == nil {
			machineID = DefaultMachineID
		}
	}
	if machineID != nil {
		settings.MachineID = func() (int, error) {
			id, err := machineID()
			return int(id), err
		}
	}
	if o.checkMachineID != nil {
		check := o.checkMachineID
		settings.CheckMachineID = func(id int) bool {
			return id >= 0 && id <= machineMask && check(uint16(id))
		}
	}

	sf, err := sonyflake.New(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &Sonyflake{sf: sf}, nil
}

// Next 返回下一个 int64 ID。
func (s *Sonyflake) Next() (int64, error) {
	if s == nil || s.sf == nil {
		return 0, ErrNilGenerator
	}
	id, err := s.sf.NextID()
	if err != nil {
		if errors.Is(err, sonyflake.ErrOverTimeLimit) {
			return 0, fmt.Errorf("%w: %w", ErrOverTimeLimit, err)
		}
		return 0, err
	}
	return id, nil
}

// NewString 返回 base36 编码的 ID，长度约 12-13 个字符。
func (s *Sonyflake) NewString() (string, error) {
	id, err := s.Next()
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 36), nil
}

// =============================================================================
// UUID
// =============================================================================

// UUID 生成 UUIDv7 字符串。零值可用。
type UUID struct{}

// NewString 返回形如 "0190f7c4-..." 的 UUIDv7。
func (UUID) NewString() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// =============================================================================
// Counter
// =============================================================================

// Counter 生成 prefix + 递增序号，从 1 开始。
type Counter struct {
	prefix string
	n      atomic.Uint64
}

// NewCounter 创建计数生成器。
func NewCounter(prefix string) *Counter {
	return &Counter{prefix: prefix}
}

// NewString 返回下一个序号。
func (c *Counter) NewString() (string, error) {
	if c == nil {
		return "", ErrNilGenerator
	}
	return c.prefix + strconv.FormatUint(c.n.Add(1), 10), nil
}

// =============================================================================
// Fallback / Default
// =============================================================================

// Fallback 先尝试 Primary，失败时使用 Secondary。
type Fallback struct {
	Primary   Generator
	Secondary Generator
}

// NewString 实现 [Generator]。两者都失败时返回合并后的错误。
func (f Fallback) NewString() (string, error) {
	var errs []error
	for _, g := range []Generator{f.Primary, f.Secondary} {
		if g == nil {
			continue
		}
		s, err := g.NewString()
		if err == nil {
			return s, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return "", ErrNilGenerator
	}
	return "", errors.Join(errs...)
}

var defaultGenerator = sync.OnceValue(func() Generator {
	sf, err := NewSonyflake()
	if err != nil {
		return UUID{}
	}
	return Fallback{Primary: sf, Secondary: UUID{}}
})

// Default 返回进程级共享生成器，首次调用时惰性初始化。
func Default() Generator {
	return defaultGenerator()
}
