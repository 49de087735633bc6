package xmutex

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// 互斥错误
// =============================================================================

// Kind 区分互斥错误的种类。
type Kind int

const (
	// KindUnknown 非互斥错误
	KindUnknown Kind = iota

	// KindWaitTimeout 等待时限内未拿到结果
	KindWaitTimeout

	// KindHoldTimeout 临界区超出持有时限
	KindHoldTimeout
)

// 稳定错误码与消息，调用方可直接比较。
const (
	CodeWaitTimeout = "WAIT_TIMEOUT"
	CodeHoldTimeout = "HOLD_TIMEOUT"

	MessageWaitTimeout = "Wait timeout."
	MessageHoldTimeout = "Hold timeout."
)

// String 返回用于日志和指标的小写名称。
func (k Kind) String() string {
	switch k {
	case KindWaitTimeout:
		return "wait_timeout"
	case KindHoldTimeout:
		return "hold_timeout"
	default:
		return "unknown"
	}
}

// Code 返回稳定错误码，未知种类返回空字符串。
func (k Kind) Code() string {
	switch k {
	case KindWaitTimeout:
		return CodeWaitTimeout
	case KindHoldTimeout:
		return CodeHoldTimeout
	default:
		return ""
	}
}

// 种类标记。Lock 不会直接返回这些值，而是返回 [*Error]；
// 使用 errors.Is 判断种类。
var (
	// ErrMutualExclusion 所有互斥错误的共同标记
	ErrMutualExclusion = errors.New("xmutex: mutual exclusion error")

	// ErrWaitTimeout 等待超时标记
	ErrWaitTimeout = errors.New("xmutex: " + MessageWaitTimeout)

	// ErrHoldTimeout 持有超时标记
	ErrHoldTimeout = errors.New("xmutex: " + MessageHoldTimeout)
)

// Error 是 Lock 返回的互斥错误。
//
// 设计决策: 单一具体类型 + Kind 判别字段，而非每种超时一个类型。
// 调用方用 errors.As 取出后按 Kind/Code 分支，或用 errors.Is 匹配种类标记。
type Error struct {
	Kind Kind
	// Key 发生超时的 key
	Key string
	// Timeout 触发的时限
	Timeout time.Duration
}

func newError(kind Kind, key string, timeout time.Duration) *Error {
	return &Error{Kind: kind, Key: key, Timeout: timeout}
}

// Error 返回稳定消息（"Wait timeout." / "Hold timeout."）。
func (e *Error) Error() string {
	return e.Message()
}

// Code 返回 WAIT_TIMEOUT 或 HOLD_TIMEOUT。
func (e *Error) Code() string {
	return e.Kind.Code()
}

// Message 返回人类可读消息。
func (e *Error) Message() string {
	switch e.Kind {
	case KindWaitTimeout:
		return MessageWaitTimeout
	case KindHoldTimeout:
		return MessageHoldTimeout
	default:
		return "Mutual exclusion error."
	}
}

// Is 支持 errors.Is 匹配种类标记。
func (e *Error) Is(target error) bool {
	switch target {
	case ErrMutualExclusion:
		return true
	case ErrWaitTimeout:
		return e.Kind == KindWaitTimeout
	case ErrHoldTimeout:
		return e.Kind == KindHoldTimeout
	default:
		return false
	}
}

// Retryable 报告重试是否可能成功。
// 等待超时说明队列繁忙，稍后重试合理；持有超时说明临界区本身过慢，重试无益。
func (e *Error) Retryable() bool {
	return e.Kind == KindWaitTimeout
}

// CodeOf 返回 err 链中互斥错误的错误码，不是互斥错误时返回空字符串。
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code()
	}
	return ""
}

// KindOf 返回 err 链中互斥错误的种类。
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// =============================================================================
// 使用错误
// =============================================================================

var (
	// ErrNilContext context 参数为 nil
	ErrNilContext = errors.New("xmutex: context must not be nil")

	// ErrNilFunc 临界区函数为 nil
	ErrNilFunc = errors.New("xmutex: critical section must not be nil")

	// ErrNilMutex Mutex 为 nil
	ErrNilMutex = errors.New("xmutex: mutex must not be nil")

	// ErrInvalidTimeout 时限必须为正数
	ErrInvalidTimeout = errors.New("xmutex: invalid timeout")

	// ErrInvalidKey key 不能为空
	ErrInvalidKey = errors.New("xmutex: invalid key")

	// ErrInvalidShardCount 分片数必须是 2 的幂且不超过 65536
	ErrInvalidShardCount = errors.New("xmutex: invalid shard count")

	// ErrKeyGeneration 默认 key 生成失败
	ErrKeyGeneration = errors.New("xmutex: failed to generate default key")

	// ErrLoadConfig 配置加载失败
	ErrLoadConfig = errors.New("xmutex: failed to load config")

	// ErrUnsupportedFormat 不支持的配置格式
	ErrUnsupportedFormat = errors.New("xmutex: unsupported config format")

	// ErrCriticalSectionPanic 临界区发生 panic
	ErrCriticalSectionPanic = errors.New("xmutex: critical section panicked")
)

// PanicError 包装临界区中恢复的 panic。
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%v: %v", ErrCriticalSectionPanic, e.Value)
}

func (e *PanicError) Unwrap() error {
	return ErrCriticalSectionPanic
}
