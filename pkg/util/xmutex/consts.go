package xmutex

import "time"

// =============================================================================
// 默认配置常量
// =============================================================================

const (
	// DefaultWaitTimeout 默认等待时限
	DefaultWaitTimeout = 5 * time.Second

	// DefaultHoldTimeout 默认持有时限
	DefaultHoldTimeout = 30 * time.Second

	// DefaultKeyPrefix 自动生成的默认 key 前缀
	DefaultKeyPrefix = "mutex-"

	// DefaultRetryAttempts LockWithRetry 默认尝试次数（含首次）
	DefaultRetryAttempts = 3

	// DefaultRetryDelay LockWithRetry 默认初始重试间隔
	DefaultRetryDelay = 100 * time.Millisecond
)

const (
	defaultShardCount = 32
	maxShardCount     = 1 << 16
)

// instrumentationVersion 仪表化版本号（Metrics + Trace 共享）
const instrumentationVersion = "1.0.0"
