package xmutex

import (
	"log/slog"
	"time"
)

// =============================================================================
// 日志属性
// =============================================================================

const (
	attrKeyKey         = "key"
	attrKeyCode        = "code"
	attrKeyWaitTimeout = "wait_timeout"
	attrKeyHoldTimeout = "hold_timeout"
	attrKeyPending     = "pending"
	attrKeyDuration    = "duration"
	attrKeyError       = "error"
	attrKeyPanic       = "panic"
)

// AttrKey 返回 key 属性
func AttrKey(key string) slog.Attr {
	return slog.String(attrKeyKey, key)
}

// AttrCode 返回错误码属性
func AttrCode(code string) slog.Attr {
	return slog.String(attrKeyCode, code)
}

// AttrWaitTimeout 返回等待时限属性
func AttrWaitTimeout(d time.Duration) slog.Attr {
	return slog.Duration(attrKeyWaitTimeout, d)
}

// AttrHoldTimeout 返回持有时限属性
func AttrHoldTimeout(d time.Duration) slog.Attr {
	return slog.Duration(attrKeyHoldTimeout, d)
}

// AttrPending 返回排队数属性
func AttrPending(n int) slog.Attr {
	return slog.Int(attrKeyPending, n)
}

// AttrDuration 返回耗时属性
func AttrDuration(d time.Duration) slog.Attr {
	return slog.Duration(attrKeyDuration, d)
}

// AttrError 返回错误属性
func AttrError(err error) slog.Attr {
	if err == nil {
		return slog.String(attrKeyError, "")
	}
	return slog.String(attrKeyError, err.Error())
}

// AttrPanic 返回 panic 值属性
func AttrPanic(v any) slog.Attr {
	return slog.Any(attrKeyPanic, v)
}
