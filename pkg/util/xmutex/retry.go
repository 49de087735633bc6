package xmutex

import (
	"context"
	"errors"

	"github.com/avast/retry-go/v5"
)

// retryable 与 resilience 工具包的可重试错误约定一致。
type retryable interface {
	Retryable() bool
}

// IsRetryable 报告 err 是否值得重试。只有等待超时返回 true。
func IsRetryable(err error) bool {
	var r retryable
	return errors.As(err, &r) && r.Retryable()
}

// LockWithRetry 执行 Lock，遇到等待超时时按退避重试。
//
// 默认尝试 [DefaultRetryAttempts] 次，初始间隔 [DefaultRetryDelay]，指数退避，
// 返回最后一次错误。retryOpts 追加在默认选项之后，可覆盖次数与间隔；
// 覆盖 RetryIf 会改变"只重试等待超时"的约定，慎用。
//
// 注意：被放弃的尝试仍会在轮到时执行（见包文档），fn 需要能容忍多次执行。
func LockWithRetry(ctx context.Context, m Mutex, fn func(ctx context.Context) error, retryOpts []retry.Option, opts ...LockOption) error {
	if ctx == nil {
		return ErrNilContext
	}
	if m == nil {
		return ErrNilMutex
	}

	all := make([]retry.Option, 0, len(retryOpts)+5)
	all = append(all,
		retry.Context(ctx),
		retry.Attempts(DefaultRetryAttempts),
		retry.Delay(DefaultRetryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(IsRetryable),
	)
	all = append(all, retryOpts...)

	return retry.New(all...).Do(func() error {
		return m.Lock(ctx, fn, opts...)
	})
}
