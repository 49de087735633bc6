package xtimeout

import (
	"context"
	"time"
)

type outcome[T any] struct {
	value T
	err   error
}

// Do 在 d 时限内执行 fn，返回先到达的结果。
//
// fn 收到的 ctx 派生自调用方 ctx：计时器到期时以 cause 取消，
// 可通过 context.Cause(ctx) 读取。cause 为 nil 时使用 [ErrTimeout]。
func Do[T any](ctx context.Context, d time.Duration, cause error, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if ctx == nil {
		return zero, ErrNilContext
	}
	if fn == nil {
		return zero, ErrNilFunc
	}
	if cause == nil {
		cause = ErrTimeout
	}

	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if d > 0 {
		runCtx, cancel = context.WithTimeoutCause(ctx, d, cause)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	ch := make(chan outcome[T], 1)
	go func() {
		v, err := fn(runCtx)
		ch <- outcome[T]{value: v, err: err}
	}()

	select {
	case o := <-ch:
		return o.value, o.err
	case <-runCtx.Done():
		return zero, context.Cause(runCtx)
	}
}

// After 等待 ch 中的第一个值，最多等待 d。
// 它是 [Do] 的便捷形式，用于"结果已由其他 goroutine 产出"的场景。
// ch 必须带缓冲或由发送方保证不会阻塞。
func After[T any](ctx context.Context, d time.Duration, cause error, ch <-chan T) (T, error) {
	return Do(ctx, d, cause, func(ctx context.Context) (T, error) {
		select {
		case v := <-ch:
			return v, nil
		case <-ctx.Done():
			var zero T
			return zero, context.Cause(ctx)
		}
	})
}
