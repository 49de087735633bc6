package xmutex

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/omeyang/xmutex/pkg/util/xtimeout"
)

// link 是一次 Lock 在 key 链上的节点，由 Lock 调用与其持有 goroutine 共享。
type link struct {
	key      string
	cfg      Config
	fn       func(ctx context.Context) error
	prev     chan struct{} // 前驱完成句柄
	done     chan struct{} // 本节点完成句柄
	result   chan error    // 容量 1，持有 goroutine 永不阻塞
	enqueued time.Time
}

// enqueue 追加节点并启动持有 goroutine。
func (m *mutex) enqueue(ctx context.Context, cfg Config, fn func(ctx context.Context) error) *link {
	prev, done := m.table.acquireSlot(cfg.Key)
	m.metrics.AddPending(ctx, 1)

	l := &link{
		key:      cfg.Key,
		cfg:      cfg,
		fn:       fn,
		prev:     prev,
		done:     done,
		result:   make(chan error, 1),
		enqueued: time.Now(),
	}
	m.logger.LogAttrs(ctx, slog.LevelDebug, "xmutex: enqueued",
		AttrKey(l.key), AttrWaitTimeout(cfg.WaitTimeout), AttrHoldTimeout(cfg.HoldTimeout))

	go m.hold(ctx, l)
	return l
}

// hold 等待前驱完成后在持有时限内执行临界区。
//
// 无论成功、出错、超时或 panic，顺序固定为：释放槽位 → 关闭 done → 投递结果。
// 先释放槽位保证 pending 归零时 lockStore 已删除，后继看到 done 关闭时
// 本节点已不再计数。
func (m *mutex) hold(ctx context.Context, l *link) {
	<-l.prev

	start := time.Now()
	m.metrics.RecordWait(ctx, start.Sub(l.enqueued))
	trace.SpanFromContext(ctx).AddEvent(eventAcquired)
	m.logger.LogAttrs(ctx, slog.LevelDebug, "xmutex: acquired", AttrKey(l.key))

	// 临界区不随调用方取消，只受持有时限约束
	holdCtx := context.WithoutCancel(ctx)
	_, err := xtimeout.Do(holdCtx, l.cfg.HoldTimeout, newError(KindHoldTimeout, l.key, l.cfg.HoldTimeout),
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, m.protect(ctx, l)
		})

	m.table.releaseSlot(l.key)
	m.metrics.AddPending(ctx, -1)
	close(l.done)

	elapsed := time.Since(start)
	result := ResultOf(err)
	m.metrics.RecordHold(ctx, result, elapsed)
	if result == ResultHoldTimeout {
		m.metrics.RecordTimeout(ctx, KindHoldTimeout)
		m.logger.LogAttrs(ctx, slog.LevelWarn, "xmutex: hold timeout",
			AttrKey(l.key), AttrHoldTimeout(l.cfg.HoldTimeout), AttrCode(CodeHoldTimeout))
	} else {
		m.logger.LogAttrs(ctx, slog.LevelDebug, "xmutex: released", AttrKey(l.key), AttrDuration(elapsed))
	}
	l.result <- err
}

// protect 执行临界区并把 panic 转为 [*PanicError]。
// 临界区运行在后台 goroutine 中，未恢复的 panic 会终止进程。
func (m *mutex) protect(ctx context.Context, l *link) (err error) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.LogAttrs(ctx, slog.LevelError, "xmutex: critical section panicked",
				AttrKey(l.key), AttrPanic(r))
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return l.fn(ctx)
}

// await 在等待时限内等待持有结果。
// 超时或 ctx 取消只结束观察，节点仍留在链上按序执行。
func (m *mutex) await(ctx context.Context, l *link) error {
	holdErr, err := xtimeout.After(ctx, l.cfg.WaitTimeout, newError(KindWaitTimeout, l.key, l.cfg.WaitTimeout), l.result)
	if err != nil {
		return err
	}
	return holdErr
}

// ResultOf 将 Lock 的返回值归类为结果标签（ResultOK、ResultWaitTimeout 等），
// 与指标和 span 使用的取值一致。
func ResultOf(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case KindOf(err) == KindWaitTimeout:
		return ResultWaitTimeout
	case KindOf(err) == KindHoldTimeout:
		return ResultHoldTimeout
	case errors.Is(err, ErrCriticalSectionPanic):
		return ResultPanic
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ResultCanceled
	default:
		return ResultError
	}
}
