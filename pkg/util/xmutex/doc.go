// Package xmutex 提供进程内按 key 互斥的异步锁。
//
// 同一 key 的临界区按 Lock 调用顺序（FIFO）串行执行，不同 key 互不影响。
// 每次 Lock 同时受两个独立的时限约束：
//   - 等待时限（WaitTimeout，默认 5s）：调用方最多等待多久拿到结果
//   - 持有时限（HoldTimeout，默认 30s）：临界区最多占用 key 多久
//
// # 快速开始
//
//	m, err := xmutex.New()
//	if err != nil {
//	    return err
//	}
//	err = m.Lock(ctx, func(ctx context.Context) error {
//	    return updateBalance(ctx, accountID)
//	}, xmutex.LockWithKey("account:"+accountID))
//
// 需要返回值时使用 [Do]：
//
//	total, err := xmutex.Do(ctx, m, func(ctx context.Context) (int, error) {
//	    return recount(ctx)
//	})
//
// # 超时语义
//
// 等待超时返回 Code 为 WAIT_TIMEOUT 的 [*Error]；持有超时返回 HOLD_TIMEOUT。
// 二者均满足 errors.Is(err, [ErrMutualExclusion])。
//
// 等待超时（以及调用方 ctx 取消）只结束调用方的观察，不会撤回已排队的临界区：
// 轮到它时仍会执行，并照常占用持有时限。临界区收到的 ctx 不随调用方取消，
// 只在持有时限到达时取消，context.Cause(ctx) 为 HOLD_TIMEOUT 错误。
//
// 持有超时后 key 立即交给下一个等待者，但无法强制终止仍在运行的临界区，
// 临界区应当响应 ctx.Done()。
//
// # 不支持
//
// 跨进程锁、可重入（持有者在临界区内再次 Lock 同一 key 会等待自己直到超时）、
// 优先级，以及锁状态持久化。
package xmutex
