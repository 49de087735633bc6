// Package xtimeout 提供"操作 vs 计时器"的竞速原语。
//
// [Do] 在独立 goroutine 中执行操作，同时启动计时器，先完成的一方决定结果：
//   - 操作先完成：返回操作自身的结果（成功或错误）
//   - 计时器先到期：返回调用方提供的 cause 错误
//   - 父 context 先取消：返回父 context 的取消原因
//
// 落败的一方被放弃而不是被终止：操作收到的 ctx 会被取消（携带 cause），
// 但 Go 无法强制结束 goroutine，操作应自行监听 ctx.Done() 以尽快退出。
// 操作结果写入容量为 1 的 channel，落败时不会阻塞 goroutine，也不会产生无人接收的错误。
//
// d <= 0 表示不启用计时器，仅等待操作完成或父 context 取消。
package xtimeout
