// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xmutex: 进程内按 key 互斥的异步锁，FIFO 排队，等待/持有双时限
//   - xtimeout: 泛型超时竞速，操作结果与计时器先到者胜出
//   - xid: 可注入的唯一标识生成器（Sonyflake、UUIDv7、计数器）
//
// 设计原则：
//   - 无全局可变状态，依赖通过选项注入
//   - 阻塞操作接受 context.Context
//   - 失败以错误返回，不 panic
package util
