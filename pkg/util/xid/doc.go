// Package xid 提供可注入的唯一标识生成器。
//
// 互斥锁实例需要一个进程内唯一的默认键。xid 把"如何生成"抽象为 [Generator]，
// 提供三种实现：
//   - [Sonyflake]：基于 sony/sonyflake，生成有序的 base36 字符串，默认实现
//   - [UUID]：UUIDv7，无需机器 ID，作为回退
//   - [Counter]：前缀 + 自增序号，用于测试中的确定性键
//
// [Default] 返回进程级共享生成器：优先 Sonyflake，初始化失败或运行期出错时回退到 UUID。
//
// # 机器 ID
//
// [DefaultMachineID] 依次尝试 XID_MACHINE_ID、POD_NAME、HOSTNAME 与 os.Hostname()，
// 后三者经 xxhash 折叠为 16 位。全部失败时交由 sonyflake 使用私有 IP 的低 16 位。
package xid
