package xid

import "errors"

var (
	// ErrInvalidConfig 生成器配置无效（如机器 ID 校验不通过）。
	ErrInvalidConfig = errors.New("xid: invalid config")

	// ErrOverTimeLimit Sonyflake 时间分量溢出，不可恢复。
	ErrOverTimeLimit = errors.New("xid: time component overflow")

	// ErrNilGenerator 生成器为 nil 或未通过构造函数创建。
	ErrNilGenerator = errors.New("xid: nil generator")

	// ErrNoMachineID 所有基于环境的机器 ID 策略均不可用。
	ErrNoMachineID = errors.New("xid: no machine id source available")
)
