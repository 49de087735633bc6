package xid

type options struct {
	machineID      func() (uint16, error)
	checkMachineID func(uint16) bool
}

// Option 配置 [NewSonyflake]。
type Option func(*options)

// WithMachineID 设置机器 ID 来源。返回值必须在 0-65535 范围内。
func WithMachineID(fn func() (uint16, error)) Option {
	return func(o *options) {
		o.machineID = fn
	}
}

// WithCheckMachineID 设置机器 ID 校验函数，返回 false 时构造失败。
func WithCheckMachineID(fn func(uint16) bool) Option {
	return func(o *options) {
		o.checkMachineID = fn
	}
}
