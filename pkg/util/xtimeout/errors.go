package xtimeout

import "errors"

var (
	// ErrTimeout 是 cause 为 nil 时使用的默认超时错误。
	ErrTimeout = errors.New("xtimeout: timed out")

	// ErrNilFunc 表示传入的操作为 nil。
	ErrNilFunc = errors.New("xtimeout: nil func")

	// ErrNilContext 表示传入的 context 为 nil。
	ErrNilContext = errors.New("xtimeout: nil context")
)
