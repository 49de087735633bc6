package xmutex_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/omeyang/xmutex/pkg/util/xmutex"
)

func ExampleMutex_Lock() {
	m, err := xmutex.New(xmutex.WithDefaultKey("inventory"))
	if err != nil {
		panic(err)
	}

	err = m.Lock(context.Background(), func(ctx context.Context) error {
		fmt.Println("locked:", m.IsLocked(""))
		return nil
	})
	fmt.Println("err:", err, "locked:", m.IsLocked(""))
	// Output:
	// locked: true
	// err: <nil> locked: false
}

func ExampleDo() {
	m, _ := xmutex.New()

	n, err := xmutex.Do(context.Background(), m, func(ctx context.Context) (int, error) {
		return 42, nil
	}, xmutex.LockWithKey("counter"))
	fmt.Println(n, err)
	// Output:
	// 42 <nil>
}

func ExampleCodeOf() {
	m, _ := xmutex.New(xmutex.WithHoldTimeout(10 * time.Millisecond))

	err := m.Lock(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})
	fmt.Println(xmutex.CodeOf(err), err)
	fmt.Println(errors.Is(err, xmutex.ErrMutualExclusion))
	// Output:
	// HOLD_TIMEOUT Hold timeout.
	// true
}

func ExampleParseConfig() {
	cfg, err := xmutex.ParseConfig([]byte("mutex:\n  wait_timeout: 2s\n"), xmutex.FormatYAML, "mutex")
	if err != nil {
		panic(err)
	}
	m, _ := xmutex.New(xmutex.WithConfig(cfg))
	fmt.Println(m.Config().WaitTimeout, m.Config().HoldTimeout)
	// Output:
	// 2s 30s
}
