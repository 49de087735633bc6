package xid_test

import (
	"fmt"

	"github.com/omeyang/xmutex/pkg/util/xid"
)

func ExampleCounter() {
	g := xid.NewCounter("mutex-")
	a, _ := g.NewString()
	b, _ := g.NewString()
	fmt.Println(a, b)
	// Output:
	// mutex-1 mutex-2
}

func ExampleFallback() {
	g := xid.Fallback{
		Primary:   xid.Func(func() (string, error) { return "", fmt.Errorf("unavailable") }),
		Secondary: xid.NewCounter("uuid-"),
	}
	s, _ := g.NewString()
	fmt.Println(s)
	// Output:
	// uuid-1
}
