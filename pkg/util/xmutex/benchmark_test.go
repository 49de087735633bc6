package xmutex

import (
	"context"
	"strconv"
	"testing"
)

func noop(context.Context) error { return nil }

func BenchmarkLock_SingleKey(b *testing.B) {
	m, err := New(WithLogger(discardLogger()))
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	b.ReportAllocs()
	for b.Loop() {
		_ = m.Lock(ctx, noop)
	}
}

func BenchmarkLock_Parallel(b *testing.B) {
	m, err := New(WithLogger(discardLogger()))
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_ = m.Lock(ctx, noop, LockWithKey("k"+strconv.Itoa(i%64)))
			i++
		}
	})
}

func BenchmarkIsLocked(b *testing.B) {
	m, err := New(WithLogger(discardLogger()))
	if err != nil {
		b.Fatal(err)
	}
	for b.Loop() {
		_ = m.IsLocked("")
	}
}
