package xmutex

import (
	"context"
	"testing"
	"time"
)

func FuzzLockKey(f *testing.F) {
	for _, seed := range []string{"", "a", "mutex-1", "用户:42", "\x00\xff", "{tag}"} {
		f.Add(seed)
	}
	m, err := New(WithLogger(discardLogger()))
	if err != nil {
		f.Fatal(err)
	}

	f.Fuzz(func(t *testing.T, key string) {
		ran := false
		err := m.Lock(context.Background(), func(context.Context) error {
			ran = true
			return nil
		}, LockWithKey(key), LockWithWaitTimeout(time.Second))

		if key == "" {
			if err == nil {
				t.Fatal("empty key accepted")
			}
			return
		}
		if err != nil {
			t.Fatalf("Lock(%q): %v", key, err)
		}
		if !ran {
			t.Fatalf("Lock(%q) did not run", key)
		}
		if m.IsLocked(key) {
			t.Fatalf("key %q still locked", key)
		}
	})
}
