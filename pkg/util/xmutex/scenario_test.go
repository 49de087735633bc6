package xmutex

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 以下场景按固定时间线验证排队与超时行为。

func lockAsync(m Mutex, fn func(context.Context) error, opts ...LockOption) <-chan error {
	ch := make(chan error, 1)
	go func() {
		ch <- m.Lock(context.Background(), fn, opts...)
	}()
	return ch
}

func settled(ch <-chan error) (error, bool) {
	select {
	case err := <-ch:
		return err, true
	default:
		return nil, false
	}
}

func TestScenario_LockedInsideUnlockedAfter(t *testing.T) {
	m := newTestMutex(t)

	err := m.Lock(context.Background(), func(context.Context) error {
		assert.True(t, m.IsLocked(""))
		return nil
	})
	require.NoError(t, err)
	assert.False(t, m.IsLocked(""))
}

func TestScenario_SecondWaitsForFirst(t *testing.T) {
	m := newTestMutex(t)

	first := lockAsync(m, sleepFn(50*time.Millisecond))
	require.Eventually(t, func() bool { return m.IsLocked("") }, time.Second, time.Millisecond)
	second := lockAsync(m, func(context.Context) error { return nil })

	time.Sleep(5 * time.Millisecond)
	_, done := settled(second)
	assert.False(t, done, "second lock settled before the first released")

	time.Sleep(95 * time.Millisecond)
	require.NoError(t, <-first)
	select {
	case err := <-second:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("second lock did not settle")
	}
	waitUnlocked(t, m, "")
}

func TestScenario_ThreeSequential(t *testing.T) {
	m := newTestMutex(t)
	key := m.Config().Key

	var chans []<-chan error
	for i := range 3 {
		chans = append(chans, lockAsync(m, sleepFn(50*time.Millisecond)))
		require.Eventually(t, func() bool {
			return m.(*mutex).table.pending(key) == i+1
		}, time.Second, 100*time.Microsecond)
	}

	time.Sleep(125 * time.Millisecond)
	for i := range 2 {
		select {
		case err := <-chans[i]:
			require.NoError(t, err)
		case <-time.After(200 * time.Millisecond):
			t.Fatalf("lock %d not settled", i)
		}
	}
	_, done := settled(chans[2])
	assert.False(t, done, "third lock settled too early")
	assert.True(t, m.IsLocked(""))

	time.Sleep(225 * time.Millisecond)
	err, done := settled(chans[2])
	require.True(t, done, "third lock not settled")
	require.NoError(t, err)
	waitUnlocked(t, m, "")
}

func TestScenario_HoldTimeout(t *testing.T) {
	m := newTestMutex(t, WithHoldTimeout(50*time.Millisecond))

	err := m.Lock(context.Background(), sleepFn(100*time.Millisecond))
	assert.Equal(t, CodeHoldTimeout, CodeOf(err))
	waitUnlocked(t, m, "")
}

func TestScenario_WaitTimeoutWhileHolderRuns(t *testing.T) {
	m := newTestMutex(t, WithWaitTimeout(50*time.Millisecond))

	first := lockAsync(m, sleepFn(100*time.Millisecond), LockWithWaitTimeout(500*time.Millisecond))
	require.Eventually(t, func() bool { return m.IsLocked("") }, time.Second, time.Millisecond)

	start := time.Now()
	err := m.Lock(context.Background(), func(context.Context) error { return nil })
	elapsed := time.Since(start)

	assert.Equal(t, CodeWaitTimeout, CodeOf(err))
	assert.GreaterOrEqual(t, elapsed, 45*time.Millisecond)
	assert.Less(t, elapsed, 95*time.Millisecond)
	_, done := settled(first)
	assert.False(t, done, "holder should still be running")

	require.NoError(t, <-first)
	waitUnlocked(t, m, "")
}
