package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/omeyang/xmutex/pkg/util/xmutex"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreAnyFunction("gopkg.in/natefinch/lumberjack%2ev2.(*Logger).millRun"),
	)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := createApp()
	app.Writer = &out
	app.ErrWriter = io.Discard
	err := app.Run(context.Background(), append([]string{"xmutexctl"}, args...))
	return out.String(), err
}

func newQuietMutex(t *testing.T, opts ...xmutex.Option) xmutex.Mutex {
	t.Helper()
	m, err := xmutex.New(append([]xmutex.Option{
		xmutex.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)...)
	require.NoError(t, err)
	return m
}

// =============================================================================
// workload
// =============================================================================

func TestWorkload_Validate(t *testing.T) {
	require.NoError(t, defaultWorkload().validate())

	tests := []struct {
		name string
		mod  func(*workload)
	}{
		{"workers", func(w *workload) { w.Workers = 0 }},
		{"requests", func(w *workload) { w.Requests = -1 }},
		{"body", func(w *workload) { w.Body = -time.Millisecond }},
		{"retry", func(w *workload) { w.Retry = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := defaultWorkload()
			tt.mod(&w)
			var ue *usageError
			assert.ErrorAs(t, w.validate(), &ue)
		})
	}
}

func TestLoadWorkload(t *testing.T) {
	path := writeFile(t, "bench.yaml", `
workers: 3
keys: [a, b]
body: 2ms
mutex:
  wait_timeout: 1s
`)
	w, err := loadWorkload(path)
	require.NoError(t, err)
	assert.Equal(t, 3, w.Workers)
	assert.Equal(t, defaultRequests, w.Requests)
	assert.Equal(t, []string{"a", "b"}, w.Keys)
	assert.Equal(t, 2*time.Millisecond, w.Body)
	assert.Equal(t, time.Second, w.Mutex.WaitTimeout)
	assert.Zero(t, w.Mutex.HoldTimeout)

	_, err = loadWorkload(filepath.Join(t.TempDir(), "bench.toml"))
	assert.ErrorIs(t, err, xmutex.ErrUnsupportedFormat)

	_, err = loadWorkload(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestRunWorkload_AllSucceed(t *testing.T) {
	m := newQuietMutex(t)
	w := workload{Workers: 4, Requests: 5, Keys: []string{"a", "b"}, Body: time.Millisecond}

	rep, err := runWorkload(context.Background(), m, w)
	require.NoError(t, err)
	assert.Equal(t, 20, rep.Results[xmutex.ResultOK])
	assert.Equal(t, 20, rep.total())
	assert.Zero(t, rep.Overlaps)
	assert.Zero(t, m.Len())
}

func TestRunWorkload_DefaultKey(t *testing.T) {
	m := newQuietMutex(t, xmutex.WithDefaultKey("solo"))
	rep, err := runWorkload(context.Background(), m, workload{Workers: 2, Requests: 3})
	require.NoError(t, err)
	assert.Equal(t, 6, rep.Results[xmutex.ResultOK])
}

func TestRunWorkload_WaitTimeoutsDrain(t *testing.T) {
	m := newQuietMutex(t, xmutex.WithWaitTimeout(5*time.Millisecond))
	w := workload{Workers: 4, Requests: 2, Keys: []string{"hot"}, Body: 20 * time.Millisecond}

	rep, err := runWorkload(context.Background(), m, w)
	require.NoError(t, err)
	assert.Positive(t, rep.Results[xmutex.ResultWaitTimeout])
	assert.Equal(t, 8, rep.total())
	// 放弃等待的临界区也已执行完毕
	assert.Zero(t, m.Len())
	assert.Zero(t, rep.Overlaps)
}

func TestRunWorkload_Canceled(t *testing.T) {
	m := newQuietMutex(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runWorkload(ctx, m, workload{Workers: 1, Requests: 1, Body: time.Millisecond})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, report{
		Results: map[string]int{xmutex.ResultOK: 3, xmutex.ResultWaitTimeout: 1},
		Elapsed: 12 * time.Millisecond,
	})
	out := buf.String()
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "wait_timeout")
	assert.Regexp(t, `total\s+4`, out)
	assert.Regexp(t, `overlaps\s+0`, out)
}

// =============================================================================
// 命令
// =============================================================================

func TestConfigCommand(t *testing.T) {
	path := writeFile(t, "app.yaml", "mutex:\n  key: orders\n  wait_timeout: 2s\n")

	out, err := runApp(t, "--config", path, "--section", "mutex", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "key:          orders")
	assert.Contains(t, out, "wait_timeout: 2s")
	assert.Contains(t, out, "hold_timeout: 30s")
}

func TestConfigCommand_BadFile(t *testing.T) {
	_, err := runApp(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "config")
	assert.ErrorIs(t, err, xmutex.ErrLoadConfig)
}

func TestRunCommand(t *testing.T) {
	out, err := runApp(t, "run", "--workers", "2", "--requests", "3", "--keys", "a,b", "--body", "1ms")
	require.NoError(t, err)
	assert.Regexp(t, `ok\s+6`, out)
}

func TestRunCommand_WorkloadFileWithOverride(t *testing.T) {
	path := writeFile(t, "bench.json", `{"workers": 1, "requests": 2, "body": "1ms"}`)

	out, err := runApp(t, "run", "--workload", path, "--workers", "3")
	require.NoError(t, err)
	assert.Regexp(t, `total\s+6`, out)
}

func TestRunCommand_InvalidFlags(t *testing.T) {
	_, err := runApp(t, "run", "--workers", "0")
	var ue *usageError
	assert.ErrorAs(t, err, &ue)

	_, err = runApp(t, "--log-level", "loud", "config")
	assert.ErrorAs(t, err, &ue)
}

// =============================================================================
// 日志
// =============================================================================

func TestNewLogger_Levels(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "", "error", "WARN"} {
		logger, closeLog, err := newLogger(lvl, "", io.Discard)
		require.NoError(t, err, lvl)
		require.NotNil(t, logger)
		require.NoError(t, closeLog())
	}
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xmutexctl.log")
	logger, closeLog, err := newLogger("info", path, io.Discard)
	require.NoError(t, err)
	logger.Info("hello", slog.String("k", "v"))
	require.NoError(t, closeLog())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}

func TestErrors(t *testing.T) {
	assert.Equal(t, "bad", usageErrorf("bad").Error())
	var ee *exitError
	assert.True(t, errors.As(error(&exitError{code: 1}), &ee))
	assert.Equal(t, 1, ee.code)
}
