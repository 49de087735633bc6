package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"
	"sync/atomic"
	"text/tabwriter"
	"time"

	"github.com/avast/retry-go/v5"
	"golang.org/x/sync/errgroup"

	"github.com/omeyang/xmutex/pkg/util/xmutex"
)

// 工作负载默认值
const (
	defaultWorkers  = 4
	defaultRequests = 25
	defaultBody     = 5 * time.Millisecond

	drainPollInterval = 5 * time.Millisecond
)

// workload 描述一次竞争压测。文件中的时长使用字符串（如 "5ms"）。
type workload struct {
	// Workers 并发调用方数量
	Workers int `koanf:"workers"`
	// Requests 每个调用方发起的 Lock 次数
	Requests int `koanf:"requests"`
	// Keys 轮流使用的 key，为空时使用互斥锁的默认 key
	Keys []string `koanf:"keys"`
	// Body 临界区耗时
	Body time.Duration `koanf:"body"`
	// Retry 大于 1 时通过 LockWithRetry 重试等待超时
	Retry int `koanf:"retry"`
	// Mutex 覆盖互斥锁配置
	Mutex xmutex.Config `koanf:"mutex"`
}

func defaultWorkload() workload {
	return workload{
		Workers:  defaultWorkers,
		Requests: defaultRequests,
		Body:     defaultBody,
	}
}

// loadWorkload 读取工作负载文件，未出现的字段保留默认值。
func loadWorkload(path string) (workload, error) {
	w := defaultWorkload()
	format, err := xmutex.FormatFromPath(path)
	if err != nil {
		return w, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return w, fmt.Errorf("read workload: %w", err)
	}
	if err := xmutex.Unmarshal(data, format, "", &w); err != nil {
		return w, err
	}
	return w, nil
}

func (w workload) validate() error {
	if w.Workers <= 0 {
		return usageErrorf("workers 必须为正数，当前 %d", w.Workers)
	}
	if w.Requests <= 0 {
		return usageErrorf("requests 必须为正数，当前 %d", w.Requests)
	}
	if w.Body < 0 {
		return usageErrorf("body 不能为负数，当前 %s", w.Body)
	}
	if w.Retry < 0 {
		return usageErrorf("retry 不能为负数，当前 %d", w.Retry)
	}
	return nil
}

// report 压测结果。
type report struct {
	// Results 按 xmutex.ResultOf 分类的次数
	Results map[string]int
	// Overlaps 同一 key 的临界区重叠次数。只可能出现在持有超时之后：
	// 超时的临界区尚未退出时下一位已开始执行。
	Overlaps int64
	Elapsed  time.Duration
}

func (r report) total() int {
	n := 0
	for _, c := range r.Results {
		n += c
	}
	return n
}

// runWorkload 并发执行工作负载，返回前等待所有已入队的临界区结束（包括放弃等待的请求）。
func runWorkload(ctx context.Context, m xmutex.Mutex, w workload) (report, error) {
	keys := w.Keys
	if len(keys) == 0 {
		keys = []string{m.Config().Key}
	}
	active := make(map[string]*atomic.Int32, len(keys))
	for _, k := range keys {
		active[k] = new(atomic.Int32)
	}

	var (
		mu       sync.Mutex
		results  = make(map[string]int)
		overlaps atomic.Int64
	)
	record := func(result string) {
		mu.Lock()
		results[result]++
		mu.Unlock()
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for worker := range w.Workers {
		g.Go(func() error {
			for i := range w.Requests {
				if err := gctx.Err(); err != nil {
					return err
				}
				key := keys[(worker+i)%len(keys)]
				body := func(ctx context.Context) error {
					a := active[key]
					if a.Add(1) > 1 {
						overlaps.Add(1)
					}
					defer a.Add(-1)
					select {
					case <-time.After(w.Body):
						return nil
					case <-ctx.Done():
						return context.Cause(ctx)
					}
				}
				record(xmutex.ResultOf(lockOnce(gctx, m, body, key, w.Retry)))
			}
			return nil
		})
	}
	err := g.Wait()

	drainErr := drain(ctx, m)
	rep := report{Results: results, Overlaps: overlaps.Load(), Elapsed: time.Since(start)}
	if err != nil {
		return rep, err
	}
	return rep, drainErr
}

func lockOnce(ctx context.Context, m xmutex.Mutex, body func(context.Context) error, key string, attempts int) error {
	opt := xmutex.LockWithKey(key)
	if attempts > 1 {
		return xmutex.LockWithRetry(ctx, m, body, []retry.Option{retry.Attempts(uint(attempts))}, opt)
	}
	return m.Lock(ctx, body, opt)
}

// drain 等待所有 key 释放。
func drain(ctx context.Context, m xmutex.Mutex) error {
	ticker := time.NewTicker(drainPollInterval)
	defer ticker.Stop()
	for m.Len() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

func printReport(out io.Writer, r report) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	names := make([]string, 0, len(r.Results))
	for name := range r.Results {
		names = append(names, name)
	}
	slices.Sort(names)

	fmt.Fprintln(tw, "RESULT\tCOUNT")
	for _, name := range names {
		fmt.Fprintf(tw, "%s\t%d\n", name, r.Results[name])
	}
	fmt.Fprintf(tw, "total\t%d\n", r.total())
	fmt.Fprintf(tw, "overlaps\t%d\n", r.Overlaps)
	fmt.Fprintf(tw, "elapsed\t%s\n", r.Elapsed.Round(time.Millisecond))
	_ = tw.Flush()
}
