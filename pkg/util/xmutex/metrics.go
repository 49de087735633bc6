package xmutex

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// metricNameLockTotal Lock 调用次数（按调用方观察到的结果）
	metricNameLockTotal = "xmutex.lock.total"
	// metricNameTimeoutTotal 超时次数（按种类）
	metricNameTimeoutTotal = "xmutex.timeout.total"
	// metricNameWaitDuration 入队到开始持有的耗时
	metricNameWaitDuration = "xmutex.wait.duration"
	// metricNameHoldDuration 持有阶段耗时
	metricNameHoldDuration = "xmutex.hold.duration"
	// metricNamePending 排队与执行中的请求数
	metricNamePending = "xmutex.pending"
)

// Lock 结果取值（xmutex.result 属性）。
const (
	ResultOK          = "ok"
	ResultError       = "error"
	ResultWaitTimeout = "wait_timeout"
	ResultHoldTimeout = "hold_timeout"
	ResultCanceled    = "canceled"
	ResultPanic       = "panic"
)

// Metrics 互斥锁指标收集器。nil *Metrics 的所有方法都是空操作。
type Metrics struct {
	meter        metric.Meter
	lockTotal    metric.Int64Counter
	timeoutTotal metric.Int64Counter
	waitDuration metric.Float64Histogram
	holdDuration metric.Float64Histogram
	pending      metric.Int64UpDownCounter
}

// durationBuckets 耗时直方图的桶边界（秒），覆盖毫秒级临界区到默认持有时限
var durationBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30}

// NewMetrics 创建指标收集器。meterProvider 为 nil 时返回 nil（不收集指标）。
func NewMetrics(meterProvider metric.MeterProvider) (*Metrics, error) {
	if meterProvider == nil {
		return nil, nil
	}

	m := &Metrics{
		meter: meterProvider.Meter("xmutex", metric.WithInstrumentationVersion(instrumentationVersion)),
	}

	var err error
	if m.lockTotal, err = m.meter.Int64Counter(metricNameLockTotal,
		metric.WithDescription("互斥锁 Lock 调用次数"), metric.WithUnit("{lock}")); err != nil {
		return nil, err
	}
	if m.timeoutTotal, err = m.meter.Int64Counter(metricNameTimeoutTotal,
		metric.WithDescription("互斥锁超时次数"), metric.WithUnit("{timeout}")); err != nil {
		return nil, err
	}
	if m.waitDuration, err = m.meter.Float64Histogram(metricNameWaitDuration,
		metric.WithDescription("入队到开始持有的耗时"), metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...)); err != nil {
		return nil, err
	}
	if m.holdDuration, err = m.meter.Float64Histogram(metricNameHoldDuration,
		metric.WithDescription("临界区持有耗时"), metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...)); err != nil {
		return nil, err
	}
	if m.pending, err = m.meter.Int64UpDownCounter(metricNamePending,
		metric.WithDescription("排队与执行中的请求数"), metric.WithUnit("{request}")); err != nil {
		return nil, err
	}
	return m, nil
}

// 设计决策: 指标不带 key 标签。key 通常包含业务 ID，基数不可控；
// 需要按 key 排查时使用 trace 的 xmutex.key 属性。

// RecordLock 记录一次 Lock 的最终结果。
func (m *Metrics) RecordLock(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.lockTotal.Add(context.WithoutCancel(ctx), 1,
		metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordTimeout 记录一次超时。
func (m *Metrics) RecordTimeout(ctx context.Context, kind Kind) {
	if m == nil {
		return
	}
	m.timeoutTotal.Add(context.WithoutCancel(ctx), 1,
		metric.WithAttributes(attribute.String(attrKind, kind.String())))
}

// RecordWait 记录入队到开始持有的耗时。
func (m *Metrics) RecordWait(ctx context.Context, d time.Duration) {
	if m == nil {
		return
	}
	m.waitDuration.Record(context.WithoutCancel(ctx), d.Seconds())
}

// RecordHold 记录持有阶段耗时。result 为持有阶段自身的结果。
func (m *Metrics) RecordHold(ctx context.Context, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.holdDuration.Record(context.WithoutCancel(ctx), d.Seconds(),
		metric.WithAttributes(attribute.String(attrResult, result)))
}

// AddPending 调整排队数。
func (m *Metrics) AddPending(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.pending.Add(context.WithoutCancel(ctx), delta)
}
