package xmutex

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "xmutex"

const (
	spanNameLock = "xmutex.Lock"

	eventAcquired = "xmutex.acquired"
)

// Span 属性名（Metrics 复用 attrResult/attrKind）
const (
	attrKey         = "xmutex.key"
	attrWaitTimeout = "xmutex.wait_timeout_ms"
	attrHoldTimeout = "xmutex.hold_timeout_ms"
	attrResult      = "xmutex.result"
	attrKind        = "xmutex.kind"
	attrCode        = "xmutex.code"
)

// getTracer 使用 tp，未配置时回退到全局 TracerProvider。
func getTracer(tp trace.TracerProvider) trace.Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(tracerName, trace.WithInstrumentationVersion(instrumentationVersion))
}

func startLockSpan(ctx context.Context, tracer trace.Tracer, cfg Config) (context.Context, trace.Span) {
	return tracer.Start(ctx, spanNameLock, trace.WithAttributes(
		attribute.String(attrKey, cfg.Key),
		attribute.Int64(attrWaitTimeout, cfg.WaitTimeout.Milliseconds()),
		attribute.Int64(attrHoldTimeout, cfg.HoldTimeout.Milliseconds()),
	))
}

// finishSpan 根据结果设置状态并结束 span。
func finishSpan(span trace.Span, result string, err error) {
	span.SetAttributes(attribute.String(attrResult, result))
	if err != nil {
		if code := CodeOf(err); code != "" {
			span.SetAttributes(attribute.String(attrCode, code))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
