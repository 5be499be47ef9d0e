// Package tracing 提供基于OpenTelemetry的分布式追踪
//
// 核心概念：
// - Trace：一次完整请求链路（借阅请求从入口到落库）
// - Span：链路中的一个操作单元（预扣副本、记录借阅、发布事件）
// - SpanContext：跨调用传递的TraceID/SpanID
//
// 借阅流程的典型链路：
//
//	BorrowBook
//	├─ ReserveCopy（预扣副本）
//	├─ CreateLoan（记录借阅）
//	└─ PublishEvent（发布事件）
//
// 日志中记录ExtractTraceID(ctx)，即可从日志跳到Jaeger查看完整链路。
package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// InitTracer 初始化全局Tracer Provider
//
// endpoint是OTLP gRPC端点（如 localhost:4317）。返回的shutdown函数
// 必须在程序退出前调用，否则可能丢失最后一批Span。
//
// 采样策略：AlwaysSample（100%采样），适合开发/测试环境；
// 生产环境建议换成 sdktrace.TraceIDRatioBased(0.01)。
//
// 示例：
//
//	shutdown, err := tracing.InitTracer("cerbrary", "localhost:4317")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer shutdown(context.Background())
func InitTracer(serviceName, endpoint string) (func(context.Context) error, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exporter, err := otlptracegrpc.New(
		ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(), // 生产环境应启用TLS
	)
	if err != nil {
		return nil, fmt.Errorf("创建OTLP exporter失败: %w", err)
	}

	// service.name用于在Jaeger UI中分组
	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("创建资源属性失败: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		// BatchSpanProcessor批量发送，性能优于逐条发送
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	// 全局Provider：业务代码直接otel.Tracer()获取，
	// 第三方库（HTTP、gRPC）也会自动使用
	otel.SetTracerProvider(tp)

	// W3C Trace Context + Baggage，跨服务调用时自动传递TraceID
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)

	shutdown := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}

	return shutdown, nil
}

// StartSpan 创建一个新的Span
// ctx包含父Span时新Span自动成为子Span，否则成为根Span。
// 必须用返回的ctx调用下游函数，否则无法构建调用树。
//
// Span命名用操作名（BorrowBook），动态值放属性
// （span.SetAttributes(attribute.Int("book_id", 123))）。
func StartSpan(ctx context.Context, tracerName, spanName string) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)
	return tracer.Start(ctx, spanName)
}

// ExtractTraceID 从Context提取TraceID（用于关联日志）
func ExtractTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.SpanContext().IsValid() {
		return ""
	}
	return span.SpanContext().TraceID().String()
}

// ExtractSpanID 从Context提取SpanID
func ExtractSpanID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.SpanContext().IsValid() {
		return ""
	}
	return span.SpanContext().SpanID().String()
}
