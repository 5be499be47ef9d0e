// Package metrics 提供基于Prometheus的指标收集
//
// 指标类型选择：
// - Counter：只增不减（请求总数、借阅总数、失败总数）
// - Gauge：可增可减的瞬时值（处理中的请求数、熔断器状态）
// - Histogram：观测值分布（请求耗时，可查P50/P90/P99）
//
// 命名规范：Counter以_total结尾，Histogram以单位结尾（_seconds），
// Gauge用现在时态。标签只用有限取值的维度（method/path/status），
// 禁止user_id这类高基数标签。
//
// 使用方式：
//
//	metrics.InitMetrics()
//	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// initialized 标记是否已初始化（防止重复注册panic）
	initialized bool

	// HTTP请求指标

	// HTTPRequestsTotal HTTP请求总数
	// 标签：method、path、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// 借阅业务指标

	// LoansCreatedTotal 借出成功总数
	LoansCreatedTotal prometheus.Counter

	// LoansFailedTotal 借出失败总数（含无可借副本）
	LoansFailedTotal prometheus.Counter

	// LoansReturnedTotal 归还总数
	LoansReturnedTotal prometheus.Counter

	// LoansCancelledTotal 取消总数
	LoansCancelledTotal prometheus.Counter

	// LoanBorrowDuration 借出流程耗时
	LoanBorrowDuration prometheus.Histogram

	// LoansInProgress 正在处理的借出请求数
	LoansInProgress prometheus.Gauge

	// 熔断器指标

	// CircuitBreakerState 熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求总数
	// 标签：name、result（success/failure/rejected）
	CircuitBreakerRequests *prometheus.CounterVec

	// Saga指标

	// SagaExecutionsTotal Saga执行总数，标签：result（success/failure）
	SagaExecutionsTotal *prometheus.CounterVec

	// SagaExecutionDuration Saga执行耗时
	SagaExecutionDuration prometheus.Histogram

	// SagaCompensationsTotal 补偿执行总数
	SagaCompensationsTotal prometheus.Counter

	// 消息队列指标

	// MessagesPublishedTotal 消息发布总数，标签：exchange、routing_key
	MessagesPublishedTotal *prometheus.CounterVec

	// MessagesConsumedTotal 消息消费总数，标签：queue、result
	MessagesConsumedTotal *prometheus.CounterVec

	// MessageProcessingDuration 消息处理耗时
	MessageProcessingDuration prometheus.Histogram
)

// InitMetrics 初始化所有Prometheus指标
// 必须在程序启动时调用一次，promauto.New*会自动注册到默认Registry。
func InitMetrics() {
	if initialized {
		return
	}
	initialized = true

	// HTTP请求指标
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	// 借阅业务指标
	LoansCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loans_created_total",
			Help: "借出成功总数",
		},
	)

	LoansFailedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loans_failed_total",
			Help: "借出失败总数",
		},
	)

	LoansReturnedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loans_returned_total",
			Help: "归还总数",
		},
	)

	LoansCancelledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loans_cancelled_total",
			Help: "借阅取消总数",
		},
	)

	LoanBorrowDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "loan_borrow_duration_seconds",
			Help: "借出流程耗时（秒）",
			// 借出涉及预扣副本+落库+发事件
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
	)

	LoansInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "loans_in_progress",
			Help: "正在处理的借出请求数",
		},
	)

	// 熔断器指标
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "熔断器请求总数",
		},
		[]string{"name", "result"},
	)

	// Saga指标
	SagaExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saga_executions_total",
			Help: "Saga执行总数",
		},
		[]string{"result"},
	)

	SagaExecutionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "saga_execution_duration_seconds",
			Help:    "Saga执行耗时（秒）",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30},
		},
	)

	SagaCompensationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "saga_compensations_total",
			Help: "Saga补偿执行总数",
		},
	)

	// 消息队列指标
	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"exchange", "routing_key"},
	)

	MessagesConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_consumed_total",
			Help: "消息消费总数",
		},
		[]string{"queue", "result"},
	)

	MessageProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "message_processing_duration_seconds",
			Help:    "消息处理耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5},
		},
	)
}

// IncCounter 递增Counter
func IncCounter(counter prometheus.Counter) {
	counter.Inc()
}

// IncCounterVec 递增CounterVec（带标签）
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

// IncGauge 递增Gauge
func IncGauge(gauge prometheus.Gauge) {
	gauge.Inc()
}

// DecGauge 递减Gauge
func DecGauge(gauge prometheus.Gauge) {
	gauge.Dec()
}

// SetGauge 设置Gauge值
func SetGauge(gauge prometheus.Gauge, value float64) {
	gauge.Set(value)
}

// SetGaugeVec 设置GaugeVec值（带标签）
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	gauge.With(labels).Set(value)
}

// ObserveHistogram 记录Histogram观测值
func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	histogram.Observe(value)
}

// ObserveHistogramVec 记录HistogramVec观测值（带标签）
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	histogram.With(labels).Observe(value)
}
