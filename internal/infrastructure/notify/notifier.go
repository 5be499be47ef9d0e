// Package notify 负责借阅领域事件的对外发布
//
// 借阅主流程落库后发布loan.created/loan.completed/loan.cancelled事件,
// 通知类消费者(到期提醒等)异步处理。发布是尽力而为的旁路:
// MQ故障不能拖垮借阅,所以发布走熔断器,失败只记日志和指标,
// 永远不向调用方返回错误。
package notify

import (
	"context"
	"log"
	"time"

	"github.com/cerbrary/cerbrary/internal/domain/loan"
	"github.com/cerbrary/cerbrary/pkg/circuitbreaker"
	"github.com/cerbrary/cerbrary/pkg/metrics"
	"github.com/cerbrary/cerbrary/pkg/mq"
	"github.com/cerbrary/cerbrary/pkg/tracing"
)

// 路由键
const (
	RouteLoanCreated   = "loan.created"
	RouteLoanCompleted = "loan.completed"
	RouteLoanCancelled = "loan.cancelled"
)

// LoanEvent 借阅事件载荷(JSON)
type LoanEvent struct {
	LoanID     uint       `json:"loan_id"`
	BookID     uint       `json:"book_id"`
	UserID     uint       `json:"user_id"`
	Status     string     `json:"status"`
	LoanDate   time.Time  `json:"loan_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	TraceID    string     `json:"trace_id,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// LoanNotifier 借阅事件通知器接口
// 实现必须是尽力而为的:任何失败都不向调用方传播
type LoanNotifier interface {
	LoanCreated(ctx context.Context, l *loan.Loan)
	LoanCompleted(ctx context.Context, l *loan.Loan)
	LoanCancelled(ctx context.Context, l *loan.Loan)
}

// publisher mq.Publisher满足的最小接口(便于测试注入)
type publisher interface {
	Publish(routingKey string, message interface{}) error
}

// mqNotifier 基于RabbitMQ的通知器,发布经过熔断器保护
type mqNotifier struct {
	pub      publisher
	breaker  *circuitbreaker.CircuitBreaker
	exchange string
}

// NewLoanNotifier 创建借阅事件通知器
// 熔断策略:连续5次发布失败后熔断30秒,半开放行3个探测请求
func NewLoanNotifier(pub *mq.Publisher, exchange string) LoanNotifier {
	cb := circuitbreaker.NewCircuitBreaker("loan-events", circuitbreaker.Config{
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	cb.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		log.Printf("熔断器[%s]状态变化: %s -> %s", name, from, to)
		metrics.SetGaugeVec(metrics.CircuitBreakerState,
			map[string]string{"name": name}, float64(to))
	})

	return &mqNotifier{pub: pub, breaker: cb, exchange: exchange}
}

func (n *mqNotifier) LoanCreated(ctx context.Context, l *loan.Loan) {
	n.publish(ctx, RouteLoanCreated, l)
}

func (n *mqNotifier) LoanCompleted(ctx context.Context, l *loan.Loan) {
	n.publish(ctx, RouteLoanCompleted, l)
}

func (n *mqNotifier) LoanCancelled(ctx context.Context, l *loan.Loan) {
	n.publish(ctx, RouteLoanCancelled, l)
}

// publish 经熔断器发布事件,失败只记日志和指标
func (n *mqNotifier) publish(ctx context.Context, routingKey string, l *loan.Loan) {
	event := LoanEvent{
		LoanID:     l.ID,
		BookID:     l.BookID,
		UserID:     l.UserID,
		Status:     l.Status.String(),
		LoanDate:   l.LoanDate,
		DueDate:    l.DueDate,
		ReturnDate: l.ReturnDate,
		TraceID:    tracing.ExtractTraceID(ctx),
		OccurredAt: time.Now(),
	}

	err := n.breaker.Execute(func() error {
		return n.pub.Publish(routingKey, event)
	})

	labels := map[string]string{"name": "loan-events"}
	switch {
	case err == circuitbreaker.ErrOpenState:
		labels["result"] = "rejected"
		metrics.IncCounterVec(metrics.CircuitBreakerRequests, labels)
		log.Printf("借阅事件被熔断丢弃: key=%s, loan_id=%d", routingKey, l.ID)
	case err != nil:
		labels["result"] = "failure"
		metrics.IncCounterVec(metrics.CircuitBreakerRequests, labels)
		log.Printf("借阅事件发布失败: key=%s, loan_id=%d, err=%v", routingKey, l.ID, err)
	default:
		labels["result"] = "success"
		metrics.IncCounterVec(metrics.CircuitBreakerRequests, labels)
		metrics.IncCounterVec(metrics.MessagesPublishedTotal,
			map[string]string{"exchange": n.exchange, "routing_key": routingKey})
	}
}

// nopNotifier MQ未启用时的空实现,只记日志
type nopNotifier struct{}

// NewNopNotifier 创建空通知器
func NewNopNotifier() LoanNotifier {
	return nopNotifier{}
}

func (nopNotifier) LoanCreated(ctx context.Context, l *loan.Loan) {
	log.Printf("借阅事件(未发布,MQ未启用): %s, loan_id=%d", RouteLoanCreated, l.ID)
}

func (nopNotifier) LoanCompleted(ctx context.Context, l *loan.Loan) {
	log.Printf("借阅事件(未发布,MQ未启用): %s, loan_id=%d", RouteLoanCompleted, l.ID)
}

func (nopNotifier) LoanCancelled(ctx context.Context, l *loan.Loan) {
	log.Printf("借阅事件(未发布,MQ未启用): %s, loan_id=%d", RouteLoanCancelled, l.ID)
}
