package circuitbreaker

import (
	"errors"
	"testing"
	"time"
)

// TestCircuitBreaker_ClosedState 测试关闭状态（正常）
func TestCircuitBreaker_ClosedState(t *testing.T) {
	cb := NewCircuitBreaker("test", Config{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	for i := 0; i < 10; i++ {
		err := cb.Execute(func() error {
			return nil
		})
		if err != nil {
			t.Fatalf("期望成功，实际失败: %v", err)
		}
	}

	if cb.State() != StateClosed {
		t.Errorf("期望状态为CLOSED，实际%s", cb.State())
	}

	counts := cb.Counts()
	if counts.TotalSuccesses != 10 {
		t.Errorf("期望成功10次，实际%d次", counts.TotalSuccesses)
	}
}

// TestCircuitBreaker_OpenState 测试打开状态（熔断）
func TestCircuitBreaker_OpenState(t *testing.T) {
	cb := NewCircuitBreaker("test", Config{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	for i := 0; i < 5; i++ {
		_ = cb.Execute(func() error {
			return errors.New("mq unavailable")
		})
	}

	if cb.State() != StateOpen {
		t.Errorf("期望状态为OPEN，实际%s", cb.State())
	}

	// 熔断后请求应立即失败，不调用实际函数
	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})

	if err != ErrOpenState {
		t.Errorf("期望返回ErrOpenState，实际%v", err)
	}

	if called {
		t.Error("熔断器打开时不应该调用实际函数")
	}
}

// TestCircuitBreaker_HalfOpenState 测试半开状态（探测恢复）
func TestCircuitBreaker_HalfOpenState(t *testing.T) {
	cb := NewCircuitBreaker("test", Config{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     100 * time.Millisecond, // 短超时方便测试
		ReadyToTrip: func(counts Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error {
			return errors.New("fail")
		})
	}

	if cb.State() != StateOpen {
		t.Fatalf("期望状态为OPEN，实际%s", cb.State())
	}

	time.Sleep(150 * time.Millisecond)

	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})

	if err != nil {
		t.Errorf("半开状态第一次请求期望成功，实际%v", err)
	}

	if !called {
		t.Error("半开状态应该允许请求通过")
	}

	if cb.State() != StateClosed {
		t.Errorf("期望状态转为CLOSED，实际%s", cb.State())
	}
}

// TestCircuitBreaker_HalfOpenToOpen 测试半开状态失败后转回打开
func TestCircuitBreaker_HalfOpenToOpen(t *testing.T) {
	cb := NewCircuitBreaker("test", Config{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     100 * time.Millisecond,
		ReadyToTrip: func(counts Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error {
			return errors.New("fail")
		})
	}

	time.Sleep(150 * time.Millisecond)

	_ = cb.Execute(func() error {
		return errors.New("still fail")
	})

	if cb.State() != StateOpen {
		t.Errorf("期望状态转回OPEN，实际%s", cb.State())
	}
}

// TestCircuitBreaker_StateChangeCallback 测试状态变化回调
func TestCircuitBreaker_StateChangeCallback(t *testing.T) {
	stateChanges := make([]string, 0)

	cb := NewCircuitBreaker("test", Config{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     100 * time.Millisecond,
		ReadyToTrip: func(counts Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	cb.SetStateChangeCallback(func(name string, from State, to State) {
		stateChanges = append(stateChanges, from.String()+"->"+to.String())
	})

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error {
			return errors.New("fail")
		})
	}

	time.Sleep(150 * time.Millisecond)
	_ = cb.Execute(func() error {
		return nil
	})

	expectedChanges := []string{
		"CLOSED->OPEN",
		"OPEN->HALF_OPEN",
		"HALF_OPEN->CLOSED",
	}

	if len(stateChanges) != len(expectedChanges) {
		t.Errorf("期望%d次状态变化，实际%d次: %v", len(expectedChanges), len(stateChanges), stateChanges)
	}

	for i, expected := range expectedChanges {
		if i >= len(stateChanges) {
			break
		}
		if stateChanges[i] != expected {
			t.Errorf("第%d次状态变化期望%s，实际%s", i, expected, stateChanges[i])
		}
	}
}

// TestCircuitBreaker_FailureRate 测试基于失败率的熔断
func TestCircuitBreaker_FailureRate(t *testing.T) {
	cb := NewCircuitBreaker("test", Config{
		MaxRequests: 3,
		Interval:    1 * time.Hour, // 长时间窗口，避免统计被重置
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts Counts) bool {
			return counts.Requests >= 10 && counts.FailureRate() > 0.5
		},
	})

	// 10次请求：4次成功，6次失败（失败率60%）
	for i := 0; i < 10; i++ {
		index := i
		_ = cb.Execute(func() error {
			if index < 4 {
				return nil
			}
			return errors.New("fail")
		})
	}

	if cb.State() != StateOpen {
		t.Errorf("期望状态为OPEN（失败率超过50%%），实际%s", cb.State())
	}
}

// mockEventBroker 模拟事件代理（前failCount次发布失败）
type mockEventBroker struct {
	failCount int
	callCount int
}

func (b *mockEventBroker) Publish(routingKey string, message interface{}) error {
	b.callCount++
	if b.callCount <= b.failCount {
		return errors.New("broker unavailable")
	}
	return nil
}

// TestCircuitBreaker_EventPublishing 借阅事件发布的保护场景
// MQ宕机时：前5次失败触发熔断，后续请求快速失败不再打到MQ，
// 超时后半开探测，成功则恢复。
func TestCircuitBreaker_EventPublishing(t *testing.T) {
	broker := &mockEventBroker{failCount: 5}

	cb := NewCircuitBreaker("loan-events", Config{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     200 * time.Millisecond,
		ReadyToTrip: func(counts Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	for i := 1; i <= 10; i++ {
		_ = cb.Execute(func() error {
			return broker.Publish("loan.created", map[string]uint{"loan_id": 1})
		})
	}

	if broker.callCount != 5 {
		t.Errorf("熔断后不应继续调用MQ，期望调用5次，实际%d次", broker.callCount)
	}

	time.Sleep(250 * time.Millisecond)

	err := cb.Execute(func() error {
		return broker.Publish("loan.created", map[string]uint{"loan_id": 2})
	})

	if err != nil {
		t.Errorf("半开状态下期望成功，实际失败: %v", err)
	}

	if cb.State() != StateClosed {
		t.Errorf("期望状态恢复为CLOSED，实际%s", cb.State())
	}
}

// BenchmarkCircuitBreaker 性能基准测试
func BenchmarkCircuitBreaker(b *testing.B) {
	cb := NewCircuitBreaker("bench", Config{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cb.Execute(func() error {
			return nil
		})
	}
}
