// Package saga 实现带补偿的多步操作框架
//
// 核心思想：
// 1. 把一个复合操作拆成若干步骤，每步有对应的补偿操作
// 2. 某步失败时，按逆序执行已完成步骤的补偿
// 3. 借阅流程是典型场景：预扣副本 → 记录借阅；记录失败必须把副本放回，
//    否则库存会永久泄漏
//
// 要点：
// - 补偿操作必须幂等（放回副本按馆藏总量钳制，重复执行安全）
// - 补偿失败不中断后续补偿（尽最大努力），但必须记录日志
package saga

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Step 表示Saga中的一个步骤
// Action是正向操作（如预扣副本），Compensate是补偿操作（如放回副本）。
// 最后一步通常无需补偿，Compensate可以为nil。
type Step struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Saga 表示一次带补偿的复合操作
type Saga struct {
	steps    []Step
	executed []Step        // 已执行的步骤（用于补偿）
	timeout  time.Duration // 整体超时时间
}

// NewSaga 创建Saga
//
// 示例：
//
//	sg := saga.NewSaga(10 * time.Second)
//	sg.AddStep("预扣副本", reserveCopy, releaseCopy)
//	sg.AddStep("记录借阅", createLoan, nil)
//	err := sg.Execute(ctx)
func NewSaga(timeout time.Duration) *Saga {
	return &Saga{
		steps:   make([]Step, 0),
		timeout: timeout,
	}
}

// AddStep 添加步骤
// 步骤按添加顺序执行，按逆序补偿。补偿只能依赖本步骤Action的结果，
// 不能依赖后续步骤（逆序执行时后续步骤已被补偿掉）。
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) {
	s.steps = append(s.steps, Step{
		Name:       name,
		Action:     action,
		Compensate: compensate,
	})
}

// Execute 执行Saga
// 按顺序执行每个步骤的Action；某步失败或整体超时时，逆序执行已完成
// 步骤的Compensate，并返回失败原因。补偿使用新的Context，避免因原
// Context已超时导致补偿也失败。
func (s *Saga) Execute(ctx context.Context) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	for i, step := range s.steps {
		select {
		case <-ctx.Done():
			s.compensate(context.Background())
			return fmt.Errorf("saga超时: %w", ctx.Err())
		default:
		}

		if step.Action != nil {
			if err := step.Action(ctx); err != nil {
				s.compensate(context.Background())
				return fmt.Errorf("步骤[%d:%s]执行失败: %w", i, step.Name, err)
			}
		}

		s.executed = append(s.executed, step)
	}

	return nil
}

// compensate 逆序执行补偿
// 补偿失败不中断后续补偿，只记录日志（需人工介入的场景由调用方告警）。
func (s *Saga) compensate(ctx context.Context) {
	for i := len(s.executed) - 1; i >= 0; i-- {
		step := s.executed[i]

		if step.Compensate != nil {
			if err := step.Compensate(ctx); err != nil {
				log.Printf("saga补偿失败[步骤:%s]: %v", step.Name, err)
			}
		}
	}

	s.executed = nil
}
