// Package saga 提供显式的多步操作序列执行器
//
// 设计说明：
// 1. 存储层不提供跨集合事务，删除级联（删书/删用户）被建模为命名步骤序列
// 2. 每个步骤可以注册补偿操作；级联场景按参考行为不注册补偿（前向执行，
//    部分失败时已完成的步骤保持生效，调用方收到失败步骤的错误）
// 3. 步骤本身必须幂等，序列重放不会产生额外副作用
package saga

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Step 序列中的一个步骤
type Step struct {
	Name       string                          // 步骤名称（用于日志和错误信息）
	Action     func(ctx context.Context) error // 正向操作
	Compensate func(ctx context.Context) error // 补偿操作（可以为nil）
}

// Saga 一个多步操作序列
type Saga struct {
	steps    []Step
	executed []Step
	timeout  time.Duration
	log      *zap.Logger
}

// New 创建序列执行器
// timeout为0时不限制整体执行时间
func New(timeout time.Duration, log *zap.Logger) *Saga {
	if log == nil {
		log = zap.NewNop()
	}
	return &Saga{
		steps:   make([]Step, 0),
		timeout: timeout,
		log:     log,
	}
}

// AddStep 追加一个步骤
// 步骤按添加顺序执行，补偿按逆序执行
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) {
	s.steps = append(s.steps, Step{
		Name:       name,
		Action:     action,
		Compensate: compensate,
	})
}

// Execute 顺序执行全部步骤
// 某步骤失败时：
// 1. 逆序执行已完成步骤中注册了补偿的部分（未注册补偿的步骤保持生效）
// 2. 返回带步骤名的错误，调用方据此观察到部分失败状态
func (s *Saga) Execute(ctx context.Context) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	for i, step := range s.steps {
		select {
		case <-ctx.Done():
			// 补偿使用新Context，避免补偿本身也超时
			s.compensate(context.Background())
			return fmt.Errorf("saga timeout before step %q: %w", step.Name, ctx.Err())
		default:
		}

		if step.Action != nil {
			if err := step.Action(ctx); err != nil {
				s.compensate(context.Background())
				return fmt.Errorf("step[%d:%s] failed: %w", i, step.Name, err)
			}
		}

		s.log.Debug("saga step completed", zap.String("step", step.Name))
		s.executed = append(s.executed, step)
	}

	return nil
}

// compensate 逆序执行补偿
// 即使某个补偿失败也继续执行后续补偿（尽最大努力），失败只记录日志
func (s *Saga) compensate(ctx context.Context) {
	for i := len(s.executed) - 1; i >= 0; i-- {
		step := s.executed[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			s.log.Warn("saga compensation failed",
				zap.String("step", step.Name),
				zap.Error(err))
		}
	}
	s.executed = nil
}
