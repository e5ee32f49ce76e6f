package user

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/biblioteka/backend/internal/domain/order"
	"github.com/biblioteka/backend/internal/domain/user"
	"github.com/biblioteka/backend/pkg/errors"
	"github.com/biblioteka/backend/pkg/metrics"
	"github.com/biblioteka/backend/pkg/saga"
)

// Delete 删除用户账号（级联清理）
//
// 业务规则：
// 1. 仅管理员可删除用户，且不能删除自己
// 2. 级联顺序：释放其活跃订单引用的图书（以订单为准，不管图书当前
//    借给谁）→ 释放其直接借阅的图书 → 关闭其活跃订单（终态canceled）→
//    清除其全部订单 → 删除用户
// 3. 用户不存在时也先执行清理再报404（清理步骤对不存在的用户是空操作）
// 4. 整个级联在事务中执行，步骤建模为命名序列便于定位失败位置
func (s *Service) Delete(ctx context.Context, actor user.Actor, id uint) error {
	if !actor.IsAdmin() {
		return errors.ErrForbidden
	}
	if actor.ID == id {
		return user.ErrCannotDeleteSelf
	}

	now := time.Now()

	err := s.tx.Transaction(ctx, func(txCtx context.Context) error {
		seq := saga.New(0, s.log)

		seq.AddStep("release-order-books", func(c context.Context) error {
			active, err := s.orders.FindActiveByUserID(c, id)
			if err != nil {
				return err
			}
			for _, o := range active {
				if o.BookID == nil {
					continue
				}
				b, err := s.books.LockByID(c, *o.BookID)
				if err != nil {
					if errors.IsKind(err, errors.KindNotFound) {
						continue
					}
					return err
				}
				if b.Return() {
					if err := s.books.Update(c, b); err != nil {
						return err
					}
				}
			}
			return nil
		}, nil)

		seq.AddStep("release-direct-rentals", func(c context.Context) error {
			return s.books.ReleaseByRenter(c, id)
		}, nil)

		seq.AddStep("close-active-orders", func(c context.Context) error {
			return s.orders.CloseActiveByUserID(c, id, now, order.StatusCanceled)
		}, nil)

		seq.AddStep("purge-orders", func(c context.Context) error {
			return s.orders.DeleteByUserID(c, id)
		}, nil)

		seq.AddStep("delete-user", func(c context.Context) error {
			return s.users.Delete(c, id)
		}, nil)

		return seq.Execute(txCtx)
	})

	if err != nil {
		metrics.IncCounterVec(metrics.CascadeExecutionsTotal,
			map[string]string{"cascade": "user", "result": "failure"})
		// 清理步骤全是空操作、最后删除命中0行 → 用户本就不存在
		if errors.IsKind(err, errors.KindNotFound) {
			return user.ErrUserNotFound
		}
		return err
	}

	metrics.IncCounterVec(metrics.CascadeExecutionsTotal,
		map[string]string{"cascade": "user", "result": "success"})

	if s.sessions != nil {
		if err := s.sessions.DeleteSession(ctx, id); err != nil {
			s.log.Warn("删除被删用户会话失败", zap.Uint("user_id", id), zap.Error(err))
		}
	}

	s.log.Info("用户已删除",
		zap.Uint("actor_id", actor.ID),
		zap.Uint("user_id", id))
	return nil
}
