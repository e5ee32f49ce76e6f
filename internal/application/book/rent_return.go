package book

import (
	"context"

	"go.uber.org/zap"

	"github.com/biblioteka/backend/internal/domain/activity"
	"github.com/biblioteka/backend/internal/domain/book"
	"github.com/biblioteka/backend/internal/domain/user"
	"github.com/biblioteka/backend/pkg/errors"
	"github.com/biblioteka/backend/pkg/metrics"
)

// Rent 直接借书（不创建订单）
//
// 业务规则：
// 1. 在架 → 借出给操作者
// 2. 已被操作者本人借出 → 幂等成功，不写活动日志
// 3. 已被其他用户借出 → 409冲突
// 4. 行锁防止并发借出同一本书
func (s *Service) Rent(ctx context.Context, actor user.Actor, bookID uint) (*book.Book, error) {
	var result *book.Book

	err := s.tx.Transaction(ctx, func(txCtx context.Context) error {
		b, err := s.books.LockByID(txCtx, bookID)
		if err != nil {
			return err
		}

		changed, err := b.RentTo(actor.ID)
		if err != nil {
			return err
		}
		result = b

		if !changed {
			return nil
		}
		if err := s.books.Update(txCtx, b); err != nil {
			return err
		}

		metrics.IncCounter(metrics.BooksRentedTotal)
		metrics.IncGauge(metrics.ActiveRentals)
		s.recorder.Record(txCtx, activity.TypeBookRented, &actor.ID, map[string]interface{}{
			"book_id": b.ID,
			"title":   b.Title,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Return 直接还书
//
// 业务规则：
// 1. 权限检查先于空操作判定：只有管理员或当前借阅者可归还，
//    图书在架时没有借阅者，非管理员一律403
// 2. 管理员归还在架图书 → 幂等成功，不写活动日志
// 3. 归还成功写BOOK_RETURNED日志
func (s *Service) Return(ctx context.Context, actor user.Actor, bookID uint) (*book.Book, error) {
	var result *book.Book

	err := s.tx.Transaction(ctx, func(txCtx context.Context) error {
		b, err := s.books.LockByID(txCtx, bookID)
		if err != nil {
			return err
		}

		if !actor.IsAdmin() && !b.RentedByUser(actor.ID) {
			return errors.ErrForbidden
		}

		result = b
		if !b.Return() {
			return nil
		}
		if err := s.books.Update(txCtx, b); err != nil {
			return err
		}

		metrics.IncCounter(metrics.BooksReturnedTotal)
		metrics.DecGauge(metrics.ActiveRentals)
		s.recorder.Record(txCtx, activity.TypeBookReturned, &actor.ID, map[string]interface{}{
			"book_id": b.ID,
			"title":   b.Title,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("图书归还处理完成",
		zap.Uint("book_id", bookID),
		zap.Uint("actor_id", actor.ID))
	return result, nil
}
