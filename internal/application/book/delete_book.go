package book

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/biblioteka/backend/internal/domain/activity"
	"github.com/biblioteka/backend/internal/domain/order"
	"github.com/biblioteka/backend/pkg/metrics"
	"github.com/biblioteka/backend/pkg/saga"
)

// Delete 删除图书（级联维护历史订单）
//
// 业务规则（步骤顺序不可调换）：
// 1. 先为该图书的全部缺快照订单补齐快照——之后订单将失去图书引用，
//    快照是唯一的展示来源
// 2. 关闭该图书的全部活跃订单：设置归还时间，终态book_deleted
// 3. 清除所有订单上的图书引用
// 4. 删除图书本身（软删除）
// 整个级联在事务中执行；成功后写BOOK_DELETED日志
func (s *Service) Delete(ctx context.Context, actorID, bookID uint) error {
	now := time.Now()
	var title string

	err := s.tx.Transaction(ctx, func(txCtx context.Context) error {
		b, err := s.books.FindByID(txCtx, bookID)
		if err != nil {
			return err
		}
		title = b.Title
		snap := order.NewSnapshot(b)

		seq := saga.New(0, s.log)

		seq.AddStep("backfill-snapshots", func(c context.Context) error {
			return s.orders.BackfillSnapshots(c, bookID, snap)
		}, nil)

		seq.AddStep("close-active-orders", func(c context.Context) error {
			return s.orders.CloseActiveByBookID(c, bookID, now, order.StatusBookDeleted)
		}, nil)

		seq.AddStep("clear-book-refs", func(c context.Context) error {
			return s.orders.ClearBookRef(c, bookID)
		}, nil)

		seq.AddStep("delete-book", func(c context.Context) error {
			return s.books.Delete(c, bookID)
		}, nil)

		return seq.Execute(txCtx)
	})

	if err != nil {
		metrics.IncCounterVec(metrics.CascadeExecutionsTotal,
			map[string]string{"cascade": "book", "result": "failure"})
		return err
	}

	metrics.IncCounterVec(metrics.CascadeExecutionsTotal,
		map[string]string{"cascade": "book", "result": "success"})

	s.recorder.Record(ctx, activity.TypeBookDeleted, &actorID, map[string]interface{}{
		"book_id": bookID,
		"title":   title,
	})

	s.log.Info("图书已删除",
		zap.Uint("book_id", bookID),
		zap.String("title", title))
	return nil
}
