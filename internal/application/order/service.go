// Package order 订单应用服务：建单借书、归还与订单列表
package order

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/biblioteka/backend/internal/domain/activity"
	"github.com/biblioteka/backend/internal/domain/book"
	"github.com/biblioteka/backend/internal/domain/order"
	"github.com/biblioteka/backend/internal/domain/user"
	"github.com/biblioteka/backend/pkg/errors"
	"github.com/biblioteka/backend/pkg/metrics"
)

// TxManager 事务管理接口（由infrastructure层的mysql.TxManager实现）
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service 订单应用服务
type Service struct {
	orders   order.Repository
	books    book.Repository
	tx       TxManager
	recorder *activity.Recorder
	log      *zap.Logger
}

// NewService 创建订单应用服务
func NewService(
	orders order.Repository,
	books book.Repository,
	tx TxManager,
	recorder *activity.Recorder,
	log *zap.Logger,
) *Service {
	return &Service{
		orders:   orders,
		books:    books,
		tx:       tx,
		recorder: recorder,
		log:      log,
	}
}

// Create 创建借阅订单（同时把图书借给操作者）
//
// 业务规则：
// 1. 仅普通用户可建单，管理员通过直接借书操作
// 2. 图书已被任何人借出都是409——包括操作者本人（与直接借书的幂等
//    语义不同：重复建单会产生重复订单，必须拒绝）
// 3. 创建时捕获图书快照
// 4. 锁图书行、改借出状态、建订单在同一事务内完成
func (s *Service) Create(ctx context.Context, actor user.Actor, bookID uint) (*order.Order, error) {
	if actor.IsAdmin() {
		return nil, errors.ErrForbidden
	}

	var created *order.Order

	err := s.tx.Transaction(ctx, func(txCtx context.Context) error {
		b, err := s.books.LockByID(txCtx, bookID)
		if err != nil {
			return err
		}

		if b.IsRented() {
			return book.ErrBookAlreadyRented
		}

		if _, err := b.RentTo(actor.ID); err != nil {
			return err
		}
		if err := s.books.Update(txCtx, b); err != nil {
			return err
		}

		o := order.NewOrder(b.ID, actor.ID, order.NewSnapshot(b))
		if err := s.orders.Create(txCtx, o); err != nil {
			return err
		}
		created = o

		metrics.IncCounter(metrics.OrdersCreatedTotal)
		metrics.IncGauge(metrics.ActiveRentals)
		s.recorder.Record(txCtx, activity.TypeOrderCreated, &actor.ID, map[string]interface{}{
			"order_id": o.ID,
			"book_id":  b.ID,
			"title":    b.Title,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Return 归还订单
//
// 业务规则：
// 1. 权限：订单归属者或管理员
// 2. 订单已关闭 → 400（重复归还不是幂等空操作，订单终态不可重入）
// 3. 同步释放图书：只要订单仍引用图书就释放，以订单为准，
//    不管图书当前借给谁（可能已被管理员手动归还后转借）；
//    图书已被删除时订单单独关闭
func (s *Service) Return(ctx context.Context, actor user.Actor, orderID uint) (*order.Order, error) {
	var returned *order.Order

	err := s.tx.Transaction(ctx, func(txCtx context.Context) error {
		o, err := s.orders.FindByID(txCtx, orderID)
		if err != nil {
			return err
		}

		if !actor.CanManage(o.UserID) {
			return errors.ErrForbidden
		}

		if err := o.Close(order.StatusReturned, time.Now()); err != nil {
			return err
		}
		if err := s.orders.Update(txCtx, o); err != nil {
			return err
		}
		returned = o

		if o.BookID != nil {
			b, err := s.books.LockByID(txCtx, *o.BookID)
			switch {
			case err == nil:
				if b.Return() {
					if err := s.books.Update(txCtx, b); err != nil {
						return err
					}
				}
			case errors.IsKind(err, errors.KindNotFound):
				// 图书已被删除，订单单独关闭
			default:
				return err
			}
		}

		metrics.IncCounter(metrics.OrdersReturnedTotal)
		metrics.DecGauge(metrics.ActiveRentals)
		// 图书引用已被清空时从快照解析图书ID
		payload := map[string]interface{}{"order_id": o.ID}
		switch {
		case o.BookID != nil:
			payload["book_id"] = *o.BookID
		case o.Snapshot != nil && o.Snapshot.ID != 0:
			payload["book_id"] = o.Snapshot.ID
		}
		s.recorder.Record(txCtx, activity.TypeOrderReturned, &actor.ID, payload)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return returned, nil
}

// View 订单视图：订单本体加上解析后的图书展示信息
type View struct {
	Order   *order.Order
	Display order.Display
}

// List 分页查询订单列表
//
// 业务规则：
// 1. 普通用户只能看自己的订单（UserID被强制覆盖为actor.ID）
// 2. 管理员可按用户过滤，不过滤时看全部
// 3. 展示信息解析：在库图书实时信息优先，图书已删除时回退到快照；
//    图书批量查询避免N+1
func (s *Service) List(ctx context.Context, actor user.Actor, params order.ListParams) ([]*View, int64, error) {
	if !actor.IsAdmin() {
		uid := actor.ID
		params.UserID = &uid
	}

	orders, total, err := s.orders.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}

	views, err := s.resolveViews(ctx, orders)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// Get 查询订单详情（归属者或管理员）
func (s *Service) Get(ctx context.Context, actor user.Actor, orderID uint) (*View, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(o.UserID) {
		return nil, errors.ErrForbidden
	}

	views, err := s.resolveViews(ctx, []*order.Order{o})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// resolveViews 批量解析订单的展示信息
func (s *Service) resolveViews(ctx context.Context, orders []*order.Order) ([]*View, error) {
	ids := make([]uint, 0, len(orders))
	seen := make(map[uint]bool, len(orders))
	for _, o := range orders {
		if o.BookID != nil && !seen[*o.BookID] {
			seen[*o.BookID] = true
			ids = append(ids, *o.BookID)
		}
	}

	liveBooks, err := s.books.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]*View, 0, len(orders))
	for _, o := range orders {
		var live *book.Book
		if o.BookID != nil {
			live = liveBooks[*o.BookID]
		}
		views = append(views, &View{
			Order:   o,
			Display: order.ResolveDisplay(o, live),
		})
	}
	return views, nil
}
