package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/biblioteka/backend/internal/domain/order"
	apperrors "github.com/biblioteka/backend/pkg/errors"
)

// OrderRepository 订单仓储的GORM实现
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

var _ order.Repository = (*OrderRepository)(nil)

// Create 创建订单
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	model := orderFromEntity(o)
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "create order")
	}
	o.ID = model.ID
	return nil
}

// FindByID 按ID查询订单
func (r *OrderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	var model OrderModel
	if err := getDB(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "find order by id")
	}
	return orderToEntity(&model), nil
}

// Update 更新订单
// 用map更新以保证nil指针字段（book_id/returned_at）也能写回NULL
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	model := orderFromEntity(o)
	err := getDB(ctx, r.db).Model(&OrderModel{ID: model.ID}).
		Updates(map[string]interface{}{
			"book_id":     model.BookID,
			"snapshot":    model.Snapshot,
			"returned_at": model.ReturnedAt,
			"status":      model.Status,
			"updated_at":  model.UpdatedAt,
		}).Error
	if err != nil {
		return apperrors.Wrap(err, "update order")
	}
	return nil
}

// orderSortFields 订单列表允许的排序字段
var orderSortFields = map[string]bool{
	"created_at":  true,
	"rented_at":   true,
	"returned_at": true,
	"status":      true,
}

// List 分页查询订单列表
func (r *OrderRepository) List(ctx context.Context, params order.ListParams) ([]*order.Order, int64, error) {
	query := getDB(ctx, r.db).Model(&OrderModel{})

	if params.UserID != nil {
		query = query.Where("user_id = ?", *params.UserID)
	}
	if params.BookID != nil {
		query = query.Where("book_id = ?", *params.BookID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", params.Status.String())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "count orders")
	}

	var models []OrderModel
	query = query.Order(sortClause(params.SortBy, params.Desc, orderSortFields))
	if err := applyPagination(query, params.Page, params.PageSize).Find(&models).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "list orders")
	}

	orders := make([]*order.Order, 0, len(models))
	for i := range models {
		orders = append(orders, orderToEntity(&models[i]))
	}
	return orders, total, nil
}

// FindActiveByUserID 查询用户的全部活跃订单
func (r *OrderRepository) FindActiveByUserID(ctx context.Context, userID uint) ([]*order.Order, error) {
	var models []OrderModel
	err := getDB(ctx, r.db).
		Where("user_id = ? AND returned_at IS NULL AND status = ?", userID, order.StatusActive.String()).
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "find active orders by user")
	}

	orders := make([]*order.Order, 0, len(models))
	for i := range models {
		orders = append(orders, orderToEntity(&models[i]))
	}
	return orders, nil
}

// BackfillSnapshots 为指定图书的所有缺快照订单补齐快照
// 快照存在JSON列中，是否缺失在Go侧判断（加载→补齐→写回），
// 该方法在级联事务内执行，不存在并发窗口
func (r *OrderRepository) BackfillSnapshots(ctx context.Context, bookID uint, snap *order.Snapshot) error {
	var models []OrderModel
	if err := getDB(ctx, r.db).Where("book_id = ?", bookID).Find(&models).Error; err != nil {
		return apperrors.Wrap(err, "load orders for backfill")
	}

	for i := range models {
		o := orderToEntity(&models[i])
		if !o.EnsureSnapshot(snap) {
			continue
		}
		err := getDB(ctx, r.db).Model(&OrderModel{ID: o.ID}).
			Updates(map[string]interface{}{
				"snapshot":   snapshotFromEntity(o.Snapshot),
				"updated_at": o.UpdatedAt,
			}).Error
		if err != nil {
			return apperrors.Wrap(err, "backfill snapshot")
		}
	}
	return nil
}

// CloseActiveByBookID 关闭指定图书的全部活跃订单
func (r *OrderRepository) CloseActiveByBookID(ctx context.Context, bookID uint, at time.Time, status order.Status) error {
	err := getDB(ctx, r.db).Model(&OrderModel{}).
		Where("book_id = ? AND returned_at IS NULL AND status = ?", bookID, order.StatusActive.String()).
		Updates(map[string]interface{}{
			"returned_at": at,
			"status":      status.String(),
			"updated_at":  time.Now(),
		}).Error
	if err != nil {
		return apperrors.Wrap(err, "close active orders by book")
	}
	return nil
}

// CloseActiveByUserID 关闭指定用户的全部活跃订单
func (r *OrderRepository) CloseActiveByUserID(ctx context.Context, userID uint, at time.Time, status order.Status) error {
	err := getDB(ctx, r.db).Model(&OrderModel{}).
		Where("user_id = ? AND returned_at IS NULL AND status = ?", userID, order.StatusActive.String()).
		Updates(map[string]interface{}{
			"returned_at": at,
			"status":      status.String(),
			"updated_at":  time.Now(),
		}).Error
	if err != nil {
		return apperrors.Wrap(err, "close active orders by user")
	}
	return nil
}

// ClearBookRef 清空指定图书在所有订单上的引用
func (r *OrderRepository) ClearBookRef(ctx context.Context, bookID uint) error {
	err := getDB(ctx, r.db).Model(&OrderModel{}).
		Where("book_id = ?", bookID).
		Updates(map[string]interface{}{
			"book_id":    nil,
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return apperrors.Wrap(err, "clear book ref")
	}
	return nil
}

// DeleteByUserID 删除指定用户的全部订单
func (r *OrderRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	err := getDB(ctx, r.db).
		Where("user_id = ?", userID).
		Delete(&OrderModel{}).Error
	if err != nil {
		return apperrors.Wrap(err, "delete orders by user")
	}
	return nil
}

// orderToEntity Model转领域实体
func orderToEntity(m *OrderModel) *order.Order {
	status, ok := order.ParseStatus(m.Status)
	if !ok {
		status = order.StatusActive
	}
	return &order.Order{
		ID:         m.ID,
		BookID:     m.BookID,
		UserID:     m.UserID,
		Snapshot:   snapshotToEntity(m.Snapshot),
		RentedAt:   m.RentedAt,
		ReturnedAt: m.ReturnedAt,
		Status:     status,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// orderFromEntity 领域实体转Model
func orderFromEntity(o *order.Order) *OrderModel {
	return &OrderModel{
		ID:         o.ID,
		BookID:     o.BookID,
		UserID:     o.UserID,
		Snapshot:   snapshotFromEntity(o.Snapshot),
		RentedAt:   o.RentedAt,
		ReturnedAt: o.ReturnedAt,
		Status:     o.Status.String(),
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}

func snapshotToEntity(m *SnapshotModel) *order.Snapshot {
	if m == nil {
		return nil
	}
	return &order.Snapshot{
		ID:     m.ID,
		Title:  m.Title,
		Author: m.Author,
		Year:   m.Year,
		Image:  m.Image,
	}
}

func snapshotFromEntity(s *order.Snapshot) *SnapshotModel {
	if s == nil {
		return nil
	}
	return &SnapshotModel{
		ID:     s.ID,
		Title:  s.Title,
		Author: s.Author,
		Year:   s.Year,
		Image:  s.Image,
	}
}
