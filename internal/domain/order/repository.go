package order

import (
	"context"
	"time"
)

// ListParams 订单列表查询参数
type ListParams struct {
	Page     int
	PageSize int
	SortBy   string
	Desc     bool
	UserID   *uint   // 非nil时只查该用户的订单（普通用户强制为自己）
	BookID   *uint   // 非nil时只查该图书的订单
	Status   *Status // 非nil时按状态过滤
}

// Repository 订单仓储接口
//
// 批量方法（BackfillSnapshots/CloseActiveByBookID/ClearBookRef/DeleteByUserID）
// 服务于删除级联，必须在事务内调用以保证级联步骤的原子性。
type Repository interface {
	Create(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id uint) (*Order, error)
	Update(ctx context.Context, o *Order) error
	List(ctx context.Context, params ListParams) ([]*Order, int64, error)

	// FindActiveByUserID 查询用户的全部活跃订单
	FindActiveByUserID(ctx context.Context, userID uint) ([]*Order, error)

	// BackfillSnapshots 为指定图书的所有缺快照订单补齐快照
	BackfillSnapshots(ctx context.Context, bookID uint, snap *Snapshot) error

	// CloseActiveByBookID 关闭指定图书的全部活跃订单（设置归还时间与终态）
	CloseActiveByBookID(ctx context.Context, bookID uint, at time.Time, status Status) error

	// CloseActiveByUserID 关闭指定用户的全部活跃订单（用户删除级联）
	CloseActiveByUserID(ctx context.Context, userID uint, at time.Time, status Status) error

	// ClearBookRef 清空指定图书在所有订单上的引用
	ClearBookRef(ctx context.Context, bookID uint) error

	// DeleteByUserID 删除指定用户的全部订单（用户删除级联）
	DeleteByUserID(ctx context.Context, userID uint) error
}
