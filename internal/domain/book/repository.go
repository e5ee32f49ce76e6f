package book

import (
	"context"
)

// ListParams 图书列表查询参数
type ListParams struct {
	Page     int
	PageSize int
	Keyword  string // 按title/author模糊匹配
	SortBy   string
	Desc     bool
}

// Repository 图书仓储接口
type Repository interface {
	Create(ctx context.Context, b *Book) error
	FindByID(ctx context.Context, id uint) (*Book, error)
	// FindByIDs 批量查询（订单列表解析展示信息时使用，避免N+1查询）
	FindByIDs(ctx context.Context, ids []uint) (map[uint]*Book, error)
	// LockByID 行锁查询（SELECT ... FOR UPDATE），必须在事务内调用
	LockByID(ctx context.Context, id uint) (*Book, error)
	Update(ctx context.Context, b *Book) error
	Delete(ctx context.Context, id uint) error
	// ReleaseByRenter 释放指定用户借出的全部图书（用户删除级联）
	ReleaseByRenter(ctx context.Context, userID uint) error
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)
}
