package user

import (
	"context"
)

// ListParams 用户列表查询参数
type ListParams struct {
	Page     int
	PageSize int
	Keyword  string // 按name/email模糊匹配
	SortBy   string // 排序字段，空值时按created_at
	Desc     bool
}

// Repository 用户仓储接口
// 设计说明：接口定义在domain层，实现在infrastructure层（依赖倒置）
type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, params ListParams) ([]*User, int64, error)
}
