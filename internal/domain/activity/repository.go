package activity

import (
	"context"
)

// ListParams 活动日志查询参数
type ListParams struct {
	Page     int
	PageSize int
	Type     *Type // 按活动类型过滤
	UserID   *uint // 按触发者过滤
}

// Repository 活动日志仓储接口
type Repository interface {
	Create(ctx context.Context, a *Activity) error
	List(ctx context.Context, params ListParams) ([]*Activity, int64, error)
}
