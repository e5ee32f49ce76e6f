// Package activity 活动日志应用服务
package activity

import (
	"context"

	"github.com/biblioteka/backend/internal/domain/activity"
	"github.com/biblioteka/backend/internal/domain/user"
	"github.com/biblioteka/backend/pkg/errors"
)

// Service 活动日志应用服务
type Service struct {
	activities activity.Repository
}

// NewService 创建活动日志应用服务
func NewService(activities activity.Repository) *Service {
	return &Service{activities: activities}
}

// List 分页查询活动日志（仅管理员）
func (s *Service) List(ctx context.Context, actor user.Actor, params activity.ListParams) ([]*activity.Activity, int64, error) {
	if !actor.IsAdmin() {
		return nil, 0, errors.ErrForbidden
	}
	return s.activities.List(ctx, params)
}
