package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/biblioteka/backend/internal/domain/activity"
	apperrors "github.com/biblioteka/backend/pkg/errors"
)

// ActivityRepository 活动日志仓储的GORM实现
type ActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository 创建活动日志仓储
func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

var _ activity.Repository = (*ActivityRepository)(nil)

// Create 写入一条活动记录
func (r *ActivityRepository) Create(ctx context.Context, a *activity.Activity) error {
	model := &ActivityModel{
		Type:      string(a.Type),
		UserID:    a.UserID,
		Payload:   a.Payload,
		CreatedAt: a.CreatedAt,
	}
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "create activity")
	}
	a.ID = model.ID
	return nil
}

// List 分页查询活动日志，按时间倒序（最新在前）
func (r *ActivityRepository) List(ctx context.Context, params activity.ListParams) ([]*activity.Activity, int64, error) {
	query := getDB(ctx, r.db).Model(&ActivityModel{})

	if params.Type != nil {
		query = query.Where("type = ?", string(*params.Type))
	}
	if params.UserID != nil {
		query = query.Where("user_id = ?", *params.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "count activities")
	}

	var models []ActivityModel
	query = query.Order("created_at DESC")
	if err := applyPagination(query, params.Page, params.PageSize).Find(&models).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "list activities")
	}

	activities := make([]*activity.Activity, 0, len(models))
	for i := range models {
		m := models[i]
		activities = append(activities, &activity.Activity{
			ID:        m.ID,
			Type:      activity.Type(m.Type),
			UserID:    m.UserID,
			Payload:   m.Payload,
			CreatedAt: m.CreatedAt,
		})
	}
	return activities, total, nil
}
