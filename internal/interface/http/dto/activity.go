package dto

import (
	"time"

	"github.com/biblioteka/backend/internal/domain/activity"
)

// ListActivitiesQuery 活动日志查询参数
type ListActivitiesQuery struct {
	PaginationQuery
	Type   string `form:"type" binding:"omitempty,max=50"`
	UserID *uint  `form:"userId" binding:"omitempty,min=1"`
}

// ActivityResponse 活动日志响应
type ActivityResponse struct {
	ID        uint                   `json:"id"`
	Type      string                 `json:"type"`
	UserID    *uint                  `json:"userId"`
	Payload   map[string]interface{} `json:"payload"`
	CreatedAt time.Time              `json:"createdAt"`
}

// NewActivityResponses 批量构造活动日志响应
func NewActivityResponses(activities []*activity.Activity) []ActivityResponse {
	out := make([]ActivityResponse, 0, len(activities))
	for _, a := range activities {
		out = append(out, ActivityResponse{
			ID:        a.ID,
			Type:      string(a.Type),
			UserID:    a.UserID,
			Payload:   a.Payload,
			CreatedAt: a.CreatedAt,
		})
	}
	return out
}
