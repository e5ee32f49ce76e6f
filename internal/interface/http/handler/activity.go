package handler

import (
	"github.com/gin-gonic/gin"

	appActivity "github.com/biblioteka/backend/internal/application/activity"
	"github.com/biblioteka/backend/internal/domain/activity"
	"github.com/biblioteka/backend/internal/interface/http/dto"
	"github.com/biblioteka/backend/pkg/response"
)

// ActivityHandler 活动日志处理器
type ActivityHandler struct {
	svc *appActivity.Service
}

// NewActivityHandler 创建活动日志处理器
func NewActivityHandler(svc *appActivity.Service) *ActivityHandler {
	return &ActivityHandler{svc: svc}
}

// List 活动日志列表（仅管理员）
// @Summary 活动日志
// @Tags activities
// @Security BearerAuth
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页数量（≤100）"
// @Param type query string false "活动类型（如BOOK_RENTED）"
// @Param userId query int false "按触发者过滤"
// @Success 200 {object} response.DataEnvelope{data=response.PageData}
// @Router /activities [get]
func (h *ActivityHandler) List(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var query dto.ListActivitiesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	params := activity.ListParams{
		Page:     query.Page,
		PageSize: query.Limit,
		UserID:   query.UserID,
	}
	if query.Type != "" {
		t := activity.Type(query.Type)
		params.Type = &t
	}

	activities, total, err := h.svc.List(c.Request.Context(), actor, params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OKWithPage(c, dto.NewActivityResponses(activities), total, query.Page, query.Limit)
}
