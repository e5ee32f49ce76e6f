package handler

import (
	"github.com/gin-gonic/gin"

	appOrder "github.com/biblioteka/backend/internal/application/order"
	"github.com/biblioteka/backend/internal/domain/order"
	"github.com/biblioteka/backend/internal/interface/http/dto"
	"github.com/biblioteka/backend/pkg/response"
)

// OrderHandler 订单处理器
type OrderHandler struct {
	svc *appOrder.Service
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(svc *appOrder.Service) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// Create 创建借阅订单
// @Summary 创建订单（建单并借书）
// @Tags orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateOrderRequest true "图书ID"
// @Success 201 {object} response.DataEnvelope{data=dto.OrderResponse}
// @Failure 404 {object} response.ErrorEnvelope
// @Failure 409 {object} response.ErrorEnvelope "图书已被借出（含本人）"
// @Router /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	o, err := h.svc.Create(c.Request.Context(), actor, req.BookID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewOrderResponseBare(o))
}

// List 订单列表
// @Summary 订单列表（普通用户只看自己的）
// @Tags orders
// @Security BearerAuth
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页数量（≤100）"
// @Param status query string false "active|returned|canceled|book_deleted"
// @Param userId query int false "按用户过滤（仅管理员）"
// @Param bookId query int false "按图书过滤"
// @Success 200 {object} response.DataEnvelope{data=response.PageData}
// @Router /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var query dto.ListOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	params := order.ListParams{
		Page:     query.Page,
		PageSize: query.Limit,
		SortBy:   query.Sort,
		Desc:     query.Desc(),
		UserID:   query.UserID,
		BookID:   query.BookID,
	}
	if query.Status != "" {
		if status, valid := order.ParseStatus(query.Status); valid {
			params.Status = &status
		}
	}

	views, total, err := h.svc.List(c.Request.Context(), actor, params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OKWithPage(c, dto.NewOrderResponses(views), total, query.Page, query.Limit)
}

// Get 订单详情
// @Summary 订单详情（归属者或管理员）
// @Tags orders
// @Security BearerAuth
// @Produce json
// @Param id path int true "订单ID"
// @Success 200 {object} response.DataEnvelope{data=dto.OrderResponse}
// @Failure 403 {object} response.ErrorEnvelope
// @Failure 404 {object} response.ErrorEnvelope
// @Router /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	view, err := h.svc.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewOrderResponse(view))
}

// Return 归还订单
// @Summary 归还订单
// @Tags orders
// @Security BearerAuth
// @Produce json
// @Param id path int true "订单ID"
// @Success 200 {object} response.DataEnvelope{data=dto.OrderResponse}
// @Failure 400 {object} response.ErrorEnvelope "订单已关闭"
// @Failure 403 {object} response.ErrorEnvelope
// @Failure 404 {object} response.ErrorEnvelope
// @Router /orders/{id}/return [patch]
func (h *OrderHandler) Return(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	o, err := h.svc.Return(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewOrderResponseBare(o))
}
