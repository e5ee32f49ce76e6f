package handler

import (
	"github.com/gin-gonic/gin"

	appBook "github.com/biblioteka/backend/internal/application/book"
	"github.com/biblioteka/backend/internal/domain/book"
	"github.com/biblioteka/backend/internal/interface/http/dto"
	"github.com/biblioteka/backend/pkg/response"
)

// BookHandler 图书处理器
type BookHandler struct {
	svc *appBook.Service
}

// NewBookHandler 创建图书处理器
func NewBookHandler(svc *appBook.Service) *BookHandler {
	return &BookHandler{svc: svc}
}

// List 图书列表
// @Summary 图书列表
// @Tags books
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页数量（≤100）"
// @Param q query string false "按标题/作者搜索"
// @Param sort query string false "排序字段"
// @Param order query string false "asc|desc"
// @Success 200 {object} response.DataEnvelope{data=response.PageData}
// @Router /books [get]
func (h *BookHandler) List(c *gin.Context) {
	var query dto.ListBooksQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	books, total, err := h.svc.List(c.Request.Context(), book.ListParams{
		Page:     query.Page,
		PageSize: query.Limit,
		Keyword:  query.Q,
		SortBy:   query.Sort,
		Desc:     query.Desc(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OKWithPage(c, dto.NewBookResponses(books), total, query.Page, query.Limit)
}

// Get 图书详情
// @Summary 图书详情
// @Tags books
// @Produce json
// @Param id path int true "图书ID"
// @Success 200 {object} response.DataEnvelope{data=dto.BookResponse}
// @Failure 404 {object} response.ErrorEnvelope
// @Router /books/{id} [get]
func (h *BookHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	b, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewBookResponse(b))
}

// Create 创建图书（仅管理员）
// @Summary 创建图书
// @Tags books
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateBookRequest true "图书信息"
// @Success 201 {object} response.DataEnvelope{data=dto.BookResponse}
// @Router /books [post]
func (h *BookHandler) Create(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req dto.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	b, err := h.svc.Create(c.Request.Context(), actor.ID, appBook.CreateParams{
		Title:       req.Title,
		Author:      req.Author,
		Year:        req.Year,
		Image:       req.Image,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewBookResponse(b))
}

// Update 更新图书（仅管理员）
// @Summary 更新图书
// @Tags books
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "图书ID"
// @Param request body dto.UpdateBookRequest true "更新字段"
// @Success 200 {object} response.DataEnvelope{data=dto.BookResponse}
// @Failure 404 {object} response.ErrorEnvelope
// @Router /books/{id} [patch]
func (h *BookHandler) Update(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	b, err := h.svc.Update(c.Request.Context(), actor.ID, id, appBook.UpdateParams{
		Title:       req.Title,
		Author:      req.Author,
		Year:        req.Year,
		Image:       req.Image,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewBookResponse(b))
}

// Delete 删除图书（仅管理员，级联维护历史订单）
// @Summary 删除图书
// @Tags books
// @Security BearerAuth
// @Produce json
// @Param id path int true "图书ID"
// @Success 200 {object} response.DataEnvelope
// @Failure 404 {object} response.ErrorEnvelope
// @Router /books/{id} [delete]
func (h *BookHandler) Delete(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), actor.ID, id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"message": "book deleted"})
}

// Rent 借书
// @Summary 借书（直接借阅，不产生订单）
// @Tags books
// @Security BearerAuth
// @Produce json
// @Param id path int true "图书ID"
// @Success 200 {object} response.DataEnvelope{data=dto.BookResponse}
// @Failure 404 {object} response.ErrorEnvelope
// @Failure 409 {object} response.ErrorEnvelope "已被他人借出"
// @Router /books/{id}/rent [post]
func (h *BookHandler) Rent(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	b, err := h.svc.Rent(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewBookResponse(b))
}

// Return 还书
// @Summary 还书
// @Tags books
// @Security BearerAuth
// @Produce json
// @Param id path int true "图书ID"
// @Success 200 {object} response.DataEnvelope{data=dto.BookResponse}
// @Failure 403 {object} response.ErrorEnvelope "他人借出且非管理员"
// @Failure 404 {object} response.ErrorEnvelope
// @Router /books/{id}/return [post]
func (h *BookHandler) Return(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	b, err := h.svc.Return(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewBookResponse(b))
}
