package dto

import (
	"time"

	appOrder "github.com/biblioteka/backend/internal/application/order"
	"github.com/biblioteka/backend/internal/domain/order"
)

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	BookID uint `json:"bookId" binding:"required,min=1"`
}

// ListOrdersQuery 订单列表查询参数
type ListOrdersQuery struct {
	PaginationQuery
	UserID *uint  `form:"userId" binding:"omitempty,min=1"` // 仅管理员有效
	BookID *uint  `form:"bookId" binding:"omitempty,min=1"`
	Status string `form:"status" binding:"omitempty,oneof=active returned canceled book_deleted"`
}

// SnapshotResponse 快照响应
type SnapshotResponse struct {
	ID     uint   `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Year   string `json:"year"`
	Image  string `json:"image,omitempty"`
}

// DisplayBookResponse 解析后的图书展示信息
type DisplayBookResponse struct {
	ID     *uint   `json:"id"`
	Title  *string `json:"title"`
	Author *string `json:"author"`
	Year   *string `json:"year"`
	Image  *string `json:"image"`
}

// OrderResponse 订单响应
// displayBook是解析后的展示信息：在库图书实时信息优先，
// 图书已删除时来自快照，两者皆无时为null
type OrderResponse struct {
	ID          uint                 `json:"id"`
	BookID      *uint                `json:"bookId"`
	UserID      uint                 `json:"userId"`
	Status      string               `json:"status"`
	IsActive    bool                 `json:"isActive"`
	DisplayBook *DisplayBookResponse `json:"displayBook"`
	Snapshot    *SnapshotResponse    `json:"snapshot,omitempty"`
	RentedAt    time.Time            `json:"rentedAt"`
	ReturnedAt  *time.Time           `json:"returnedAt"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// NewOrderResponse 从订单视图构造订单响应
func NewOrderResponse(v *appOrder.View) OrderResponse {
	o := v.Order
	resp := OrderResponse{
		ID:         o.ID,
		BookID:     o.BookID,
		UserID:     o.UserID,
		Status:     o.Status.String(),
		IsActive:   o.IsActive(),
		RentedAt:   o.RentedAt,
		ReturnedAt: o.ReturnedAt,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
	if d := v.Display; d.Title != nil || d.ID != nil {
		resp.DisplayBook = &DisplayBookResponse{
			ID:     d.ID,
			Title:  d.Title,
			Author: d.Author,
			Year:   d.Year,
			Image:  d.Image,
		}
	}
	if o.Snapshot != nil {
		resp.Snapshot = &SnapshotResponse{
			ID:     o.Snapshot.ID,
			Title:  o.Snapshot.Title,
			Author: o.Snapshot.Author,
			Year:   o.Snapshot.Year,
			Image:  o.Snapshot.Image,
		}
	}
	return resp
}

// NewOrderResponses 批量构造订单响应
func NewOrderResponses(views []*appOrder.View) []OrderResponse {
	out := make([]OrderResponse, 0, len(views))
	for _, v := range views {
		out = append(out, NewOrderResponse(v))
	}
	return out
}

// NewOrderResponseBare 无实时图书信息的订单响应（创建/归还后返回，
// 展示信息取自快照）
func NewOrderResponseBare(o *order.Order) OrderResponse {
	return NewOrderResponse(&appOrder.View{
		Order:   o,
		Display: order.ResolveDisplay(o, nil),
	})
}
