package dto

import (
	"time"

	"github.com/biblioteka/backend/internal/domain/book"
)

// CreateBookRequest 创建图书请求
type CreateBookRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=255"`
	Author      string `json:"author" binding:"required,min=1,max=255"`
	Year        string `json:"year" binding:"omitempty,max=50"`
	Image       string `json:"image" binding:"omitempty,url,max=500"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}

// UpdateBookRequest 更新图书请求，未提供的字段不修改
type UpdateBookRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=255"`
	Author      *string `json:"author" binding:"omitempty,min=1,max=255"`
	Year        *string `json:"year" binding:"omitempty,max=50"`
	Image       *string `json:"image" binding:"omitempty,url,max=500"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}

// ListBooksQuery 图书列表查询参数
type ListBooksQuery struct {
	PaginationQuery
	Q string `form:"q" binding:"omitempty,max=100"` // 按标题/作者模糊搜索
}

// BookResponse 图书响应
type BookResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Year        string    `json:"year"`
	Image       string    `json:"image,omitempty"`
	Description string    `json:"description,omitempty"`
	RentedBy    *uint     `json:"rentedBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewBookResponse 从领域实体构造图书响应
func NewBookResponse(b *book.Book) BookResponse {
	return BookResponse{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Year:        b.Year,
		Image:       b.Image,
		Description: b.Description,
		RentedBy:    b.RentedBy,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// NewBookResponses 批量构造图书响应
func NewBookResponses(books []*book.Book) []BookResponse {
	out := make([]BookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, NewBookResponse(b))
	}
	return out
}
