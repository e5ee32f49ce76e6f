// Package book 图书应用服务：增删改查、借还与删除级联
package book

import (
	"context"

	"go.uber.org/zap"

	"github.com/biblioteka/backend/internal/domain/activity"
	"github.com/biblioteka/backend/internal/domain/book"
	"github.com/biblioteka/backend/internal/domain/order"
)

// TxManager 事务管理接口（由infrastructure层的mysql.TxManager实现）
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service 图书应用服务
type Service struct {
	books    book.Repository
	orders   order.Repository
	tx       TxManager
	recorder *activity.Recorder
	log      *zap.Logger
}

// NewService 创建图书应用服务
func NewService(
	books book.Repository,
	orders order.Repository,
	tx TxManager,
	recorder *activity.Recorder,
	log *zap.Logger,
) *Service {
	return &Service{
		books:    books,
		orders:   orders,
		tx:       tx,
		recorder: recorder,
		log:      log,
	}
}

// CreateParams 创建图书参数
type CreateParams struct {
	Title       string
	Author      string
	Year        string
	Image       string
	Description string
}

// Create 创建图书
func (s *Service) Create(ctx context.Context, actorID uint, params CreateParams) (*book.Book, error) {
	b := book.NewBook(params.Title, params.Author, params.Year, params.Description)
	b.Image = params.Image
	if err := s.books.Create(ctx, b); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, activity.TypeBookCreated, &actorID, map[string]interface{}{
		"book_id": b.ID,
		"title":   b.Title,
	})
	return b, nil
}

// Get 查询图书详情
func (s *Service) Get(ctx context.Context, id uint) (*book.Book, error) {
	return s.books.FindByID(ctx, id)
}

// List 分页查询图书列表
func (s *Service) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	return s.books.List(ctx, params)
}

// UpdateParams 更新图书参数，nil字段表示不修改
type UpdateParams struct {
	Title       *string
	Author      *string
	Year        *string
	Image       *string
	Description *string
}

// Update 更新图书信息
// 不影响借出状态：RentedBy只能通过借还操作变更
func (s *Service) Update(ctx context.Context, actorID, id uint, params UpdateParams) (*book.Book, error) {
	b, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Title != nil {
		b.Title = *params.Title
	}
	if params.Author != nil {
		b.Author = *params.Author
	}
	if params.Year != nil {
		b.Year = *params.Year
	}
	if params.Image != nil {
		b.Image = *params.Image
	}
	if params.Description != nil {
		b.Description = *params.Description
	}

	if err := s.books.Update(ctx, b); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, activity.TypeBookUpdated, &actorID, map[string]interface{}{
		"book_id": b.ID,
		"title":   b.Title,
	})
	return b, nil
}
