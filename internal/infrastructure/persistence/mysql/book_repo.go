package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/biblioteka/backend/internal/domain/book"
	apperrors "github.com/biblioteka/backend/pkg/errors"
)

// BookRepository 图书仓储的GORM实现
type BookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) *BookRepository {
	return &BookRepository{db: db}
}

var _ book.Repository = (*BookRepository)(nil)

// Create 创建图书
func (r *BookRepository) Create(ctx context.Context, b *book.Book) error {
	model := bookFromEntity(b)
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "create book")
	}
	b.ID = model.ID
	return nil
}

// FindByID 按ID查询图书
func (r *BookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	if err := getDB(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "find book by id")
	}
	return bookToEntity(&model), nil
}

// FindByIDs 批量查询图书，返回id→实体的映射
// 不存在（含已删除）的ID不会出现在结果中
func (r *BookRepository) FindByIDs(ctx context.Context, ids []uint) (map[uint]*book.Book, error) {
	result := make(map[uint]*book.Book, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var models []BookModel
	if err := getDB(ctx, r.db).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "find books by ids")
	}
	for i := range models {
		result[models[i].ID] = bookToEntity(&models[i])
	}
	return result, nil
}

// LockByID 行锁查询（SELECT ... FOR UPDATE）
// 必须在事务内调用，用于借书/建单时防止并发借出同一本书
func (r *BookRepository) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	err := getDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "lock book by id")
	}
	return bookToEntity(&model), nil
}

// Update 更新图书
func (r *BookRepository) Update(ctx context.Context, b *book.Book) error {
	model := bookFromEntity(b)
	// 用map更新：Save会跳过零值，归还时RentedBy=nil必须能写回NULL
	err := getDB(ctx, r.db).Model(model).
		Updates(map[string]interface{}{
			"title":       model.Title,
			"author":      model.Author,
			"year":        model.Year,
			"image":       model.Image,
			"description": model.Description,
			"rented_by":   model.RentedBy,
			"updated_at":  model.UpdatedAt,
		}).Error
	if err != nil {
		return apperrors.Wrap(err, "update book")
	}
	return nil
}

// Delete 软删除图书
func (r *BookRepository) Delete(ctx context.Context, id uint) error {
	result := getDB(ctx, r.db).Delete(&BookModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "delete book")
	}
	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}
	return nil
}

// ReleaseByRenter 释放指定用户借出的全部图书
// 直接借阅（无订单）的图书也在此一并释放
func (r *BookRepository) ReleaseByRenter(ctx context.Context, userID uint) error {
	err := getDB(ctx, r.db).Model(&BookModel{}).
		Where("rented_by = ?", userID).
		Updates(map[string]interface{}{
			"rented_by":  nil,
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return apperrors.Wrap(err, "release books by renter")
	}
	return nil
}

// bookSortFields 图书列表允许的排序字段
var bookSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"title":      true,
	"author":     true,
	"year":       true,
}

// List 分页查询图书列表
func (r *BookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	query := getDB(ctx, r.db).Model(&BookModel{})

	if params.Keyword != "" {
		like := "%" + params.Keyword + "%"
		query = query.Where("title LIKE ? OR author LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "count books")
	}

	var models []BookModel
	query = query.Order(sortClause(params.SortBy, params.Desc, bookSortFields))
	if err := applyPagination(query, params.Page, params.PageSize).Find(&models).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "list books")
	}

	books := make([]*book.Book, 0, len(models))
	for i := range models {
		books = append(books, bookToEntity(&models[i]))
	}
	return books, total, nil
}

// bookToEntity Model转领域实体
func bookToEntity(m *BookModel) *book.Book {
	return &book.Book{
		ID:          m.ID,
		Title:       m.Title,
		Author:      m.Author,
		Year:        m.Year,
		Image:       m.Image,
		Description: m.Description,
		RentedBy:    m.RentedBy,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// bookFromEntity 领域实体转Model
func bookFromEntity(b *book.Book) *BookModel {
	return &BookModel{
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
