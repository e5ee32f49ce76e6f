package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/biblioteka/backend/internal/domain/user"
	apperrors "github.com/biblioteka/backend/pkg/errors"
)

// UserRepository 用户仓储的GORM实现
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// 编译期检查：确保实现了领域接口
var _ user.Repository = (*UserRepository)(nil)

// Create 创建用户
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	model := userFromEntity(u)
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return user.ErrEmailDuplicate
		}
		return apperrors.Wrap(err, "create user")
	}
	u.ID = model.ID
	return nil
}

// FindByID 按ID查询用户
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	var model UserModel
	if err := getDB(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "find user by id")
	}
	return userToEntity(&model), nil
}

// FindByEmail 按邮箱查询用户
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserModel
	if err := getDB(ctx, r.db).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "find user by email")
	}
	return userToEntity(&model), nil
}

// Update 更新用户
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	model := userFromEntity(u)
	if err := getDB(ctx, r.db).Save(model).Error; err != nil {
		if isDuplicateError(err) {
			return user.ErrEmailDuplicate
		}
		return apperrors.Wrap(err, "update user")
	}
	return nil
}

// Delete 删除用户
func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	result := getDB(ctx, r.db).Delete(&UserModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "delete user")
	}
	if result.RowsAffected == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// userSortFields 用户列表允许的排序字段
var userSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"email":      true,
}

// List 分页查询用户列表
func (r *UserRepository) List(ctx context.Context, params user.ListParams) ([]*user.User, int64, error) {
	query := getDB(ctx, r.db).Model(&UserModel{})

	if params.Keyword != "" {
		like := "%" + params.Keyword + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "count users")
	}

	var models []UserModel
	query = query.Order(sortClause(params.SortBy, params.Desc, userSortFields))
	if err := applyPagination(query, params.Page, params.PageSize).Find(&models).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "list users")
	}

	users := make([]*user.User, 0, len(models))
	for i := range models {
		users = append(users, userToEntity(&models[i]))
	}
	return users, total, nil
}

// userToEntity Model转领域实体
func userToEntity(m *UserModel) *user.User {
	favorites := m.Favorites
	if favorites == nil {
		favorites = []uint{}
	}
	return &user.User{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Password:  m.Password,
		Role:      user.Role(m.Role),
		Favorites: favorites,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// userFromEntity 领域实体转Model
func userFromEntity(u *user.User) *UserModel {
	return &UserModel{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Password:  u.Password,
		Role:      string(u.Role),
		Favorites: u.Favorites,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
