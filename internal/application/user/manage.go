package user

import (
	"context"

	"go.uber.org/zap"

	"github.com/biblioteka/backend/internal/domain/user"
	"github.com/biblioteka/backend/pkg/errors"
)

// Get 查询用户详情
// 权限：管理员可查任何用户，普通用户只能查自己
func (s *Service) Get(ctx context.Context, actor user.Actor, id uint) (*user.User, error) {
	if !actor.CanManage(id) {
		return nil, errors.ErrForbidden
	}
	return s.users.FindByID(ctx, id)
}

// List 分页查询用户列表（仅管理员）
func (s *Service) List(ctx context.Context, actor user.Actor, params user.ListParams) ([]*user.User, int64, error) {
	if !actor.IsAdmin() {
		return nil, 0, errors.ErrForbidden
	}
	return s.users.List(ctx, params)
}

// CreateParams 管理员创建用户的参数
type CreateParams struct {
	Name     string
	Email    string
	Password string
	Role     user.Role
}

// Create 管理员创建用户（可直接指定角色）
func (s *Service) Create(ctx context.Context, actor user.Actor, params CreateParams) (*user.User, error) {
	if !actor.IsAdmin() {
		return nil, errors.ErrForbidden
	}
	if !params.Role.Valid() {
		return nil, user.ErrInvalidRole
	}
	if err := s.domainSvc.ValidateEmail(params.Email); err != nil {
		return nil, err
	}

	hashed, err := s.domainSvc.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	u := user.NewUser(params.Name, params.Email, hashed, params.Role)
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	s.log.Info("管理员创建用户",
		zap.Uint("actor_id", actor.ID),
		zap.Uint("user_id", u.ID),
		zap.String("role", string(u.Role)))
	return u, nil
}

// UpdateParams 用户更新参数，nil字段表示不修改
type UpdateParams struct {
	Name      *string
	Email     *string
	Password  *string
	Role      *user.Role // 仅管理员可设置
	Favorites *[]uint    // 整体替换收藏集合
}

// Update 更新用户信息
// 权限：管理员可改任何用户，普通用户只能改自己且不能改角色；
// 角色变更只能由管理员操作且不能改自己的角色（防止降级后失去管理入口）
func (s *Service) Update(ctx context.Context, actor user.Actor, id uint, params UpdateParams) (*user.User, error) {
	if !actor.CanManage(id) {
		return nil, errors.ErrForbidden
	}
	if params.Role != nil {
		if !actor.IsAdmin() {
			return nil, errors.ErrForbidden
		}
		if actor.ID == id {
			return nil, user.ErrCannotChangeOwnRole
		}
	}

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		u.Name = *params.Name
	}
	if params.Email != nil {
		if err := s.domainSvc.ValidateEmail(*params.Email); err != nil {
			return nil, err
		}
		u.Email = *params.Email
	}
	if params.Password != nil {
		hashed, err := s.domainSvc.HashPassword(*params.Password)
		if err != nil {
			return nil, err
		}
		u.Password = hashed
	}
	if params.Role != nil {
		if !params.Role.Valid() {
			return nil, user.ErrInvalidRole
		}
		u.Role = *params.Role
	}
	if params.Favorites != nil {
		u.Favorites = append([]uint{}, (*params.Favorites)...)
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
