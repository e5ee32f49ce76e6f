package dto

import (
	"time"

	"github.com/biblioteka/backend/internal/domain/user"
	"github.com/biblioteka/backend/pkg/jwt"
)

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest 刷新令牌请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// CreateUserRequest 管理员创建用户请求
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Role     string `json:"role" binding:"required,oneof=user admin"`
}

// UpdateUserRequest 更新用户请求，未提供的字段不修改
type UpdateUserRequest struct {
	Name      *string `json:"name" binding:"omitempty,min=2,max=100"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Password  *string `json:"password" binding:"omitempty,min=6,max=72"`
	Role      *string `json:"role" binding:"omitempty,oneof=user admin"`
	Favorites *[]uint `json:"favorites" binding:"omitempty,dive,min=1"`
}

// ListUsersQuery 用户列表查询参数
type ListUsersQuery struct {
	PaginationQuery
	Q string `form:"q" binding:"omitempty,max=100"`
}

// UserResponse 用户响应（不含密码）
type UserResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Favorites []uint    `json:"favorites"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewUserResponse 从领域实体构造用户响应
func NewUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		Favorites: u.Favorites,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// NewUserResponses 批量构造用户响应
func NewUserResponses(users []*user.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

// AuthResponse 注册/登录响应
type AuthResponse struct {
	User   UserResponse   `json:"user"`
	Tokens *jwt.TokenPair `json:"tokens"`
}

// RefreshTokenResponse 刷新令牌响应
type RefreshTokenResponse struct {
	AccessToken string `json:"access_token"`
}
