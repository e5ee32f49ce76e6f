// Package handler 实现HTTP处理器，负责参数绑定、权限上下文与响应封装
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appUser "github.com/biblioteka/backend/internal/application/user"
	"github.com/biblioteka/backend/internal/domain/user"
	"github.com/biblioteka/backend/internal/interface/http/dto"
	"github.com/biblioteka/backend/internal/interface/http/middleware"
	"github.com/biblioteka/backend/pkg/errors"
	"github.com/biblioteka/backend/pkg/response"
)

// parseID 解析路径中的:id参数
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.ValidationError(c, "invalid id parameter")
		return 0, false
	}
	return uint(id), true
}

// mustActor 取当前操作者，缺失时写401响应
// RequireAuth中间件保证了正常路径下Actor一定存在
func mustActor(c *gin.Context) (user.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
	}
	return actor, ok
}

// UserHandler 用户与认证处理器
type UserHandler struct {
	svc *appUser.Service
}

// NewUserHandler 创建用户处理器
func NewUserHandler(svc *appUser.Service) *UserHandler {
	return &UserHandler{svc: svc}
}

// Register 用户注册
// @Summary 用户注册
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "注册信息"
// @Success 201 {object} response.DataEnvelope{data=dto.AuthResponse}
// @Failure 400 {object} response.ErrorEnvelope
// @Failure 409 {object} response.ErrorEnvelope
// @Router /auth/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	u, tokens, err := h.svc.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.AuthResponse{
		User:   dto.NewUserResponse(u),
		Tokens: tokens,
	})
}

// Login 用户登录
// @Summary 用户登录
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "登录凭证"
// @Success 200 {object} response.DataEnvelope{data=dto.AuthResponse}
// @Failure 401 {object} response.ErrorEnvelope
// @Router /auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	u, tokens, err := h.svc.Login(c.Request.Context(), req.Email, req.Password, c.Request.UserAgent())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.AuthResponse{
		User:   dto.NewUserResponse(u),
		Tokens: tokens,
	})
}

// Logout 用户登出
// @Summary 用户登出（令牌入黑名单）
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.DataEnvelope
// @Router /auth/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	token := middleware.GetToken(c)
	// 黑名单TTL以解析后的过期时间为准，这里重解析一次拿到ExpiresAt
	expiresAt, err := h.svc.TokenExpiry(token)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.svc.Logout(c.Request.Context(), token, actor.ID, expiresAt); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"message": "logged out"})
}

// Refresh 刷新访问令牌
// @Summary 刷新Access Token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh Token"
// @Success 200 {object} response.DataEnvelope{data=dto.RefreshTokenResponse}
// @Failure 401 {object} response.ErrorEnvelope
// @Router /auth/refresh [post]
func (h *UserHandler) Refresh(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	accessToken, err := h.svc.RefreshToken(req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.RefreshTokenResponse{AccessToken: accessToken})
}

// Me 查询当前用户信息
// @Summary 当前用户信息
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.DataEnvelope{data=dto.UserResponse}
// @Router /auth/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	u, err := h.svc.Get(c.Request.Context(), actor, actor.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewUserResponse(u))
}

// List 用户列表（仅管理员）
// @Summary 用户列表
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页数量（≤100）"
// @Param q query string false "按姓名/邮箱搜索"
// @Success 200 {object} response.DataEnvelope{data=response.PageData}
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var query dto.ListUsersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	users, total, err := h.svc.List(c.Request.Context(), actor, user.ListParams{
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

	response.OKWithPage(c, dto.NewUserResponses(users), total, query.Page, query.Limit)
}

// Create 创建用户（仅管理员）
// @Summary 创建用户
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateUserRequest true "用户信息"
// @Success 201 {object} response.DataEnvelope{data=dto.UserResponse}
// @Failure 409 {object} response.ErrorEnvelope
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	u, err := h.svc.Create(c.Request.Context(), actor, appUser.CreateParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     user.Role(req.Role),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewUserResponse(u))
}

// Get 查询用户详情
// @Summary 用户详情
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param id path int true "用户ID"
// @Success 200 {object} response.DataEnvelope{data=dto.UserResponse}
// @Failure 403 {object} response.ErrorEnvelope
// @Failure 404 {object} response.ErrorEnvelope
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	u, err := h.svc.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewUserResponse(u))
}

// Update 更新用户信息
// @Summary 更新用户
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "用户ID"
// @Param request body dto.UpdateUserRequest true "更新字段"
// @Success 200 {object} response.DataEnvelope{data=dto.UserResponse}
// @Failure 403 {object} response.ErrorEnvelope
// @Router /users/{id} [patch]
func (h *UserHandler) Update(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	var role *user.Role
	if req.Role != nil {
		r := user.Role(*req.Role)
		role = &r
	}

	u, err := h.svc.Update(c.Request.Context(), actor, id, appUser.UpdateParams{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Role:      role,
		Favorites: req.Favorites,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewUserResponse(u))
}

// Delete 删除用户（仅管理员，级联清理其图书与订单）
// @Summary 删除用户
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param id path int true "用户ID"
// @Success 200 {object} response.DataEnvelope
// @Failure 400 {object} response.ErrorEnvelope "删除自己"
// @Failure 404 {object} response.ErrorEnvelope
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), actor, id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"message": "user deleted"})
}
