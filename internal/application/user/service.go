// Package user 用户应用服务：注册、登录、用户管理与删除级联
package user

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/biblioteka/backend/internal/domain/activity"
	"github.com/biblioteka/backend/internal/domain/book"
	"github.com/biblioteka/backend/internal/domain/order"
	"github.com/biblioteka/backend/internal/domain/user"
	redisstore "github.com/biblioteka/backend/internal/infrastructure/persistence/redis"
	"github.com/biblioteka/backend/pkg/errors"
	"github.com/biblioteka/backend/pkg/jwt"
)

// TxManager 事务管理接口（由infrastructure层的mysql.TxManager实现）
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service 用户应用服务
type Service struct {
	users     user.Repository
	books     book.Repository
	orders    order.Repository
	domainSvc *user.Service
	jwtMgr    *jwt.Manager
	sessions  *redisstore.SessionStore
	tx        TxManager
	recorder  *activity.Recorder
	log       *zap.Logger
}

// NewService 创建用户应用服务
func NewService(
	users user.Repository,
	books book.Repository,
	orders order.Repository,
	domainSvc *user.Service,
	jwtMgr *jwt.Manager,
	sessions *redisstore.SessionStore,
	tx TxManager,
	recorder *activity.Recorder,
	log *zap.Logger,
) *Service {
	return &Service{
		users:     users,
		books:     books,
		orders:    orders,
		domainSvc: domainSvc,
		jwtMgr:    jwtMgr,
		sessions:  sessions,
		tx:        tx,
		recorder:  recorder,
		log:       log,
	}
}

// Register 用户注册
// 注册成功后直接返回令牌，免去二次登录
func (s *Service) Register(ctx context.Context, name, email, password string) (*user.User, *jwt.TokenPair, error) {
	if err := s.domainSvc.ValidateEmail(email); err != nil {
		return nil, nil, err
	}

	hashed, err := s.domainSvc.HashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	u := user.NewUser(name, email, hashed, user.RoleUser)
	if err := s.users.Create(ctx, u); err != nil {
		return nil, nil, err
	}

	tokens, err := s.jwtMgr.GenerateToken(u.ID, u.Email, u.Name, string(u.Role))
	if err != nil {
		return nil, nil, errors.Wrap(err, "generate token")
	}

	s.saveSession(ctx, u, "")
	s.recorder.Record(ctx, activity.TypeUserRegistered, &u.ID, map[string]interface{}{
		"email": u.Email,
		"name":  u.Name,
	})

	s.log.Info("用户注册成功", zap.Uint("user_id", u.ID), zap.String("email", u.Email))
	return u, tokens, nil
}

// Login 用户登录
func (s *Service) Login(ctx context.Context, email, password, userAgent string) (*user.User, *jwt.TokenPair, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.IsKind(err, errors.KindNotFound) {
			return nil, nil, user.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !s.domainSvc.VerifyPassword(u.Password, password) {
		return nil, nil, user.ErrInvalidCredentials
	}

	tokens, err := s.jwtMgr.GenerateToken(u.ID, u.Email, u.Name, string(u.Role))
	if err != nil {
		return nil, nil, errors.Wrap(err, "generate token")
	}

	s.saveSession(ctx, u, userAgent)
	s.recorder.Record(ctx, activity.TypeUserLogin, &u.ID, map[string]interface{}{
		"email": u.Email,
	})

	return u, tokens, nil
}

// Logout 登出：令牌入黑名单并删除会话
func (s *Service) Logout(ctx context.Context, token string, actorID uint, expiresAt time.Time) error {
	if s.sessions == nil {
		return nil
	}
	if err := s.sessions.BlacklistToken(ctx, token, time.Until(expiresAt)); err != nil {
		return errors.Wrap(err, "blacklist token")
	}
	if err := s.sessions.DeleteSession(ctx, actorID); err != nil {
		s.log.Warn("删除会话失败", zap.Uint("user_id", actorID), zap.Error(err))
	}
	return nil
}

// TokenExpiry 解析令牌的过期时间（登出时计算黑名单TTL用）
func (s *Service) TokenExpiry(token string) (time.Time, error) {
	claims, err := s.jwtMgr.ParseToken(token)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Now(), nil
	}
	return claims.ExpiresAt.Time, nil
}

// RefreshToken 用refresh token换取新的access token
func (s *Service) RefreshToken(refreshToken string) (string, error) {
	return s.jwtMgr.RefreshAccessToken(refreshToken)
}

// saveSession 保存会话（失败不影响主流程）
func (s *Service) saveSession(ctx context.Context, u *user.User, userAgent string) {
	if s.sessions == nil {
		return
	}
	session := &redisstore.Session{
		UserID:    u.ID,
		Email:     u.Email,
		Role:      string(u.Role),
		LoginAt:   time.Now(),
		UserAgent: userAgent,
	}
	if err := s.sessions.SaveSession(ctx, session, s.jwtMgr.AccessTokenExpire()); err != nil {
		s.log.Warn("保存会话失败", zap.Uint("user_id", u.ID), zap.Error(err))
	}
}
