package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// 键前缀约定
const (
	sessionKeyPrefix   = "session:"   // session:<userID>
	blacklistKeyPrefix = "blacklist:" // blacklist:<token>
)

// Session 用户会话信息
type Session struct {
	UserID    uint      `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	LoginAt   time.Time `json:"login_at"`
	UserAgent string    `json:"user_agent,omitempty"`
}

// SessionStore 基于Redis的会话存储
//
// 设计说明：
// 1. 会话：登录时写入，可用于查询在线状态与强制下线
// 2. 令牌黑名单：登出时将token加入黑名单，过期时间与token剩余有效期一致，
//    中间件校验JWT后还需检查黑名单
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore 创建会话存储
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// SaveSession 保存用户会话
func (s *SessionStore) SaveSession(ctx context.Context, session *Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	key := fmt.Sprintf("%s%d", sessionKeyPrefix, session.UserID)
	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// GetSession 查询用户会话，不存在时返回nil
func (s *SessionStore) GetSession(ctx context.Context, userID uint) (*Session, error) {
	key := fmt.Sprintf("%s%d", sessionKeyPrefix, userID)
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

// DeleteSession 删除用户会话（登出或强制下线）
func (s *SessionStore) DeleteSession(ctx context.Context, userID uint) error {
	key := fmt.Sprintf("%s%d", sessionKeyPrefix, userID)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// BlacklistToken 将token加入黑名单
// ttl应为token的剩余有效期，token自然过期后黑名单条目也随之过期
func (s *SessionStore) BlacklistToken(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // token已过期，无需入黑名单
	}
	key := blacklistKeyPrefix + token
	if err := s.client.Set(ctx, key, 1, ttl).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

// IsTokenBlacklisted 检查token是否在黑名单中
func (s *SessionStore) IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	key := blacklistKeyPrefix + token
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}
	return n > 0, nil
}
