package user

import (
	"time"
)

// Role 用户角色
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid 检查角色是否合法
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User 用户实体（聚合根）
// 设计说明：
// 1. Password是bcrypt哈希值，任何对外序列化都不包含该字段
// 2. Favorites是收藏的图书ID集合
// 3. 领域实体不依赖GORM tag（infrastructure层的Repository负责映射）
type User struct {
	ID        uint
	Name      string
	Email     string
	Password  string // bcrypt哈希值
	Role      Role
	Favorites []uint
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码
func NewUser(name, email, hashedPassword string, role Role) *User {
	now := time.Now()
	return &User{
		Name:      name,
		Email:     email,
		Password:  hashedPassword,
		Role:      role,
		Favorites: []uint{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Actor 当前请求的操作者（从JWT Claims构造）
// 设计说明：权限判断集中在Actor的方法上，避免user/admin分支散落在各处
type Actor struct {
	ID    uint
	Email string
	Name  string
	Role  Role
}

// IsAdmin 是否为管理员
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanManage 能力检查：操作者是否可以操作属于ownerID的资源
// 规则：管理员可以操作任何资源，普通用户只能操作自己的资源
func (a Actor) CanManage(ownerID uint) bool {
	return a.IsAdmin() || a.ID == ownerID
}
