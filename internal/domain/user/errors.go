package user

import (
	"github.com/biblioteka/backend/pkg/errors"
)

// 用户领域错误定义
var (
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New(errors.KindNotFound, "User not found")

	// ErrEmailDuplicate 邮箱已被注册
	ErrEmailDuplicate = errors.New(errors.KindConflict, "Email already registered")

	// ErrInvalidCredentials 邮箱或密码错误
	// 注意：不区分"用户不存在"和"密码错误"，避免泄露注册信息
	ErrInvalidCredentials = errors.New(errors.KindUnauthorized, "Invalid email or password")

	// ErrCannotDeleteSelf 禁止删除自己的账号
	ErrCannotDeleteSelf = errors.New(errors.KindInvalidOperation, "Cannot delete your own account")

	// ErrCannotChangeOwnRole 禁止修改自己的角色
	ErrCannotChangeOwnRole = errors.New(errors.KindInvalidOperation, "Cannot change your own role")

	// ErrInvalidRole 非法角色
	ErrInvalidRole = errors.New(errors.KindValidation, "Invalid role")
)
