package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误类别
// 设计说明：
// 1. Kind对应业务语义，不直接等于HTTP状态码（HTTP映射由HTTPStatus完成）
// 2. 七种类别覆盖系统全部错误场景，handler层不需要再做类型判断
type Kind int

const (
	KindUnexpected       Kind = iota // 系统内部错误（数据库、缓存等基础设施故障）
	KindNotFound                     // 资源不存在
	KindConflict                     // 资源竞争冲突（图书已被借出、邮箱重复）
	KindForbidden                    // 已登录但无权操作
	KindUnauthorized                 // 未登录或凭证无效
	KindValidation                   // 参数校验失败
	KindInvalidOperation             // 操作本身不被允许（删除自己、重复归还）
)

// AppError 自定义应用错误
// 设计说明：
// 1. Message是面向客户端的提示信息
// 2. Err是内部错误，仅记录到日志，不返回给客户端（防止泄露实现细节）
type AppError struct {
	Kind    Kind   `json:"-"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus 将错误类别映射为HTTP状态码
func (e *AppError) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindValidation, KindInvalidOperation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// New 创建新的AppError
func New(kind Kind, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Message: message,
	}
}

// Wrap 包装基础设施错误（如数据库错误、网络错误）
// 用途：将底层错误转换为业务错误，隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Kind:    KindUnexpected,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Kind:    KindUnexpected,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// =========================================
// 预定义错误（避免每次都New）
// =========================================

var (
	// 系统错误
	ErrInternal = New(KindUnexpected, "internal server error")

	// 认证授权
	ErrUnauthorized       = New(KindUnauthorized, "unauthorized")
	ErrInvalidToken       = New(KindUnauthorized, "invalid token")
	ErrTokenExpired       = New(KindUnauthorized, "token expired")
	ErrInvalidCredentials = New(KindUnauthorized, "invalid credentials")
	ErrForbidden          = New(KindForbidden, "forbidden")

	// 参数错误
	ErrValidation = New(KindValidation, "validation error")
)

// IsKind 判断错误是否属于指定类别
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// GetAppError 提取AppError（如果不是AppError则包装成Unexpected错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "internal server error")
}
