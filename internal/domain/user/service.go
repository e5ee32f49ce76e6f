package user

import (
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"github.com/biblioteka/backend/pkg/errors"
)

// emailRegex 邮箱格式校验（与DTO层的binding校验互为补充）
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Service 用户领域服务
// 承载不属于单个实体的领域逻辑（密码哈希、格式校验）
type Service struct{}

// NewService 创建用户领域服务
func NewService() *Service {
	return &Service{}
}

// HashPassword 使用bcrypt哈希密码
// cost=10与主流Web框架的默认值一致，兼顾安全性与登录延迟
func (s *Service) HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), 10)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hashed), nil
}

// VerifyPassword 校验明文密码与哈希是否匹配
func (s *Service) VerifyPassword(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

// ValidateEmail 校验邮箱格式
func (s *Service) ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return errors.New(errors.KindValidation, "Invalid email format")
	}
	return nil
}
