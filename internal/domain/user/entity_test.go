package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActor_CanManage(t *testing.T) {
	admin := Actor{ID: 1, Role: RoleAdmin}
	regular := Actor{ID: 7, Role: RoleUser}

	assert.True(t, admin.CanManage(99), "管理员可操作任何资源")
	assert.True(t, regular.CanManage(7), "用户可操作自己的资源")
	assert.False(t, regular.CanManage(8), "用户不可操作他人资源")
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("superuser").Valid())
}

func TestService_Password(t *testing.T) {
	svc := NewService()

	hashed, err := svc.HashPassword("lozinka123")
	require.NoError(t, err)
	assert.NotEqual(t, "lozinka123", hashed)

	assert.True(t, svc.VerifyPassword(hashed, "lozinka123"))
	assert.False(t, svc.VerifyPassword(hashed, "pogresna"))
}

func TestService_ValidateEmail(t *testing.T) {
	svc := NewService()

	assert.NoError(t, svc.ValidateEmail("marko@example.com"))
	assert.Error(t, svc.ValidateEmail("not-an-email"))
	assert.Error(t, svc.ValidateEmail("missing@tld"))
}
