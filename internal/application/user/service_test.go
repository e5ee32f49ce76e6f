package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/biblioteka/backend/internal/application/apptest"
	"github.com/biblioteka/backend/internal/domain/activity"
	"github.com/biblioteka/backend/internal/domain/user"
	"github.com/biblioteka/backend/pkg/errors"
	"github.com/biblioteka/backend/pkg/jwt"
)

type userFixture struct {
	svc        *Service
	users      *apptest.FakeUserRepo
	books      *apptest.FakeBookRepo
	orders     *apptest.FakeOrderRepo
	activities *apptest.FakeActivityRepo
}

func newUserFixture() *userFixture {
	users := apptest.NewFakeUserRepo()
	books := apptest.NewFakeBookRepo()
	orders := apptest.NewFakeOrderRepo()
	activities := apptest.NewFakeActivityRepo()
	recorder := activity.NewRecorder(activities, nil, zap.NewNop())
	jwtMgr := jwt.NewManager("test-secret", time.Hour, 24*time.Hour)

	return &userFixture{
		svc: NewService(users, books, orders, user.NewService(),
			jwtMgr, nil, apptest.FakeTx{}, recorder, zap.NewNop()),
		users:      users,
		books:      books,
		orders:     orders,
		activities: activities,
	}
}

func TestService_Register(t *testing.T) {
	t.Run("注册成功返回令牌并记录日志", func(t *testing.T) {
		f := newUserFixture()

		u, tokens, err := f.svc.Register(context.Background(), "Marko", "marko@example.com", "lozinka123")

		require.NoError(t, err)
		assert.NotZero(t, u.ID)
		assert.Equal(t, user.RoleUser, u.Role, "注册用户默认为普通角色")
		assert.NotEqual(t, "lozinka123", u.Password, "密码必须哈希存储")
		require.NotNil(t, tokens)
		assert.NotEmpty(t, tokens.AccessToken)
		assert.Equal(t, []activity.Type{activity.TypeUserRegistered}, f.activities.Types())
	})

	t.Run("邮箱重复409", func(t *testing.T) {
		f := newUserFixture()
		_, _, err := f.svc.Register(context.Background(), "Marko", "marko@example.com", "lozinka123")
		require.NoError(t, err)

		_, _, err = f.svc.Register(context.Background(), "Janko", "marko@example.com", "druga456")

		assert.ErrorIs(t, err, user.ErrEmailDuplicate)
	})

	t.Run("非法邮箱400", func(t *testing.T) {
		f := newUserFixture()

		_, _, err := f.svc.Register(context.Background(), "Marko", "nije-email", "lozinka123")

		assert.True(t, errors.IsKind(err, errors.KindValidation))
	})
}

func TestService_Login(t *testing.T) {
	t.Run("正确凭证登录成功", func(t *testing.T) {
		f := newUserFixture()
		_, _, err := f.svc.Register(context.Background(), "Marko", "marko@example.com", "lozinka123")
		require.NoError(t, err)

		u, tokens, err := f.svc.Login(context.Background(), "marko@example.com", "lozinka123", "")

		require.NoError(t, err)
		assert.Equal(t, "marko@example.com", u.Email)
		assert.NotEmpty(t, tokens.AccessToken)
		assert.Contains(t, f.activities.Types(), activity.TypeUserLogin)
	})

	t.Run("密码错误401", func(t *testing.T) {
		f := newUserFixture()
		_, _, err := f.svc.Register(context.Background(), "Marko", "marko@example.com", "lozinka123")
		require.NoError(t, err)

		_, _, err = f.svc.Login(context.Background(), "marko@example.com", "pogresna", "")

		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})

	t.Run("用户不存在时同样401不泄露注册信息", func(t *testing.T) {
		f := newUserFixture()

		_, _, err := f.svc.Login(context.Background(), "nepostoji@example.com", "bilo-sta", "")

		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})
}

func TestService_Update(t *testing.T) {
	t.Run("普通用户不能改自己的角色", func(t *testing.T) {
		f := newUserFixture()
		u := f.users.Add(user.NewUser("Marko", "marko@example.com", "hash", user.RoleUser))
		actor := user.Actor{ID: u.ID, Role: user.RoleUser}
		adminRole := user.RoleAdmin

		_, err := f.svc.Update(context.Background(), actor, u.ID, UpdateParams{Role: &adminRole})

		assert.True(t, errors.IsKind(err, errors.KindForbidden))
	})

	t.Run("管理员可以改其他用户的角色", func(t *testing.T) {
		f := newUserFixture()
		u := f.users.Add(user.NewUser("Marko", "marko@example.com", "hash", user.RoleUser))
		adminActor := user.Actor{ID: 99, Role: user.RoleAdmin}
		adminRole := user.RoleAdmin

		updated, err := f.svc.Update(context.Background(), adminActor, u.ID, UpdateParams{Role: &adminRole})

		require.NoError(t, err)
		assert.Equal(t, user.RoleAdmin, updated.Role)
	})

	t.Run("更新收藏集合", func(t *testing.T) {
		f := newUserFixture()
		u := f.users.Add(user.NewUser("Marko", "marko@example.com", "hash", user.RoleUser))
		actor := user.Actor{ID: u.ID, Role: user.RoleUser}
		favorites := []uint{3, 5}

		updated, err := f.svc.Update(context.Background(), actor, u.ID, UpdateParams{Favorites: &favorites})

		require.NoError(t, err)
		assert.Equal(t, []uint{3, 5}, updated.Favorites)
	})

	t.Run("管理员也不能改自己的角色", func(t *testing.T) {
		f := newUserFixture()
		admin := f.users.Add(user.NewUser("Ana", "ana@example.com", "hash", user.RoleAdmin))
		adminActor := user.Actor{ID: admin.ID, Role: user.RoleAdmin}
		userRole := user.RoleUser

		_, err := f.svc.Update(context.Background(), adminActor, admin.ID, UpdateParams{Role: &userRole})

		assert.ErrorIs(t, err, user.ErrCannotChangeOwnRole)
	})
}
