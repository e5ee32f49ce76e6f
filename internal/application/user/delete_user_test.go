package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biblioteka/backend/internal/domain/book"
	"github.com/biblioteka/backend/internal/domain/order"
	"github.com/biblioteka/backend/internal/domain/user"
)

func TestService_Delete(t *testing.T) {
	adminActor := user.Actor{ID: 1, Role: user.RoleAdmin}

	t.Run("删除后图书释放且订单被清除", func(t *testing.T) {
		f := newUserFixture()
		target := f.users.Add(user.NewUser("Marko", "marko@example.com", "hash", user.RoleUser))

		// 带订单的借阅
		b1 := f.books.Add(book.NewBook("Књига 1", "Аутор", "2001", ""))
		_, err := b1.RentTo(target.ID)
		require.NoError(t, err)
		activeOrder := f.orders.Add(order.NewOrder(b1.ID, target.ID, order.NewSnapshot(b1)))

		// 直接借阅（无订单）
		b2 := f.books.Add(book.NewBook("Књига 2", "Аутор", "2002", ""))
		_, err = b2.RentTo(target.ID)
		require.NoError(t, err)

		// 他人的借阅不受影响
		b3 := f.books.Add(book.NewBook("Књига 3", "Аутор", "2003", ""))
		_, err = b3.RentTo(99)
		require.NoError(t, err)
		otherOrder := f.orders.Add(order.NewOrder(b3.ID, 99, order.NewSnapshot(b3)))

		err = f.svc.Delete(context.Background(), adminActor, target.ID)

		require.NoError(t, err)
		// 用户已删除
		_, err = f.users.FindByID(context.Background(), target.ID)
		assert.ErrorIs(t, err, user.ErrUserNotFound)
		// 其借出的图书全部释放（含无订单的直接借阅）
		assert.False(t, b1.IsRented())
		assert.False(t, b2.IsRented())
		// 其订单被整体清除（活跃订单先关闭后删除）
		_, err = f.orders.FindByID(context.Background(), activeOrder.ID)
		assert.ErrorIs(t, err, order.ErrOrderNotFound)
		// 他人数据不受影响
		assert.True(t, b3.RentedByUser(99))
		_, err = f.orders.FindByID(context.Background(), otherOrder.ID)
		assert.NoError(t, err)
	})

	t.Run("活跃订单引用的图书被转借他人时仍释放", func(t *testing.T) {
		f := newUserFixture()
		target := f.users.Add(user.NewUser("Marko", "marko@example.com", "hash", user.RoleUser))

		// 建单后图书被管理员手动归还并转借他人，订单仍引用该图书
		b := f.books.Add(book.NewBook("Књига", "Аутор", "2005", ""))
		_, err := b.RentTo(target.ID)
		require.NoError(t, err)
		f.orders.Add(order.NewOrder(b.ID, target.ID, order.NewSnapshot(b)))
		b.Return()
		_, err = b.RentTo(99)
		require.NoError(t, err)

		err = f.svc.Delete(context.Background(), adminActor, target.ID)

		require.NoError(t, err)
		assert.False(t, b.IsRented(), "订单引用的图书以订单为准释放")
	})

	t.Run("管理员不能删除自己", func(t *testing.T) {
		f := newUserFixture()
		f.users.Add(&user.User{ID: 1, Name: "Admin", Email: "admin@example.com", Role: user.RoleAdmin})

		err := f.svc.Delete(context.Background(), adminActor, adminActor.ID)

		assert.ErrorIs(t, err, user.ErrCannotDeleteSelf)
	})

	t.Run("非管理员403", func(t *testing.T) {
		f := newUserFixture()
		target := f.users.Add(user.NewUser("Marko", "marko@example.com", "hash", user.RoleUser))
		regular := user.Actor{ID: 50, Role: user.RoleUser}

		err := f.svc.Delete(context.Background(), regular, target.ID)

		assert.Error(t, err)
		_, findErr := f.users.FindByID(context.Background(), target.ID)
		assert.NoError(t, findErr, "用户不应被删除")
	})

	t.Run("用户不存在404", func(t *testing.T) {
		f := newUserFixture()

		err := f.svc.Delete(context.Background(), adminActor, 42)

		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})
}
