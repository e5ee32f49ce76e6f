package book

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/biblioteka/backend/internal/application/apptest"
	"github.com/biblioteka/backend/internal/domain/activity"
	"github.com/biblioteka/backend/internal/domain/book"
	"github.com/biblioteka/backend/internal/domain/user"
	"github.com/biblioteka/backend/pkg/errors"
)

type bookFixture struct {
	svc        *Service
	books      *apptest.FakeBookRepo
	orders     *apptest.FakeOrderRepo
	activities *apptest.FakeActivityRepo
}

func newBookFixture() *bookFixture {
	books := apptest.NewFakeBookRepo()
	orders := apptest.NewFakeOrderRepo()
	activities := apptest.NewFakeActivityRepo()
	recorder := activity.NewRecorder(activities, nil, zap.NewNop())

	return &bookFixture{
		svc:        NewService(books, orders, apptest.FakeTx{}, recorder, zap.NewNop()),
		books:      books,
		orders:     orders,
		activities: activities,
	}
}

var (
	reader = user.Actor{ID: 7, Role: user.RoleUser}
	other  = user.Actor{ID: 8, Role: user.RoleUser}
	admin  = user.Actor{ID: 1, Role: user.RoleAdmin}
)

func TestService_Rent(t *testing.T) {
	t.Run("在架图书借出并记录日志", func(t *testing.T) {
		f := newBookFixture()
		b := f.books.Add(book.NewBook("Људи говоре", "Растко Петровић", "1931", ""))

		got, err := f.svc.Rent(context.Background(), reader, b.ID)

		require.NoError(t, err)
		assert.True(t, got.RentedByUser(reader.ID))
		assert.Equal(t, []activity.Type{activity.TypeBookRented}, f.activities.Types())
	})

	t.Run("本人重复借出幂等且不记日志", func(t *testing.T) {
		f := newBookFixture()
		b := f.books.Add(book.NewBook("Дан шести", "Растко Петровић", "1961", ""))
		_, err := f.svc.Rent(context.Background(), reader, b.ID)
		require.NoError(t, err)

		got, err := f.svc.Rent(context.Background(), reader, b.ID)

		require.NoError(t, err)
		assert.True(t, got.RentedByUser(reader.ID))
		assert.Len(t, f.activities.Records, 1, "幂等空操作不应产生第二条日志")
	})

	t.Run("他人已借出409", func(t *testing.T) {
		f := newBookFixture()
		b := f.books.Add(book.NewBook("Сутон", "Иво Ћипико", "1902", ""))
		_, err := f.svc.Rent(context.Background(), other, b.ID)
		require.NoError(t, err)

		_, err = f.svc.Rent(context.Background(), reader, b.ID)

		assert.ErrorIs(t, err, book.ErrBookAlreadyRented)
	})
}

func TestService_Return(t *testing.T) {
	t.Run("借阅者本人归还成功", func(t *testing.T) {
		f := newBookFixture()
		b := f.books.Add(book.NewBook("Покошено поље", "Бранимир Ћосић", "1934", ""))
		_, err := f.svc.Rent(context.Background(), reader, b.ID)
		require.NoError(t, err)

		got, err := f.svc.Return(context.Background(), reader, b.ID)

		require.NoError(t, err)
		assert.False(t, got.IsRented())
		assert.Contains(t, f.activities.Types(), activity.TypeBookReturned)
	})

	t.Run("他人借出时非管理员403", func(t *testing.T) {
		f := newBookFixture()
		b := f.books.Add(book.NewBook("Злато", "Вељко Петровић", "1920", ""))
		_, err := f.svc.Rent(context.Background(), other, b.ID)
		require.NoError(t, err)

		_, err = f.svc.Return(context.Background(), reader, b.ID)

		assert.True(t, errors.IsKind(err, errors.KindForbidden))
		assert.True(t, b.RentedByUser(other.ID), "借出状态不应被改变")
	})

	t.Run("他人借出时管理员可强制归还", func(t *testing.T) {
		f := newBookFixture()
		b := f.books.Add(book.NewBook("Бакоња фра Брне", "Симо Матавуљ", "1892", ""))
		_, err := f.svc.Rent(context.Background(), other, b.ID)
		require.NoError(t, err)

		got, err := f.svc.Return(context.Background(), admin, b.ID)

		require.NoError(t, err)
		assert.False(t, got.IsRented())
	})

	t.Run("管理员归还在架图书是幂等空操作", func(t *testing.T) {
		f := newBookFixture()
		b := f.books.Add(book.NewBook("Вукадин", "Стеван Сремац", "1903", ""))

		got, err := f.svc.Return(context.Background(), admin, b.ID)

		require.NoError(t, err)
		assert.False(t, got.IsRented())
		assert.Empty(t, f.activities.Records, "空操作不应记日志")
	})

	t.Run("非管理员归还在架图书403", func(t *testing.T) {
		// 在架图书没有借阅者，普通用户不满足"管理员或当前借阅者"
		f := newBookFixture()
		b := f.books.Add(book.NewBook("Ивкова слава", "Стеван Сремац", "1895", ""))

		_, err := f.svc.Return(context.Background(), reader, b.ID)

		assert.True(t, errors.IsKind(err, errors.KindForbidden))
	})
}
