package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/biblioteka/backend/internal/application/apptest"
	"github.com/biblioteka/backend/internal/domain/activity"
	"github.com/biblioteka/backend/internal/domain/book"
	"github.com/biblioteka/backend/internal/domain/order"
	"github.com/biblioteka/backend/internal/domain/user"
	"github.com/biblioteka/backend/pkg/errors"
)

type orderFixture struct {
	svc        *Service
	books      *apptest.FakeBookRepo
	orders     *apptest.FakeOrderRepo
	activities *apptest.FakeActivityRepo
}

func newOrderFixture() *orderFixture {
	books := apptest.NewFakeBookRepo()
	orders := apptest.NewFakeOrderRepo()
	activities := apptest.NewFakeActivityRepo()
	recorder := activity.NewRecorder(activities, nil, zap.NewNop())

	return &orderFixture{
		svc:        NewService(orders, books, apptest.FakeTx{}, recorder, zap.NewNop()),
		books:      books,
		orders:     orders,
		activities: activities,
	}
}

var (
	reader = user.Actor{ID: 7, Role: user.RoleUser}
	admin  = user.Actor{ID: 1, Role: user.RoleAdmin}
)

func TestService_Create(t *testing.T) {
	t.Run("建单成功后图书借出且快照被捕获", func(t *testing.T) {
		f := newOrderFixture()
		b := f.books.Add(book.NewBook("Травничка хроника", "Иво Андрић", "1945", ""))

		o, err := f.svc.Create(context.Background(), reader, b.ID)

		require.NoError(t, err)
		assert.True(t, o.IsActive())
		require.NotNil(t, o.BookID)
		assert.Equal(t, b.ID, *o.BookID)
		require.NotNil(t, o.Snapshot)
		assert.Equal(t, "Травничка хроника", o.Snapshot.Title)
		assert.True(t, b.RentedByUser(reader.ID))
		assert.Equal(t, []activity.Type{activity.TypeOrderCreated}, f.activities.Types())
	})

	t.Run("图书被他人借出时409", func(t *testing.T) {
		f := newOrderFixture()
		b := f.books.Add(book.NewBook("Кад су цветале тикве", "Драгослав Михаиловић", "1968", ""))
		_, err := b.RentTo(99)
		require.NoError(t, err)

		_, err = f.svc.Create(context.Background(), reader, b.ID)

		assert.ErrorIs(t, err, book.ErrBookAlreadyRented)
	})

	t.Run("图书被本人借出时同样409", func(t *testing.T) {
		// 与直接借书的幂等语义不同：重复建单会产生重复订单
		f := newOrderFixture()
		b := f.books.Add(book.NewBook("Рани јади", "Данило Киш", "1970", ""))
		_, err := f.svc.Create(context.Background(), reader, b.ID)
		require.NoError(t, err)

		_, err = f.svc.Create(context.Background(), reader, b.ID)

		assert.ErrorIs(t, err, book.ErrBookAlreadyRented)
	})

	t.Run("图书不存在时404", func(t *testing.T) {
		f := newOrderFixture()

		_, err := f.svc.Create(context.Background(), reader, 42)

		assert.ErrorIs(t, err, book.ErrBookNotFound)
	})

	t.Run("管理员不能建单403", func(t *testing.T) {
		f := newOrderFixture()
		b := f.books.Add(book.NewBook("Проклета авлија", "Иво Андрић", "1954", ""))

		_, err := f.svc.Create(context.Background(), admin, b.ID)

		assert.True(t, errors.IsKind(err, errors.KindForbidden))
		assert.False(t, b.IsRented(), "图书状态不应被改变")
	})
}

func TestService_Return(t *testing.T) {
	t.Run("归还成功后订单关闭且图书释放", func(t *testing.T) {
		f := newOrderFixture()
		b := f.books.Add(book.NewBook("Доротеј", "Добрило Ненадић", "1977", ""))
		o, err := f.svc.Create(context.Background(), reader, b.ID)
		require.NoError(t, err)

		returned, err := f.svc.Return(context.Background(), reader, o.ID)

		require.NoError(t, err)
		assert.Equal(t, order.StatusReturned, returned.Status)
		assert.NotNil(t, returned.ReturnedAt)
		assert.False(t, b.IsRented())
	})

	t.Run("非归属者且非管理员403", func(t *testing.T) {
		f := newOrderFixture()
		b := f.books.Add(book.NewBook("Употреба човека", "Александар Тишма", "1976", ""))
		o, err := f.svc.Create(context.Background(), reader, b.ID)
		require.NoError(t, err)

		stranger := user.Actor{ID: 8, Role: user.RoleUser}
		_, err = f.svc.Return(context.Background(), stranger, o.ID)

		assert.True(t, errors.IsKind(err, errors.KindForbidden))
		assert.True(t, o.IsActive(), "订单不应被关闭")
	})

	t.Run("管理员可代为归还", func(t *testing.T) {
		f := newOrderFixture()
		b := f.books.Add(book.NewBook("Петријин венац", "Драгослав Михаиловић", "1975", ""))
		o, err := f.svc.Create(context.Background(), reader, b.ID)
		require.NoError(t, err)

		_, err = f.svc.Return(context.Background(), admin, o.ID)

		require.NoError(t, err)
		assert.False(t, b.IsRented())
	})

	t.Run("重复归还400", func(t *testing.T) {
		f := newOrderFixture()
		b := f.books.Add(book.NewBook("Нечиста крв", "Борисав Станковић", "1910", ""))
		o, err := f.svc.Create(context.Background(), reader, b.ID)
		require.NoError(t, err)
		_, err = f.svc.Return(context.Background(), reader, o.ID)
		require.NoError(t, err)

		_, err = f.svc.Return(context.Background(), reader, o.ID)

		assert.ErrorIs(t, err, order.ErrOrderAlreadyReturned)
	})

	t.Run("图书已被删除时订单单独关闭", func(t *testing.T) {
		f := newOrderFixture()
		b := f.books.Add(book.NewBook("Корени", "Добрица Ћосић", "1954", ""))
		o, err := f.svc.Create(context.Background(), reader, b.ID)
		require.NoError(t, err)
		require.NoError(t, f.books.Delete(context.Background(), b.ID))

		returned, err := f.svc.Return(context.Background(), reader, o.ID)

		require.NoError(t, err)
		assert.Equal(t, order.StatusReturned, returned.Status)
	})

	t.Run("图书已被转借他人时仍以订单为准释放", func(t *testing.T) {
		f := newOrderFixture()
		b := f.books.Add(book.NewBook("Газда Младен", "Борисав Станковић", "1928", ""))
		o, err := f.svc.Create(context.Background(), reader, b.ID)
		require.NoError(t, err)

		// 管理员手动归还后借给他人，订单仍引用该图书
		b.Return()
		_, err = b.RentTo(99)
		require.NoError(t, err)

		_, err = f.svc.Return(context.Background(), reader, o.ID)

		require.NoError(t, err)
		assert.False(t, b.IsRented(), "订单引用的图书无论借给谁都应释放")
	})

	t.Run("图书引用已清空时日志从快照取图书ID", func(t *testing.T) {
		f := newOrderFixture()
		b := f.books.Add(book.NewBook("На Дрини ћуприја", "Иво Андрић", "1945", ""))
		o, err := f.svc.Create(context.Background(), reader, b.ID)
		require.NoError(t, err)
		require.NoError(t, o.ClearBookRef())
		require.NoError(t, f.orders.Update(context.Background(), o))

		_, err = f.svc.Return(context.Background(), reader, o.ID)

		require.NoError(t, err)
		records := f.activities.Records
		require.NotEmpty(t, records)
		last := records[len(records)-1]
		assert.Equal(t, activity.TypeOrderReturned, last.Type)
		assert.EqualValues(t, b.ID, last.Payload["book_id"])
	})
}

func TestService_List(t *testing.T) {
	t.Run("普通用户只看到自己的订单", func(t *testing.T) {
		f := newOrderFixture()
		b1 := f.books.Add(book.NewBook("Ходочашће Арсенија Његована", "Борислав Пекић", "1970", ""))
		b2 := f.books.Add(book.NewBook("Атлантида", "Борислав Пекић", "1988", ""))
		f.orders.Add(order.NewOrder(b1.ID, reader.ID, order.NewSnapshot(b1)))
		f.orders.Add(order.NewOrder(b2.ID, 99, order.NewSnapshot(b2)))

		views, total, err := f.svc.List(context.Background(), reader, order.ListParams{Page: 1, PageSize: 10})

		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, views, 1)
		assert.Equal(t, reader.ID, views[0].Order.UserID)
	})

	t.Run("展示信息解析：在库实时优先，删除后回退快照", func(t *testing.T) {
		f := newOrderFixture()
		live := f.books.Add(book.NewBook("Озон", "Аутор", "2000", ""))
		live.Image = "https://covers.example.com/ozon.jpg"
		deleted := f.books.Add(book.NewBook("Обрисана књига", "Непознат", "1999", ""))
		deleted.Image = "https://covers.example.com/obrisana.jpg"

		f.orders.Add(order.NewOrder(live.ID, reader.ID, order.NewSnapshot(live)))
		f.orders.Add(order.NewOrder(deleted.ID, reader.ID, order.NewSnapshot(deleted)))

		// 在库图书后续被编辑，订单应展示最新标题
		live.Title = "Озон（друго издање）"
		require.NoError(t, f.books.Delete(context.Background(), deleted.ID))

		views, _, err := f.svc.List(context.Background(), reader, order.ListParams{Page: 1, PageSize: 10})
		require.NoError(t, err)
		require.Len(t, views, 2)

		byBook := map[string]order.Display{}
		for _, v := range views {
			require.NotNil(t, v.Display.Title)
			byBook[*v.Display.Title] = v.Display
		}

		fromLive, ok := byBook["Озон（друго издање）"]
		require.True(t, ok, "实时信息优先")
		require.NotNil(t, fromLive.ID)
		assert.Equal(t, live.ID, *fromLive.ID)
		require.NotNil(t, fromLive.Image)
		assert.Equal(t, "https://covers.example.com/ozon.jpg", *fromLive.Image)

		fromSnap, ok := byBook["Обрисана књига"]
		require.True(t, ok, "删除后回退快照")
		require.NotNil(t, fromSnap.ID)
		assert.Equal(t, deleted.ID, *fromSnap.ID)
		require.NotNil(t, fromSnap.Image)
		assert.Equal(t, "https://covers.example.com/obrisana.jpg", *fromSnap.Image)
	})

	t.Run("归还后的订单展示信息保留", func(t *testing.T) {
		f := newOrderFixture()
		b := f.books.Add(book.NewBook("Време смрти", "Добрица Ћосић", "1972", ""))
		o, err := f.svc.Create(context.Background(), reader, b.ID)
		require.NoError(t, err)
		_, err = f.svc.Return(context.Background(), reader, o.ID)
		require.NoError(t, err)

		view, err := f.svc.Get(context.Background(), reader, o.ID)

		require.NoError(t, err)
		require.NotNil(t, view.Display.Title)
		assert.Equal(t, "Време смрти", *view.Display.Title)
	})
}
