package book

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biblioteka/backend/internal/domain/activity"
	"github.com/biblioteka/backend/internal/domain/book"
	"github.com/biblioteka/backend/internal/domain/order"
)

func TestService_Delete(t *testing.T) {
	t.Run("删除后活跃订单被关闭且展示信息保留", func(t *testing.T) {
		f := newBookFixture()
		b := f.books.Add(book.NewBook("Сеоба Срба", "Историчар", "1990", ""))
		active := f.orders.Add(order.NewOrder(b.ID, reader.ID, order.NewSnapshot(b)))
		closedAt := order.NewOrder(b.ID, other.ID, order.NewSnapshot(b))
		_ = closedAt.Close(order.StatusReturned, active.RentedAt)
		closed := f.orders.Add(closedAt)

		err := f.svc.Delete(context.Background(), admin.ID, b.ID)

		require.NoError(t, err)
		// 图书已删除
		_, err = f.books.FindByID(context.Background(), b.ID)
		assert.ErrorIs(t, err, book.ErrBookNotFound)
		// 活跃订单被强制关闭，终态book_deleted
		assert.Equal(t, order.StatusBookDeleted, active.Status)
		assert.NotNil(t, active.ReturnedAt)
		// 已关闭订单的终态不被改写
		assert.Equal(t, order.StatusReturned, closed.Status)
		// 所有订单的图书引用被清除，快照保留
		assert.Nil(t, active.BookID)
		assert.Nil(t, closed.BookID)
		require.NotNil(t, active.Snapshot)
		assert.Equal(t, "Сеоба Срба", active.Snapshot.Title)
		// 日志
		assert.Contains(t, f.activities.Types(), activity.TypeBookDeleted)
	})

	t.Run("缺快照的历史订单先被补齐", func(t *testing.T) {
		f := newBookFixture()
		b := f.books.Add(book.NewBook("Књига без снимка", "Аутор", "1980", ""))
		legacy := f.orders.Add(order.NewOrder(b.ID, reader.ID, nil))

		err := f.svc.Delete(context.Background(), admin.ID, b.ID)

		require.NoError(t, err)
		require.NotNil(t, legacy.Snapshot, "清除引用前必须补齐快照")
		assert.Equal(t, "Књига без снимка", legacy.Snapshot.Title)
		assert.Nil(t, legacy.BookID)
	})

	t.Run("图书不存在时404且不产生日志", func(t *testing.T) {
		f := newBookFixture()

		err := f.svc.Delete(context.Background(), admin.ID, 42)

		assert.ErrorIs(t, err, book.ErrBookNotFound)
		assert.Empty(t, f.activities.Records)
	})
}
