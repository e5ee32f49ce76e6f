package order

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biblioteka/backend/internal/domain/book"
)

func newTestBook() *book.Book {
	b := book.NewBook("Башта, пепео", "Данило Киш", "1965", "")
	b.ID = 3
	return b
}

func TestOrder_Close(t *testing.T) {
	t.Run("活跃订单关闭后归还时间与终态同步设置", func(t *testing.T) {
		o := NewOrder(3, 7, NewSnapshot(newTestBook()))
		at := time.Now()

		err := o.Close(StatusReturned, at)

		require.NoError(t, err)
		require.NotNil(t, o.ReturnedAt)
		assert.Equal(t, at, *o.ReturnedAt)
		assert.Equal(t, StatusReturned, o.Status)
		assert.False(t, o.IsActive())
	})

	t.Run("已关闭订单重复关闭报错", func(t *testing.T) {
		o := NewOrder(3, 7, NewSnapshot(newTestBook()))
		require.NoError(t, o.Close(StatusReturned, time.Now()))

		err := o.Close(StatusReturned, time.Now())

		assert.ErrorIs(t, err, ErrOrderAlreadyReturned)
	})

	t.Run("active不是合法终态", func(t *testing.T) {
		o := NewOrder(3, 7, NewSnapshot(newTestBook()))

		err := o.Close(StatusActive, time.Now())

		assert.Error(t, err)
		assert.True(t, o.IsActive(), "订单应保持活跃")
	})
}

func TestOrder_IsActive(t *testing.T) {
	o := NewOrder(3, 7, NewSnapshot(newTestBook()))
	assert.True(t, o.IsActive())

	// 状态与归还时间脱节的数据不算活跃
	now := time.Now()
	o.ReturnedAt = &now
	assert.False(t, o.IsActive())

	o.ReturnedAt = nil
	o.Status = StatusCanceled
	assert.False(t, o.IsActive())
}

func TestOrder_EnsureSnapshot(t *testing.T) {
	snap := NewSnapshot(newTestBook())

	t.Run("缺快照时补齐", func(t *testing.T) {
		o := NewOrder(3, 7, nil)

		assert.True(t, o.EnsureSnapshot(snap))
		assert.Equal(t, snap, o.Snapshot)
	})

	t.Run("快照缺标题时也补齐", func(t *testing.T) {
		o := NewOrder(3, 7, &Snapshot{Author: "Данило Киш"})

		assert.True(t, o.EnsureSnapshot(snap))
		assert.Equal(t, "Башта, пепео", o.Snapshot.Title)
	})

	t.Run("已有完整快照时不覆盖", func(t *testing.T) {
		existing := &Snapshot{Title: "旧标题", Author: "旧作者", Year: "1900"}
		o := NewOrder(3, 7, existing)

		assert.False(t, o.EnsureSnapshot(snap))
		assert.Equal(t, existing, o.Snapshot)
	})
}

func TestOrder_ClearBookRef(t *testing.T) {
	t.Run("有快照时允许清除引用", func(t *testing.T) {
		o := NewOrder(3, 7, NewSnapshot(newTestBook()))

		require.NoError(t, o.ClearBookRef())
		assert.Nil(t, o.BookID)
	})

	t.Run("无快照时拒绝清除", func(t *testing.T) {
		o := NewOrder(3, 7, nil)

		assert.Error(t, o.ClearBookRef())
		assert.NotNil(t, o.BookID, "引用应保留")
	})
}

func TestResolveDisplay(t *testing.T) {
	snap := &Snapshot{Title: "快照标题", Author: "快照作者", Year: "1950"}

	t.Run("在库图书实时信息优先于快照", func(t *testing.T) {
		o := NewOrder(3, 7, snap)
		live := newTestBook()

		d := ResolveDisplay(o, live)

		require.NotNil(t, d.Title)
		assert.Equal(t, "Башта, пепео", *d.Title)
		assert.Equal(t, "Данило Киш", *d.Author)
		assert.Equal(t, "1965", *d.Year)
	})

	t.Run("图书已删除时回退到快照", func(t *testing.T) {
		o := NewOrder(3, 7, snap)

		d := ResolveDisplay(o, nil)

		require.NotNil(t, d.Title)
		assert.Equal(t, "快照标题", *d.Title)
		assert.Equal(t, "快照作者", *d.Author)
	})

	t.Run("既无图书也无快照时全部为nil", func(t *testing.T) {
		o := NewOrder(3, 7, nil)

		d := ResolveDisplay(o, nil)

		assert.Nil(t, d.Title)
		assert.Nil(t, d.Author)
		assert.Nil(t, d.Year)
	})
}

func TestStatus_JSON(t *testing.T) {
	data, err := json.Marshal(StatusBookDeleted)
	require.NoError(t, err)
	assert.Equal(t, `"book_deleted"`, string(data))

	var s Status
	require.NoError(t, json.Unmarshal([]byte(`"canceled"`), &s))
	assert.Equal(t, StatusCanceled, s)

	assert.Error(t, json.Unmarshal([]byte(`"unknown"`), &s))
}
