package order

import (
	"github.com/biblioteka/backend/internal/domain/book"
)

// Snapshot 图书快照
// 在订单创建时捕获图书的关键信息，图书被删除后订单依赖快照展示，
// ID保留原图书ID，供图书引用被清空后溯源
type Snapshot struct {
	ID     uint   `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Year   string `json:"year"`
	Image  string `json:"image,omitempty"`
}

// NewSnapshot 从图书实体捕获快照
func NewSnapshot(b *book.Book) *Snapshot {
	return &Snapshot{
		ID:     b.ID,
		Title:  b.Title,
		Author: b.Author,
		Year:   b.Year,
		Image:  b.Image,
	}
}

// Display 订单的展示信息（解析后的图书ID/标题/作者/年份/封面）
// 字段为指针：nil表示信息已不可恢复（既无在库图书也无快照）
type Display struct {
	ID     *uint
	Title  *string
	Author *string
	Year   *string
	Image  *string
}

// ResolveDisplay 解析订单的展示信息
//
// 优先级规则：
// 1. 在库图书（live非nil）→ 实时信息优先，反映最新的编辑结果
// 2. 快照 → 图书已删除时的兜底来源
// 3. 两者皆无 → 全部为nil
func ResolveDisplay(o *Order, live *book.Book) Display {
	if live != nil {
		d := Display{
			ID:     &live.ID,
			Title:  &live.Title,
			Author: &live.Author,
			Year:   &live.Year,
		}
		if live.Image != "" {
			d.Image = &live.Image
		}
		return d
	}
	if o.Snapshot != nil {
		s := o.Snapshot
		d := Display{
			Title:  &s.Title,
			Author: &s.Author,
			Year:   &s.Year,
		}
		// 历史数据的快照可能无ID
		if s.ID != 0 {
			d.ID = &s.ID
		}
		if s.Image != "" {
			d.Image = &s.Image
		}
		return d
	}
	return Display{}
}
