package order

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Status 订单状态
// 设计说明：内部用int枚举保证类型安全，序列化时转为字符串形式
type Status int

const (
	// StatusActive 借阅中
	StatusActive Status = iota
	// StatusReturned 已正常归还
	StatusReturned
	// StatusCanceled 已取消（用户账号删除时关闭的订单）
	StatusCanceled
	// StatusBookDeleted 图书被删除时强制关闭
	StatusBookDeleted
)

var statusNames = map[Status]string{
	StatusActive:      "active",
	StatusReturned:    "returned",
	StatusCanceled:    "canceled",
	StatusBookDeleted: "book_deleted",
}

var statusValues = map[string]Status{
	"active":       StatusActive,
	"returned":     StatusReturned,
	"canceled":     StatusCanceled,
	"book_deleted": StatusBookDeleted,
}

// String 返回状态的字符串形式
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// ParseStatus 从字符串解析状态
func ParseStatus(raw string) (Status, bool) {
	s, ok := statusValues[raw]
	return s, ok
}

// MarshalJSON 序列化为字符串形式
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON 从字符串形式反序列化
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, ok := ParseStatus(raw)
	if !ok {
		return fmt.Errorf("invalid order status: %q", raw)
	}
	*s = parsed
	return nil
}

// Value 实现driver.Valuer，数据库中以字符串存储
func (s Status) Value() (driver.Value, error) {
	return s.String(), nil
}

// Scan 实现sql.Scanner
func (s *Status) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("scan order status: unsupported type %T", src)
	}
	parsed, ok := ParseStatus(raw)
	if !ok {
		return fmt.Errorf("scan order status: invalid value %q", raw)
	}
	*s = parsed
	return nil
}

// Order 借阅订单实体（聚合根）
//
// 业务规则：
// 1. 活跃判定：ReturnedAt为nil且Status为active，两者必须同步变更
// 2. BookID在图书被删除后会被清空（此前必须已有快照兜底）
// 3. Snapshot在创建时捕获图书信息，图书删除后作为展示来源
type Order struct {
	ID         uint
	BookID     *uint // 图书删除后为nil
	UserID     uint
	Snapshot   *Snapshot
	RentedAt   time.Time
	ReturnedAt *time.Time
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewOrder 创建新订单（工厂方法）
// 创建时即捕获图书快照，保证图书被删除后订单仍可展示
func NewOrder(bookID, userID uint, snap *Snapshot) *Order {
	now := time.Now()
	id := bookID
	return &Order{
		BookID:    &id,
		UserID:    userID,
		Snapshot:  snap,
		RentedAt:  now,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsActive 是否为活跃订单（借阅中）
func (o *Order) IsActive() bool {
	return o.ReturnedAt == nil && o.Status == StatusActive
}

// Close 关闭订单：同时设置归还时间与终态，保证两者不会脱节
// 订单已关闭时返回ErrOrderAlreadyReturned
func (o *Order) Close(status Status, at time.Time) error {
	if !o.IsActive() {
		return ErrOrderAlreadyReturned
	}
	if status == StatusActive {
		return fmt.Errorf("close order: active is not a terminal status")
	}
	o.ReturnedAt = &at
	o.Status = status
	o.UpdatedAt = time.Now()
	return nil
}

// EnsureSnapshot 补齐缺失的快照
// 历史数据中可能存在无快照或快照缺标题的订单，删除图书前需要先兜底
func (o *Order) EnsureSnapshot(snap *Snapshot) (changed bool) {
	if o.Snapshot != nil && o.Snapshot.Title != "" {
		return false
	}
	o.Snapshot = snap
	o.UpdatedAt = time.Now()
	return true
}

// ClearBookRef 清除图书引用
// 前置条件：必须已有带标题的快照，否则订单会失去全部展示信息
func (o *Order) ClearBookRef() error {
	if o.Snapshot == nil || o.Snapshot.Title == "" {
		return fmt.Errorf("clear book ref: order %d has no usable snapshot", o.ID)
	}
	o.BookID = nil
	o.UpdatedAt = time.Now()
	return nil
}
