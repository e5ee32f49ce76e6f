package activity

import (
	"time"
)

// Type 活动类型
type Type string

// 系统记录的全部活动类型
const (
	TypeUserRegistered Type = "USER_REGISTERED"
	TypeUserLogin      Type = "USER_LOGIN"
	TypeBookCreated    Type = "BOOK_CREATED"
	TypeBookUpdated    Type = "BOOK_UPDATED"
	TypeBookDeleted    Type = "BOOK_DELETED"
	TypeBookRented     Type = "BOOK_RENTED"
	TypeBookReturned   Type = "BOOK_RETURNED"
	TypeOrderCreated   Type = "ORDER_CREATED"
	TypeOrderReturned  Type = "ORDER_RETURNED"
)

// Activity 活动日志实体
// 记录系统中的关键业务事件，payload为事件相关的上下文信息
type Activity struct {
	ID        uint
	Type      Type
	UserID    *uint // 触发者，系统级操作可能为nil
	Payload   map[string]interface{}
	CreatedAt time.Time
}

// New 创建活动记录
func New(t Type, userID *uint, payload map[string]interface{}) *Activity {
	return &Activity{
		Type:      t,
		UserID:    userID,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
}
