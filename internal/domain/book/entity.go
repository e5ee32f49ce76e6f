package book

import (
	"time"
)

// Book 图书实体（聚合根）
//
// 业务规则：
// 1. RentedBy为nil表示在架，非nil表示被对应用户借出
// 2. 借出状态的变更只能通过RentTo/Return进行，保证状态转移合法
// 3. Year以字符串存储（如"1987"或"约1950"），不做数值约束
type Book struct {
	ID          uint
	Title       string
	Author      string
	Year        string
	Image       string // 封面图URL
	Description string
	RentedBy    *uint // 当前借阅者的用户ID，nil=在架
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewBook 创建新图书（工厂方法），初始状态为在架
func NewBook(title, author, year, description string) *Book {
	now := time.Now()
	return &Book{
		Title:       title,
		Author:      author,
		Year:        year,
		Description: description,
		RentedBy:    nil,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsRented 是否处于借出状态
func (b *Book) IsRented() bool {
	return b.RentedBy != nil
}

// RentedByUser 是否被指定用户借出
func (b *Book) RentedByUser(userID uint) bool {
	return b.RentedBy != nil && *b.RentedBy == userID
}

// RentTo 借给指定用户
//
// 状态转移规则：
// 1. 在架 → 借出成功，changed=true
// 2. 已被同一用户借出 → 幂等成功，changed=false（调用方据此跳过活动日志）
// 3. 已被其他用户借出 → ErrBookAlreadyRented
func (b *Book) RentTo(userID uint) (changed bool, err error) {
	if b.RentedBy == nil {
		b.RentedBy = &userID
		b.UpdatedAt = time.Now()
		return true, nil
	}
	if *b.RentedBy == userID {
		return false, nil
	}
	return false, ErrBookAlreadyRented
}

// Return 归还图书
// 图书本就在架时为幂等空操作，changed=false
func (b *Book) Return() (changed bool) {
	if b.RentedBy == nil {
		return false
	}
	b.RentedBy = nil
	b.UpdatedAt = time.Now()
	return true
}
