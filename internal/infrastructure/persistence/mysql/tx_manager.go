package mysql

import (
	"context"

	"gorm.io/gorm"
)

// txKey 事务在context中的键类型（非导出，避免外部冲突）
type txKey struct{}

// TxManager 事务管理器
//
// 设计说明：
// 1. 事务对象通过context传递，application层只依赖Transaction接口，
//    不感知GORM
// 2. 所有仓储方法经getDB取连接：context中有事务则用事务，否则用普通连接，
//    因此同一个仓储实例在事务内外都能工作
type TxManager struct {
	db *gorm.DB
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// Transaction 在事务中执行fn
// fn返回错误时回滚，否则提交
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := context.WithValue(ctx, txKey{}, tx)
		return fn(txCtx)
	})
}

// getDB 取当前连接：优先使用context中的事务
func getDB(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}
