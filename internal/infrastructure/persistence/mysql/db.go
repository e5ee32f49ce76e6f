// Package mysql 提供基于GORM的仓储实现
//
// 设计说明：
// 1. 每个聚合对应一个Model结构（数据库映射）与toEntity/fromEntity转换函数，
//    领域实体不感知GORM tag
// 2. 事务通过context传递（见tx_manager.go），仓储方法统一经getDB取连接
package mysql

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/biblioteka/backend/internal/infrastructure/config"
)

// NewDB 创建数据库连接并执行迁移
func NewDB(cfg config.DatabaseConfig, mode string) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if mode == "debug" {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return db, nil
}

// autoMigrate 自动迁移所有表结构
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&BookModel{},
		&OrderModel{},
		&ActivityModel{},
	)
}

// UserModel 用户表
type UserModel struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null"`
	Email     string `gorm:"size:255;uniqueIndex;not null"`
	Password  string `gorm:"size:255;not null"`
	Role      string `gorm:"size:20;not null;default:user"`
	Favorites []uint `gorm:"serializer:json"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// BookModel 图书表
// 使用软删除：被删除的图书不再出现在任何查询中，但保留数据用于审计
type BookModel struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"size:255;index;not null"`
	Author      string `gorm:"size:255;not null"`
	Year        string `gorm:"size:50"`
	Image       string `gorm:"size:500"`
	Description string `gorm:"type:text"`
	RentedBy    *uint  `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// OrderModel 借阅订单表
// Snapshot以JSON列存储（serializer:json），避免为快照单独建表
type OrderModel struct {
	ID         uint  `gorm:"primaryKey"`
	BookID     *uint `gorm:"index"`
	UserID     uint  `gorm:"index;not null"`
	Snapshot   *SnapshotModel `gorm:"serializer:json"`
	RentedAt   time.Time      `gorm:"not null"`
	ReturnedAt *time.Time
	Status     string `gorm:"size:20;index;not null;default:active"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName 指定表名
func (OrderModel) TableName() string {
	return "orders"
}

// SnapshotModel 快照的JSON存储形式
type SnapshotModel struct {
	ID     uint   `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Year   string `json:"year"`
	Image  string `json:"image,omitempty"`
}

// ActivityModel 活动日志表
type ActivityModel struct {
	ID        uint                   `gorm:"primaryKey"`
	Type      string                 `gorm:"size:50;index;not null"`
	UserID    *uint                  `gorm:"index"`
	Payload   map[string]interface{} `gorm:"serializer:json"`
	CreatedAt time.Time              `gorm:"index"`
}

// TableName 指定表名
func (ActivityModel) TableName() string {
	return "activities"
}
