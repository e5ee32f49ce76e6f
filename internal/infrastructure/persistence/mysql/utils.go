package mysql

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isDuplicateError 判断是否为唯一键冲突错误（MySQL error 1062）
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Error 1062") ||
		strings.Contains(msg, "Duplicate entry")
}

// applyPagination 应用分页参数（page从1开始）
func applyPagination(db *gorm.DB, page, pageSize int) *gorm.DB {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	return db.Offset((page - 1) * pageSize).Limit(pageSize)
}

// sortClause 生成排序子句，字段需在白名单内防止SQL注入
func sortClause(sortBy string, desc bool, allowed map[string]bool) string {
	if sortBy == "" || !allowed[sortBy] {
		sortBy = "created_at"
	}
	if desc {
		return sortBy + " DESC"
	}
	return sortBy + " ASC"
}
