// Package dto 定义HTTP层的请求/响应结构
//
// 设计说明：
// 1. 请求结构使用gin的binding tag做参数校验
// 2. 响应结构与领域实体分离，敏感字段（密码哈希）不出现在任何响应中
package dto

// PaginationQuery 通用分页查询参数
// limit上限100，防止单次拉取过多数据
type PaginationQuery struct {
	Page  int    `form:"page,default=1" binding:"omitempty,min=1"`
	Limit int    `form:"limit,default=10" binding:"omitempty,min=1,max=100"`
	Sort  string `form:"sort" binding:"omitempty,max=50"`
	Order string `form:"order" binding:"omitempty,oneof=asc desc"`
}

// Desc 是否倒序
func (q PaginationQuery) Desc() bool {
	return q.Order == "desc"
}
