package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/biblioteka/backend/pkg/errors"
)

// 统一响应封装
// 设计说明：
// 1. 成功响应：{ "data": <payload> }，状态码200/201
// 2. 失败响应：{ "error": <message>, "details": [...] }，状态码按错误类别映射
// 3. details仅在参数校验失败时出现

// DataEnvelope 成功响应结构
type DataEnvelope struct {
	Data interface{} `json:"data"`
}

// ErrorEnvelope 失败响应结构
type ErrorEnvelope struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// OK 成功响应（200）
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, DataEnvelope{Data: data})
}

// Created 创建成功响应（201）
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, DataEnvelope{Data: data})
}

// Error 错误响应（自动处理AppError）
// 用法：
//
//	if err := useCase.Execute(...); err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	c.JSON(appErr.HTTPStatus(), ErrorEnvelope{Error: appErr.Message})
}

// ValidationError 参数校验失败响应（400）
func ValidationError(c *gin.Context, details ...string) {
	c.JSON(http.StatusBadRequest, ErrorEnvelope{
		Error:   "Validation error",
		Details: details,
	})
}

// =========================================
// 分页响应结构
// =========================================

// PageData 分页数据封装
type PageData struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}

// NewPageData 创建分页数据
func NewPageData(items interface{}, total int64, page, pageSize int) *PageData {
	return &PageData{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
}

// OKWithPage 分页成功响应
func OKWithPage(c *gin.Context, items interface{}, total int64, page, pageSize int) {
	OK(c, NewPageData(items, total, page, pageSize))
}
