package order

import (
	"github.com/biblioteka/backend/pkg/errors"
)

// 订单领域错误定义
var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = errors.New(errors.KindNotFound, "Order not found")

	// ErrOrderAlreadyReturned 订单已关闭（重复归还）
	ErrOrderAlreadyReturned = errors.New(errors.KindInvalidOperation, "Order is already returned")
)
