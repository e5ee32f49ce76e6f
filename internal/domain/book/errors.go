package book

import (
	"github.com/biblioteka/backend/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = errors.New(errors.KindNotFound, "Book not found")

	// ErrBookAlreadyRented 图书已被其他用户借出
	ErrBookAlreadyRented = errors.New(errors.KindConflict, "Book is already rented")
)
