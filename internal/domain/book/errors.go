package book

import (
	apperrors "github.com/cerbrary/cerbrary/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.ErrBookNotFound

	// ErrISBNDuplicate ISBN已存在
	ErrISBNDuplicate = apperrors.ErrISBNDuplicate

	// ErrOutOfStock 无可借副本
	ErrOutOfStock = apperrors.ErrOutOfStock

	// ErrActiveLoansExist 存在未归还的借阅,不能删除
	ErrActiveLoansExist = apperrors.ErrActiveLoansExist

	// ErrInvalidTitle 书名不能为空
	ErrInvalidTitle = apperrors.New(apperrors.ErrCodeInvalidParams, "书名不能为空")

	// ErrInvalidAuthor 作者不能为空
	ErrInvalidAuthor = apperrors.New(apperrors.ErrCodeInvalidParams, "作者不能为空")

	// ErrInvalidCopies 副本数不合法
	ErrInvalidCopies = apperrors.New(apperrors.ErrCodeInvalidParams, "馆藏副本数不能为负数")

	// ErrCopiesBelowLoaned 副本总数不能少于借出中的数量
	ErrCopiesBelowLoaned = apperrors.New(apperrors.ErrCodeInvalidParams, "馆藏副本数不能少于当前借出数量")

	// ErrInvalidISBN ISBN格式不正确
	ErrInvalidISBN = apperrors.New(apperrors.ErrCodeInvalidParams, "ISBN格式不正确")

	// ErrInvalidYear 出版年份不合法
	ErrInvalidYear = apperrors.New(apperrors.ErrCodeInvalidParams, "出版年份不合法")
)
