package loan

import (
	apperrors "github.com/cerbrary/cerbrary/pkg/errors"
)

// 借阅领域错误定义
var (
	// ErrLoanNotFound 借阅记录不存在
	ErrLoanNotFound = apperrors.ErrLoanNotFound

	// ErrInvalidLoanState 借阅记录状态不允许此操作
	ErrInvalidLoanState = apperrors.ErrInvalidLoanState

	// ErrForbidden 无权操作他人的借阅记录
	ErrForbidden = apperrors.ErrForbidden
)
