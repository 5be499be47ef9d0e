package user

import (
	apperrors "github.com/cerbrary/cerbrary/pkg/errors"
)

// 用户领域错误定义
var (
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = apperrors.ErrUserNotFound

	// ErrEmailDuplicate 邮箱已被注册
	ErrEmailDuplicate = apperrors.ErrEmailDuplicate

	// ErrInvalidEmail 邮箱格式不正确
	ErrInvalidEmail = apperrors.New(apperrors.ErrCodeInvalidParams, "邮箱格式不正确")

	// ErrInvalidName 姓名长度不合法
	ErrInvalidName = apperrors.New(apperrors.ErrCodeInvalidParams, "姓名长度应为2-50个字符")

	// ErrInvalidRole 角色不合法
	ErrInvalidRole = apperrors.New(apperrors.ErrCodeInvalidParams, "角色只能是USER或ADMIN")

	// ErrInvalidStatus 审批状态不合法
	ErrInvalidStatus = apperrors.New(apperrors.ErrCodeInvalidParams, "审批状态只能是PENDING、APPROVED或REJECTED")
)
