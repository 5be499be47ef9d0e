package user

import (
	"context"
)

// Repository 用户仓储接口
// 接口定义在domain层,实现在infrastructure/persistence/mysql层,
// domain层不依赖任何外部框架,便于Mock测试
type Repository interface {
	// Create 创建用户
	// 邮箱已存在时返回ErrEmailDuplicate
	Create(ctx context.Context, user *User) error

	// FindByID 根据ID查找用户
	// 不存在时返回ErrUserNotFound
	FindByID(ctx context.Context, id uint) (*User, error)

	// FindByEmail 根据邮箱查找用户
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Update 更新用户信息
	Update(ctx context.Context, user *User) error

	// Delete 删除用户(软删除)
	Delete(ctx context.Context, id uint) error

	// List 分页查询用户列表(管理员)
	List(ctx context.Context, page, pageSize int) ([]*User, int64, error)
}
