package loan

import (
	"context"
)

// Repository 借阅仓储接口(依赖倒置)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. UpdateStatus是并发安全的核心:条件UPDATE带上旧状态,
//    两个并发归还抢同一条ACTIVE记录时只有一个成功
// 3. 支持事务操作(通过context传递事务)
type Repository interface {
	// Create 创建借阅记录
	Create(ctx context.Context, loan *Loan) error

	// FindByID 根据ID查找借阅记录
	FindByID(ctx context.Context, id uint) (*Loan, error)

	// UpdateStatus 条件状态更新(原子操作)
	// UPDATE transactions SET status=to, return_date=? WHERE id=? AND status=from
	// 0行受影响时返回ErrLoanNotFound(记录不存在)或
	// ErrInvalidLoanState(状态已不是from)
	UpdateStatus(ctx context.Context, id uint, from, to Status, loan *Loan) error

	// ListByUserID 查询用户的借阅记录(分页,按创建时间倒序)
	ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*Loan, int64, error)

	// List 查询全部借阅记录(管理员,分页,按创建时间倒序)
	List(ctx context.Context, page, pageSize int) ([]*Loan, int64, error)

	// CountActiveByBookID 统计某图书的借阅中记录数(删除图书前检查)
	CountActiveByBookID(ctx context.Context, bookID uint) (int64, error)
}
