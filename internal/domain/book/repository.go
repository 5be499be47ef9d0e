package book

import (
	"context"
)

// Repository 图书仓储接口(依赖倒置)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现,便于Mock测试
// 2. ReserveCopy/ReleaseCopy是并发安全的核心:单条条件UPDATE,
//    由数据库按行串行化,两个并发借出抢最后一个副本时只有一个成功
type Repository interface {
	// Create 创建图书
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书
	FindByID(ctx context.Context, id uint) (*Book, error)

	// FindByISBN 根据ISBN查找图书
	FindByISBN(ctx context.Context, isbn string) (*Book, error)

	// Update 更新图书基本信息
	// 只写信息列,不触碰total_copies/available_copies:
	// 副本计数只走ReserveCopy/ReleaseCopy/AdjustCopies的条件UPDATE,
	// 读-改-写整行回写会用过期快照覆盖并发借出的扣减
	Update(ctx context.Context, book *Book) error

	// AdjustCopies 调整馆藏副本总数(原子操作)
	// 单条条件UPDATE按差额同步available_copies,
	// 借出中的副本(total-available)不受影响;
	// 新总数少于已借出数时返回ErrCopiesBelowLoaned
	AdjustCopies(ctx context.Context, id uint, totalCopies int) error

	// Delete 删除图书(软删除)
	Delete(ctx context.Context, id uint) error

	// List 分页查询图书列表(搜索+筛选)
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)

	// LockByID 悲观锁查询图书(SELECT FOR UPDATE)
	// 用于删除前检查等需要独占读的场景,必须在TxManager事务内调用
	LockByID(ctx context.Context, id uint) (*Book, error)

	// ReserveCopy 预扣一个可借副本(原子操作)
	// available_copies > 0 时减1;无可借副本返回ErrOutOfStock,
	// 图书不存在返回ErrBookNotFound
	ReserveCopy(ctx context.Context, id uint) error

	// ReleaseCopy 放回一个副本(原子操作,幂等)
	// available_copies < total_copies 时加1;已满时按总数钳制,
	// 直接返回成功,保证补偿与归还可安全重试
	ReleaseCopy(ctx context.Context, id uint) error
}

// ListParams 列表查询参数
type ListParams struct {
	Page     int    // 页码(从1开始)
	PageSize int    // 每页数量
	Keyword  string // 搜索关键词(匹配书名、作者、类别,不区分大小写)
	Genre    string // 类别筛选(精确)
	Author   string // 作者筛选(精确)
	Year     int    // 出版年份筛选
	SortBy   string // 排序(title_asc, year_desc, created_at_desc)
}
