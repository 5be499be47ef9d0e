package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/cerbrary/cerbrary/internal/domain/loan"
	apperrors "github.com/cerbrary/cerbrary/pkg/errors"
)

// loanRepository 借阅仓储实现(MySQL)
type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository 创建借阅仓储
func NewLoanRepository(db *gorm.DB) loan.Repository {
	return &loanRepository{db: db}
}

// Create 创建借阅记录
func (r *loanRepository) Create(ctx context.Context, l *loan.Loan) error {
	model := &TransactionModel{
		BookID:   l.BookID,
		UserID:   l.UserID,
		Type:     l.Type,
		Status:   int(l.Status),
		LoanDate: l.LoanDate,
		DueDate:  l.DueDate,
	}

	if err := r.getDB(ctx).WithContext(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建借阅记录失败")
	}

	l.ID = model.ID
	l.CreatedAt = model.CreatedAt
	l.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找借阅记录
func (r *loanRepository) FindByID(ctx context.Context, id uint) (*loan.Loan, error) {
	var model TransactionModel
	err := r.getDB(ctx).WithContext(ctx).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, loan.ErrLoanNotFound
		}
		return nil, apperrors.Wrap(err, "查询借阅记录失败")
	}

	return toLoanEntity(&model), nil
}

// UpdateStatus 条件状态更新(原子操作)
// UPDATE transactions SET status=to, return_date=?, updated_at=?
// WHERE id = ? AND status = from
// 两个并发归还抢同一条ACTIVE记录时,条件UPDATE保证只有一个成功;
// 输掉的一方0行受影响,再查一次区分"记录不存在"和"状态已变"
func (r *loanRepository) UpdateStatus(ctx context.Context, id uint, from, to loan.Status, l *loan.Loan) error {
	db := r.getDB(ctx)

	updates := map[string]interface{}{
		"status":     int(to),
		"updated_at": time.Now(),
	}
	if l != nil && l.ReturnDate != nil {
		updates["return_date"] = *l.ReturnDate
	}

	result := db.WithContext(ctx).Model(&TransactionModel{}).
		Where("id = ?", id).
		Where("status = ?", int(from)).
		Updates(updates)

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新借阅状态失败")
	}

	if result.RowsAffected == 0 {
		var model TransactionModel
		if err := db.WithContext(ctx).First(&model, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return loan.ErrLoanNotFound
			}
			return apperrors.Wrap(err, "查询借阅记录失败")
		}
		// 记录存在,说明状态已不是from
		return loan.ErrInvalidLoanState
	}

	return nil
}

// ListByUserID 查询用户的借阅记录(分页,按创建时间倒序)
func (r *loanRepository) ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*loan.Loan, int64, error) {
	return r.list(ctx, r.getDB(ctx).WithContext(ctx).Model(&TransactionModel{}).Where("user_id = ?", userID), page, pageSize)
}

// List 查询全部借阅记录(管理员)
func (r *loanRepository) List(ctx context.Context, page, pageSize int) ([]*loan.Loan, int64, error) {
	return r.list(ctx, r.getDB(ctx).WithContext(ctx).Model(&TransactionModel{}), page, pageSize)
}

func (r *loanRepository) list(ctx context.Context, query *gorm.DB, page, pageSize int) ([]*loan.Loan, int64, error) {
	var models []TransactionModel
	var total int64

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询借阅总数失败")
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Limit(pageSize).Offset(offset).Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询借阅列表失败")
	}

	loans := make([]*loan.Loan, len(models))
	for i := range models {
		loans[i] = toLoanEntity(&models[i])
	}

	return loans, total, nil
}

// CountActiveByBookID 统计某图书的借阅中记录数
// 删除图书前在TxManager事务内调用,(book_id, status)复合索引覆盖
func (r *loanRepository) CountActiveByBookID(ctx context.Context, bookID uint) (int64, error) {
	var count int64
	err := r.getDB(ctx).WithContext(ctx).Model(&TransactionModel{}).
		Where("book_id = ?", bookID).
		Where("status = ?", int(loan.StatusActive)).
		Count(&count).Error

	if err != nil {
		return 0, apperrors.Wrap(err, "统计借阅中记录失败")
	}

	return count, nil
}

// toLoanEntity GORM模型 → 领域实体
func toLoanEntity(model *TransactionModel) *loan.Loan {
	return &loan.Loan{
		ID:         model.ID,
		BookID:     model.BookID,
		UserID:     model.UserID,
		Type:       model.Type,
		Status:     loan.Status(model.Status),
		LoanDate:   model.LoanDate,
		DueDate:    model.DueDate,
		ReturnDate: model.ReturnDate,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

// getDB 从context获取事务DB,没有则使用默认DB
func (r *loanRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db
}
