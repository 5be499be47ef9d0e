package loan

import (
	"context"

	"github.com/cerbrary/cerbrary/internal/domain/book"
	"github.com/cerbrary/cerbrary/internal/domain/loan"
	"github.com/cerbrary/cerbrary/internal/infrastructure/notify"
	"github.com/cerbrary/cerbrary/pkg/metrics"
)

// TxManager 事务边界(由mysql.TxManager实现)
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReturnBookUseCase 还书用例
// 归还 = 一个数据库事务内的两步:
//  1. 条件状态更新:UPDATE ... SET status=COMPLETED, return_date=?
//     WHERE id=? AND status=ACTIVE(并发重复归还只有一个成功)
//  2. 放回副本(幂等钳制)
//
// 任一步失败整体回滚,整个事务可安全重试
type ReturnBookUseCase struct {
	loanRepo  loan.Repository
	bookRepo  book.Repository
	txManager TxManager
	notifier  notify.LoanNotifier
}

// NewReturnBookUseCase 创建还书用例
func NewReturnBookUseCase(
	loanRepo loan.Repository,
	bookRepo book.Repository,
	txManager TxManager,
	notifier notify.LoanNotifier,
) *ReturnBookUseCase {
	return &ReturnBookUseCase{
		loanRepo:  loanRepo,
		bookRepo:  bookRepo,
		txManager: txManager,
		notifier:  notifier,
	}
}

// ReturnBookRequest 还书请求DTO
type ReturnBookRequest struct {
	LoanID  uint // 借阅记录ID
	UserID  uint // 操作人ID(从JWT提取)
	IsAdmin bool // 是否管理员(管理员可代任何人归还)
}

// Execute 执行还书
func (uc *ReturnBookUseCase) Execute(ctx context.Context, req ReturnBookRequest) (*LoanDetail, error) {
	// 1. 查询并校验归属(非管理员只能归还自己的借阅)
	l, err := uc.loanRepo.FindByID(ctx, req.LoanID)
	if err != nil {
		return nil, err
	}
	if !req.IsAdmin && !l.IsOwnedBy(req.UserID) {
		return nil, loan.ErrForbidden
	}

	// 2. 实体上执行状态转换(写入ReturnDate),非ACTIVE直接拒绝
	if err := l.Complete(); err != nil {
		return nil, err
	}

	// 3. 事务:条件状态更新 + 放回副本
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if err := uc.loanRepo.UpdateStatus(txCtx, l.ID, loan.StatusActive, loan.StatusCompleted, l); err != nil {
			return err
		}
		return uc.bookRepo.ReleaseCopy(txCtx, l.BookID)
	})
	if err != nil {
		return nil, err
	}

	metrics.IncCounter(metrics.LoansReturnedTotal)
	uc.notifier.LoanCompleted(ctx, l)

	detail := toLoanDetail(l)
	return &detail, nil
}
