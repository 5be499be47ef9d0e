package loan

import (
	"context"

	"github.com/cerbrary/cerbrary/internal/domain/book"
	"github.com/cerbrary/cerbrary/internal/domain/loan"
	"github.com/cerbrary/cerbrary/internal/infrastructure/notify"
	"github.com/cerbrary/cerbrary/pkg/metrics"
)

// CancelLoanUseCase 取消借阅用例
// 取消与归还共用同一事务骨架(条件状态更新+放回副本),
// 区别只在目标状态为CANCELLED,且不写归还时间
type CancelLoanUseCase struct {
	loanRepo  loan.Repository
	bookRepo  book.Repository
	txManager TxManager
	notifier  notify.LoanNotifier
}

// NewCancelLoanUseCase 创建取消借阅用例
func NewCancelLoanUseCase(
	loanRepo loan.Repository,
	bookRepo book.Repository,
	txManager TxManager,
	notifier notify.LoanNotifier,
) *CancelLoanUseCase {
	return &CancelLoanUseCase{
		loanRepo:  loanRepo,
		bookRepo:  bookRepo,
		txManager: txManager,
		notifier:  notifier,
	}
}

// CancelLoanRequest 取消借阅请求DTO
type CancelLoanRequest struct {
	LoanID  uint // 借阅记录ID
	UserID  uint // 操作人ID(从JWT提取)
	IsAdmin bool // 是否管理员
}

// Execute 执行取消借阅
func (uc *CancelLoanUseCase) Execute(ctx context.Context, req CancelLoanRequest) (*LoanDetail, error) {
	l, err := uc.loanRepo.FindByID(ctx, req.LoanID)
	if err != nil {
		return nil, err
	}
	if !req.IsAdmin && !l.IsOwnedBy(req.UserID) {
		return nil, loan.ErrForbidden
	}

	if err := l.Cancel(); err != nil {
		return nil, err
	}

	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if err := uc.loanRepo.UpdateStatus(txCtx, l.ID, loan.StatusActive, loan.StatusCancelled, l); err != nil {
			return err
		}
		return uc.bookRepo.ReleaseCopy(txCtx, l.BookID)
	})
	if err != nil {
		return nil, err
	}

	metrics.IncCounter(metrics.LoansCancelledTotal)
	uc.notifier.LoanCancelled(ctx, l)

	detail := toLoanDetail(l)
	return &detail, nil
}
