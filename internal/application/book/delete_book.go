package book

import (
	"context"

	"github.com/cerbrary/cerbrary/internal/domain/book"
	"github.com/cerbrary/cerbrary/internal/domain/loan"
)

// TxManager 事务边界(由mysql.TxManager实现)
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// DeleteBookUseCase 图书删除用例(管理员)
// 存在借阅中记录的图书不能删除,否则归还时副本无处放回。
// 检查和删除在同一事务内,图书行加悲观锁,
// 防止检查和删除之间挤进新的借阅
type DeleteBookUseCase struct {
	bookRepo  book.Repository
	loanRepo  loan.Repository
	txManager TxManager
}

// NewDeleteBookUseCase 创建图书删除用例
func NewDeleteBookUseCase(
	bookRepo book.Repository,
	loanRepo loan.Repository,
	txManager TxManager,
) *DeleteBookUseCase {
	return &DeleteBookUseCase{
		bookRepo:  bookRepo,
		loanRepo:  loanRepo,
		txManager: txManager,
	}
}

// Execute 执行图书删除
func (uc *DeleteBookUseCase) Execute(ctx context.Context, id uint) error {
	return uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// SELECT FOR UPDATE锁住图书行,借出走ReserveCopy同样要改这一行,
		// 并发借出会被阻塞到本事务结束
		b, err := uc.bookRepo.LockByID(txCtx, id)
		if err != nil {
			return err
		}

		// 借书先预扣副本、后落借阅记录,两步不在同一事务:
		// 预扣已提交但记录还没写进来的借出查不到ACTIVE行,用副本计数兜住
		if b.LoanedCopies() > 0 {
			return book.ErrActiveLoansExist
		}

		active, err := uc.loanRepo.CountActiveByBookID(txCtx, id)
		if err != nil {
			return err
		}
		if active > 0 {
			return book.ErrActiveLoansExist
		}

		return uc.bookRepo.Delete(txCtx, id)
	})
}
