package loan

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/cerbrary/cerbrary/internal/domain/book"
	"github.com/cerbrary/cerbrary/internal/domain/loan"
	"github.com/cerbrary/cerbrary/internal/domain/user"
	"github.com/cerbrary/cerbrary/internal/infrastructure/notify"
	apperrors "github.com/cerbrary/cerbrary/pkg/errors"
	"github.com/cerbrary/cerbrary/pkg/metrics"
	"github.com/cerbrary/cerbrary/pkg/saga"
	"github.com/cerbrary/cerbrary/pkg/tracing"
)

// BorrowBookUseCase 借书用例
// 这是整个系统最核心的用例,涉及并发控制与补偿:
//
// 核心问题:副本超借
// 场景:某书只剩1个可借副本,100人同时借
// 错误实现:先创建借阅记录,再无条件扣减可借数 → 可借数变成负数,
// 出借量超过馆藏
//
// 正确实现:条件UPDATE预扣 + Saga补偿
//  1. 预扣副本:UPDATE ... SET available_copies = available_copies - 1
//     WHERE id = ? AND available_copies > 0(数据库按行串行化,只有1人成功)
//  2. 创建ACTIVE借阅记录
//  3. 第2步失败时补偿:放回副本(幂等,按总数钳制),库存不泄漏
type BorrowBookUseCase struct {
	loanRepo   loan.Repository
	bookRepo   book.Repository
	userRepo   user.Repository
	notifier   notify.LoanNotifier
	loanPeriod time.Duration
}

// NewBorrowBookUseCase 创建借书用例
func NewBorrowBookUseCase(
	loanRepo loan.Repository,
	bookRepo book.Repository,
	userRepo user.Repository,
	notifier notify.LoanNotifier,
	loanPeriod time.Duration,
) *BorrowBookUseCase {
	return &BorrowBookUseCase{
		loanRepo:   loanRepo,
		bookRepo:   bookRepo,
		userRepo:   userRepo,
		notifier:   notifier,
		loanPeriod: loanPeriod,
	}
}

// BorrowBookRequest 借书请求DTO
type BorrowBookRequest struct {
	BookID uint // 图书ID
	UserID uint // 借阅人ID(从JWT提取)
}

// Execute 执行借书
func (uc *BorrowBookUseCase) Execute(ctx context.Context, req BorrowBookRequest) (*LoanDetail, error) {
	ctx, span := tracing.StartSpan(ctx, "cerbrary", "BorrowBook")
	defer span.End()
	span.SetAttributes(
		attribute.Int("book_id", int(req.BookID)),
		attribute.Int("user_id", int(req.UserID)),
	)

	metrics.IncGauge(metrics.LoansInProgress)
	defer metrics.DecGauge(metrics.LoansInProgress)
	start := time.Now()

	l, err := uc.execute(ctx, req)

	metrics.ObserveHistogram(metrics.LoanBorrowDuration, time.Since(start).Seconds())
	if err != nil {
		metrics.IncCounter(metrics.LoansFailedTotal)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.IncCounter(metrics.LoansCreatedTotal)
	uc.notifier.LoanCreated(ctx, l)

	detail := toLoanDetail(l)
	return &detail, nil
}

func (uc *BorrowBookUseCase) execute(ctx context.Context, req BorrowBookRequest) (*loan.Loan, error) {
	// 1. 回库校验借阅资格(JWT Claims可能过期失真:
	//    管理员刚停用的账号不能再借书)
	u, err := uc.userRepo.FindByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if u.Status != user.StatusApproved {
		return nil, apperrors.ErrNotApproved
	}
	if !u.Enabled {
		return nil, apperrors.ErrDisabled
	}

	// 2. Saga:预扣副本 → 记录借阅,失败逆序补偿
	newLoan := loan.NewLoan(req.BookID, req.UserID, uc.loanPeriod)

	sg := saga.NewSaga(10 * time.Second)
	sg.AddStep("预扣副本",
		func(ctx context.Context) error {
			return uc.bookRepo.ReserveCopy(ctx, req.BookID)
		},
		func(ctx context.Context) error {
			metrics.IncCounter(metrics.SagaCompensationsTotal)
			return uc.bookRepo.ReleaseCopy(ctx, req.BookID)
		},
	)
	sg.AddStep("记录借阅",
		func(ctx context.Context) error {
			return uc.loanRepo.Create(ctx, newLoan)
		},
		nil, // 最后一步无需补偿
	)

	sagaStart := time.Now()
	err = sg.Execute(ctx)
	metrics.ObserveHistogram(metrics.SagaExecutionDuration, time.Since(sagaStart).Seconds())

	if err != nil {
		metrics.IncCounterVec(metrics.SagaExecutionsTotal, map[string]string{"result": "failure"})
		// Saga包装的错误里剥出业务错误(无副本/图书不存在)
		return nil, apperrors.GetAppError(err)
	}

	metrics.IncCounterVec(metrics.SagaExecutionsTotal, map[string]string{"result": "success"})
	return newLoan, nil
}
