package loan

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cerbrary/cerbrary/internal/domain/book"
	"github.com/cerbrary/cerbrary/internal/domain/loan"
	"github.com/cerbrary/cerbrary/internal/domain/user"
	"github.com/cerbrary/cerbrary/internal/infrastructure/notify"
	apperrors "github.com/cerbrary/cerbrary/pkg/errors"
	"github.com/cerbrary/cerbrary/pkg/metrics"
)

// ---- 内存仓储,复刻数据库的条件UPDATE语义 ----

type fakeBookRepo struct {
	mu    sync.Mutex
	books map[uint]*book.Book

	failReserve bool // 注入预扣失败
}

func newFakeBookRepo() *fakeBookRepo {
	return &fakeBookRepo{books: make(map[uint]*book.Book)}
}

func (r *fakeBookRepo) Create(ctx context.Context, b *book.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.ID = uint(len(r.books) + 1)
	r.books[b.ID] = b
	return nil
}

func (r *fakeBookRepo) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBookRepo) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	return nil, book.ErrBookNotFound
}

func (r *fakeBookRepo) Update(ctx context.Context, b *book.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.books[b.ID] = b
	return nil
}

func (r *fakeBookRepo) AdjustCopies(ctx context.Context, id uint, totalCopies int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return book.ErrBookNotFound
	}
	return b.AdjustTotalCopies(totalCopies)
}

func (r *fakeBookRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.books, id)
	return nil
}

func (r *fakeBookRepo) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	return nil, 0, nil
}

func (r *fakeBookRepo) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	return r.FindByID(ctx, id)
}

// ReserveCopy 与数据库实现一致:available_copies > 0 才减1
func (r *fakeBookRepo) ReserveCopy(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failReserve {
		return apperrors.ErrDatabaseError
	}
	b, ok := r.books[id]
	if !ok {
		return book.ErrBookNotFound
	}
	if b.AvailableCopies <= 0 {
		return book.ErrOutOfStock
	}
	b.AvailableCopies--
	return nil
}

// ReleaseCopy 幂等钳制:不超过total_copies
func (r *fakeBookRepo) ReleaseCopy(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return book.ErrBookNotFound
	}
	if b.AvailableCopies < b.TotalCopies {
		b.AvailableCopies++
	}
	return nil
}

func (r *fakeBookRepo) available(id uint) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.books[id].AvailableCopies
}

type fakeLoanRepo struct {
	mu     sync.Mutex
	loans  map[uint]*loan.Loan
	nextID uint

	failCreate bool // 注入落库失败(触发Saga补偿)
}

func newFakeLoanRepo() *fakeLoanRepo {
	return &fakeLoanRepo{loans: make(map[uint]*loan.Loan), nextID: 1}
}

func (r *fakeLoanRepo) Create(ctx context.Context, l *loan.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return apperrors.ErrDatabaseError
	}
	l.ID = r.nextID
	r.nextID++
	cp := *l
	r.loans[l.ID] = &cp
	return nil
}

func (r *fakeLoanRepo) FindByID(ctx context.Context, id uint) (*loan.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.loans[id]
	if !ok {
		return nil, loan.ErrLoanNotFound
	}
	cp := *l
	return &cp, nil
}

// UpdateStatus 与数据库实现一致:WHERE id=? AND status=from
func (r *fakeLoanRepo) UpdateStatus(ctx context.Context, id uint, from, to loan.Status, l *loan.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.loans[id]
	if !ok {
		return loan.ErrLoanNotFound
	}
	if stored.Status != from {
		return loan.ErrInvalidLoanState
	}
	stored.Status = to
	stored.ReturnDate = l.ReturnDate
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *fakeLoanRepo) ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*loan.Loan, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*loan.Loan
	for _, l := range r.loans {
		if l.UserID == userID {
			cp := *l
			result = append(result, &cp)
		}
	}
	return result, int64(len(result)), nil
}

func (r *fakeLoanRepo) List(ctx context.Context, page, pageSize int) ([]*loan.Loan, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*loan.Loan
	for _, l := range r.loans {
		cp := *l
		result = append(result, &cp)
	}
	return result, int64(len(result)), nil
}

func (r *fakeLoanRepo) CountActiveByBookID(ctx context.Context, bookID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, l := range r.loans {
		if l.BookID == bookID && l.Status == loan.StatusActive {
			n++
		}
	}
	return n, nil
}

func (r *fakeLoanRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.loans)
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uint]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*user.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = uint(len(r.users) + 1)
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uint) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return nil, user.ErrUserNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, u *user.User) error { return nil }
func (r *fakeUserRepo) Delete(ctx context.Context, id uint) error      { return nil }
func (r *fakeUserRepo) List(ctx context.Context, page, pageSize int) ([]*user.User, int64, error) {
	return nil, 0, nil
}

// fakeTxManager 内存实现没有真事务,直接执行
type fakeTxManager struct{}

func (fakeTxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ---- 测试夹具 ----

type fixture struct {
	bookRepo *fakeBookRepo
	loanRepo *fakeLoanRepo
	userRepo *fakeUserRepo
	borrow   *BorrowBookUseCase
	ret      *ReturnBookUseCase
	cancel   *CancelLoanUseCase
	list     *ListLoansUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	metrics.InitMetrics()

	bookRepo := newFakeBookRepo()
	loanRepo := newFakeLoanRepo()
	userRepo := newFakeUserRepo()
	notifier := notify.NewNopNotifier()
	tx := fakeTxManager{}

	return &fixture{
		bookRepo: bookRepo,
		loanRepo: loanRepo,
		userRepo: userRepo,
		borrow:   NewBorrowBookUseCase(loanRepo, bookRepo, userRepo, notifier, 14*24*time.Hour),
		ret:      NewReturnBookUseCase(loanRepo, bookRepo, tx, notifier),
		cancel:   NewCancelLoanUseCase(loanRepo, bookRepo, tx, notifier),
		list:     NewListLoansUseCase(loanRepo),
	}
}

func (f *fixture) addBook(t *testing.T, copies int) uint {
	t.Helper()
	b := book.NewBook("Go语言实战", "William Kennedy", "计算机", 2017, "", "", "", copies, 1)
	require.NoError(t, f.bookRepo.Create(context.Background(), b))
	return b.ID
}

func (f *fixture) addUser(t *testing.T, status string, enabled bool) uint {
	t.Helper()
	u := &user.User{
		Name:    "张三",
		Email:   "zhangsan@example.com",
		Role:    user.RoleUser,
		Status:  status,
		Enabled: enabled,
	}
	require.NoError(t, f.userRepo.Create(context.Background(), u))
	return u.ID
}

// ---- 借书 ----

func TestBorrowBook(t *testing.T) {
	f := newFixture(t)
	bookID := f.addBook(t, 3)
	userID := f.addUser(t, user.StatusApproved, true)

	detail, err := f.borrow.Execute(context.Background(), BorrowBookRequest{BookID: bookID, UserID: userID})
	require.NoError(t, err)

	assert.Equal(t, "ACTIVE", detail.Status)
	assert.Equal(t, bookID, detail.BookID)
	assert.Equal(t, userID, detail.UserID)
	assert.NotEmpty(t, detail.DueDate)
	assert.Empty(t, detail.ReturnDate)
	assert.Equal(t, 2, f.bookRepo.available(bookID))
}

func TestBorrowBook_OutOfStock(t *testing.T) {
	f := newFixture(t)
	bookID := f.addBook(t, 0)
	userID := f.addUser(t, user.StatusApproved, true)

	_, err := f.borrow.Execute(context.Background(), BorrowBookRequest{BookID: bookID, UserID: userID})

	appErr := apperrors.GetAppError(err)
	assert.Equal(t, apperrors.ErrCodeOutOfStock, appErr.Code)
	assert.Equal(t, 0, f.loanRepo.count(), "借书失败不应留下借阅记录")
	assert.Equal(t, 0, f.bookRepo.available(bookID))
}

func TestBorrowBook_BookNotFound(t *testing.T) {
	f := newFixture(t)
	userID := f.addUser(t, user.StatusApproved, true)

	_, err := f.borrow.Execute(context.Background(), BorrowBookRequest{BookID: 999, UserID: userID})

	appErr := apperrors.GetAppError(err)
	assert.Equal(t, apperrors.ErrCodeBookNotFound, appErr.Code)
	assert.Equal(t, 0, f.loanRepo.count())
}

func TestBorrowBook_UserNotEligible(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		enabled bool
		want    *apperrors.AppError
	}{
		{"待审核用户", user.StatusPending, true, apperrors.ErrNotApproved},
		{"被拒绝用户", user.StatusRejected, true, apperrors.ErrNotApproved},
		{"被停用用户", user.StatusApproved, false, apperrors.ErrDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			bookID := f.addBook(t, 3)
			userID := f.addUser(t, tt.status, tt.enabled)

			_, err := f.borrow.Execute(context.Background(), BorrowBookRequest{BookID: bookID, UserID: userID})

			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 0, f.loanRepo.count(), "资格校验失败不应产生任何写入")
			assert.Equal(t, 3, f.bookRepo.available(bookID), "资格校验失败不应扣减副本")
		})
	}
}

// TestBorrowBook_Compensation 落库失败时Saga放回已预扣的副本
func TestBorrowBook_Compensation(t *testing.T) {
	f := newFixture(t)
	bookID := f.addBook(t, 3)
	userID := f.addUser(t, user.StatusApproved, true)
	f.loanRepo.failCreate = true

	_, err := f.borrow.Execute(context.Background(), BorrowBookRequest{BookID: bookID, UserID: userID})

	require.Error(t, err)
	assert.Equal(t, 0, f.loanRepo.count())
	assert.Equal(t, 3, f.bookRepo.available(bookID), "补偿后副本数应恢复")
}

// TestBorrowBook_Concurrent 并发借书不超借:
// k个副本N人抢,恰好k人成功,可借数归零不为负
func TestBorrowBook_Concurrent(t *testing.T) {
	const (
		copies    = 3
		borrowers = 20
	)

	f := newFixture(t)
	bookID := f.addBook(t, copies)

	userIDs := make([]uint, borrowers)
	for i := range userIDs {
		userIDs[i] = f.addUser(t, user.StatusApproved, true)
	}

	var wg sync.WaitGroup
	results := make(chan error, borrowers)
	for i := 0; i < borrowers; i++ {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			_, err := f.borrow.Execute(context.Background(), BorrowBookRequest{BookID: bookID, UserID: userID})
			results <- err
		}(userIDs[i])
	}
	wg.Wait()
	close(results)

	succeeded, outOfStock := 0, 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		if apperrors.GetAppError(err).Code == apperrors.ErrCodeOutOfStock {
			outOfStock++
		}
	}

	assert.Equal(t, copies, succeeded, "成功数应等于副本数")
	assert.Equal(t, borrowers-copies, outOfStock, "其余请求应全部无可借副本")
	assert.Equal(t, 0, f.bookRepo.available(bookID), "可借数应归零,不能为负")
	assert.Equal(t, copies, f.loanRepo.count())
}

// ---- 还书 ----

func TestReturnBook(t *testing.T) {
	f := newFixture(t)
	bookID := f.addBook(t, 3)
	userID := f.addUser(t, user.StatusApproved, true)

	borrowed, err := f.borrow.Execute(context.Background(), BorrowBookRequest{BookID: bookID, UserID: userID})
	require.NoError(t, err)
	require.Equal(t, 2, f.bookRepo.available(bookID))

	returned, err := f.ret.Execute(context.Background(), ReturnBookRequest{LoanID: borrowed.ID, UserID: userID})
	require.NoError(t, err)

	assert.Equal(t, "COMPLETED", returned.Status)
	assert.NotEmpty(t, returned.ReturnDate)
	assert.Equal(t, 3, f.bookRepo.available(bookID), "归还后副本应放回")

	stored, err := f.loanRepo.FindByID(context.Background(), borrowed.ID)
	require.NoError(t, err)
	assert.Equal(t, loan.StatusCompleted, stored.Status)
	assert.NotNil(t, stored.ReturnDate)
}

// TestReturnBook_Twice 重复归还被条件更新拒绝,副本只放回一次
func TestReturnBook_Twice(t *testing.T) {
	f := newFixture(t)
	bookID := f.addBook(t, 3)
	userID := f.addUser(t, user.StatusApproved, true)

	borrowed, err := f.borrow.Execute(context.Background(), BorrowBookRequest{BookID: bookID, UserID: userID})
	require.NoError(t, err)

	_, err = f.ret.Execute(context.Background(), ReturnBookRequest{LoanID: borrowed.ID, UserID: userID})
	require.NoError(t, err)

	_, err = f.ret.Execute(context.Background(), ReturnBookRequest{LoanID: borrowed.ID, UserID: userID})
	assert.ErrorIs(t, err, loan.ErrInvalidLoanState)
	assert.Equal(t, 3, f.bookRepo.available(bookID), "重复归还不应重复放回副本")
}

func TestReturnBook_Forbidden(t *testing.T) {
	f := newFixture(t)
	bookID := f.addBook(t, 3)
	owner := f.addUser(t, user.StatusApproved, true)
	other := f.addUser(t, user.StatusApproved, true)

	borrowed, err := f.borrow.Execute(context.Background(), BorrowBookRequest{BookID: bookID, UserID: owner})
	require.NoError(t, err)

	// 别人不能替你还书
	_, err = f.ret.Execute(context.Background(), ReturnBookRequest{LoanID: borrowed.ID, UserID: other})
	assert.ErrorIs(t, err, loan.ErrForbidden)

	// 管理员可以
	_, err = f.ret.Execute(context.Background(), ReturnBookRequest{LoanID: borrowed.ID, UserID: other, IsAdmin: true})
	assert.NoError(t, err)
}

func TestReturnBook_NotFound(t *testing.T) {
	f := newFixture(t)
	userID := f.addUser(t, user.StatusApproved, true)

	_, err := f.ret.Execute(context.Background(), ReturnBookRequest{LoanID: 999, UserID: userID})
	assert.ErrorIs(t, err, loan.ErrLoanNotFound)
}

// ---- 取消借阅 ----

func TestCancelLoan(t *testing.T) {
	f := newFixture(t)
	bookID := f.addBook(t, 3)
	userID := f.addUser(t, user.StatusApproved, true)

	borrowed, err := f.borrow.Execute(context.Background(), BorrowBookRequest{BookID: bookID, UserID: userID})
	require.NoError(t, err)

	cancelled, err := f.cancel.Execute(context.Background(), CancelLoanRequest{LoanID: borrowed.ID, UserID: userID})
	require.NoError(t, err)

	assert.Equal(t, "CANCELLED", cancelled.Status)
	assert.Empty(t, cancelled.ReturnDate, "取消不写归还时间")
	assert.Equal(t, 3, f.bookRepo.available(bookID), "取消后副本应放回")

	// 取消后不能再归还
	_, err = f.ret.Execute(context.Background(), ReturnBookRequest{LoanID: borrowed.ID, UserID: userID})
	assert.ErrorIs(t, err, loan.ErrInvalidLoanState)
}

// ---- 借阅列表 ----

func TestListLoans(t *testing.T) {
	f := newFixture(t)
	bookID := f.addBook(t, 10)
	alice := f.addUser(t, user.StatusApproved, true)
	bob := f.addUser(t, user.StatusApproved, true)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := f.borrow.Execute(ctx, BorrowBookRequest{BookID: bookID, UserID: alice})
		require.NoError(t, err)
	}
	_, err := f.borrow.Execute(ctx, BorrowBookRequest{BookID: bookID, UserID: bob})
	require.NoError(t, err)

	// 普通用户只看到自己的,过滤参数被忽略
	resp, err := f.list.Execute(ctx, ListLoansRequest{UserID: alice, FilterBy: bob})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)
	for _, d := range resp.Loans {
		assert.Equal(t, alice, d.UserID)
	}

	// 管理员看到全部
	resp, err = f.list.Execute(ctx, ListLoansRequest{UserID: alice, IsAdmin: true})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Total)

	// 管理员按用户过滤
	resp, err = f.list.Execute(ctx, ListLoansRequest{UserID: alice, IsAdmin: true, FilterBy: bob})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Total)
	assert.Equal(t, bob, resp.Loans[0].UserID)

	// 分页参数默认值
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.PageSize)
}
