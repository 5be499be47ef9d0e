package loan

import (
	"time"
)

// Status 借阅状态
// 设计说明:
// 1. 使用int类型而非string(节省存储空间,便于索引)
// 2. 定义为具名类型,便于添加方法
type Status int

const (
	StatusActive    Status = 1 // 借阅中
	StatusCompleted Status = 2 // 已归还
	StatusCancelled Status = 3 // 已取消
)

// String 实现Stringer接口(对外API与日志使用大写英文状态名)
func (s Status) String() string {
	switch s {
	case StatusActive:
		return "ACTIVE"
	case StatusCompleted:
		return "COMPLETED"
	case StatusCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// ParseStatus 解析状态名(API入参)
func ParseStatus(s string) (Status, bool) {
	switch s {
	case "ACTIVE":
		return StatusActive, true
	case "COMPLETED":
		return StatusCompleted, true
	case "CANCELLED":
		return StatusCancelled, true
	default:
		return 0, false
	}
}

// Type 借阅类型,目前只有外借
const TypeLoan = "LOAN"

// Loan 借阅记录实体(聚合根)
// 设计说明:
// 1. 只保存BookID/UserID,不跨聚合引用Book/User对象
// 2. 状态机:ACTIVE → COMPLETED(归还) / CANCELLED(取消),终态不可再变
// 3. 记录永不删除,终态记录作为历史留存
// 4. DueDate只是提示性元数据,逾期不会自动改变状态
type Loan struct {
	ID         uint
	BookID     uint       // 图书ID
	UserID     uint       // 借阅人用户ID
	Type       string     // 借阅类型(LOAN)
	Status     Status     // 借阅状态
	LoanDate   time.Time  // 借出时间
	DueDate    time.Time  // 应还时间(LoanDate+借阅期限)
	ReturnDate *time.Time // 实际归还时间(归还时写入)
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewLoan 创建借阅记录(工厂方法)
// 初始状态为ACTIVE,应还时间按借阅期限推算
func NewLoan(bookID, userID uint, loanPeriod time.Duration) *Loan {
	now := time.Now()
	return &Loan{
		BookID:    bookID,
		UserID:    userID,
		Type:      TypeLoan,
		Status:    StatusActive,
		LoanDate:  now,
		DueDate:   now.Add(loanPeriod),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CanTransitionTo 检查是否可以转换到目标状态
// 只有ACTIVE→COMPLETED和ACTIVE→CANCELLED是合法转换,终态不可变
func (l *Loan) CanTransitionTo(target Status) bool {
	transitions := map[Status][]Status{
		StatusActive:    {StatusCompleted, StatusCancelled},
		StatusCompleted: {},
		StatusCancelled: {},
	}

	allowed, exists := transitions[l.Status]
	if !exists {
		return false
	}

	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// TransitionTo 状态转换
func (l *Loan) TransitionTo(target Status) error {
	if !l.CanTransitionTo(target) {
		return ErrInvalidLoanState
	}
	l.Status = target
	l.UpdatedAt = time.Now()
	return nil
}

// Complete 归还(领域行为),写入归还时间
func (l *Loan) Complete() error {
	if err := l.TransitionTo(StatusCompleted); err != nil {
		return err
	}
	now := time.Now()
	l.ReturnDate = &now
	return nil
}

// Cancel 取消借阅(领域行为)
func (l *Loan) Cancel() error {
	return l.TransitionTo(StatusCancelled)
}

// IsActive 是否借阅中
func (l *Loan) IsActive() bool {
	return l.Status == StatusActive
}

// IsOverdue 是否已逾期(仅用于展示,不触发状态变化)
func (l *Loan) IsOverdue() bool {
	return l.Status == StatusActive && time.Now().After(l.DueDate)
}

// IsOwnedBy 检查借阅记录是否属于指定用户
func (l *Loan) IsOwnedBy(userID uint) bool {
	return l.UserID == userID
}
