package loan

import (
	"context"

	"github.com/cerbrary/cerbrary/internal/domain/loan"
)

// ListLoansUseCase 借阅列表查询用例
// 普通用户只能查自己的借阅记录;管理员可查全部,
// 也可以按user_id过滤查某个用户的记录
type ListLoansUseCase struct {
	loanRepo loan.Repository
}

// NewListLoansUseCase 创建借阅列表查询用例
func NewListLoansUseCase(loanRepo loan.Repository) *ListLoansUseCase {
	return &ListLoansUseCase{loanRepo: loanRepo}
}

// ListLoansRequest 借阅列表请求DTO
type ListLoansRequest struct {
	Page     int  // 页码,默认1
	PageSize int  // 每页大小,默认20,最大100
	UserID   uint // 操作人ID(从JWT提取)
	IsAdmin  bool // 是否管理员
	FilterBy uint // 按用户过滤(仅管理员有效,0表示全部)
}

// LoanDetail 借阅记录详情DTO
type LoanDetail struct {
	ID         uint   `json:"id"`
	BookID     uint   `json:"book_id"`
	UserID     uint   `json:"user_id"`
	Type       string `json:"type"`
	Status     string `json:"status"`
	LoanDate   string `json:"loan_date"`
	DueDate    string `json:"due_date"`
	ReturnDate string `json:"return_date,omitempty"`
	Overdue    bool   `json:"overdue"`
}

// ListLoansResponse 借阅列表响应DTO
type ListLoansResponse struct {
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
	Loans    []LoanDetail `json:"loans"`
}

const timeLayout = "2006-01-02 15:04:05"

// toLoanDetail 实体转详情DTO
func toLoanDetail(l *loan.Loan) LoanDetail {
	d := LoanDetail{
		ID:       l.ID,
		BookID:   l.BookID,
		UserID:   l.UserID,
		Type:     l.Type,
		Status:   l.Status.String(),
		LoanDate: l.LoanDate.Format(timeLayout),
		DueDate:  l.DueDate.Format(timeLayout),
		Overdue:  l.IsOverdue(),
	}
	if l.ReturnDate != nil {
		d.ReturnDate = l.ReturnDate.Format(timeLayout)
	}
	return d
}

// Execute 执行借阅列表查询
func (uc *ListLoansUseCase) Execute(ctx context.Context, req ListLoansRequest) (*ListLoansResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	var (
		loans []*loan.Loan
		total int64
		err   error
	)

	switch {
	case !req.IsAdmin:
		// 普通用户强制只看自己的记录,忽略过滤参数
		loans, total, err = uc.loanRepo.ListByUserID(ctx, req.UserID, req.Page, req.PageSize)
	case req.FilterBy > 0:
		loans, total, err = uc.loanRepo.ListByUserID(ctx, req.FilterBy, req.Page, req.PageSize)
	default:
		loans, total, err = uc.loanRepo.List(ctx, req.Page, req.PageSize)
	}
	if err != nil {
		return nil, err
	}

	details := make([]LoanDetail, 0, len(loans))
	for _, l := range loans {
		details = append(details, toLoanDetail(l))
	}

	return &ListLoansResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Loans:    details,
	}, nil
}
