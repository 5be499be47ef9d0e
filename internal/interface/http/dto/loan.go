package dto

// BorrowRequest HTTP借书请求
type BorrowRequest struct {
	BookID uint `json:"book_id" binding:"required" example:"1"`
}

// UpdateLoanRequest HTTP借阅状态变更请求
// status只接受COMPLETED(归还)或CANCELLED(取消)
type UpdateLoanRequest struct {
	TransactionID uint   `json:"transaction_id" binding:"required" example:"1"`
	Status        string `json:"status" binding:"required,oneof=COMPLETED CANCELLED" example:"COMPLETED"`
}

// LoanResponse HTTP借阅记录响应
type LoanResponse struct {
	ID         uint   `json:"id" example:"1"`
	BookID     uint   `json:"book_id" example:"1"`
	UserID     uint   `json:"user_id" example:"1"`
	Type       string `json:"type" example:"LOAN"`
	Status     string `json:"status" example:"ACTIVE"`
	LoanDate   string `json:"loan_date" example:"2024-01-15 10:30:00"`
	DueDate    string `json:"due_date" example:"2024-01-29 10:30:00"`
	ReturnDate string `json:"return_date,omitempty" example:"2024-01-20 09:00:00"`
	Overdue    bool   `json:"overdue" example:"false"`
}

// ListLoansRequest HTTP借阅列表请求
// user_id过滤仅管理员有效,普通用户固定只看自己的记录
type ListLoansRequest struct {
	Page     int  `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int  `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
	UserID   uint `form:"user_id" binding:"omitempty" example:"1"`
}
