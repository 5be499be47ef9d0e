package handler

import (
	"github.com/gin-gonic/gin"

	apploan "github.com/cerbrary/cerbrary/internal/application/loan"
	"github.com/cerbrary/cerbrary/internal/domain/loan"
	"github.com/cerbrary/cerbrary/internal/interface/http/dto"
	"github.com/cerbrary/cerbrary/internal/interface/http/middleware"
	apperrors "github.com/cerbrary/cerbrary/pkg/errors"
	"github.com/cerbrary/cerbrary/pkg/response"
)

// LoanHandler 借阅HTTP处理器
// 借阅记录对外统一叫transaction,路由是/api/v1/transactions;
// PUT按目标状态分发:COMPLETED走归还,CANCELLED走取消
type LoanHandler struct {
	borrowUseCase *apploan.BorrowBookUseCase
	returnUseCase *apploan.ReturnBookUseCase
	cancelUseCase *apploan.CancelLoanUseCase
	listUseCase   *apploan.ListLoansUseCase
}

// NewLoanHandler 创建借阅处理器
func NewLoanHandler(
	borrowUseCase *apploan.BorrowBookUseCase,
	returnUseCase *apploan.ReturnBookUseCase,
	cancelUseCase *apploan.CancelLoanUseCase,
	listUseCase *apploan.ListLoansUseCase,
) *LoanHandler {
	return &LoanHandler{
		borrowUseCase: borrowUseCase,
		returnUseCase: returnUseCase,
		cancelUseCase: cancelUseCase,
		listUseCase:   listUseCase,
	}
}

// Borrow 借书
// @Summary      借书
// @Description  借出一个图书副本,创建ACTIVE借阅记录;并发抢最后一个副本时只有一人成功
// @Tags         借阅
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.BorrowRequest true "借书信息"
// @Success      201 {object} response.Response{data=dto.LoanResponse} "借书成功"
// @Failure      401 {object} response.Response "未登录"
// @Failure      403 {object} response.Response "账号未审批或已停用"
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      409 {object} response.Response "无可借副本"
// @Router       /api/v1/transactions [post]
func (h *LoanHandler) Borrow(c *gin.Context) {
	var req dto.BorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.borrowUseCase.Execute(c.Request.Context(), apploan.BorrowBookRequest{
		BookID: req.BookID,
		UserID: middleware.MustGetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	loanResp := toLoanResponse(result)
	response.Created(c, &loanResp)
}

// UpdateLoan 借阅状态变更(归还/取消)
// @Summary      借阅状态变更
// @Description  将借阅记录从ACTIVE置为COMPLETED(归还)或CANCELLED(取消);重复操作返回409
// @Tags         借阅
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.UpdateLoanRequest true "变更内容"
// @Success      200 {object} response.Response{data=dto.LoanResponse} "变更成功"
// @Failure      403 {object} response.Response "不能操作他人的借阅记录"
// @Failure      404 {object} response.Response "借阅记录不存在"
// @Failure      409 {object} response.Response "状态不允许此操作"
// @Router       /api/v1/transactions [put]
func (h *LoanHandler) UpdateLoan(c *gin.Context) {
	var req dto.UpdateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)
	isAdmin := middleware.IsAdmin(c)

	var (
		result *apploan.LoanDetail
		err    error
	)

	status, _ := loan.ParseStatus(req.Status)
	switch status {
	case loan.StatusCompleted:
		result, err = h.returnUseCase.Execute(c.Request.Context(), apploan.ReturnBookRequest{
			LoanID:  req.TransactionID,
			UserID:  userID,
			IsAdmin: isAdmin,
		})
	case loan.StatusCancelled:
		result, err = h.cancelUseCase.Execute(c.Request.Context(), apploan.CancelLoanRequest{
			LoanID:  req.TransactionID,
			UserID:  userID,
			IsAdmin: isAdmin,
		})
	default:
		// binding的oneof已经拦截,兜底一手
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "status只能是COMPLETED或CANCELLED")
		return
	}

	if err != nil {
		response.Error(c, err)
		return
	}

	loanResp := toLoanResponse(result)
	response.Success(c, &loanResp)
}

// ListLoans 借阅列表
// @Summary      借阅列表
// @Description  普通用户查自己的借阅记录;管理员查全部,可按user_id过滤
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Param        user_id query int false "按用户过滤(仅管理员)"
// @Success      200 {object} response.Response{data=apploan.ListLoansResponse} "查询成功"
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/transactions [get]
func (h *LoanHandler) ListLoans(c *gin.Context) {
	var req dto.ListLoansRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.listUseCase.Execute(c.Request.Context(), apploan.ListLoansRequest{
		Page:     req.Page,
		PageSize: req.PageSize,
		UserID:   middleware.MustGetUserID(c),
		IsAdmin:  middleware.IsAdmin(c),
		FilterBy: req.UserID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

func toLoanResponse(d *apploan.LoanDetail) dto.LoanResponse {
	return dto.LoanResponse{
		ID:         d.ID,
		BookID:     d.BookID,
		UserID:     d.UserID,
		Type:       d.Type,
		Status:     d.Status,
		LoanDate:   d.LoanDate,
		DueDate:    d.DueDate,
		ReturnDate: d.ReturnDate,
		Overdue:    d.Overdue,
	}
}
