package response

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/cerbrary/cerbrary/pkg/errors"
)

// Response 统一响应结构
// 设计说明：
// 1. Code是业务错误码（非HTTP状态码），方便客户端判断错误类型
// 2. Message是用户友好的提示信息
// 3. Data是业务数据，成功时返回，失败时为null
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应（Code=0表示成功）
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应（借阅、注册、图书录入等）
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应（自动处理AppError）
// 用法：
//
//	err := borrowUseCase.Execute(...)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)

	// 内部错误只进日志，不返回给客户端
	if appErr.Err != nil {
		log.Printf("请求处理失败: %s %s: %v", c.Request.Method, c.FullPath(), appErr.Err)
	}

	c.JSON(httpStatus(appErr.Code), Response{
		Code:    appErr.Code,
		Message: appErr.Message,
		Data:    nil,
	})
}

// ErrorWithCode 自定义错误码和消息
func ErrorWithCode(c *gin.Context, code int, message string) {
	c.JSON(httpStatus(code), Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// httpStatus 业务错误码 → HTTP状态码
// 约定：
// - 404xx → 404（资源不存在）
// - 401xx → 401/403（未登录/无权限）
// - 409xx → 400（参数错误）
// - 400xx → 409（业务冲突：无副本可借、状态机拒绝等）
// - 500xx → 500
func httpStatus(code int) int {
	switch {
	case code == 0:
		return http.StatusOK
	case code >= 50000:
		return http.StatusInternalServerError
	case code >= 40900:
		return http.StatusBadRequest
	case code >= 40400 && code < 40500:
		return http.StatusNotFound
	case code == apperrors.ErrCodeForbidden,
		code == apperrors.ErrCodeNotApproved,
		code == apperrors.ErrCodeDisabled:
		return http.StatusForbidden
	case code >= 40100 && code < 40200:
		return http.StatusUnauthorized
	default:
		// 业务规则冲突（40000-40099）
		return http.StatusConflict
	}
}

// =========================================
// 分页响应结构
// =========================================

// PageData 分页数据封装
type PageData struct {
	List       interface{} `json:"list"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

// NewPageData 创建分页数据
func NewPageData(list interface{}, total int64, page, pageSize int) *PageData {
	totalPages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		totalPages++
	}

	return &PageData{
		List:       list,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, list interface{}, total int64, page, pageSize int) {
	Success(c, NewPageData(list, total, page, pageSize))
}
