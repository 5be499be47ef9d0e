package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/cerbrary/cerbrary/internal/application/book"
	"github.com/cerbrary/cerbrary/internal/interface/http/dto"
	"github.com/cerbrary/cerbrary/internal/interface/http/middleware"
	apperrors "github.com/cerbrary/cerbrary/pkg/errors"
	"github.com/cerbrary/cerbrary/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	addBookUseCase    *appbook.AddBookUseCase
	getBookUseCase    *appbook.GetBookUseCase
	listBooksUseCase  *appbook.ListBooksUseCase
	updateBookUseCase *appbook.UpdateBookUseCase
	deleteBookUseCase *appbook.DeleteBookUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	addBookUseCase *appbook.AddBookUseCase,
	getBookUseCase *appbook.GetBookUseCase,
	listBooksUseCase *appbook.ListBooksUseCase,
	updateBookUseCase *appbook.UpdateBookUseCase,
	deleteBookUseCase *appbook.DeleteBookUseCase,
) *BookHandler {
	return &BookHandler{
		addBookUseCase:    addBookUseCase,
		getBookUseCase:    getBookUseCase,
		listBooksUseCase:  listBooksUseCase,
		updateBookUseCase: updateBookUseCase,
		deleteBookUseCase: deleteBookUseCase,
	}
}

// AddBook 图书录入
// @Summary      图书录入
// @Description  管理员录入新图书,可借副本数等于馆藏总数
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AddBookRequest true "图书信息"
// @Success      201 {object} response.Response{data=dto.BookResponse} "录入成功"
// @Failure      400 {object} response.Response "参数错误"
// @Failure      403 {object} response.Response "无权限"
// @Failure      409 {object} response.Response "ISBN已存在"
// @Router       /api/v1/books [post]
func (h *BookHandler) AddBook(c *gin.Context) {
	var req dto.AddBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.addBookUseCase.Execute(c.Request.Context(), appbook.AddBookRequest{
		Title:           req.Title,
		Author:          req.Author,
		Genre:           req.Genre,
		PublicationYear: req.PublicationYear,
		ISBN:            req.ISBN,
		Description:     req.Description,
		CoverImageURL:   req.CoverImageURL,
		TotalCopies:     req.TotalCopies,
		CreatedByID:     middleware.MustGetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	bookResp := toBookResponse(result)
	response.Created(c, &bookResp)
}

// GetBook 图书详情
// @Summary      图书详情
// @Description  根据ID查询图书详情(公开接口)
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=dto.BookResponse} "查询成功"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "图书ID不合法")
		return
	}

	result, err := h.getBookUseCase.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	bookResp := toBookResponse(result)
	response.Success(c, &bookResp)
}

// ListBooks 图书列表
// @Summary      图书列表
// @Description  分页查询图书,支持关键词搜索与类别/作者/年份筛选(公开接口)
// @Tags         图书
// @Produce      json
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Param        keyword query string false "搜索关键词(匹配书名、作者、类别)"
// @Param        genre query string false "类别筛选"
// @Param        author query string false "作者筛选"
// @Param        year query int false "出版年份筛选"
// @Param        sort_by query string false "排序方式" Enums(title_asc, year_desc, created_at_desc)
// @Success      200 {object} response.Response{data=appbook.ListBooksResponse} "查询成功"
// @Router       /api/v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	var req dto.ListBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.listBooksUseCase.Execute(c.Request.Context(), appbook.ListBooksRequest{
		Page:     req.Page,
		PageSize: req.PageSize,
		Keyword:  req.Keyword,
		Genre:    req.Genre,
		Author:   req.Author,
		Year:     req.Year,
		SortBy:   req.SortBy,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateBook 图书更新
// @Summary      图书更新
// @Description  管理员更新图书信息;调整馆藏总数时可借数按差额同步,借出中的不受影响
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.UpdateBookRequest true "更新内容"
// @Success      200 {object} response.Response{data=dto.BookResponse} "更新成功"
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      409 {object} response.Response "总数低于借出数"
// @Router       /api/v1/books/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "图书ID不合法")
		return
	}

	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	// total_copies缺省时传-1表示不调整
	totalCopies := -1
	if req.TotalCopies != nil {
		totalCopies = *req.TotalCopies
	}

	result, err := h.updateBookUseCase.Execute(c.Request.Context(), appbook.UpdateBookRequest{
		ID:              id,
		Title:           req.Title,
		Author:          req.Author,
		Genre:           req.Genre,
		PublicationYear: req.PublicationYear,
		ISBN:            req.ISBN,
		Description:     req.Description,
		CoverImageURL:   req.CoverImageURL,
		TotalCopies:     totalCopies,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	bookResp := toBookResponse(result)
	response.Success(c, &bookResp)
}

// DeleteBook 图书删除
// @Summary      图书删除
// @Description  管理员删除图书;存在借阅中记录时拒绝删除
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response "删除成功"
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      409 {object} response.Response "存在未归还的借阅"
// @Router       /api/v1/books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "图书ID不合法")
		return
	}

	if err := h.deleteBookUseCase.Execute(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

func toBookResponse(d *appbook.BookDetail) dto.BookResponse {
	return dto.BookResponse{
		ID:              d.ID,
		Title:           d.Title,
		Author:          d.Author,
		Genre:           d.Genre,
		PublicationYear: d.PublicationYear,
		ISBN:            d.ISBN,
		Description:     d.Description,
		CoverImageURL:   d.CoverImageURL,
		TotalCopies:     d.TotalCopies,
		AvailableCopies: d.AvailableCopies,
		CreatedAt:       d.CreatedAt,
	}
}
