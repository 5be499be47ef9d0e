package book

import (
	"context"

	"github.com/cerbrary/cerbrary/internal/domain/book"
)

// ListBooksUseCase 图书列表查询用例(公开接口)
// 支持分页、关键词搜索、类别/作者/年份筛选、排序;
// 列表项不返回description(减少数据传输量)
type ListBooksUseCase struct {
	bookService book.Service
}

// NewListBooksUseCase 创建列表查询用例
func NewListBooksUseCase(bookService book.Service) *ListBooksUseCase {
	return &ListBooksUseCase{bookService: bookService}
}

// ListBooksRequest 列表查询请求DTO
type ListBooksRequest struct {
	Page     int    // 页码(从1开始)
	PageSize int    // 每页数量
	Keyword  string // 搜索关键词(匹配书名、作者、类别)
	Genre    string // 类别筛选
	Author   string // 作者筛选
	Year     int    // 出版年份筛选
	SortBy   string // 排序方式(title_asc, year_desc, created_at_desc)
}

// BookListItem 列表项DTO(不含description)
type BookListItem struct {
	ID              uint   `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	Genre           string `json:"genre,omitempty"`
	PublicationYear int    `json:"publication_year,omitempty"`
	ISBN            string `json:"isbn,omitempty"`
	CoverImageURL   string `json:"cover_image_url,omitempty"`
	TotalCopies     int    `json:"total_copies"`
	AvailableCopies int    `json:"available_copies"`
	CreatedAt       string `json:"created_at"`
}

// ListBooksResponse 列表查询响应DTO
type ListBooksResponse struct {
	List       []BookListItem `json:"list"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// Execute 执行列表查询
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) (*ListBooksResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	params := book.ListParams{
		Page:     req.Page,
		PageSize: req.PageSize,
		Keyword:  req.Keyword,
		Genre:    req.Genre,
		Author:   req.Author,
		Year:     req.Year,
		SortBy:   req.SortBy,
	}

	books, total, err := uc.bookService.ListBooks(ctx, params)
	if err != nil {
		return nil, err
	}

	list := make([]BookListItem, len(books))
	for i, b := range books {
		list[i] = BookListItem{
			ID:              b.ID,
			Title:           b.Title,
			Author:          b.Author,
			Genre:           b.Genre,
			PublicationYear: b.PublicationYear,
			ISBN:            b.ISBN,
			CoverImageURL:   b.CoverImageURL,
			TotalCopies:     b.TotalCopies,
			AvailableCopies: b.AvailableCopies,
			CreatedAt:       b.CreatedAt.Format("2006-01-02 15:04:05"),
		}
	}

	totalPages := int(total) / req.PageSize
	if int(total)%req.PageSize != 0 {
		totalPages++
	}

	return &ListBooksResponse{
		List:       list,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: totalPages,
	}, nil
}
