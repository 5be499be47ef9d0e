package book

import (
	"context"

	"github.com/cerbrary/cerbrary/internal/domain/book"
)

// AddBookUseCase 图书录入用例(管理员)
// 应用层只做流程编排,业务规则校验(ISBN格式、重复预检、
// 年份区间)由领域服务负责
type AddBookUseCase struct {
	bookService book.Service
}

// NewAddBookUseCase 创建图书录入用例
func NewAddBookUseCase(bookService book.Service) *AddBookUseCase {
	return &AddBookUseCase{bookService: bookService}
}

// AddBookRequest 录入请求DTO
type AddBookRequest struct {
	Title           string // 书名
	Author          string // 作者
	Genre           string // 类别
	PublicationYear int    // 出版年份
	ISBN            string // ISBN号(可选)
	Description     string // 图书描述
	CoverImageURL   string // 封面图片URL
	TotalCopies     int    // 馆藏副本总数
	CreatedByID     uint   // 录入管理员ID(从认证中间件获取)
}

// Execute 执行图书录入
func (uc *AddBookUseCase) Execute(ctx context.Context, req AddBookRequest) (*BookDetail, error) {
	b, err := uc.bookService.AddBook(
		ctx,
		req.Title,
		req.Author,
		req.Genre,
		req.PublicationYear,
		req.ISBN,
		req.Description,
		req.CoverImageURL,
		req.TotalCopies,
		req.CreatedByID,
	)
	if err != nil {
		return nil, err
	}

	detail := toBookDetail(b)
	return &detail, nil
}
