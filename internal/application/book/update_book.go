package book

import (
	"context"

	"github.com/cerbrary/cerbrary/internal/domain/book"
)

// UpdateBookUseCase 图书更新用例(管理员)
// 空字段表示不修改;TotalCopies>=0时调整馆藏总数,
// 可借数按差额同步、借出中的副本不受影响
type UpdateBookUseCase struct {
	bookService book.Service
}

// NewUpdateBookUseCase 创建图书更新用例
func NewUpdateBookUseCase(bookService book.Service) *UpdateBookUseCase {
	return &UpdateBookUseCase{bookService: bookService}
}

// UpdateBookRequest 更新请求DTO
type UpdateBookRequest struct {
	ID              uint   // 图书ID
	Title           string // 书名(空=不修改)
	Author          string // 作者(空=不修改)
	Genre           string // 类别(空=不修改)
	PublicationYear int    // 出版年份(0=不修改)
	ISBN            string // ISBN号(空=不修改)
	Description     string // 图书描述(空=不修改)
	CoverImageURL   string // 封面图片URL(空=不修改)
	TotalCopies     int    // 馆藏副本总数(-1=不修改)
}

// Execute 执行图书更新
func (uc *UpdateBookUseCase) Execute(ctx context.Context, req UpdateBookRequest) (*BookDetail, error) {
	b, err := uc.bookService.UpdateBook(
		ctx,
		req.ID,
		req.Title,
		req.Author,
		req.Genre,
		req.PublicationYear,
		req.ISBN,
		req.Description,
		req.CoverImageURL,
		req.TotalCopies,
	)
	if err != nil {
		return nil, err
	}

	detail := toBookDetail(b)
	return &detail, nil
}
