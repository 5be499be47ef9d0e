package book

import (
	"context"

	"github.com/cerbrary/cerbrary/internal/domain/book"
)

// GetBookUseCase 图书详情查询用例(公开接口)
type GetBookUseCase struct {
	bookService book.Service
}

// NewGetBookUseCase 创建详情查询用例
func NewGetBookUseCase(bookService book.Service) *GetBookUseCase {
	return &GetBookUseCase{bookService: bookService}
}

// BookDetail 图书详情DTO
type BookDetail struct {
	ID              uint   `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	Genre           string `json:"genre,omitempty"`
	PublicationYear int    `json:"publication_year,omitempty"`
	ISBN            string `json:"isbn,omitempty"`
	Description     string `json:"description,omitempty"`
	CoverImageURL   string `json:"cover_image_url,omitempty"`
	TotalCopies     int    `json:"total_copies"`
	AvailableCopies int    `json:"available_copies"`
	CreatedAt       string `json:"created_at"`
}

// toBookDetail 实体转详情DTO
func toBookDetail(b *book.Book) BookDetail {
	return BookDetail{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		Genre:           b.Genre,
		PublicationYear: b.PublicationYear,
		ISBN:            b.ISBN,
		Description:     b.Description,
		CoverImageURL:   b.CoverImageURL,
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
		CreatedAt:       b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// Execute 执行详情查询
func (uc *GetBookUseCase) Execute(ctx context.Context, id uint) (*BookDetail, error) {
	b, err := uc.bookService.GetBookByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := toBookDetail(b)
	return &detail, nil
}
