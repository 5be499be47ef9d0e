package book

import (
	"time"
)

// Book 图书实体(聚合根)
// 设计说明:
// 1. Book是馆藏聚合的根实体,TotalCopies/AvailableCopies描述副本库存
// 2. 不变量: 0 <= AvailableCopies <= TotalCopies
//    计数只通过仓储的ReserveCopy/ReleaseCopy/AdjustCopies原子SQL修改,
//    实体上不提供直接增减AvailableCopies的方法,避免绕过并发控制
// 3. ISBN可选,填写时数据库层保证唯一
// 4. CreatedByID关联录入图书的管理员
type Book struct {
	ID              uint
	Title           string // 书名
	Author          string // 作者
	Genre           string // 类别
	PublicationYear int    // 出版年份
	ISBN            string // ISBN号(可选)
	Description     string // 图书描述
	CoverImageURL   string // 封面图片URL
	TotalCopies     int    // 馆藏副本总数
	AvailableCopies int    // 当前可借副本数
	CreatedByID     uint   // 录入者用户ID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewBook 创建新图书(工厂方法)
// 新书的可借副本数等于馆藏总数
func NewBook(title, author, genre string, publicationYear int, isbn, description, coverImageURL string, totalCopies int, createdByID uint) *Book {
	now := time.Now()
	return &Book{
		Title:           title,
		Author:          author,
		Genre:           genre,
		PublicationYear: publicationYear,
		ISBN:            isbn,
		Description:     description,
		CoverImageURL:   coverImageURL,
		TotalCopies:     totalCopies,
		AvailableCopies: totalCopies,
		CreatedByID:     createdByID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// UpdateInfo 更新图书基本信息(空值表示不修改)
func (b *Book) UpdateInfo(title, author, genre string, publicationYear int, isbn, description, coverImageURL string) {
	if title != "" {
		b.Title = title
	}
	if author != "" {
		b.Author = author
	}
	if genre != "" {
		b.Genre = genre
	}
	if publicationYear > 0 {
		b.PublicationYear = publicationYear
	}
	if isbn != "" {
		b.ISBN = isbn
	}
	if description != "" {
		b.Description = description
	}
	if coverImageURL != "" {
		b.CoverImageURL = coverImageURL
	}
	b.UpdatedAt = time.Now()
}

// AdjustTotalCopies 调整馆藏副本总数(领域规则)
// 持久化走Repository.AdjustCopies的条件UPDATE原子执行同一规则
// 业务规则:
// - 新总数不能为负
// - 可借副本数按差额同步调整,借出中的副本(Total-Available)不受影响
// - 新总数不能少于已借出的副本数,否则归还时无处安放
func (b *Book) AdjustTotalCopies(newTotal int) error {
	if newTotal < 0 {
		return ErrInvalidCopies
	}

	loaned := b.TotalCopies - b.AvailableCopies
	if newTotal < loaned {
		return ErrCopiesBelowLoaned
	}

	b.AvailableCopies = newTotal - loaned
	b.TotalCopies = newTotal
	b.UpdatedAt = time.Now()
	return nil
}

// LoanedCopies 当前借出中的副本数
func (b *Book) LoanedCopies() int {
	return b.TotalCopies - b.AvailableCopies
}

// HasAvailableCopy 是否还有可借副本
func (b *Book) HasAvailableCopy() bool {
	return b.AvailableCopies > 0
}
