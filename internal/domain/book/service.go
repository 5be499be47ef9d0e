package book

import (
	"context"
	"regexp"
	"time"
)

// Service 图书领域服务接口
// 封装跨实体的业务规则校验,不依赖具体Repository实现
type Service interface {
	// AddBook 录入图书(管理员)
	// 业务规则:
	// - 书名、作者不能为空
	// - 副本总数>=0
	// - ISBN填写时格式必须合法且不能重复
	// - 出版年份在合理区间
	AddBook(ctx context.Context, title, author, genre string, publicationYear int, isbn, description, coverImageURL string, totalCopies int, createdByID uint) (*Book, error)

	// GetBookByID 根据ID获取图书详情
	GetBookByID(ctx context.Context, id uint) (*Book, error)

	// UpdateBook 更新图书信息(管理员)
	// totalCopies>=0时调整馆藏总数,可借数按差额同步
	UpdateBook(ctx context.Context, id uint, title, author, genre string, publicationYear int, isbn, description, coverImageURL string, totalCopies int) (*Book, error)

	// ListBooks 分页查询图书列表(公开接口)
	ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error)
}

// service 领域服务实现
type service struct {
	repo Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// AddBook 录入图书
func (s *service) AddBook(ctx context.Context, title, author, genre string, publicationYear int, isbn, description, coverImageURL string, totalCopies int, createdByID uint) (*Book, error) {
	if title == "" {
		return nil, ErrInvalidTitle
	}
	if author == "" {
		return nil, ErrInvalidAuthor
	}
	if totalCopies < 0 {
		return nil, ErrInvalidCopies
	}
	if err := validateYear(publicationYear); err != nil {
		return nil, err
	}

	if isbn != "" {
		if !isValidISBN(isbn) {
			return nil, ErrInvalidISBN
		}
		// 预检ISBN重复,数据库唯一索引兜底
		existing, err := s.repo.FindByISBN(ctx, isbn)
		if err == nil && existing != nil {
			return nil, ErrISBNDuplicate
		}
		if err != nil && err != ErrBookNotFound {
			return nil, err
		}
	}

	b := NewBook(title, author, genre, publicationYear, isbn, description, coverImageURL, totalCopies, createdByID)

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

// GetBookByID 根据ID获取图书
func (s *service) GetBookByID(ctx context.Context, id uint) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateBook 更新图书信息
func (s *service) UpdateBook(ctx context.Context, id uint, title, author, genre string, publicationYear int, isbn, description, coverImageURL string, totalCopies int) (*Book, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if isbn != "" && isbn != b.ISBN {
		if !isValidISBN(isbn) {
			return nil, ErrInvalidISBN
		}
		existing, err := s.repo.FindByISBN(ctx, isbn)
		if err == nil && existing != nil && existing.ID != id {
			return nil, ErrISBNDuplicate
		}
		if err != nil && err != ErrBookNotFound {
			return nil, err
		}
	}

	if publicationYear > 0 {
		if err := validateYear(publicationYear); err != nil {
			return nil, err
		}
	}

	if totalCopies >= 0 && totalCopies != b.TotalCopies {
		// 总数调整不走读-改-写:AdjustCopies单条条件UPDATE按差额
		// 同步可借数,并发借出挤在读快照和写回之间也不会丢扣减
		if err := s.repo.AdjustCopies(ctx, id, totalCopies); err != nil {
			return nil, err
		}
	}

	b.UpdateInfo(title, author, genre, publicationYear, isbn, description, coverImageURL)

	// Update只写信息列,不触碰副本计数
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}

	// 计数列在仓储里单独演进,回读拿最新值
	return s.repo.FindByID(ctx, id)
}

// ListBooks 分页查询图书列表
func (s *service) ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error) {
	return s.repo.List(ctx, params)
}

// isValidISBN 校验ISBN格式
// 支持ISBN-10和ISBN-13,允许分隔符(978-7-115-42802-8)
// 简化实现:只检查位数(生产环境应校验校验位)
func isValidISBN(isbn string) bool {
	re := regexp.MustCompile(`[^0-9Xx]`)
	clean := re.ReplaceAllString(isbn, "")

	length := len(clean)
	return length == 10 || length == 13
}

// validateYear 出版年份校验(活字印刷之前的书就不收了)
func validateYear(year int) error {
	if year == 0 {
		return nil // 未填写
	}
	if year < 1000 || year > time.Now().Year()+1 {
		return ErrInvalidYear
	}
	return nil
}
