package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cerbrary/cerbrary/internal/domain/book"
	apperrors "github.com/cerbrary/cerbrary/pkg/errors"
)

// bookRepository 图书仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/book/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 数据库特定错误(ISBN重复)转换为业务错误
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// Create 创建图书
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)

	if err := r.getDB(ctx).WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return book.ErrISBNDuplicate
		}
		return apperrors.Wrap(err, "创建图书失败")
	}

	// 回填自增ID与时间戳
	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	err := r.getDB(ctx).WithContext(ctx).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}

	return toBookEntity(&model), nil
}

// FindByISBN 根据ISBN查找图书
func (r *bookRepository) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	var model BookModel
	err := r.getDB(ctx).WithContext(ctx).Where("isbn = ?", isbn).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}

	return toBookEntity(&model), nil
}

// Update 更新图书基本信息
// Omit跳过副本计数列:计数只走ReserveCopy/ReleaseCopy/AdjustCopies
// 的条件UPDATE,整行Save会用读取时的快照覆盖并发借出扣掉的副本
func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)
	model.CreatedAt = b.CreatedAt

	err := r.getDB(ctx).WithContext(ctx).
		Omit("total_copies", "available_copies").
		Save(model).Error
	if err != nil {
		if isDuplicateError(err) {
			return book.ErrISBNDuplicate
		}
		return apperrors.Wrap(err, "更新图书失败")
	}

	b.UpdatedAt = model.UpdatedAt
	return nil
}

// AdjustCopies 调整馆藏副本总数(原子操作)
// UPDATE books SET available_copies = available_copies + (? - total_copies),
//                  total_copies = ?
// WHERE id = ? AND total_copies - available_copies <= ?
// 借出中的副本数(total-available)在同一条语句里读出并保持不变;
// MySQL按SET从左到右求值,available_copies先用旧total算好再覆盖total
func (r *bookRepository) AdjustCopies(ctx context.Context, id uint, totalCopies int) error {
	db := r.getDB(ctx)
	result := db.WithContext(ctx).Exec(
		"UPDATE books SET available_copies = available_copies + (? - total_copies), total_copies = ?, updated_at = NOW() "+
			"WHERE id = ? AND deleted_at IS NULL AND total_copies - available_copies <= ?",
		totalCopies, totalCopies, id, totalCopies,
	)

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "调整馆藏总数失败")
	}

	if result.RowsAffected == 0 {
		// 0行受影响:图书不存在、总数已是目标值(MySQL对无变化的行不计数)
		// 或新总数低于已借出数,再查一次区分
		var model BookModel
		if err := db.WithContext(ctx).First(&model, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return book.ErrBookNotFound
			}
			return apperrors.Wrap(err, "查询图书失败")
		}
		if model.TotalCopies == totalCopies {
			return nil
		}
		return book.ErrCopiesBelowLoaned
	}

	return nil
}

// Delete 删除图书(软删除)
// 调用方应在TxManager事务内先用CountActiveByBookID检查未归还借阅
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	result := r.getDB(ctx).WithContext(ctx).Delete(&BookModel{}, id)

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除图书失败")
	}

	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}

	return nil
}

// List 分页查询图书列表(搜索+筛选)
func (r *bookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	var models []BookModel
	var total int64

	query := r.getDB(ctx).WithContext(ctx).Model(&BookModel{})

	// 关键词搜索(书名、作者、类别,LIKE在utf8mb4默认排序规则下不区分大小写)
	if params.Keyword != "" {
		keyword := "%" + params.Keyword + "%"
		query = query.Where("title LIKE ? OR author LIKE ? OR genre LIKE ?", keyword, keyword, keyword)
	}

	// 精确筛选
	if params.Genre != "" {
		query = query.Where("genre = ?", params.Genre)
	}
	if params.Author != "" {
		query = query.Where("author = ?", params.Author)
	}
	if params.Year > 0 {
		query = query.Where("publication_year = ?", params.Year)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书总数失败")
	}

	switch params.SortBy {
	case "title_asc":
		query = query.Order("title ASC")
	case "year_desc":
		query = query.Order("publication_year DESC")
	default:
		query = query.Order("created_at DESC")
	}

	offset := (params.Page - 1) * params.PageSize
	query = query.Limit(params.PageSize).Offset(offset)

	if err := query.Find(&models).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书列表失败")
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}

	return books, total, nil
}

// LockByID 悲观锁查询图书(SELECT FOR UPDATE)
// 必须在TxManager事务内调用,否则锁没有意义
func (r *bookRepository) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	db := r.getDB(ctx)
	err := db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "锁定图书失败")
	}

	return toBookEntity(&model), nil
}

// ReserveCopy 预扣一个可借副本(原子操作)
// UPDATE books SET available_copies = available_copies - 1
// WHERE id = ? AND available_copies > 0
// 条件UPDATE由数据库按行串行化,并发抢最后一个副本时只有一个成功
func (r *bookRepository) ReserveCopy(ctx context.Context, id uint) error {
	db := r.getDB(ctx)
	result := db.WithContext(ctx).Model(&BookModel{}).
		Where("id = ?", id).
		Where("available_copies > 0").
		Update("available_copies", gorm.Expr("available_copies - 1"))

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "预扣副本失败")
	}

	if result.RowsAffected == 0 {
		// 0行受影响:图书不存在,或无可借副本,再查一次确定原因
		var model BookModel
		if err := db.WithContext(ctx).First(&model, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return book.ErrBookNotFound
			}
			return apperrors.Wrap(err, "查询图书失败")
		}
		return book.ErrOutOfStock
	}

	return nil
}

// ReleaseCopy 放回一个副本(原子操作,幂等)
// UPDATE books SET available_copies = available_copies + 1
// WHERE id = ? AND available_copies < total_copies
// 已满时按总数钳制直接返回成功,补偿与归还可安全重试
func (r *bookRepository) ReleaseCopy(ctx context.Context, id uint) error {
	db := r.getDB(ctx)
	result := db.WithContext(ctx).Model(&BookModel{}).
		Where("id = ?", id).
		Where("available_copies < total_copies").
		Update("available_copies", gorm.Expr("available_copies + 1"))

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "放回副本失败")
	}

	if result.RowsAffected == 0 {
		// 图书不存在报错;存在说明可借数已达总数,幂等成功
		var model BookModel
		if err := db.WithContext(ctx).First(&model, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return book.ErrBookNotFound
			}
			return apperrors.Wrap(err, "查询图书失败")
		}
	}

	return nil
}

// toBookModel 领域实体 → GORM模型
func toBookModel(b *book.Book) *BookModel {
	var isbn *string
	if b.ISBN != "" {
		v := b.ISBN
		isbn = &v
	}
	return &BookModel{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		Genre:           b.Genre,
		PublicationYear: b.PublicationYear,
		ISBN:            isbn,
		Description:     b.Description,
		CoverImageURL:   b.CoverImageURL,
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
		CreatedByID:     b.CreatedByID,
	}
}

// toBookEntity GORM模型 → 领域实体
func toBookEntity(model *BookModel) *book.Book {
	isbn := ""
	if model.ISBN != nil {
		isbn = *model.ISBN
	}
	return &book.Book{
		ID:              model.ID,
		Title:           model.Title,
		Author:          model.Author,
		Genre:           model.Genre,
		PublicationYear: model.PublicationYear,
		ISBN:            isbn,
		Description:     model.Description,
		CoverImageURL:   model.CoverImageURL,
		TotalCopies:     model.TotalCopies,
		AvailableCopies: model.AvailableCopies,
		CreatedByID:     model.CreatedByID,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

// getDB 从context获取事务DB,没有则使用默认DB
func (r *bookRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db
}
