package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/cerbrary/cerbrary/internal/domain/user"
	apperrors "github.com/cerbrary/cerbrary/pkg/errors"
)

// userRepository 用户仓储实现(MySQL)
// 邮箱唯一性由数据库UNIQUE索引保证(而非应用层SELECT再INSERT),
// 捕获Duplicate Entry错误转换为ErrEmailDuplicate
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepository{db: db}
}

// Create 创建用户
func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	model := &UserModel{
		Name:     u.Name,
		Email:    u.Email,
		Password: u.Password,
		Role:     u.Role,
		Status:   u.Status,
		Enabled:  u.Enabled,
		Image:    u.Image,
	}

	if err := r.getDB(ctx).WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return apperrors.ErrEmailDuplicate
		}
		return apperrors.Wrap(err, "创建用户失败")
	}

	u.ID = model.ID
	u.CreatedAt = model.CreatedAt
	u.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找用户
func (r *userRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	var model UserModel
	err := r.getDB(ctx).WithContext(ctx).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "查询用户失败")
	}

	return toUserEntity(&model), nil
}

// FindByEmail 根据邮箱查找用户
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserModel
	err := r.getDB(ctx).WithContext(ctx).Where("email = ?", email).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "查询用户失败")
	}

	return toUserEntity(&model), nil
}

// Update 更新用户信息
func (r *userRepository) Update(ctx context.Context, u *user.User) error {
	model := &UserModel{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Password:  u.Password,
		Role:      u.Role,
		Status:    u.Status,
		Enabled:   u.Enabled,
		Image:     u.Image,
		CreatedAt: u.CreatedAt,
	}

	if err := r.getDB(ctx).WithContext(ctx).Save(model).Error; err != nil {
		if isDuplicateError(err) {
			return apperrors.ErrEmailDuplicate
		}
		return apperrors.Wrap(err, "更新用户失败")
	}

	u.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete 删除用户(软删除)
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	result := r.getDB(ctx).WithContext(ctx).Delete(&UserModel{}, id)

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除用户失败")
	}

	if result.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

// List 分页查询用户列表(注册时间倒序,待审批的排前面方便管理员处理)
func (r *userRepository) List(ctx context.Context, page, pageSize int) ([]*user.User, int64, error) {
	var models []UserModel
	var total int64

	query := r.getDB(ctx).WithContext(ctx).Model(&UserModel{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询用户总数失败")
	}

	offset := (page - 1) * pageSize
	err := query.Order("status = 'PENDING' DESC, created_at DESC").
		Limit(pageSize).Offset(offset).Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询用户列表失败")
	}

	users := make([]*user.User, len(models))
	for i := range models {
		users[i] = toUserEntity(&models[i])
	}

	return users, total, nil
}

// toUserEntity GORM模型 → 领域实体
func toUserEntity(model *UserModel) *user.User {
	return &user.User{
		ID:        model.ID,
		Name:      model.Name,
		Email:     model.Email,
		Password:  model.Password,
		Role:      model.Role,
		Status:    model.Status,
		Enabled:   model.Enabled,
		Image:     model.Image,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// getDB 从context获取事务DB,没有则使用默认DB
func (r *userRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db
}
