package user

import (
	"context"
	"regexp"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/cerbrary/cerbrary/pkg/errors"
)

// Service 用户领域服务
// 设计说明:
// 1. 封装不属于单个实体的业务逻辑(密码加密、登录校验)
// 2. 依赖Repository接口,不依赖具体实现
// 3. 不处理HTTP,只处理业务规则
type Service interface {
	// Register 用户注册(注册后为PENDING,等待管理员审批)
	Register(ctx context.Context, name, email, password string) (*User, error)

	// Login 用户登录
	// 业务规则:邮箱存在、密码正确、审批通过且未停用
	Login(ctx context.Context, email, password string) (*User, error)

	// ValidatePassword 验证密码
	ValidatePassword(hashedPassword, plainPassword string) error
}

type service struct {
	repo Repository
}

// NewService 创建用户服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Register 用户注册
// 业务规则:
// 1. 邮箱格式校验
// 2. 密码强度校验(8-20位,包含字母和数字)
// 3. 密码bcrypt加密(cost=12,自动加盐)
// 4. 邮箱唯一性由数据库UNIQUE索引兜底
func (s *service) Register(ctx context.Context, name, email, password string) (*User, error) {
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	if err := validatePasswordStrength(password); err != nil {
		return nil, err
	}

	// 长度按字符数而非字节数算,中文名"张三"是2个字符
	if n := utf8.RuneCountInString(name); n < 2 || n > 50 {
		return nil, ErrInvalidName
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, apperrors.Wrap(err, "密码加密失败")
	}

	u := NewUser(name, email, string(hashedPassword))

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err // Repository已转换为业务错误
	}

	return u, nil
}

// Login 用户登录
// 密码错误与账号不存在返回不同错误码,但handler层对登录统一提示,
// 避免暴露邮箱是否注册
func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := s.ValidatePassword(u.Password, password); err != nil {
		return nil, err
	}

	// 审批/停用检查放在密码之后:不给未审批账号当密码探测口
	if u.Status != StatusApproved {
		return nil, apperrors.ErrNotApproved
	}
	if !u.Enabled {
		return nil, apperrors.ErrDisabled
	}

	return u, nil
}

// ValidatePassword 验证明文密码与bcrypt哈希是否匹配
func (s *service) ValidatePassword(hashedPassword, plainPassword string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	if err != nil {
		if err == bcrypt.ErrMismatchedHashAndPassword {
			return apperrors.ErrInvalidPassword
		}
		return apperrors.Wrap(err, "密码验证失败")
	}
	return nil
}

// isValidEmail 邮箱格式校验(简单正则,生产环境可用RFC 5322)
func isValidEmail(email string) bool {
	pattern := `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	matched, _ := regexp.MatchString(pattern, email)
	return matched
}

// validatePasswordStrength 密码强度校验:8-20位,必须包含字母和数字
func validatePasswordStrength(password string) error {
	if len(password) < 8 || len(password) > 20 {
		return apperrors.ErrWeakPassword
	}

	hasLetter := regexp.MustCompile(`[a-zA-Z]`).MatchString(password)
	hasDigit := regexp.MustCompile(`[0-9]`).MatchString(password)

	if !hasLetter || !hasDigit {
		return apperrors.ErrWeakPassword
	}

	return nil
}
