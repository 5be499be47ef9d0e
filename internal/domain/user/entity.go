package user

import (
	"time"
)

// 角色
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// 审批状态:注册后为PENDING,管理员审批通过(APPROVED)后才能登录
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// User 用户实体(聚合根)
// 设计说明:
// 1. 密码只存bcrypt哈希,实体不暴露明文相关方法
// 2. Status是审批状态,Enabled是停用开关,两者独立:
//    借阅要求 Status==APPROVED 且 Enabled==true
// 3. 领域实体不带GORM tag,映射在infrastructure层处理
type User struct {
	ID        uint
	Name      string
	Email     string
	Password  string // bcrypt哈希值
	Role      string // USER | ADMIN
	Status    string // PENDING | APPROVED | REJECTED
	Enabled   bool   // 停用开关
	Image     string // 头像URL
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户(工厂方法)
// hashedPassword必须是bcrypt加密后的密码;新用户待审批、默认启用
func NewUser(name, email, hashedPassword string) *User {
	now := time.Now()
	return &User{
		Name:      name,
		Email:     email,
		Password:  hashedPassword,
		Role:      RoleUser,
		Status:    StatusPending,
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanLogin 是否允许登录(审批通过且未停用)
func (u *User) CanLogin() bool {
	return u.Status == StatusApproved && u.Enabled
}

// CanBorrow 是否允许借阅,规则与登录一致
func (u *User) CanBorrow() bool {
	return u.CanLogin()
}

// Approve 审批通过(领域行为)
func (u *User) Approve() {
	u.Status = StatusApproved
	u.UpdatedAt = time.Now()
}

// Reject 审批拒绝
func (u *User) Reject() {
	u.Status = StatusRejected
	u.UpdatedAt = time.Now()
}

// SetEnabled 启用/停用
func (u *User) SetEnabled(enabled bool) {
	u.Enabled = enabled
	u.UpdatedAt = time.Now()
}

// SetRole 变更角色
func (u *User) SetRole(role string) error {
	if role != RoleUser && role != RoleAdmin {
		return ErrInvalidRole
	}
	u.Role = role
	u.UpdatedAt = time.Now()
	return nil
}

// Rename 修改姓名
func (u *User) Rename(name string) {
	u.Name = name
	u.UpdatedAt = time.Now()
}
