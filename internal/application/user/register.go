package user

import (
	"context"

	"github.com/cerbrary/cerbrary/internal/domain/user"
)

// RegisterUseCase 用户注册用例
// 注册后账号为PENDING状态,管理员审批通过前不能登录
type RegisterUseCase struct {
	userService user.Service
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userService user.Service) *RegisterUseCase {
	return &RegisterUseCase{userService: userService}
}

// RegisterRequest 注册请求DTO
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
}

// RegisterResponse 注册响应DTO(不含密码)
type RegisterResponse struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

// Execute 执行注册
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	u, err := uc.userService.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	return &RegisterResponse{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Status: u.Status,
	}, nil
}
