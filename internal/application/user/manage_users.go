package user

import (
	"context"

	"github.com/cerbrary/cerbrary/internal/domain/user"
)

// ManageUsersUseCase 用户管理用例(管理员)
// 审批、启用/停用、角色变更都通过实体的领域行为完成,
// 应用层只做查询-修改-保存的编排
type ManageUsersUseCase struct {
	userRepo user.Repository
}

// NewManageUsersUseCase 创建用户管理用例
func NewManageUsersUseCase(userRepo user.Repository) *ManageUsersUseCase {
	return &ManageUsersUseCase{userRepo: userRepo}
}

// ListUsersRequest 用户列表请求DTO
type ListUsersRequest struct {
	Page     int
	PageSize int
}

// ListUsersResponse 用户列表响应DTO
type ListUsersResponse struct {
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
	Users    []UserInfo `json:"users"`
}

// List 查询用户列表(待审批的排在前面)
func (uc *ManageUsersUseCase) List(ctx context.Context, req ListUsersRequest) (*ListUsersResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	users, total, err := uc.userRepo.List(ctx, req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}

	infos := make([]UserInfo, len(users))
	for i, u := range users {
		infos[i] = toUserInfo(u)
	}

	return &ListUsersResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Users:    infos,
	}, nil
}

// Get 查询单个用户
func (uc *ManageUsersUseCase) Get(ctx context.Context, id uint) (*UserInfo, error) {
	u, err := uc.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	info := toUserInfo(u)
	return &info, nil
}

// UpdateUserRequest 用户更新请求DTO(字段均可选)
type UpdateUserRequest struct {
	ID      uint
	Name    string // 空=不修改
	Status  string // APPROVED/REJECTED,空=不修改
	Enabled *bool  // nil=不修改
	Role    string // USER/ADMIN,空=不修改
}

// Update 更新用户(审批/停用/角色/改名)
func (uc *ManageUsersUseCase) Update(ctx context.Context, req UpdateUserRequest) (*UserInfo, error) {
	u, err := uc.userRepo.FindByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		u.Rename(req.Name)
	}

	switch req.Status {
	case "":
		// 不修改
	case user.StatusApproved:
		u.Approve()
	case user.StatusRejected:
		u.Reject()
	default:
		return nil, user.ErrInvalidStatus
	}

	if req.Enabled != nil {
		u.SetEnabled(*req.Enabled)
	}

	if req.Role != "" {
		if err := u.SetRole(req.Role); err != nil {
			return nil, err
		}
	}

	if err := uc.userRepo.Update(ctx, u); err != nil {
		return nil, err
	}

	info := toUserInfo(u)
	return &info, nil
}

// Delete 删除用户(软删除;借阅记录留存)
func (uc *ManageUsersUseCase) Delete(ctx context.Context, id uint) error {
	if _, err := uc.userRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return uc.userRepo.Delete(ctx, id)
}
