package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appuser "github.com/cerbrary/cerbrary/internal/application/user"
	"github.com/cerbrary/cerbrary/internal/interface/http/dto"
	"github.com/cerbrary/cerbrary/internal/interface/http/middleware"
	apperrors "github.com/cerbrary/cerbrary/pkg/errors"
	"github.com/cerbrary/cerbrary/pkg/response"
)

// UserHandler 用户HTTP处理器
// Handler只负责HTTP相关的事情:解析请求、调用应用层、返回响应,
// 业务逻辑在domain和application层
type UserHandler struct {
	registerUseCase *appuser.RegisterUseCase
	loginUseCase    *appuser.LoginUseCase
	logoutUseCase   *appuser.LogoutUseCase
	manageUseCase   *appuser.ManageUsersUseCase
}

// NewUserHandler 创建用户处理器
func NewUserHandler(
	registerUseCase *appuser.RegisterUseCase,
	loginUseCase *appuser.LoginUseCase,
	logoutUseCase *appuser.LogoutUseCase,
	manageUseCase *appuser.ManageUsersUseCase,
) *UserHandler {
	return &UserHandler{
		registerUseCase: registerUseCase,
		loginUseCase:    loginUseCase,
		logoutUseCase:   logoutUseCase,
		manageUseCase:   manageUseCase,
	}
}

// Register 用户注册
// @Summary      用户注册
// @Description  创建新用户账号,注册后等待管理员审批
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterRequest true "注册信息"
// @Success      201 {object} response.Response{data=dto.UserResponse} "注册成功"
// @Failure      400 {object} response.Response "参数错误"
// @Failure      409 {object} response.Response "邮箱已存在"
// @Router       /api/v1/users/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.registerUseCase.Execute(c.Request.Context(), appuser.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, &dto.UserResponse{
		ID:     result.ID,
		Name:   result.Name,
		Email:  result.Email,
		Status: result.Status,
	})
}

// Login 用户登录
// @Summary      用户登录
// @Description  验证邮箱密码,返回JWT Token对
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "登录信息"
// @Success      200 {object} response.Response{data=dto.LoginResponse} "登录成功"
// @Failure      401 {object} response.Response "邮箱或密码错误"
// @Failure      403 {object} response.Response "账号未审批或已停用"
// @Router       /api/v1/users/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.loginUseCase.Execute(c.Request.Context(), appuser.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.LoginResponse{
		User:         toUserResponse(result.User),
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresIn,
	})
}

// Logout 用户登出
// @Summary      用户登出
// @Description  删除会话并将当前Token拉黑
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response "登出成功"
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/users/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	userID := middleware.MustGetUserID(c)
	token := middleware.GetAccessToken(c)

	if err := h.logoutUseCase.Execute(c.Request.Context(), userID, token); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// ListUsers 用户列表(管理员)
// @Summary      用户列表
// @Description  分页查询全部用户,待审批的排在前面
// @Tags         用户管理
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Success      200 {object} response.Response{data=appuser.ListUsersResponse} "查询成功"
// @Failure      403 {object} response.Response "无权限"
// @Router       /api/v1/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	var req dto.ListUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.manageUseCase.List(c.Request.Context(), appuser.ListUsersRequest{
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateUser 用户更新(管理员:审批/停用/角色/改名)
// @Summary      用户更新
// @Description  审批通过或拒绝、启用停用、角色变更、改名
// @Tags         用户管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "用户ID"
// @Param        request body dto.UpdateUserRequest true "更新内容"
// @Success      200 {object} response.Response{data=dto.UserResponse} "更新成功"
// @Failure      404 {object} response.Response "用户不存在"
// @Router       /api/v1/users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "用户ID不合法")
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.manageUseCase.Update(c.Request.Context(), appuser.UpdateUserRequest{
		ID:      id,
		Name:    req.Name,
		Status:  req.Status,
		Enabled: req.Enabled,
		Role:    req.Role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	userResp := toUserResponse(*result)
	response.Success(c, &userResp)
}

// DeleteUser 用户删除(管理员)
// @Summary      用户删除
// @Description  软删除用户,借阅记录留存
// @Tags         用户管理
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "用户ID"
// @Success      200 {object} response.Response "删除成功"
// @Failure      404 {object} response.Response "用户不存在"
// @Router       /api/v1/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "用户ID不合法")
		return
	}

	if err := h.manageUseCase.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

func toUserResponse(info appuser.UserInfo) dto.UserResponse {
	return dto.UserResponse{
		ID:      info.ID,
		Name:    info.Name,
		Email:   info.Email,
		Role:    info.Role,
		Status:  info.Status,
		Enabled: info.Enabled,
		Image:   info.Image,
	}
}

// parseIDParam 解析路径中的:id参数
func parseIDParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
