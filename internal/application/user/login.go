package user

import (
	"context"
	"log"
	"time"

	"github.com/cerbrary/cerbrary/internal/domain/user"
	"github.com/cerbrary/cerbrary/internal/infrastructure/persistence/redis"
	"github.com/cerbrary/cerbrary/pkg/jwt"
)

// LoginUseCase 用户登录用例
// 流程:校验邮箱密码与账号状态 → 签发JWT Token对 → 保存会话到Redis
type LoginUseCase struct {
	userService   user.Service
	jwtManager    *jwt.Manager
	sessionStore  *redis.SessionStore
	refreshExpire time.Duration
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(
	userService user.Service,
	jwtManager *jwt.Manager,
	sessionStore *redis.SessionStore,
	refreshExpire time.Duration,
) *LoginUseCase {
	return &LoginUseCase{
		userService:   userService,
		jwtManager:    jwtManager,
		sessionStore:  sessionStore,
		refreshExpire: refreshExpire,
	}
}

// LoginRequest 登录请求DTO
type LoginRequest struct {
	Email    string
	Password string
}

// UserInfo 用户信息DTO
type UserInfo struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	Status  string `json:"status"`
	Enabled bool   `json:"enabled"`
	Image   string `json:"image,omitempty"`
}

// LoginResponse 登录响应DTO
type LoginResponse struct {
	User         UserInfo `json:"user"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"` // Access Token过期时间(秒)
}

func toUserInfo(u *user.User) UserInfo {
	return UserInfo{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Role:    u.Role,
		Status:  u.Status,
		Enabled: u.Enabled,
		Image:   u.Image,
	}
}

// Execute 执行登录
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	u, err := uc.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	tokenPair, err := uc.jwtManager.GenerateToken(u.ID, u.Email, u.Role, u.Status)
	if err != nil {
		return nil, err
	}

	// 会话有效期 = Refresh Token有效期;保存失败不影响登录
	sessionData := map[string]interface{}{
		"user_id":  u.ID,
		"email":    u.Email,
		"role":     u.Role,
		"login_at": time.Now().Unix(),
	}
	if err := uc.sessionStore.SaveSession(ctx, u.ID, sessionData, uc.refreshExpire); err != nil {
		log.Printf("保存会话失败: user_id=%d, err=%v", u.ID, err)
	}

	return &LoginResponse{
		User:         toUserInfo(u),
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	}, nil
}

// LogoutUseCase 用户登出用例
// 删除会话并将Access Token拉黑,防止Token在过期前继续使用
type LogoutUseCase struct {
	sessionStore *redis.SessionStore
	accessExpire time.Duration
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(sessionStore *redis.SessionStore, accessExpire time.Duration) *LogoutUseCase {
	return &LogoutUseCase{sessionStore: sessionStore, accessExpire: accessExpire}
}

// Execute 执行登出
func (uc *LogoutUseCase) Execute(ctx context.Context, userID uint, accessToken string) error {
	if err := uc.sessionStore.DeleteSession(ctx, userID); err != nil {
		return err
	}

	// 黑名单TTL=Access Token有效期,过期后自动清理
	return uc.sessionStore.AddToBlacklist(ctx, accessToken, uc.accessExpire)
}
