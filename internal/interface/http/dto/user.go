package dto

// RegisterRequest HTTP注册请求
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=50" example:"张三"`
	Email    string `json:"email" binding:"required,email" example:"zhangsan@example.com"`
	Password string `json:"password" binding:"required,min=8,max=20" example:"pass1234"`
}

// LoginRequest HTTP登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"zhangsan@example.com"`
	Password string `json:"password" binding:"required" example:"pass1234"`
}

// UserResponse HTTP用户响应
type UserResponse struct {
	ID      uint   `json:"id" example:"1"`
	Name    string `json:"name" example:"张三"`
	Email   string `json:"email" example:"zhangsan@example.com"`
	Role    string `json:"role" example:"USER"`
	Status  string `json:"status" example:"PENDING"`
	Enabled bool   `json:"enabled" example:"true"`
	Image   string `json:"image,omitempty" example:"https://example.com/avatar.jpg"`
}

// LoginResponse HTTP登录响应
type LoginResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in" example:"7200"` // Access Token过期时间(秒)
}

// UpdateUserRequest HTTP用户更新请求(管理员;字段均可选)
type UpdateUserRequest struct {
	Name    string `json:"name" binding:"omitempty,min=2,max=50" example:"张三"`
	Status  string `json:"status" binding:"omitempty,oneof=APPROVED REJECTED" example:"APPROVED"`
	Enabled *bool  `json:"enabled" binding:"omitempty" example:"true"`
	Role    string `json:"role" binding:"omitempty,oneof=USER ADMIN" example:"USER"`
}

// ListUsersRequest HTTP用户列表请求(管理员)
type ListUsersRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
}
