package dto

// ── 认证模块 DTO ──

// CheckEmailRequest 检查邮箱是否存在
type CheckEmailRequest struct {
	Email string `form:"email" binding:"required,email"`
}

// CheckEmailResponse 邮箱检查结果
type CheckEmailResponse struct {
	Exists      bool `json:"exists"`
	HasPassword bool `json:"hasPassword"`
}

// CheckPasswordRequest 校验密码（登录）
type CheckPasswordRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CheckPasswordResponse 登录结果；密码正确时附带会话 token
type CheckPasswordResponse struct {
	IsValid bool              `json:"isValid"`
	Token   string            `json:"token,omitempty"`
	User    *EmployeeResponse `json:"user,omitempty"`
}

// SavePasswordRequest 首次设置密码
type SavePasswordRequest struct {
	Email           string `json:"email"           binding:"required,email"`
	Password        string `json:"password"        binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// SavePasswordResponse 设置密码结果
type SavePasswordResponse struct {
	IsSaved bool `json:"isSaved"`
}

// SessionResponse 会话校验结果
type SessionResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
