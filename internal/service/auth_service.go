package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"gesrh/backend/internal/dto"
	"gesrh/backend/internal/repository"
	"gesrh/backend/pkg/jwt"
)

var (
	ErrEmployeeNotFound   = errors.New("Employé introuvable")
	ErrPasswordAlreadySet = errors.New("Un mot de passe est déjà défini pour ce compte")
	ErrPasswordMismatch   = errors.New("Les mots de passe ne correspondent pas")
	ErrWeakPassword       = errors.New("Le mot de passe doit contenir au moins 8 caractères (72 octets au plus), dont une lettre et un chiffre")
	ErrSessionInvalid     = errors.New("Session invalide ou expirée")
)

// MinPasswordLength 密码最短长度
const MinPasswordLength = 8

// MaxPasswordBytes bcrypt 只处理前 72 个字节
const MaxPasswordBytes = 72

// AuthService 认证业务接口
type AuthService interface {
	CheckEmail(ctx context.Context, email string) (*dto.CheckEmailResponse, error)
	CheckPassword(ctx context.Context, req *dto.CheckPasswordRequest) (*dto.CheckPasswordResponse, error)
	SavePassword(ctx context.Context, req *dto.SavePasswordRequest) (*dto.SavePasswordResponse, error)
	VerifySession(ctx context.Context, claims *jwt.Claims) (*dto.SessionResponse, error)
	Logout(ctx context.Context, claims *jwt.Claims) error
}

type authService struct {
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例；blacklist 可为 nil（登出仅由客户端丢弃 token）
func NewAuthService(
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

func (s *authService) CheckEmail(ctx context.Context, email string) (*dto.CheckEmailResponse, error) {
	emp, err := s.repo.Employee.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.CheckEmailResponse{}, nil
		}
		s.logger.Error("查询员工邮箱失败", zap.Error(err))
		return nil, err
	}
	return &dto.CheckEmailResponse{Exists: true, HasPassword: emp.HasPassword()}, nil
}

// CheckPassword 校验密码
// 邮箱不存在、未设置密码、密码错误统一返回 isValid=false，不区分原因
func (s *authService) CheckPassword(ctx context.Context, req *dto.CheckPasswordRequest) (*dto.CheckPasswordResponse, error) {
	// 1. 查询员工
	emp, err := s.repo.Employee.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.CheckPasswordResponse{IsValid: false}, nil
		}
		s.logger.Error("查询员工失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if !emp.HasPassword() {
		return &dto.CheckPasswordResponse{IsValid: false}, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*emp.PasswordHash), []byte(req.Password)); err != nil {
		return &dto.CheckPasswordResponse{IsValid: false}, nil
	}

	// 3. 签发会话 token
	token, err := s.jwtMgr.GenerateAccessToken(emp.ID, emp.Email, emp.Role)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	user := toEmployeeResponse(emp)
	return &dto.CheckPasswordResponse{IsValid: true, Token: token, User: &user}, nil
}

// SavePassword 首次设置密码：仅对尚未设置密码的员工开放
func (s *authService) SavePassword(ctx context.Context, req *dto.SavePasswordRequest) (*dto.SavePasswordResponse, error) {
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	if err := CheckPasswordStrength(req.Password); err != nil {
		return nil, err
	}

	emp, err := s.repo.Employee.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("查询员工失败", zap.Error(err))
		return nil, err
	}
	if emp.HasPassword() {
		return nil, ErrPasswordAlreadySet
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}
	if err := s.repo.Employee.SetPassword(ctx, emp.ID, hash); err != nil {
		s.logger.Error("保存密码失败", zap.String("employee_id", emp.ID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("员工已设置密码", zap.String("employee_id", emp.ID))
	return &dto.SavePasswordResponse{IsSaved: true}, nil
}

// VerifySession token 已由中间件校验，这里确认员工仍然存在
func (s *authService) VerifySession(ctx context.Context, claims *jwt.Claims) (*dto.SessionResponse, error) {
	emp, err := s.repo.Employee.GetByID(ctx, claims.EmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionInvalid
		}
		s.logger.Error("查询员工失败", zap.Error(err))
		return nil, err
	}
	return &dto.SessionResponse{ID: emp.ID, Email: emp.Email, Role: emp.Role}, nil
}

// Logout 将 token 的 jti 拉黑至其过期时刻
func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if s.blacklist == nil || claims.ID == "" {
		return nil
	}
	ttl := claims.TTL()
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Error("拉黑 token 失败", zap.String("jti", claims.ID), zap.Error(err))
		return err
	}
	s.logger.Info("员工已登出",
		zap.String("employee_id", claims.EmployeeID),
		zap.Duration("blacklist_ttl", ttl.Round(time.Second)),
	)
	return nil
}

// HashPassword bcrypt 哈希（命令行工具初始化管理员时复用）
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPasswordStrength 至少 8 个字符、至多 72 字节，且同时包含字母与数字
func CheckPasswordStrength(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength || len(password) > MaxPasswordBytes {
		return ErrWeakPassword
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return ErrWeakPassword
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
