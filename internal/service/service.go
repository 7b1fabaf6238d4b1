package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"gesrh/backend/config"
	"gesrh/backend/internal/model"
	"gesrh/backend/internal/repository"
	"gesrh/backend/pkg/jwt"
)

// TokenBlacklist token 黑名单（*redis.Client 实现，Redis 不可用时为空操作）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// JSONCache 列表查询缓存（*redis.Client 实现）
type JSONCache interface {
	GetJSON(ctx context.Context, key string, out interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// Broadcaster 实时推送（*wshub.Hub 实现）
type Broadcaster interface {
	Broadcast(msg []byte)
}

// Caller 当前请求的员工（来自 JWT）
type Caller struct {
	ID   string
	Role string
}

// IsAdmin 是否为管理员
func (c Caller) IsAdmin() bool {
	return c.Role == model.RoleAdmin
}

// Deps 基础设施依赖
type Deps struct {
	Config    *config.Config
	Repo      *repository.Repository
	JWT       *jwt.Manager
	Blacklist TokenBlacklist
	Cache     JSONCache
	Hub       Broadcaster
	Logger    *zap.Logger
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth            AuthService
	Employee        EmployeeService
	Job             JobService
	Skill           SkillService
	Indisponibilite IndisponibiliteService
	Course          CourseService
	Registration    RegistrationService
	Export          ExportService

	feed *PendingFeed
}

// NewService 创建 Service 聚合
func NewService(d Deps) *Service {
	cache := newListCache(d.Cache, d.Config.List.CacheTTL, d.Logger)
	feed := NewPendingFeed(d.Repo, d.Hub, d.Config.List.Debounce, d.Logger)
	pageSize := d.Config.List.PageSize

	return &Service{
		Auth:            NewAuthService(d.Repo, d.JWT, d.Blacklist, d.Logger),
		Employee:        NewEmployeeService(d.Repo, cache, pageSize, d.Logger),
		Job:             NewJobService(d.Repo, cache, pageSize, d.Logger),
		Skill:           NewSkillService(d.Repo, cache, pageSize, d.Logger),
		Indisponibilite: NewIndisponibiliteService(d.Repo, d.Logger),
		Course:          NewCourseService(d.Repo, d.Logger),
		Registration:    NewRegistrationService(d.Repo, feed, d.Logger),
		Export:          NewExportService(d.Repo, d.Logger),
		feed:            feed,
	}
}

// Close 停止后台任务（实时推送去抖）
func (s *Service) Close() {
	s.feed.Stop()
}
