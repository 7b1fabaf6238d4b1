package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gesrh/backend/config"
	"gesrh/backend/internal/api/handler"
	"gesrh/backend/internal/api/middleware"
	"gesrh/backend/internal/model"
	"gesrh/backend/pkg/jwt"
	"gesrh/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 可为 nil：此时不检查 token 黑名单，限流使用进程内存储
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── 健康检查与指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	adminOnly := middleware.RoleAuth(model.RoleAdmin)
	limitStore := middleware.NewRateLimitStore(rdb.Raw(), logger)

	api := r.Group("/api")
	api.Use(middleware.RateLimit(limitStore, cfg.RateLimit.Limit, cfg.RateLimit.Window))
	{
		// 认证（无需登录）
		api.GET("/employees/check-email", h.Auth.CheckEmail)
		api.POST("/employees/check-password", h.Auth.CheckPassword)
		api.POST("/employees/save-password", h.Auth.SavePassword)

		// 需要登录的路由
		authorized := api.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.GET("/employees/verify-session", h.Auth.VerifySession)
			authorized.POST("/employees/logout", h.Auth.Logout)

			// 员工模块
			employees := authorized.Group("/employees")
			{
				employees.GET("", h.Employee.ListEmployees)
				employees.GET("/:id", h.Employee.GetEmployee)
				employees.GET("/:id/competencies/grouped", h.Employee.GroupedCompetencies)
				employees.POST("", adminOnly, h.Employee.CreateEmployee)
				employees.PUT("/:id", adminOnly, h.Employee.UpdateEmployee)
				employees.DELETE("/:id", adminOnly, h.Employee.DeleteEmployee)
				employees.PUT("/:id/competencies/:skillId", adminOnly, h.Employee.SetCompetencyLevel)
			}

			// 岗位模块
			jobs := authorized.Group("/jobs")
			{
				jobs.GET("", h.Job.ListJobs)
				jobs.GET("/check-code", h.Job.CheckCode)
				jobs.GET("/export", adminOnly, h.Export.ExportJobs)
				jobs.GET("/:id", h.Job.GetJob)
				jobs.GET("/:id/skills/grouped", h.Job.GroupedSkills)
				jobs.POST("", adminOnly, h.Job.CreateJob)
				jobs.PUT("/:id", adminOnly, h.Job.UpdateJob)
				jobs.DELETE("/:id", adminOnly, h.Job.DeleteJob)
			}

			// 技能模块
			skills := authorized.Group("/skills")
			{
				skills.GET("", h.Skill.ListSkills)
				skills.GET("/analysis", h.Skill.Analysis)
				skills.GET("/suggest", h.Skill.Suggest)
				skills.GET("/:id", h.Skill.GetSkill)
				skills.POST("", adminOnly, h.Skill.CreateSkill)
				skills.POST("/import", adminOnly, h.Skill.ImportSkills)
				skills.PUT("/:id", adminOnly, h.Skill.UpdateSkill)
				skills.DELETE("/:id", adminOnly, h.Skill.DeleteSkill)
			}

			// 不可用时间（归属校验在 Service 层）
			indispos := authorized.Group("/indisponibilites")
			{
				indispos.GET("", h.Indisponibilite.List)
				indispos.GET("/export.ics", h.Indisponibilite.ExportICS)
				indispos.POST("/import", h.Indisponibilite.ImportICS)
				indispos.GET("/:id", h.Indisponibilite.Get)
				indispos.POST("", h.Indisponibilite.Create)
				indispos.PUT("/:id", h.Indisponibilite.Update)
				indispos.PUT("/:id/archive", h.Indisponibilite.Archive)
				indispos.DELETE("/:id", h.Indisponibilite.Delete)
			}

			// 培训模块
			courses := authorized.Group("/courses")
			{
				courses.GET("", h.Course.ListModules)
				courses.GET("/:id", h.Course.GetModule)
				courses.GET("/:id/assignedUsers", h.Course.AssignedUsers)
				courses.POST("/:id/updatePresence", adminOnly, h.Course.UpdatePresence)
			}
			authorized.GET("/evaluations/:id", h.Course.GetEvaluation)

			// 周期/项目报名与审批
			cps := authorized.Group("/cycles-programs")
			{
				cps.GET("", h.Registration.ListTargets)
				cps.GET("/pending-registrations", adminOnly, h.Registration.Pending)
				cps.GET("/pending-registrations/ws", adminOnly, h.Registration.PendingFeed)
				cps.GET("/:id", h.Registration.GetTarget)
				cps.GET("/:id/registrations", h.Registration.ListRegistrations)
				cps.POST("/:id/register", h.Registration.Register)
				cps.PUT("/registrations/:id/status", adminOnly, h.Registration.Decide)
				cps.POST("/registrations/decisions", adminOnly, h.Registration.DecideBatch)
			}
		}
	}

	return r
}
