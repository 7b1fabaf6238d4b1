package handler

import (
	"net/http"

	"gesrh/backend/internal/service"
)

// WSServer 实时推送接入（*wshub.Hub 实现）
type WSServer interface {
	ServeWS(w http.ResponseWriter, r *http.Request) error
}

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth            *AuthHandler
	Employee        *EmployeeHandler
	Job             *JobHandler
	Skill           *SkillHandler
	Indisponibilite *IndisponibiliteHandler
	Course          *CourseHandler
	Registration    *RegistrationHandler
	Export          *ExportHandler
}

// NewHandler 创建 Handler 聚合；ws 为 nil 时实时推送接口返回 503
func NewHandler(svc *service.Service, ws WSServer) *Handler {
	return &Handler{
		Auth:            NewAuthHandler(svc.Auth),
		Employee:        NewEmployeeHandler(svc.Employee),
		Job:             NewJobHandler(svc.Job),
		Skill:           NewSkillHandler(svc.Skill),
		Indisponibilite: NewIndisponibiliteHandler(svc.Indisponibilite),
		Course:          NewCourseHandler(svc.Course),
		Registration:    NewRegistrationHandler(svc.Registration, ws),
		Export:          NewExportHandler(svc.Export),
	}
}
