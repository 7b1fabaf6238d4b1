package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"gesrh/backend/internal/competency"
	"gesrh/backend/internal/service"
	"gesrh/backend/internal/wizard"
	pkgerrors "gesrh/backend/pkg/errors"
	"gesrh/backend/pkg/response"
)

// 业务错误码（按模块分段）
//
//	11xxx 认证  12xxx 员工  13xxx 岗位  14xxx 技能
//	15xxx 不可用时间  16xxx 课程  17xxx 报名审批  18xxx 导出
const (
	codePasswordMismatch   = 11001
	codeWeakPassword       = 11002
	codePasswordAlreadySet = 11003
	codeAuthUnknownEmail   = 11004
	codeSessionInvalid     = 11005

	codeEmployeeNotFound   = 12001
	codeEmployeeExists     = 12002
	codeInvalidHireDate    = 12003
	codeCompetencyNotFound = 12004
	codeCannotDeleteSelf   = 12005

	codeJobNotFound  = 13001
	codeJobCodeTaken = 13002

	codeSkillNotFound  = 14001
	codeSkillCodeTaken = 14002
	codeSkillInUse     = 14003
	codeImportInvalid  = 14004

	codeIndispoNotFound = 15001
	codeIndispoArchived = 15002
	codeIndispoICS      = 15003

	codeModuleNotFound     = 16001
	codeEvaluationNotFound = 16002
	codeNoAssignedUsers    = 16003
	codeUserNotAssigned    = 16004

	codeTargetNotFound       = 17001
	codeRegistrationNotFound = 17002
	codeAlreadyRegistered    = 17003
	codeInvalidSelection     = 17004
	codeInvalidDecision      = 17005
	codeRedundantDecision    = 17006
	codeRowBusy              = 17007
	codeLiveFeedUnavailable  = 17008
	codeAlreadyDecided       = 17009

	codeExportNoJobs = 18001
)

const msgBadParams = "Paramètres invalides"

// bindFailed 参数绑定失败：details 给出第一个未通过的字段与标签
func bindFailed(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeParamError, msgBadParams,
			strings.ToLower(fe.Field())+": "+fe.Tag())
		return
	}
	response.BadRequest(c, response.CodeParamError, msgBadParams)
}

// handleCommonError 处理各模块共有的错误；已写入响应时返回 true
func handleCommonError(c *gin.Context, err error) bool {
	var ve *wizard.ValidationError
	switch {
	case errors.As(err, &ve):
		// 有序规则中第一条未通过的提示
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeParamError, ve.Message, ve.Field)
	case errors.Is(err, competency.ErrInvalidLevel):
		response.BadRequest(c, response.CodeParamError, err.Error())
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, response.CodeConflict, err.Error())
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, response.CodeForbidden, err.Error())
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, codeEmployeeNotFound, err.Error())
	case errors.Is(err, service.ErrSkillNotFound):
		response.NotFound(c, codeSkillNotFound, err.Error())
	case errors.Is(err, service.ErrJobNotFound):
		response.NotFound(c, codeJobNotFound, err.Error())
	default:
		return false
	}
	return true
}
