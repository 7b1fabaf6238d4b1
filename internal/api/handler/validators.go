package handler

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"gesrh/backend/internal/competency"
	"gesrh/backend/internal/wizard"
)

// RegisterValidators 向 gin 的校验引擎注册自定义 binding 标签
//
//	competency_level  技能等级 1..4
//	job_code          岗位编码 ^[A-Z0-9]{3,10}$
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("binding 引擎不是 validator/v10")
	}

	if err := v.RegisterValidation("competency_level", func(fl validator.FieldLevel) bool {
		return competency.ValidLevel(int(fl.Field().Int()))
	}); err != nil {
		return fmt.Errorf("注册 competency_level 失败: %w", err)
	}

	if err := v.RegisterValidation("job_code", func(fl validator.FieldLevel) bool {
		return wizard.CodePattern.MatchString(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("注册 job_code 失败: %w", err)
	}
	return nil
}
