package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	pkgerrors "gesrh/backend/pkg/errors"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Employee        EmployeeRepository
	Job             JobRepository
	Skill           SkillRepository
	Indisponibilite IndisponibiliteRepository
	Course          CourseRepository
	CycleProgram    CycleProgramRepository
	Registration    RegistrationRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:              db,
		Employee:        NewEmployeeRepo(db),
		Job:             NewJobRepo(db),
		Skill:           NewSkillRepo(db),
		Indisponibilite: NewIndisponibiliteRepo(db),
		Course:          NewCourseRepo(db),
		CycleProgram:    NewCycleProgramRepo(db),
		Registration:    NewRegistrationRepo(db),
	}
}

// Transaction 在单个事务中执行 fn，fn 收到绑定事务连接的 Repository
// 未持有数据库连接时（单元测试中的 mock 聚合）直接以自身执行
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// translateError 将唯一约束冲突翻译为 ErrConflict，其余原样返回
func translateError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkgerrors.ErrConflict
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern 生成 ILIKE 模式，转义通配符
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(term)) + "%"
}
