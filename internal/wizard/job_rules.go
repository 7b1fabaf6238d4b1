package wizard

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"gesrh/backend/internal/competency"
)

// CodePattern 岗位编码：3-10 位大写字母或数字
var CodePattern = regexp.MustCompile(`^[A-Z0-9]{3,10}$`)

// SkillCodePattern 技能编码：2-20 位大写字母、数字、下划线或连字符
var SkillCodePattern = regexp.MustCompile(`^[A-Z0-9_-]{2,20}$`)

// 岗位表单校验提示
const (
	MsgJobName       = "Le nom de l'emploi est requis et doit contenir plus de 2 caractères"
	MsgJobEntite     = "L'entité est requise"
	MsgJobFormation  = "La formation est requise"
	MsgJobExperience = "L'expérience doit être un entier positif ou nul"
	MsgJobCode       = "Le code emploi doit contenir de 3 à 10 lettres majuscules ou chiffres"
	MsgJobWeight     = "Le poids de l'emploi doit être un entier strictement positif"
	MsgSkillLevels   = "Chaque compétence doit avoir un identifiant et un niveau entre 1 et 4"
)

// SkillRef 提交载荷中的技能引用：只保留 id 与等级
type SkillRef struct {
	ID    string `json:"competence_id"`
	Level int    `json:"niveau_requis"`
}

// JobForm 岗位向导两步合并后的表单
// Experience/Weight 为空串表示未填写
type JobForm struct {
	NomEmploi  string
	Entite     string
	Formation  string
	Experience NumberInput
	CodeEmploi string
	Weight     NumberInput
	Skills     []SkillRef
}

// JobRules 岗位校验规则，顺序即优先级
var JobRules = Rules[JobForm]{
	{Field: "nom_emploi", Check: func(f JobForm) string {
		if utf8.RuneCountInString(strings.TrimSpace(f.NomEmploi)) <= 2 {
			return MsgJobName
		}
		return ""
	}},
	{Field: "entite", Check: func(f JobForm) string {
		return requireText(f.Entite, MsgJobEntite)
	}},
	{Field: "formation", Check: func(f JobForm) string {
		return requireText(f.Formation, MsgJobFormation)
	}},
	{Field: "experience", Check: func(f JobForm) string {
		if n, ok := optionalInt(f.Experience); !ok || n < 0 {
			return MsgJobExperience
		}
		return ""
	}},
	{Field: "codeemploi", Check: func(f JobForm) string {
		if !CodePattern.MatchString(f.CodeEmploi) {
			return MsgJobCode
		}
		return ""
	}},
	{Field: "poidsemploi", Check: func(f JobForm) string {
		if f.Weight.Empty() {
			return ""
		}
		if n, ok := optionalInt(f.Weight); !ok || n <= 0 {
			return MsgJobWeight
		}
		return ""
	}},
	{Field: "competences", Check: func(f JobForm) string {
		for _, s := range f.Skills {
			if strings.TrimSpace(s.ID) == "" || !competency.ValidLevel(s.Level) {
				return MsgSkillLevels
			}
		}
		return ""
	}},
}

// ValidateJob 校验岗位表单
func ValidateJob(f JobForm) error {
	return JobRules.Validate(f)
}

// ── 技能 ──

const (
	MsgSkillCode      = "Le code compétence doit contenir de 2 à 20 lettres majuscules, chiffres, tirets ou underscores"
	MsgSkillLabel     = "Le libellé de la compétence est requis"
	MsgSkillCategorie = "La catégorie est requise"
)

// SkillForm 技能表单
type SkillForm struct {
	Code       string
	Competence string
	Categorie  string
}

// SkillRules 技能校验规则
var SkillRules = Rules[SkillForm]{
	{Field: "code_competence", Check: func(f SkillForm) string {
		if !SkillCodePattern.MatchString(f.Code) {
			return MsgSkillCode
		}
		return ""
	}},
	{Field: "competence", Check: func(f SkillForm) string {
		return requireText(f.Competence, MsgSkillLabel)
	}},
	{Field: "categorie", Check: func(f SkillForm) string {
		return requireText(f.Categorie, MsgSkillCategorie)
	}},
}

// ── 员工 ──

const (
	MsgEmployeeMatricule = "Le matricule est requis"
	MsgEmployeeNom       = "Le nom est requis"
	MsgEmployeePrenom    = "Le prénom est requis"
	MsgEmployeeEmail     = "L'adresse e-mail est invalide"
	MsgEmployeeRole      = "Le rôle doit être admin ou user"
)

// EmployeeForm 员工表单
type EmployeeForm struct {
	Matricule    string
	Nom          string
	Prenom       string
	Email        string
	Role         string
	Competencies []SkillRef
}

// EmployeeRules 员工校验规则
var EmployeeRules = Rules[EmployeeForm]{
	{Field: "matricule", Check: func(f EmployeeForm) string {
		return requireText(f.Matricule, MsgEmployeeMatricule)
	}},
	{Field: "nom", Check: func(f EmployeeForm) string {
		return requireText(f.Nom, MsgEmployeeNom)
	}},
	{Field: "prenom", Check: func(f EmployeeForm) string {
		return requireText(f.Prenom, MsgEmployeePrenom)
	}},
	{Field: "email", Check: func(f EmployeeForm) string {
		addr, err := mail.ParseAddress(f.Email)
		if err != nil || addr.Address != strings.TrimSpace(f.Email) {
			return MsgEmployeeEmail
		}
		return ""
	}},
	{Field: "role", Check: func(f EmployeeForm) string {
		if f.Role != "" && f.Role != "admin" && f.Role != "user" {
			return MsgEmployeeRole
		}
		return ""
	}},
	{Field: "competences", Check: func(f EmployeeForm) string {
		for _, s := range f.Competencies {
			if strings.TrimSpace(s.ID) == "" || !competency.ValidLevel(s.Level) {
				return MsgSkillLevels
			}
		}
		return ""
	}},
}

func requireText(s, msg string) string {
	if strings.TrimSpace(s) == "" {
		return msg
	}
	return ""
}

// optionalInt 解析可选整数；未填写视为 0 且合法
func optionalInt(n NumberInput) (int64, bool) {
	if n.Empty() {
		return 0, true
	}
	v, err := n.Int64()
	if err != nil {
		return 0, false
	}
	return v, true
}
