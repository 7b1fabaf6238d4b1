package wizard

import (
	"errors"

	"github.com/google/uuid"

	"gesrh/backend/internal/competency"
)

// TempIDPrefix 未保存子项的临时 ID 前缀
const TempIDPrefix = "tmp-"

// ErrDraftItemNotFound 临时 ID 不存在
var ErrDraftItemNotFound = errors.New("compétence introuvable dans le brouillon")

// DraftSkill 向导第二步中编辑中的技能
type DraftSkill struct {
	TempID string `json:"temp_id"`
	ID     string `json:"competence_id"`
	Label  string `json:"label"`
	Level  int    `json:"niveau"`
}

// Draft 编辑中的技能集合，提交前不触达服务端
type Draft struct {
	items []DraftSkill
}

// NewDraft 由已有技能创建草稿（编辑场景），重复 ID 只保留第一条
func NewDraft(existing []competency.Item) *Draft {
	d := &Draft{}
	for _, it := range existing {
		d.Add(Candidate{ID: it.ID, Label: it.Label}, it.Level)
	}
	return d
}

// Add 添加技能；同一技能已存在时静默忽略并返回 false
// 非法等级按 1 级处理
func (d *Draft) Add(c Candidate, level int) (DraftSkill, bool) {
	for _, it := range d.items {
		if it.ID == c.ID {
			return it, false
		}
	}
	if !competency.ValidLevel(level) {
		level = competency.MinLevel
	}
	item := DraftSkill{
		TempID: TempIDPrefix + uuid.NewString(),
		ID:     c.ID,
		Label:  c.Label,
		Level:  level,
	}
	d.items = append(d.items, item)
	return item, true
}

// Remove 从草稿中移除
func (d *Draft) Remove(tempID string) bool {
	for i, it := range d.items {
		if it.TempID == tempID {
			d.items = append(d.items[:i], d.items[i+1:]...)
			return true
		}
	}
	return false
}

// SetLevel 修改等级
func (d *Draft) SetLevel(tempID string, level int) error {
	if !competency.ValidLevel(level) {
		return competency.ErrInvalidLevel
	}
	for i := range d.items {
		if d.items[i].TempID == tempID {
			d.items[i].Level = level
			return nil
		}
	}
	return ErrDraftItemNotFound
}

// Contains 是否已包含该技能
func (d *Draft) Contains(id string) bool {
	for _, it := range d.items {
		if it.ID == id {
			return true
		}
	}
	return false
}

// Items 草稿中的技能（副本）
func (d *Draft) Items() []DraftSkill {
	return append([]DraftSkill(nil), d.items...)
}

// Len 条目数
func (d *Draft) Len() int { return len(d.items) }

// Payload 提交载荷：只保留 id 与等级
func (d *Draft) Payload() []SkillRef {
	out := make([]SkillRef, len(d.items))
	for i, it := range d.items {
		out[i] = SkillRef{ID: it.ID, Level: it.Level}
	}
	return out
}

// Dedupe 去掉重复 ID（首条生效），保持原顺序与原等级
func Dedupe(refs []SkillRef) []SkillRef {
	seen := make(map[string]struct{}, len(refs))
	out := make([]SkillRef, 0, len(refs))
	for _, r := range refs {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}
