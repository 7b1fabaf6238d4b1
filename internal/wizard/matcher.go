package wizard

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Candidate 可添加的技能候选
type Candidate struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Matcher 输入联想：大小写与重音不敏感的子串匹配
type Matcher struct {
	candidates []Candidate
	folded     []string
}

// NewMatcher 预先折叠候选名称
func NewMatcher(candidates []Candidate) *Matcher {
	m := &Matcher{
		candidates: candidates,
		folded:     make([]string, len(candidates)),
	}
	for i, c := range candidates {
		m.folded[i] = Fold(c.Label)
	}
	return m
}

// Filter 返回名称包含 text 的候选；text 为空时返回全部
func (m *Matcher) Filter(text string) []Candidate {
	needle := Fold(text)
	out := make([]Candidate, 0)
	for i, c := range m.candidates {
		if needle == "" || strings.Contains(m.folded[i], needle) {
			out = append(out, c)
		}
	}
	return out
}

// Unique 返回唯一明确的匹配：仅有一个候选匹配，或多个候选中恰有一个名称完全相同
func (m *Matcher) Unique(text string) (Candidate, bool) {
	needle := Fold(text)
	if needle == "" {
		return Candidate{}, false
	}

	matches := m.Filter(text)
	if len(matches) == 1 {
		return matches[0], true
	}

	var exact []Candidate
	for _, c := range matches {
		if Fold(c.Label) == needle {
			exact = append(exact, c)
		}
	}
	if len(exact) == 1 {
		return exact[0], true
	}
	return Candidate{}, false
}

// CanAdd "添加"按钮是否可用：输入非空且至少有一个候选匹配
func (m *Matcher) CanAdd(text string) bool {
	if Fold(text) == "" {
		return false
	}
	return len(m.Filter(text)) > 0
}

// Fold 去除重音并做大小写折叠
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC, cases.Fold())
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return out
}
