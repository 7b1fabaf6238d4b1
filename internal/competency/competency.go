// Package competency 定义"带等级的技能"共享类型，并按等级分组展示
package competency

import (
	"errors"
	"sort"
	"strconv"
)

// 合法等级 1..4
const (
	MinLevel = 1
	MaxLevel = 4
)

// ErrInvalidLevel 等级不在 1..4 之间
var ErrInvalidLevel = errors.New("le niveau doit être compris entre 1 et 4")

// Item 技能 + 等级（岗位要求与员工掌握共用）
type Item struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Level int    `json:"level"`
}

// ValidLevel 等级是否合法
func ValidLevel(level int) bool {
	return level >= MinLevel && level <= MaxLevel
}

// Style 等级对应的展示样式
type Style struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

var styles = map[int]Style{
	1: {Name: "Débutant", Color: "blue"},
	2: {Name: "Intermédiaire", Color: "green"},
	3: {Name: "Avancé", Color: "orange"},
	4: {Name: "Expert", Color: "red"},
}

// StyleFor 未定义的等级回落到 1 级样式
func StyleFor(level int) Style {
	if s, ok := styles[level]; ok {
		return s
	}
	return styles[MinLevel]
}

// Group 同一等级的技能分组
type Group struct {
	Level int    `json:"level"`
	Label string `json:"label"` // 始终是真实等级数字
	Style Style  `json:"style"`
	Open  bool   `json:"open"`
	Items []Item `json:"items"`
}

// Groups 分组列表
type Groups []Group

// GroupByLevel 按等级分组：组按等级升序，组内保持输入顺序，默认全部展开
func GroupByLevel(items []Item) Groups {
	index := make(map[int]int)
	groups := make(Groups, 0, MaxLevel)

	for _, it := range items {
		i, ok := index[it.Level]
		if !ok {
			i = len(groups)
			index[it.Level] = i
			groups = append(groups, Group{
				Level: it.Level,
				Label: "Niveau " + strconv.Itoa(it.Level),
				Style: StyleFor(it.Level),
				Open:  true,
			})
		}
		groups[i].Items = append(groups[i].Items, it)
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Level < groups[b].Level
	})
	return groups
}

// Toggle 切换指定等级分组的展开状态，不影响其他分组；分组不存在时返回 false
func (g Groups) Toggle(level int) bool {
	for i := range g {
		if g[i].Level == level {
			g[i].Open = !g[i].Open
			return true
		}
	}
	return false
}

// Flatten 按分组顺序展开所有条目
func (g Groups) Flatten() []Item {
	var out []Item
	for _, grp := range g {
		out = append(out, grp.Items...)
	}
	return out
}
