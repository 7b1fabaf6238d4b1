// Package dataview 通用分页/过滤表格视图
package dataview

import "strings"

// ═══════════════════════════════════════════════════════════
//
// 设计说明：
//   - 自由文本搜索由服务端查询完成，View 只记录搜索词用于重置页码
//   - 分类过滤在搜索结果上做精确匹配，"" 与 "all" 表示不过滤
//   - 统计由各页面自行提供，可基于全集或过滤后的集合
//   - 搜索词或分类变化总会回到第 1 页

const (
	// DefaultPageSize 默认每页条数
	DefaultPageSize = 10
	// CategoryAll 不过滤分类
	CategoryAll = "all"
	// DefaultEmptyMessage 空结果提示
	DefaultEmptyMessage = "Aucun résultat"
)

// Stats 页面统计（键由页面定义）
type Stats map[string]int

// Config 页面配置
type Config[T any] struct {
	PageSize     int
	Category     func(T) string
	Stats        func(all, filtered []T) Stats
	EmptyMessage string
}

// Query 单次请求的视图参数
type Query struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	Page     int    `form:"page"`
}

// Pagination 分页元数据
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Page 视图渲染结果
type Page[T any] struct {
	Items        []T        `json:"items"`
	Pagination   Pagination `json:"pagination"`
	Controls     Controls   `json:"controls"`
	Stats        Stats      `json:"stats"`
	Search       string     `json:"search"`
	Category     string     `json:"category"`
	Empty        bool       `json:"empty"`
	EmptyMessage string     `json:"empty_message,omitempty"`
}

// View 通用表格视图
type View[T any] struct {
	cfg      Config[T]
	pager    *Pager
	search   string
	category string
	all      []T
	filtered []T
}

// New 创建视图
func New[T any](cfg Config[T]) *View[T] {
	if cfg.EmptyMessage == "" {
		cfg.EmptyMessage = DefaultEmptyMessage
	}
	return &View[T]{
		cfg:      cfg,
		pager:    NewPager(cfg.PageSize),
		category: CategoryAll,
	}
}

// Pager 暴露分页器
func (v *View[T]) Pager() *Pager { return v.pager }

// Search 当前搜索词
func (v *View[T]) Search() string { return v.search }

// Category 当前分类
func (v *View[T]) Category() string { return v.category }

// SetSearch 更新搜索词，变化时回到第 1 页
func (v *View[T]) SetSearch(term string) {
	term = strings.TrimSpace(term)
	if term == v.search {
		return
	}
	v.search = term
	v.pager.Reset()
}

// SetCategory 更新分类过滤，变化时回到第 1 页并重新过滤
func (v *View[T]) SetCategory(category string) {
	category = normalizeCategory(category)
	if category == v.category {
		return
	}
	v.category = category
	v.pager.Reset()
	v.refilter()
}

// Load 载入服务端（已按搜索词过滤）返回的数据
func (v *View[T]) Load(items []T) {
	v.all = items
	v.refilter()
}

// GoTo 跳转页码，越界为空操作
func (v *View[T]) GoTo(page int) bool { return v.pager.GoTo(page) }

// Current 渲染当前页
func (v *View[T]) Current() Page[T] {
	start, end := v.pager.Bounds()

	items := make([]T, 0, end-start)
	items = append(items, v.filtered[start:end]...)

	page := Page[T]{
		Items: items,
		Pagination: Pagination{
			Page:       v.pager.Page(),
			PageSize:   v.pager.Size(),
			Total:      v.pager.Total(),
			TotalPages: v.pager.PageCount(),
		},
		Controls: BuildControls(v.pager.Page(), v.pager.PageCount()),
		Stats:    Stats{},
		Search:   v.search,
		Category: v.category,
		Empty:    len(v.filtered) == 0,
	}
	if v.cfg.Stats != nil {
		page.Stats = v.cfg.Stats(v.all, v.filtered)
	}
	if page.Empty {
		page.EmptyMessage = v.cfg.EmptyMessage
	}
	return page
}

// Render 无状态渲染：一次请求 = 新视图 + 搜索/分类 + 数据 + 跳页
func (v *View[T]) Render(items []T, q Query) Page[T] {
	v.SetSearch(q.Search)
	v.SetCategory(q.Category)
	v.Load(items)
	if q.Page > 0 {
		v.GoTo(q.Page)
	}
	return v.Current()
}

func (v *View[T]) refilter() {
	if v.category == CategoryAll || v.cfg.Category == nil {
		v.filtered = v.all
	} else {
		filtered := make([]T, 0, len(v.all))
		for _, item := range v.all {
			if v.cfg.Category(item) == v.category {
				filtered = append(filtered, item)
			}
		}
		v.filtered = filtered
	}
	v.pager.SetTotal(len(v.filtered))
}

func normalizeCategory(c string) string {
	c = strings.TrimSpace(c)
	if c == "" || strings.EqualFold(c, CategoryAll) {
		return CategoryAll
	}
	return c
}

// Distinct 统计 key 的去重个数（空字符串不计）
func Distinct[T any](items []T, key func(T) string) int {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if k := key(item); k != "" {
			seen[k] = struct{}{}
		}
	}
	return len(seen)
}

// Sum 对 items 的数值求和
func Sum[T any](items []T, value func(T) int) int {
	total := 0
	for _, item := range items {
		total += value(item)
	}
	return total
}
