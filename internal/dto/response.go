package dto

import "gesrh/backend/internal/dataview"

// ── 列表视图 ──

// ListRequest 列表页查询参数（搜索 + 分类 + 页码）
type ListRequest struct {
	Search   string `form:"search"   binding:"omitempty,max=100"`
	Category string `form:"category" binding:"omitempty,max=100"`
	Page     int    `form:"page"     binding:"omitempty,min=1"`
}

// Query 转为视图参数
func (r *ListRequest) Query() dataview.Query {
	return dataview.Query{Search: r.Search, Category: r.Category, Page: r.Page}
}

// ── 导入 ──

// ImportResponse 批量导入结果
type ImportResponse struct {
	Total   int           `json:"total"`
	Created int           `json:"created"`
	Updated int           `json:"updated"`
	Failed  int           `json:"failed"`
	Errors  []ImportError `json:"errors,omitempty"`
}

// ImportError 导入错误详情
type ImportError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}
