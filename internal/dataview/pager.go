package dataview

// Pager 分页状态：页码从 1 开始，越界跳转为空操作
type Pager struct {
	page  int
	size  int
	total int
}

// NewPager 创建分页器，size<=0 时使用 DefaultPageSize
func NewPager(size int) *Pager {
	if size <= 0 {
		size = DefaultPageSize
	}
	return &Pager{page: 1, size: size}
}

// Page 当前页
func (p *Pager) Page() int { return p.page }

// Size 每页条数
func (p *Pager) Size() int { return p.size }

// Total 记录总数
func (p *Pager) Total() int { return p.total }

// SetTotal 更新记录总数；当前页超出新的页数时回落到最后一页
func (p *Pager) SetTotal(n int) {
	if n < 0 {
		n = 0
	}
	p.total = n
	if count := p.PageCount(); p.page > count {
		p.page = max(count, 1)
	}
}

// PageCount = ceil(total / size)
func (p *Pager) PageCount() int {
	return (p.total + p.size - 1) / p.size
}

// GoTo 跳转到第 n 页，n<1 或 n>PageCount 时不变并返回 false
func (p *Pager) GoTo(n int) bool {
	if n < 1 || n > p.PageCount() {
		return false
	}
	p.page = n
	return true
}

// Next 下一页
func (p *Pager) Next() bool { return p.GoTo(p.page + 1) }

// Prev 上一页
func (p *Pager) Prev() bool { return p.GoTo(p.page - 1) }

// Reset 回到第 1 页（搜索词或分类变化时调用）
func (p *Pager) Reset() { p.page = 1 }

// Bounds 当前页在过滤结果中的半开区间 [start, end)
func (p *Pager) Bounds() (start, end int) {
	start = (p.page - 1) * p.size
	if start > p.total {
		start = p.total
	}
	end = min(start+p.size, p.total)
	return start, end
}
