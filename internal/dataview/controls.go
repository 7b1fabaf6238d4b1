package dataview

// ControlKind 分页控件元素类型
type ControlKind string

const (
	KindPage     ControlKind = "page"
	KindEllipsis ControlKind = "ellipsis"
)

// Control 分页控件中的单个元素
type Control struct {
	Kind    ControlKind `json:"kind"`
	Page    int         `json:"page,omitempty"`
	Current bool        `json:"current,omitempty"`
}

// Controls 分页控件渲染模型
type Controls struct {
	PrevEnabled bool      `json:"prev_enabled"`
	NextEnabled bool      `json:"next_enabled"`
	Items       []Control `json:"items"`
}

// BuildControls 生成分页控件：首页、末页、当前页前后各一页的窗口，
// 窗口与首/末页不相邻时插入省略号
func BuildControls(current, count int) Controls {
	ctl := Controls{
		PrevEnabled: current > 1,
		NextEnabled: current < count,
		Items:       []Control{},
	}
	if count <= 0 {
		return ctl
	}

	pages := make([]int, 0, 5)
	add := func(p int) {
		if p < 1 || p > count {
			return
		}
		if n := len(pages); n > 0 && pages[n-1] >= p {
			return
		}
		pages = append(pages, p)
	}

	add(1)
	for p := current - 1; p <= current+1; p++ {
		add(p)
	}
	add(count)

	prev := 0
	for _, p := range pages {
		if prev != 0 && p-prev > 1 {
			ctl.Items = append(ctl.Items, Control{Kind: KindEllipsis})
		}
		ctl.Items = append(ctl.Items, Control{Kind: KindPage, Page: p, Current: p == current})
		prev = p
	}
	return ctl
}
