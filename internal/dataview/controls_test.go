package dataview

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// render 把控件压缩成 "1 … 4 [5] 6 … 10" 形式便于断言
func render(c Controls) string {
	parts := make([]string, 0, len(c.Items))
	for _, it := range c.Items {
		switch {
		case it.Kind == KindEllipsis:
			parts = append(parts, "…")
		case it.Current:
			parts = append(parts, "["+strconv.Itoa(it.Page)+"]")
		default:
			parts = append(parts, strconv.Itoa(it.Page))
		}
	}
	return strings.Join(parts, " ")
}

func TestBuildControls(t *testing.T) {
	cases := []struct {
		current, count int
		want           string
	}{
		{1, 1, "[1]"},
		{1, 2, "[1] 2"},
		{1, 10, "[1] 2 … 10"},
		{3, 10, "1 2 [3] 4 … 10"},
		{5, 10, "1 … 4 [5] 6 … 10"},
		{9, 10, "1 … 8 [9] 10"},
		{10, 10, "1 … 9 [10]"},
		{2, 3, "1 [2] 3"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, render(BuildControls(c.current, c.count)), "current=%d count=%d", c.current, c.count)
	}
}

func TestBuildControls_PrevNext(t *testing.T) {
	first := BuildControls(1, 5)
	assert.False(t, first.PrevEnabled)
	assert.True(t, first.NextEnabled)

	last := BuildControls(5, 5)
	assert.True(t, last.PrevEnabled)
	assert.False(t, last.NextEnabled)

	none := BuildControls(1, 0)
	assert.False(t, none.PrevEnabled)
	assert.False(t, none.NextEnabled)
	assert.Empty(t, none.Items)
}
