package dataview

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	Name   string
	Entite string
	Skills int
}

func rows(n int, entite string) []row {
	out := make([]row, n)
	for i := range out {
		out[i] = row{Name: fmt.Sprintf("%s-%d", entite, i), Entite: entite, Skills: 2}
	}
	return out
}

func newRowView() *View[row] {
	return New(Config[row]{
		PageSize: 10,
		Category: func(r row) string { return r.Entite },
		Stats: func(all, filtered []row) Stats {
			return Stats{
				"total":   len(filtered),
				"entites": Distinct(all, func(r row) string { return r.Entite }),
				"skills":  Sum(filtered, func(r row) int { return r.Skills }),
			}
		},
	})
}

func TestView_PaginatesFilteredResult(t *testing.T) {
	v := newRowView()
	data := append(rows(15, "IT"), rows(8, "RH")...)
	v.Load(data)

	page := v.Current()
	assert.Len(t, page.Items, 10)
	assert.Equal(t, 23, page.Pagination.Total)
	assert.Equal(t, 3, page.Pagination.TotalPages)

	v.SetCategory("RH")
	page = v.Current()
	assert.Equal(t, 8, page.Pagination.Total)
	assert.Equal(t, 1, page.Pagination.TotalPages)
	for _, it := range page.Items {
		assert.Equal(t, "RH", it.Entite)
	}
	assert.Equal(t, 8, page.Stats["total"])
	assert.Equal(t, 2, page.Stats["entites"])
	assert.Equal(t, 16, page.Stats["skills"])
}

func TestView_SearchOrCategoryChangeResetsPage(t *testing.T) {
	v := newRowView()
	v.Load(rows(40, "IT"))
	require.True(t, v.GoTo(3))

	v.SetSearch("dev")
	assert.Equal(t, 1, v.Pager().Page())

	require.True(t, v.GoTo(2))
	v.SetCategory("IT")
	assert.Equal(t, 1, v.Pager().Page())

	// 同一个值不算变化
	require.True(t, v.GoTo(2))
	v.SetCategory("IT")
	v.SetSearch("dev")
	assert.Equal(t, 2, v.Pager().Page())
}

func TestView_AllCategoryMeansNoFilter(t *testing.T) {
	v := newRowView()
	v.Load(append(rows(3, "IT"), rows(2, "RH")...))

	v.SetCategory("RH")
	v.SetCategory("ALL")
	assert.Equal(t, CategoryAll, v.Category())
	assert.Equal(t, 5, v.Current().Pagination.Total)
}

func TestView_EmptyState(t *testing.T) {
	v := New(Config[row]{EmptyMessage: "Aucun emploi"})
	page := v.Render(nil, Query{Page: 3})

	assert.True(t, page.Empty)
	assert.Equal(t, "Aucun emploi", page.EmptyMessage)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Pagination.Page)
	assert.Equal(t, 0, page.Pagination.TotalPages)
}

func TestView_RenderOutOfRangePageStaysOnFirst(t *testing.T) {
	v := newRowView()
	page := v.Render(rows(12, "IT"), Query{Page: 9})
	assert.Equal(t, 1, page.Pagination.Page)

	v2 := newRowView()
	page = v2.Render(rows(12, "IT"), Query{Page: 2})
	assert.Equal(t, 2, page.Pagination.Page)
	assert.Len(t, page.Items, 2)
}
