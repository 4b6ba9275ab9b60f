package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPage(t *testing.T) {
	p := NewPage(2, 20, 45)

	assert.Equal(t, 3, p.TotalPages())
	assert.Equal(t, 20, p.Offset())
	assert.True(t, p.HasPrev())
	assert.True(t, p.HasNext())

	last := NewPage(3, 20, 45)
	assert.False(t, last.HasNext())

	assert.Equal(t, 0, NewPage(1, 20, 0).TotalPages())
	assert.Equal(t, 1, NewPage(0, 20, 5).Current)
}

func TestPage_View(t *testing.T) {
	v := NewPage(1, 10, 25).View()
	assert.Equal(t, PageView{Current: 1, Size: 10, Total: 25, TotalPages: 3, HasPrev: false, HasNext: true}, v)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, Paginate(items, 1, 10))
	assert.Equal(t, []int{11, 12}, Paginate(items, 2, 10))
	assert.Empty(t, Paginate(items, 3, 10))
	assert.Equal(t, items, Paginate(items, 1, 0))
}
