package view

// Page describes server-side pagination
type Page struct {
	Current int `json:"current"`
	Size    int `json:"size"`
	Total   int `json:"total"`
}

// NewPage clamps current to at least 1
func NewPage(current, size, total int) Page {
	if current < 1 {
		current = 1
	}
	return Page{Current: current, Size: size, Total: total}
}

// TotalPages is ceil(total / size)
func (p Page) TotalPages() int {
	if p.Size <= 0 || p.Total <= 0 {
		return 0
	}
	return (p.Total + p.Size - 1) / p.Size
}

// Offset is the skip value of the current page
func (p Page) Offset() int {
	if p.Current < 1 || p.Size <= 0 {
		return 0
	}
	return (p.Current - 1) * p.Size
}

// HasPrev reports whether a previous page exists
func (p Page) HasPrev() bool {
	return p.Current > 1
}

// HasNext reports whether a next page exists
func (p Page) HasNext() bool {
	return p.Current < p.TotalPages()
}

// PageView is the JSON form of a page, with derived fields included
type PageView struct {
	Current    int  `json:"current"`
	Size       int  `json:"size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}

// View returns the serializable form
func (p Page) View() PageView {
	return PageView{
		Current:    p.Current,
		Size:       p.Size,
		Total:      p.Total,
		TotalPages: p.TotalPages(),
		HasPrev:    p.HasPrev(),
		HasNext:    p.HasNext(),
	}
}

// Paginate slices items for a client-side page without copying the backing data.
// Out-of-range pages return an empty slice.
func Paginate[T any](items []T, page, size int) []T {
	if size <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end:end]
}
