package models

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// Paginate slices items for the requested page. Out-of-range pages yield an
// empty slice; page and size fall back to 1 and defaultSize.
func Paginate[T any](items []T, page, size, defaultSize int) ([]T, *Pagination) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defaultSize
	}
	total := len(items)
	meta := &Pagination{Page: page, PageSize: size, TotalCount: total}
	start := (page - 1) * size
	if start >= total {
		return []T{}, meta
	}
	end := start + size
	if end > total {
		end = total
	}
	return items[start:end], meta
}
