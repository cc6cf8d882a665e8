package model

// Page — страница результатов списка.
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// TotalPages вычисляет ceil(total/pageSize); при pageSize <= 0 страниц нет.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// NewPage собирает страницу, вычисляя TotalPages. Страницы нумеруются с 1.
// Элементы сверх pageSize (при pageSize > 0) отбрасываются.
func NewPage[T any](items []T, total, page, pageSize int) Page[T] {
	if page < 1 {
		page = 1
	}
	if items == nil {
		items = []T{}
	}
	if pageSize > 0 && len(items) > pageSize {
		items = items[:pageSize]
	}
	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: TotalPages(total, pageSize),
	}
}

// HasNext сообщает, есть ли страница после текущей.
func (p Page[T]) HasNext() bool {
	return p.Page < p.TotalPages
}
