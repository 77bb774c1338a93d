package service

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// PageResponse 定义了分页列表 API 的响应结构。
type PageResponse[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Size          int   `json:"size"`
	Number        int   `json:"number"`
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

func newPageResponse[T any](content []T, total int64, page, size int) *PageResponse[T] {
	if content == nil {
		content = make([]T, 0) // 返回空数组而不是 null
	}
	totalPages := 0
	if total > 0 && size > 0 {
		totalPages = (int(total) + size - 1) / size
	}
	return &PageResponse[T]{
		Content:       content,
		TotalElements: total,
		TotalPages:    totalPages,
		Size:          size,
		Number:        page,
	}
}
