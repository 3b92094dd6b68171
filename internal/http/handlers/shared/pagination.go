package shared

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// NormalizePagination 修正分页参数：页码从 1 开始，页大小限制在 [1, 100]。
func NormalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize <= 0:
		pageSize = defaultPageSize
	case pageSize > maxPageSize:
		pageSize = maxPageSize
	}
	return page, pageSize
}
