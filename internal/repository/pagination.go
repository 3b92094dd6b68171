package repository

import "gorm.io/gorm"

// applyPagination 给查询追加 Limit/Offset，容错处理非法的页码。
// pageSize 非正数时视为不分页，原样返回查询。
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	return query.Limit(pageSize).Offset(pageOffset(page, pageSize))
}

func pageOffset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize
	if offset < 0 {
		return 0
	}
	return offset
}
