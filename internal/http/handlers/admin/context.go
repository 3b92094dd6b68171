package admin

import (
	"strconv"

	handlershared "github.com/noormarket/internal/http/handlers/shared"
	"github.com/noormarket/internal/http/response"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "user_id")
}

func paramUint(c *gin.Context, key string) (uint, bool) {
	raw, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil || raw == 0 {
		respondError(c, response.CodeBadRequest, "invalid identifier", nil)
		return 0, false
	}
	return uint(raw), true
}

func queryInt(c *gin.Context, key string, fallback int) int {
	value, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return value
}

func buildPagination(page, pageSize int, total int64) response.Pagination {
	totalPage := total / int64(pageSize)
	if total%int64(pageSize) > 0 {
		totalPage++
	}
	return response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	}
}
