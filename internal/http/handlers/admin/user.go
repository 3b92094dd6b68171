package admin

import (
	handlershared "github.com/noormarket/internal/http/handlers/shared"
	"github.com/noormarket/internal/http/response"
	"github.com/noormarket/internal/repository"

	"github.com/gin-gonic/gin"
)

// BatchUserStatusRequest 用户批量启停请求
type BatchUserStatusRequest struct {
	UserIDs []uint `json:"user_ids" binding:"required,min=1"`
	Status  string `json:"status" binding:"required"`
}

// ListUsers 用户列表
func (h *Handler) ListUsers(c *gin.Context) {
	page, pageSize := handlershared.NormalizePagination(queryInt(c, "page", 1), queryInt(c, "page_size", 20))
	users, total, err := h.UserAdminService.List(repository.UserListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  c.Query("keyword"),
		Role:     c.Query("role"),
		Status:   c.Query("status"),
	})
	if err != nil {
		respondAdminError(c, err)
		return
	}
	response.SuccessWithPage(c, gin.H{"users": users}, buildPagination(page, pageSize, total))
}

// GetUser 用户详情
func (h *Handler) GetUser(c *gin.Context) {
	userID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	user, err := h.UserAdminService.Get(userID)
	if err != nil {
		respondAdminError(c, err)
		return
	}
	response.Success(c, user)
}

// BatchUpdateUserStatus 批量启用/禁用用户，禁用后令牌缓存即时失效
func (h *Handler) BatchUpdateUserStatus(c *gin.Context) {
	var req BatchUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	if err := h.UserAdminService.BatchUpdateStatus(c.Request.Context(), req.UserIDs, req.Status); err != nil {
		respondAdminError(c, err)
		return
	}
	response.SuccessWithMsg(c, "user status updated", gin.H{"updated": len(req.UserIDs)})
}
