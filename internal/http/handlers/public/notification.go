package public

import (
	handlershared "github.com/noormarket/internal/http/handlers/shared"
	"github.com/noormarket/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListNotifications 站内通知列表
func (h *Handler) ListNotifications(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.NormalizePagination(queryInt(c, "page", 1), queryInt(c, "page_size", 20))
	notifications, total, err := h.NotificationService.ListByUser(uid, c.Query("unread") == "true", page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "load notifications failed", err)
		return
	}
	response.SuccessWithPage(c, gin.H{"notifications": notifications}, buildPagination(page, pageSize, total))
}

// CountUnreadNotifications 未读数
func (h *Handler) CountUnreadNotifications(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	count, err := h.NotificationService.CountUnread(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "count notifications failed", err)
		return
	}
	response.Success(c, gin.H{"unread": count})
}

// MarkNotificationRead 标记单条已读
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	notificationID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	if err := h.NotificationService.MarkRead(uid, notificationID); err != nil {
		respondError(c, response.CodeInternal, "mark notification failed", err)
		return
	}
	response.Success(c, gin.H{"read": true})
}

// MarkAllNotificationsRead 全部已读
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	if err := h.NotificationService.MarkAllRead(uid); err != nil {
		respondError(c, response.CodeInternal, "mark notifications failed", err)
		return
	}
	response.Success(c, gin.H{"read": true})
}
