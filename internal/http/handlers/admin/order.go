package admin

import (
	"github.com/noormarket/internal/constants"
	handlershared "github.com/noormarket/internal/http/handlers/shared"
	"github.com/noormarket/internal/http/response"
	"github.com/noormarket/internal/service"

	"github.com/gin-gonic/gin"
)

// TransitionOrderRequest 订单状态推进请求
type TransitionOrderRequest struct {
	Status         string `json:"status" binding:"required"`
	Note           string `json:"note"`
	TrackingNumber string `json:"tracking_number"`
}

// ListOrders 全站订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	page, pageSize := handlershared.NormalizePagination(queryInt(c, "page", 1), queryInt(c, "page_size", 20))
	orders, total, err := h.OrderService.ListAdmin(uint(queryInt(c, "user_id", 0)), service.OrderListInput{
		Page:          page,
		PageSize:      pageSize,
		Status:        c.Query("status"),
		PaymentStatus: c.Query("payment_status"),
		OrderNo:       c.Query("order_no"),
	})
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.SuccessWithPage(c, gin.H{"orders": orders}, buildPagination(page, pageSize, total))
}

// GetOrder 订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	orderID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.GetByID(orderID)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, order)
}

// GetOrderTimeline 订单状态时间线
func (h *Handler) GetOrderTimeline(c *gin.Context) {
	orderID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	if _, err := h.OrderService.GetByID(orderID); err != nil {
		respondOrderError(c, err)
		return
	}
	timeline, err := h.OrderService.ListTimeline(orderID)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, gin.H{"timeline": timeline})
}

// TransitionOrder 管理员推进订单状态（含取消/退款）
func (h *Handler) TransitionOrder(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	orderID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	var req TransitionOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	order, err := h.OrderService.Transition(service.TransitionOrderInput{
		OrderID:        orderID,
		ToStatus:       req.Status,
		ActorID:        adminID,
		ActorRole:      constants.RoleAdmin,
		Note:           req.Note,
		TrackingNumber: req.TrackingNumber,
	})
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, order)
}
