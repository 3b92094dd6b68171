package public

import (
	"io"
	"time"

	"github.com/noormarket/internal/constants"
	"github.com/noormarket/internal/http/response"
	"github.com/noormarket/internal/service"

	"github.com/gin-gonic/gin"
)

// StartCheckoutRequest 发起结算请求
type StartCheckoutRequest struct {
	ShippingMethod  string                 `json:"shipping_method"`
	ShippingAddress map[string]interface{} `json:"shipping_address" binding:"required"`
	BillingAddress  map[string]interface{} `json:"billing_address"`
	Notes           string                 `json:"notes"`
}

// StartCheckout 发起结算：服务端重算金额、锁定状态机并创建支付意向
func (h *Handler) StartCheckout(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req StartCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	result, err := h.CheckoutService.Start(c.Request.Context(), service.StartCheckoutInput{
		UserID:          uid,
		ShippingMethod:  req.ShippingMethod,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		Notes:           req.Notes,
	})
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	response.Success(c, result)
}

// ConfirmCheckout 买家侧确认：向支付方查询意向结果并推进状态机
func (h *Handler) ConfirmCheckout(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	session, err := h.CheckoutService.Confirm(c.Request.Context(), uid, c.Param("session_id"))
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	response.Success(c, session)
}

// GetCheckout 查询结算会话
func (h *Handler) GetCheckout(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	session, err := h.CheckoutService.Get(uid, c.Param("session_id"))
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	response.Success(c, session)
}

// WatchCheckout 以 SSE 流推送结算状态变化。
// 连接断开或会话进入终态时结束，订阅在退出时必定注销。
func (h *Handler) WatchCheckout(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	sub, err := h.CheckoutService.Watch(uid, c.Param("session_id"))
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	defer sub.Close()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		case event, open := <-sub.Updates():
			if !open {
				return false
			}
			c.SSEvent("status", event)
			return !isTerminalCheckoutEvent(event)
		}
	})
}

func isTerminalCheckoutEvent(event service.CheckoutEvent) bool {
	return event.Status == constants.CheckoutStatusComplete || event.Status == constants.CheckoutStatusFailed
}
