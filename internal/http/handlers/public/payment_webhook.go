package public

import (
	"io"
	"time"

	handlershared "github.com/noormarket/internal/http/handlers/shared"
	"github.com/noormarket/internal/http/response"
	"github.com/noormarket/internal/payment/stripe"

	"github.com/gin-gonic/gin"
)

// StripeWebhook Stripe 支付回调入口。
// 校验签名后按意向结果推进结算状态机；与买家轮询确认互为竞争路径，
// 状态机保证只有一个赢家落单。
func (h *Handler) StripeWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, response.CodeBadRequest, "read webhook body failed", err)
		return
	}

	headers := map[string]string{
		"Stripe-Signature": c.GetHeader("Stripe-Signature"),
	}
	result, err := stripe.VerifyAndParseWebhook(h.StripeProvider.Config(), headers, body, time.Now())
	if err != nil {
		handlershared.RequestLog(c).Warnw("stripe_webhook_verify_failed", "error", err)
		respondError(c, response.CodeBadRequest, "webhook verification failed", nil)
		return
	}

	if result.PaymentIntentID == "" {
		handlershared.RequestLog(c).Debugw("stripe_webhook_skip_no_intent", "event_type", result.EventType)
		response.Success(c, gin.H{"received": true})
		return
	}

	failReason := ""
	if result.Status == "failed" {
		failReason = "payment declined by provider"
	}
	if err := h.CheckoutService.ConfirmByIntent(c.Request.Context(), result.PaymentIntentID, result.Status, failReason); err != nil {
		handlershared.RequestLog(c).Errorw("stripe_webhook_confirm_failed",
			"payment_intent_id", result.PaymentIntentID,
			"event_type", result.EventType,
			"error", err,
		)
		respondError(c, response.CodeInternal, "webhook processing failed", nil)
		return
	}
	response.Success(c, gin.H{"received": true})
}
