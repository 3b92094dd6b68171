package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/noormarket/internal/constants"
	"github.com/noormarket/internal/logger"
	"github.com/noormarket/internal/provider"
	"github.com/noormarket/internal/queue"
	"github.com/noormarket/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskNotificationDispatch, c.handleNotificationDispatch)
	mux.HandleFunc(queue.TaskCheckoutTimeoutExpire, c.handleCheckoutTimeoutExpire)
	mux.HandleFunc(queue.TaskProductLowStockAlert, c.handleProductLowStockAlert)
}

func (c *Consumer) handleNotificationDispatch(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_notification_dispatch_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.NotificationDispatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_notification_dispatch_unmarshal_failed", "error", err)
		return err
	}
	if payload.UserID == 0 {
		logger.Debugw("worker_notification_dispatch_skip_invalid_payload", "user_id", payload.UserID)
		return nil
	}
	if c.NotificationService == nil {
		logger.Warnw("worker_notification_dispatch_skip_service_nil", "user_id", payload.UserID)
		return nil
	}
	err := c.NotificationService.CreateDirect(service.NotifyInput{
		UserID:    payload.UserID,
		Type:      payload.Type,
		Title:     payload.Title,
		Message:   payload.Message,
		Data:      payload.Data,
		ActionURL: payload.ActionURL,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			logger.Debugw("worker_notification_dispatch_skip_invalid_input", "user_id", payload.UserID, "type", payload.Type)
			return nil
		}
		logger.Warnw("worker_notification_dispatch_failed", "user_id", payload.UserID, "type", payload.Type, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleCheckoutTimeoutExpire(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_checkout_expire_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CheckoutTimeoutExpirePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_checkout_expire_unmarshal_failed", "error", err)
		return err
	}
	if payload.SessionID == "" {
		logger.Debugw("worker_checkout_expire_skip_invalid_payload")
		return nil
	}
	if c.CheckoutService == nil {
		logger.Warnw("worker_checkout_expire_skip_service_nil", "session_id", payload.SessionID)
		return nil
	}
	if err := c.CheckoutService.ExpireSession(ctx, payload.SessionID); err != nil {
		switch {
		case errors.Is(err, service.ErrCheckoutNotFound):
			logger.Debugw("worker_checkout_expire_skip_not_found", "session_id", payload.SessionID)
			return nil
		case errors.Is(err, service.ErrCheckoutConflict):
			// 会话已离开可过期状态（已完成或已失败），无需处理
			logger.Debugw("worker_checkout_expire_skip_terminal", "session_id", payload.SessionID)
			return nil
		default:
			logger.Warnw("worker_checkout_expire_failed", "session_id", payload.SessionID, "error", err)
			return err
		}
	}
	return nil
}

func (c *Consumer) handleProductLowStockAlert(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_low_stock_alert_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.ProductLowStockAlertPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_low_stock_alert_unmarshal_failed", "error", err)
		return err
	}
	if payload.ProductID == 0 {
		logger.Debugw("worker_low_stock_alert_skip_invalid_payload", "product_id", payload.ProductID)
		return nil
	}
	product, err := c.ProductRepo.GetByID(payload.ProductID)
	if err != nil {
		logger.Warnw("worker_low_stock_alert_fetch_product_failed", "product_id", payload.ProductID, "error", err)
		return err
	}
	if product == nil {
		logger.Debugw("worker_low_stock_alert_skip_product_not_found", "product_id", payload.ProductID)
		return nil
	}

	watermark := 0
	if c.SettingService != nil {
		if settings, err := c.SettingService.GetStoreSettings(); err == nil {
			watermark = settings.LowStockWatermark
		}
	}
	if watermark > 0 && product.Inventory > watermark {
		logger.Debugw("worker_low_stock_alert_skip_restocked", "product_id", product.ID, "stock", product.Inventory)
		return nil
	}

	vendor, err := c.VendorRepo.GetByID(product.VendorID)
	if err != nil {
		logger.Warnw("worker_low_stock_alert_fetch_vendor_failed", "product_id", product.ID, "vendor_id", product.VendorID, "error", err)
		return err
	}
	if vendor == nil || vendor.UserID == 0 {
		logger.Debugw("worker_low_stock_alert_skip_vendor_not_found", "product_id", product.ID, "vendor_id", product.VendorID)
		return nil
	}
	if c.NotificationService == nil {
		logger.Warnw("worker_low_stock_alert_skip_notification_nil", "product_id", product.ID)
		return nil
	}
	err = c.NotificationService.CreateDirect(service.NotifyInput{
		UserID:  vendor.UserID,
		Type:    constants.NotificationTypeProductLowStock,
		Title:   "Low stock alert",
		Message: fmt.Sprintf("%q is running low (%d left)", product.Name, product.Inventory),
		Data: map[string]interface{}{
			"product_id": product.ID,
			"stock":      product.Inventory,
		},
		ActionURL: fmt.Sprintf("/vendor/products/%d", product.ID),
	})
	if err != nil {
		logger.Warnw("worker_low_stock_alert_notify_failed", "product_id", product.ID, "vendor_user_id", vendor.UserID, "error", err)
		return err
	}
	return nil
}
