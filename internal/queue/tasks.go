package queue

import (
	"encoding/json"

	"github.com/noormarket/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskNotificationDispatch 站内通知派发任务
	TaskNotificationDispatch = constants.TaskNotificationDispatch
	// TaskCheckoutTimeoutExpire 结算会话超时清理任务
	TaskCheckoutTimeoutExpire = constants.TaskCheckoutTimeoutExpire
	// TaskProductLowStockAlert 低库存提醒任务
	TaskProductLowStockAlert = constants.TaskProductLowStockAlert
)

// NotificationDispatchPayload 通知派发任务载荷
type NotificationDispatchPayload struct {
	UserID    uint                   `json:"user_id"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	ActionURL string                 `json:"action_url,omitempty"`
}

// CheckoutTimeoutExpirePayload 结算超时任务载荷
type CheckoutTimeoutExpirePayload struct {
	SessionID string `json:"session_id"`
}

// ProductLowStockAlertPayload 低库存提醒任务载荷
type ProductLowStockAlertPayload struct {
	ProductID uint `json:"product_id"`
}

// NewNotificationDispatchTask 创建通知派发任务
func NewNotificationDispatchTask(payload NotificationDispatchPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationDispatch, body), nil
}

// NewCheckoutTimeoutExpireTask 创建结算超时清理任务
func NewCheckoutTimeoutExpireTask(payload CheckoutTimeoutExpirePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCheckoutTimeoutExpire, body), nil
}

// NewProductLowStockAlertTask 创建低库存提醒任务
func NewProductLowStockAlertTask(payload ProductLowStockAlertPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskProductLowStockAlert, body), nil
}
