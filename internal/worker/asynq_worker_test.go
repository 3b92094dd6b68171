package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/noormarket/internal/models"
	"github.com/noormarket/internal/provider"
	"github.com/noormarket/internal/queue"
	"github.com/noormarket/internal/repository"
	"github.com/noormarket/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func setupWorkerTest(t *testing.T) (*Consumer, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Notification{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	notificationRepo := repository.NewNotificationRepository(db)
	container := &provider.Container{
		NotificationService: service.NewNotificationService(notificationRepo, nil),
	}
	return NewConsumer(container), db
}

func TestHandleNotificationDispatch(t *testing.T) {
	consumer, db := setupWorkerTest(t)

	payload, err := json.Marshal(queue.NotificationDispatchPayload{
		UserID:  7,
		Type:    "order_status",
		Title:   "Order shipped",
		Message: "your order is on the way",
	})
	if err != nil {
		t.Fatalf("marshal payload failed: %v", err)
	}
	task := asynq.NewTask(queue.TaskNotificationDispatch, payload)
	if err := consumer.handleNotificationDispatch(context.Background(), task); err != nil {
		t.Fatalf("handle dispatch failed: %v", err)
	}

	var count int64
	if err := db.Model(&models.Notification{}).Where("user_id = ?", 7).Count(&count).Error; err != nil {
		t.Fatalf("count notifications failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("notifications want 1 got %d", count)
	}
}

func TestHandleNotificationDispatchInvalidPayload(t *testing.T) {
	consumer, _ := setupWorkerTest(t)

	task := asynq.NewTask(queue.TaskNotificationDispatch, []byte("{not json"))
	if err := consumer.handleNotificationDispatch(context.Background(), task); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}

func TestHandleNotificationDispatchZeroUserSkipped(t *testing.T) {
	consumer, db := setupWorkerTest(t)

	payload, _ := json.Marshal(queue.NotificationDispatchPayload{UserID: 0, Title: "noop"})
	task := asynq.NewTask(queue.TaskNotificationDispatch, payload)
	if err := consumer.handleNotificationDispatch(context.Background(), task); err != nil {
		t.Fatalf("zero user payload should be skipped, got %v", err)
	}

	var count int64
	if err := db.Model(&models.Notification{}).Count(&count).Error; err != nil {
		t.Fatalf("count notifications failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("notifications want 0 got %d", count)
	}
}

func TestHandleCheckoutTimeoutExpireWithoutService(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})

	payload, _ := json.Marshal(queue.CheckoutTimeoutExpirePayload{SessionID: "cs_missing"})
	task := asynq.NewTask(queue.TaskCheckoutTimeoutExpire, payload)
	if err := consumer.handleCheckoutTimeoutExpire(context.Background(), task); err != nil {
		t.Fatalf("missing checkout service should skip, got %v", err)
	}
}
