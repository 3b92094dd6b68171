package service

import (
	"time"

	"github.com/noormarket/internal/logger"
	"github.com/noormarket/internal/models"
	"github.com/noormarket/internal/queue"
	"github.com/noormarket/internal/repository"
)

// NotifyInput 站内通知输入
type NotifyInput struct {
	UserID    uint
	Type      string
	Title     string
	Message   string
	Data      map[string]interface{}
	ActionURL string
}

// NotificationService 站内通知服务
type NotificationService struct {
	repo        repository.NotificationRepository
	queueClient *queue.Client
}

// NewNotificationService 创建通知服务
func NewNotificationService(repo repository.NotificationRepository, queueClient *queue.Client) *NotificationService {
	return &NotificationService{repo: repo, queueClient: queueClient}
}

// Notify 派发通知。队列可用时异步入队，否则直接落库。
// 通知失败不阻断主流程，仅记录日志。
func (s *NotificationService) Notify(input NotifyInput) {
	if s == nil || input.UserID == 0 {
		return
	}
	if s.queueClient.Enabled() {
		err := s.queueClient.EnqueueNotificationDispatch(queue.NotificationDispatchPayload{
			UserID:    input.UserID,
			Type:      input.Type,
			Title:     input.Title,
			Message:   input.Message,
			Data:      input.Data,
			ActionURL: input.ActionURL,
		})
		if err == nil {
			return
		}
		logger.Warnw("notification_enqueue_failed",
			"user_id", input.UserID,
			"type", input.Type,
			"error", err.Error(),
		)
	}
	if err := s.CreateDirect(input); err != nil {
		logger.Warnw("notification_create_failed",
			"user_id", input.UserID,
			"type", input.Type,
			"error", err.Error(),
		)
	}
}

// CreateDirect 直接写入通知（队列 worker 与降级路径共用）
func (s *NotificationService) CreateDirect(input NotifyInput) error {
	if input.UserID == 0 {
		return ErrInvalidInput
	}
	notification := &models.Notification{
		UserID:    input.UserID,
		Type:      input.Type,
		Title:     input.Title,
		Message:   input.Message,
		DataJSON:  models.JSON(input.Data),
		ActionURL: input.ActionURL,
		CreatedAt: time.Now(),
	}
	return s.repo.Create(notification)
}

// ListByUser 用户通知列表
func (s *NotificationService) ListByUser(userID uint, unreadOnly bool, page, pageSize int) ([]models.Notification, int64, error) {
	if userID == 0 {
		return nil, 0, ErrInvalidInput
	}
	return s.repo.List(repository.NotificationListFilter{
		UserID:     userID,
		UnreadOnly: unreadOnly,
		Page:       page,
		PageSize:   pageSize,
	})
}

// CountUnread 未读数量
func (s *NotificationService) CountUnread(userID uint) (int64, error) {
	if userID == 0 {
		return 0, ErrInvalidInput
	}
	return s.repo.CountUnread(userID)
}

// MarkRead 标记已读
func (s *NotificationService) MarkRead(userID, notificationID uint) error {
	if userID == 0 || notificationID == 0 {
		return ErrInvalidInput
	}
	notification, err := s.repo.GetByIDAndUser(notificationID, userID)
	if err != nil {
		return err
	}
	if notification == nil {
		return ErrNotFound
	}
	return s.repo.MarkRead(notificationID, userID)
}

// MarkAllRead 全部标记已读
func (s *NotificationService) MarkAllRead(userID uint) error {
	if userID == 0 {
		return ErrInvalidInput
	}
	return s.repo.MarkAllRead(userID)
}
