package repository

import (
	"errors"
	"time"

	"github.com/noormarket/internal/models"

	"gorm.io/gorm"
)

// CheckoutRepository 结算会话数据访问接口
type CheckoutRepository interface {
	Create(session *models.CheckoutSession) error
	GetBySessionID(sessionID string) (*models.CheckoutSession, error)
	GetBySessionIDAndUser(sessionID string, userID uint) (*models.CheckoutSession, error)
	GetByPaymentIntentID(intentID string) (*models.CheckoutSession, error)
	Update(session *models.CheckoutSession) error
	TransitionStatus(sessionID, fromStatus, toStatus string, updates map[string]interface{}) (int64, error)
	ListExpired(now time.Time, limit int) ([]models.CheckoutSession, error)
	WithTx(tx *gorm.DB) CheckoutRepository
}

// GormCheckoutRepository GORM 实现
type GormCheckoutRepository struct {
	db *gorm.DB
}

// NewCheckoutRepository 创建结算会话仓库
func NewCheckoutRepository(db *gorm.DB) *GormCheckoutRepository {
	return &GormCheckoutRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCheckoutRepository) WithTx(tx *gorm.DB) CheckoutRepository {
	if tx == nil {
		return r
	}
	return &GormCheckoutRepository{db: tx}
}

// Create 创建结算会话
func (r *GormCheckoutRepository) Create(session *models.CheckoutSession) error {
	return r.db.Create(session).Error
}

// GetBySessionID 根据会话标识获取会话
func (r *GormCheckoutRepository) GetBySessionID(sessionID string) (*models.CheckoutSession, error) {
	var session models.CheckoutSession
	if err := r.db.Where("session_id = ?", sessionID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// GetBySessionIDAndUser 根据会话标识与用户获取会话
func (r *GormCheckoutRepository) GetBySessionIDAndUser(sessionID string, userID uint) (*models.CheckoutSession, error) {
	var session models.CheckoutSession
	if err := r.db.Where("session_id = ? AND user_id = ?", sessionID, userID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// GetByPaymentIntentID 根据支付意向获取会话（Webhook 回查）
func (r *GormCheckoutRepository) GetByPaymentIntentID(intentID string) (*models.CheckoutSession, error) {
	if intentID == "" {
		return nil, nil
	}
	var session models.CheckoutSession
	if err := r.db.Where("payment_intent_id = ?", intentID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// Update 更新结算会话
func (r *GormCheckoutRepository) Update(session *models.CheckoutSession) error {
	return r.db.Save(session).Error
}

// TransitionStatus 条件推进状态机（当前状态不匹配时不更新任何行）
func (r *GormCheckoutRepository) TransitionStatus(sessionID, fromStatus, toStatus string, updates map[string]interface{}) (int64, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = toStatus
	result := r.db.Model(&models.CheckoutSession{}).
		Where("session_id = ? AND status = ?", sessionID, fromStatus).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ListExpired 列出已过期但仍停留在中间状态的会话
func (r *GormCheckoutRepository) ListExpired(now time.Time, limit int) ([]models.CheckoutSession, error) {
	if limit <= 0 {
		limit = 100
	}
	var sessions []models.CheckoutSession
	err := r.db.
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Where("status NOT IN ?", []string{"complete", "failed"}).
		Order("id asc").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}
