package models

import (
	"time"

	"gorm.io/gorm"
)

// CheckoutSession 结算会话表，记录一次下单尝试的状态机进度
type CheckoutSession struct {
	ID                  uint           `gorm:"primarykey" json:"id"`                                       // 主键
	SessionID           string         `gorm:"uniqueIndex;not null" json:"session_id"`                     // 会话标识（UUID）
	UserID              uint           `gorm:"index;not null" json:"user_id"`                              // 用户ID
	Status              string         `gorm:"index;not null;default:'idle'" json:"status"`                // 状态机当前状态
	FailReason          string         `gorm:"type:varchar(500)" json:"fail_reason,omitempty"`             // 失败原因
	Currency            string         `gorm:"not null" json:"currency"`                                   // 币种
	Subtotal            Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`      // 商品小计（服务端重算）
	ShippingAmount      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"shipping"`      // 运费
	TaxAmount           Money          `gorm:"type:decimal(20,2);not null;default:0" json:"tax"`           // 税费
	TotalAmount         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total"`         // 应付金额
	ShippingMethod      string         `gorm:"type:varchar(20)" json:"shipping_method"`                    // 配送方式
	ShippingAddressJSON JSON           `gorm:"type:json" json:"shipping_address"`                          // 收货地址
	BillingAddressJSON  JSON           `gorm:"type:json" json:"billing_address"`                           // 账单地址
	PaymentIntentID     string         `gorm:"type:varchar(200);index" json:"payment_intent_id,omitempty"` // 支付意向ID
	OrderID             *uint          `gorm:"index" json:"order_id,omitempty"`                            // 成单后的订单ID
	ExpiresAt           *time.Time     `gorm:"index" json:"expires_at"`                                    // 过期时间
	CreatedAt           time.Time      `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt           time.Time      `gorm:"index" json:"updated_at"`                                    // 更新时间
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`                                             // 软删除时间
}

// TableName 指定表名
func (CheckoutSession) TableName() string {
	return "checkout_sessions"
}
