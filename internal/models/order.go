package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID                  uint           `gorm:"primarykey" json:"id"`                                       // 主键
	OrderNo             string         `gorm:"uniqueIndex;not null" json:"order_no"`                       // 订单编号
	UserID              uint           `gorm:"index;not null" json:"user_id"`                              // 用户ID
	Status              string         `gorm:"index;not null" json:"status"`                               // 订单状态
	PaymentStatus       string         `gorm:"index;not null" json:"payment_status"`                       // 支付状态
	Currency            string         `gorm:"not null" json:"currency"`                                   // 币种
	Subtotal            Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`      // 商品小计
	ShippingAmount      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"shipping"`      // 运费
	TaxAmount           Money          `gorm:"type:decimal(20,2);not null;default:0" json:"tax"`           // 税费
	DiscountAmount      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount"`      // 优惠金额（当前恒为 0）
	TotalAmount         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total"`         // 实付金额
	ShippingMethod      string         `gorm:"type:varchar(20)" json:"shipping_method"`                    // 配送方式
	ShippingAddressJSON JSON           `gorm:"type:json" json:"shipping_address"`                          // 收货地址快照
	BillingAddressJSON  JSON           `gorm:"type:json" json:"billing_address"`                           // 账单地址快照
	PaymentIntentID     string         `gorm:"type:varchar(200);index" json:"payment_intent_id,omitempty"` // 支付意向ID
	TrackingNumber      string         `gorm:"type:varchar(100)" json:"tracking_number,omitempty"`         // 物流单号
	Notes               string         `gorm:"type:varchar(1000)" json:"notes,omitempty"`                  // 买家备注
	PaidAt              *time.Time     `gorm:"index" json:"paid_at"`                                       // 支付时间
	ShippedAt           *time.Time     `json:"shipped_at"`                                                 // 发货时间
	DeliveredAt         *time.Time     `json:"delivered_at"`                                               // 送达时间
	CancelledAt         *time.Time     `json:"cancelled_at"`                                               // 取消时间
	CreatedAt           time.Time      `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt           time.Time      `gorm:"index" json:"updated_at"`                                    // 更新时间
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`                                             // 软删除时间

	// 关联
	Items    []OrderItem     `gorm:"foreignKey:OrderID" json:"items,omitempty"`    // 订单项
	Timeline []OrderTimeline `gorm:"foreignKey:OrderID" json:"timeline,omitempty"` // 状态时间线
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
