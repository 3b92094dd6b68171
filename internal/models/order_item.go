package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderItem 订单项表（商品信息为下单时快照，不随商品编辑变化）
type OrderItem struct {
	ID         uint           `gorm:"primarykey" json:"id"`                                     // 主键
	OrderID    uint           `gorm:"index;not null" json:"order_id"`                           // 订单ID
	ProductID  uint           `gorm:"index;not null" json:"product_id"`                         // 商品ID
	VariantID  uint           `gorm:"not null;default:0" json:"variant_id"`                     // 变体ID（0 表示无变体）
	VendorID   uint           `gorm:"index;not null" json:"vendor_id"`                          // 商家ID
	Name       string         `gorm:"not null" json:"name"`                                     // 商品名称快照
	SKU        string         `gorm:"type:varchar(100)" json:"sku"`                             // 货号快照
	Image      string         `gorm:"type:varchar(500)" json:"image"`                           // 图片快照
	UnitPrice  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`  // 单价快照
	Quantity   int            `gorm:"not null" json:"quantity"`                                 // 数量
	TotalPrice Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"` // 小计
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                                  // 创建时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                                           // 软删除时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
