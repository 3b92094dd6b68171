package models

import (
	"time"

	"gorm.io/gorm"
)

// CartItem 购物车项
// 合并键为 (user_id, product_id, variant_id)，无变体时 variant_id 固定为 0，
// 避免唯一索引对 NULL 不去重。
type CartItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`                                                  // 主键
	UserID    uint           `gorm:"not null;uniqueIndex:idx_cart_user_product_variant" json:"user_id"`     // 用户ID
	ProductID uint           `gorm:"not null;uniqueIndex:idx_cart_user_product_variant" json:"product_id"`  // 商品ID
	VariantID uint           `gorm:"not null;default:0;uniqueIndex:idx_cart_user_product_variant" json:"variant_id"` // 变体ID（0 表示无变体）
	Quantity  int            `gorm:"not null" json:"quantity"`                                              // 数量
	UnitPrice Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`               // 加购时单价快照
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                                               // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`                                               // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                                        // 软删除时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}
