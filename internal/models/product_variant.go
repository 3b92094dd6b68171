package models

import (
	"time"

	"gorm.io/gorm"
)

// ProductVariant 商品变体表（颜色、尺码等）
type ProductVariant struct {
	ID          uint           `gorm:"primarykey" json:"id"`                           // 主键
	ProductID   uint           `gorm:"not null;index" json:"product_id"`               // 商品ID
	Title       string         `gorm:"not null" json:"title"`                          // 变体名称
	SKU         string         `gorm:"type:varchar(100)" json:"sku"`                   // 变体货号
	Price       *Money         `gorm:"type:decimal(20,2)" json:"price,omitempty"`      // 变体单价（为空时沿用商品价）
	Inventory   int            `gorm:"not null;default:0" json:"inventory"`            // 变体库存
	OptionsJSON JSON           `gorm:"type:json" json:"options"`                       // 选项键值（如 color=red）
	Image       string         `gorm:"type:varchar(500)" json:"image,omitempty"`       // 变体图片
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`            // 是否启用
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                        // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                     // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                 // 软删除时间
}

// TableName 指定表名
func (ProductVariant) TableName() string {
	return "product_variants"
}
