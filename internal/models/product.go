package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表
type Product struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                        // 主键
	VendorID       uint           `gorm:"not null;index" json:"vendor_id"`                             // 商家ID
	CategoryID     uint           `gorm:"not null;index" json:"category_id"`                           // 分类ID
	Slug           string         `gorm:"uniqueIndex;not null" json:"slug"`                            // 唯一标识
	Name           string         `gorm:"not null" json:"name"`                                        // 商品名称
	Description    string         `gorm:"type:text" json:"description"`                                // 商品描述
	Price          Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`         // 原价
	SalePrice      *Money         `gorm:"type:decimal(20,2)" json:"sale_price,omitempty"`              // 促销价（应低于原价）
	SKU            string         `gorm:"type:varchar(100);index" json:"sku"`                          // 货号
	Inventory      int            `gorm:"not null;default:0" json:"inventory"`                         // 库存数量（不允许为负）
	TrackInventory bool           `gorm:"default:true" json:"track_inventory"`                         // 是否跟踪库存
	AllowBackorder bool           `gorm:"default:false" json:"allow_backorder"`                        // 是否允许缺货下单
	Images         StringArray    `gorm:"type:json" json:"images"`                                     // 图片数组
	Tags           StringArray    `gorm:"type:json" json:"tags"`                                       // 标签数组
	Status         string         `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"` // 商品状态（draft/active/archived）
	Featured       bool           `gorm:"default:false;index" json:"featured"`                         // 是否推荐
	Rating         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"rating"`         // 评分均值
	ReviewCount    int            `gorm:"not null;default:0" json:"review_count"`                      // 评价数量
	SalesCount     int            `gorm:"not null;default:0;index" json:"sales_count"`                 // 销量
	ViewsCount     int            `gorm:"not null;default:0" json:"views_count"`                       // 浏览量
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt      time.Time      `json:"updated_at"`                                                  // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                              // 软删除时间

	// 关联
	Vendor   *Vendor          `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`     // 商家信息
	Category *Category        `gorm:"foreignKey:CategoryID" json:"category,omitempty"` // 分类信息
	Variants []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`  // 变体列表
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// EffectivePrice 返回生效售价（有促销价时取促销价）
func (p *Product) EffectivePrice() Money {
	if p.SalePrice != nil && p.SalePrice.LessThan(p.Price.Decimal) {
		return *p.SalePrice
	}
	return p.Price
}
