package models

import (
	"time"

	"gorm.io/gorm"
)

// Review 商品评价表
type Review struct {
	ID           uint           `gorm:"primarykey" json:"id"`                                          // 主键
	ProductID    uint           `gorm:"index;not null;uniqueIndex:idx_review_product_user" json:"product_id"` // 商品ID
	UserID       uint           `gorm:"index;not null;uniqueIndex:idx_review_product_user" json:"user_id"`    // 用户ID
	OrderID      uint           `gorm:"index;not null" json:"order_id"`                                // 关联订单ID（凭单评价）
	Rating       int            `gorm:"not null" json:"rating"`                                        // 评分（1-5）
	Title        string         `gorm:"type:varchar(200)" json:"title"`                                // 标题
	Content      string         `gorm:"type:varchar(2000)" json:"content"`                             // 内容
	Images       StringArray    `gorm:"type:json" json:"images"`                                       // 晒图
	Helpful      int            `gorm:"not null;default:0" json:"helpful"`                             // 有用计数
	Verified     bool           `gorm:"default:false" json:"verified"`                                 // 是否已购验证
	Status       string         `gorm:"type:varchar(20);default:'pending';index" json:"status"`        // 审核状态
	ReplyContent string         `gorm:"type:varchar(2000)" json:"reply_content,omitempty"`             // 商家回复
	ReplyAt      *time.Time     `json:"reply_at,omitempty"`                                            // 回复时间
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                                       // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                                // 软删除时间

	// 关联
	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`       // 评价用户
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 商品
}

// TableName 指定表名
func (Review) TableName() string {
	return "reviews"
}
