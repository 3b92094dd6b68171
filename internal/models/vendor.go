package models

import (
	"time"

	"gorm.io/gorm"
)

// Vendor 商家表
type Vendor struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                  // 主键
	UserID        uint           `gorm:"uniqueIndex;not null" json:"user_id"`                   // 所属用户ID
	BusinessName  string         `gorm:"not null;index" json:"business_name"`                   // 商家名称
	BusinessEmail string         `gorm:"not null" json:"business_email"`                        // 商家邮箱
	BusinessPhone string         `gorm:"type:varchar(50)" json:"business_phone"`                // 商家电话
	AddressJSON   JSON           `gorm:"type:json" json:"business_address,omitempty"`           // 商家地址
	Description   string         `gorm:"type:varchar(2000)" json:"description"`                 // 商家介绍
	Logo          string         `gorm:"type:varchar(500)" json:"logo,omitempty"`               // 商家 Logo
	Banner        string         `gorm:"type:varchar(500)" json:"banner,omitempty"`             // 商家横幅
	Status        string         `gorm:"type:varchar(20);default:'pending';index" json:"status"` // 审核状态（pending/approved/rejected/suspended）
	Rating        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"rating"`   // 评分均值
	ReviewCount   int            `gorm:"not null;default:0" json:"review_count"`                // 评价数量
	TotalSales    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_sales"` // 累计销售额
	TotalOrders   int            `gorm:"not null;default:0" json:"total_orders"`                // 累计订单数
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                               // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                               // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                        // 软删除时间

	// 关联
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"` // 所属用户
}

// TableName 指定表名
func (Vendor) TableName() string {
	return "vendors"
}
