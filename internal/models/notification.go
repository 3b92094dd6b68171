package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification 通知表
type Notification struct {
	ID        uint           `gorm:"primarykey" json:"id"`                          // 主键
	UserID    uint           `gorm:"index;not null" json:"user_id"`                 // 接收用户ID
	Type      string         `gorm:"type:varchar(50);index" json:"type"`            // 通知类型
	Title     string         `gorm:"not null" json:"title"`                         // 标题
	Message   string         `gorm:"type:varchar(1000)" json:"message"`             // 内容
	DataJSON  JSON           `gorm:"type:json" json:"data,omitempty"`               // 附加数据
	ActionURL string         `gorm:"type:varchar(500)" json:"action_url,omitempty"` // 跳转链接
	Read      bool           `gorm:"default:false;index" json:"read"`               // 是否已读
	ReadAt    *time.Time     `json:"read_at,omitempty"`                             // 已读时间
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                       // 创建时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                // 软删除时间
}

// TableName 指定表名
func (Notification) TableName() string {
	return "notifications"
}
