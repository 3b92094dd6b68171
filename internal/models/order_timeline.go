package models

import "time"

// OrderTimeline 订单状态时间线（只追加，不修改不删除）
type OrderTimeline struct {
	ID        uint      `gorm:"primarykey" json:"id"`                    // 主键
	OrderID   uint      `gorm:"index;not null" json:"order_id"`          // 订单ID
	Status    string    `gorm:"not null" json:"status"`                  // 变更后状态
	Note      string    `gorm:"type:varchar(500)" json:"note,omitempty"` // 备注
	ActorID   uint      `gorm:"not null;default:0" json:"actor_id"`      // 操作者用户ID（0 表示系统）
	ActorRole string    `gorm:"type:varchar(20)" json:"actor_role"`      // 操作者角色
	CreatedAt time.Time `gorm:"index" json:"created_at"`                 // 发生时间
}

// TableName 指定表名
func (OrderTimeline) TableName() string {
	return "order_timelines"
}
