package models

// Setting 店铺动态配置，按键值对落库，value 为任意 JSON 文档。
type Setting struct {
	Key       string `gorm:"primarykey" json:"key"`
	ValueJSON JSON   `gorm:"type:json" json:"value"` // 配置内容
}

// TableName 指定表名
func (Setting) TableName() string {
	return "settings"
}
