package db

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Vision 是用户的愿景档案，每个用户至多一行
// HigherSelf 存储 Markdown 原文，渲染在读取侧完成
// CoreValues 为字符串数组，Goals 为 {title, description} 对象数组，均以 JSON 存储
type Vision struct {
	gorm.Model
	UserID     uint `gorm:"uniqueIndex;not null"`
	User       User `gorm:"constraint:OnDelete:CASCADE"`
	HigherSelf string
	CoreValues datatypes.JSON
	Goals      datatypes.JSON
}

// VisionGoal 是 Goals JSON 数组中的单个条目
type VisionGoal struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}
