package db

import (
	"time"

	"gorm.io/gorm"
)

// 自定义打卡系统的两种记录类型
const (
	TrackerBinary  = "BINARY"
	TrackerNumeric = "NUMERIC"
)

// 四个内置（处方式）系统的固定键，不落库为 System 行
const (
	KeyWorkout = "WORKOUT"
	KeyReading = "READING"
	KeyDiet    = "DIET"
	KeySocial  = "SOCIAL"
)

// PrescriptiveKeys 列出全部内置系统键，顺序即面板渲染顺序
var PrescriptiveKeys = []string{KeyWorkout, KeyReading, KeyDiet, KeySocial}

// IsPrescriptiveKey 判断给定键是否为内置系统
func IsPrescriptiveKey(key string) bool {
	for _, k := range PrescriptiveKeys {
		if k == key {
			return true
		}
	}
	return false
}

// System 定义用户自建的打卡系统
// TrackerType 仅支持 BINARY/NUMERIC，创建后不再修改
type System struct {
	gorm.Model
	UserID      uint   `gorm:"index;not null"`
	User        User   `gorm:"constraint:OnDelete:CASCADE"`
	Name        string `gorm:"not null"`
	TrackerType string `gorm:"not null"`
}

// Log 记录某用户在某天对某个系统的一次打卡观测
// 身份二选一：SystemID 指向自建系统，PrescriptiveKey 指向内置系统，二者不可同时存在
// 幂等性由两个复合唯一索引保证：SQLite 将 NULL 视为互不相等，
// 因此每个索引只约束各自的身份族，同一 (用户, 身份, 日期) 至多一行
type Log struct {
	gorm.Model
	UserID          uint      `gorm:"index;not null;index:idx_logs_system_day,unique;index:idx_logs_prescriptive_day,unique"`
	SystemID        *uint     `gorm:"index:idx_logs_system_day,unique"`
	System          *System   `gorm:"constraint:OnDelete:CASCADE"`
	PrescriptiveKey *string   `gorm:"column:prescriptive_system_key;index:idx_logs_prescriptive_day,unique"`
	LogDate         time.Time `gorm:"index;index:idx_logs_system_day,unique;index:idx_logs_prescriptive_day,unique"`
	ValueBoolean    *bool
	ValueNumeric    *int
}

// TableName 保持与线上表名一致
func (Log) TableName() string {
	return "logs"
}
