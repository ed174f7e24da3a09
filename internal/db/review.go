package db

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 行动项状态
const (
	ActionPending    = "pending"
	ActionInProgress = "in_progress"
	ActionCompleted  = "completed"
)

// WeeklyReview 记录一周复盘，WeekStartDate 固定为周一
// 同一用户同一周至多一行，重复提交走幂等覆盖
type WeeklyReview struct {
	gorm.Model
	UserID        uint      `gorm:"index;not null;index:idx_reviews_user_week,unique"`
	User          User      `gorm:"constraint:OnDelete:CASCADE"`
	WeekStartDate time.Time `gorm:"index:idx_reviews_user_week,unique"`
	Wins          datatypes.JSON
	Challenges    datatypes.JSON
	Learnings     datatypes.JSON
	NextWeekFocus string
	Rating        *int
}

// ActionItem 是复盘衍生的待办事项，可独立创建也可挂在某次复盘下
type ActionItem struct {
	gorm.Model
	UserID         uint          `gorm:"index;not null"`
	User           User          `gorm:"constraint:OnDelete:CASCADE"`
	WeeklyReviewID *uint         `gorm:"index"`
	WeeklyReview   *WeeklyReview `gorm:"constraint:OnDelete:SET NULL"`
	Description    string        `gorm:"not null"`
	Status         string        `gorm:"not null;default:pending"`
	DueDate        *time.Time
}
