package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/architect/internal/db"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrReviewNotFound 在指定周的复盘不存在时返回
	ErrReviewNotFound = errors.New("weekly review not found")
	// ErrActionNotFound 在行动项不存在或不属于当前用户时返回
	ErrActionNotFound = errors.New("action item not found")
	// ErrInvalidActionStatus 在行动项状态不在枚举内时返回
	ErrInvalidActionStatus = errors.New("invalid action item status")
	// ErrInvalidRating 在复盘评分超出 1-5 时返回
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	// ErrEmptyActionDescription 在行动项描述为空时返回
	ErrEmptyActionDescription = errors.New("action item description is required")
)

// ReviewService 负责周复盘与行动项
type ReviewService struct {
	db *gorm.DB
}

// ReviewInput 定义保存周复盘时可配置的字段
type ReviewInput struct {
	Wins          []string
	Challenges    []string
	Learnings     []string
	NextWeekFocus string
	Rating        *int
}

// ActionInput 定义创建行动项的输入
type ActionInput struct {
	WeeklyReviewID *uint
	Description    string
	DueDate        *time.Time
}

// NewReviewService 构造 ReviewService
func NewReviewService(gdb *gorm.DB) *ReviewService {
	return &ReviewService{db: gdb}
}

// GetWeek 返回包含给定日期那一周的复盘；不存在时返回 ErrReviewNotFound
func (s *ReviewService) GetWeek(userID uint, date time.Time) (*db.WeeklyReview, error) {
	if userID == 0 {
		return nil, ErrNoUser
	}

	week := WeekStart(date)

	var review db.WeeklyReview
	if err := s.db.Where("user_id = ? AND week_start_date = ?", userID, week).
		First(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("get weekly review: %w", err)
	}
	return &review, nil
}

// UpsertWeek 以 (用户, 周一) 为冲突键幂等保存一周复盘
func (s *ReviewService) UpsertWeek(userID uint, date time.Time, input ReviewInput) (*db.WeeklyReview, error) {
	if userID == 0 {
		return nil, ErrNoUser
	}

	if input.Rating != nil && (*input.Rating < 1 || *input.Rating > 5) {
		return nil, ErrInvalidRating
	}

	week := WeekStart(date)

	wins, err := encodeStringList(input.Wins)
	if err != nil {
		return nil, err
	}
	challenges, err := encodeStringList(input.Challenges)
	if err != nil {
		return nil, err
	}
	learnings, err := encodeStringList(input.Learnings)
	if err != nil {
		return nil, err
	}

	record := db.WeeklyReview{
		UserID:        userID,
		WeekStartDate: week,
		Wins:          wins,
		Challenges:    challenges,
		Learnings:     learnings,
		NextWeekFocus: strings.TrimSpace(input.NextWeekFocus),
		Rating:        input.Rating,
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "week_start_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"wins", "challenges", "learnings", "next_week_focus", "rating", "updated_at"}),
	}).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("upsert weekly review: %w", err)
	}

	var stored db.WeeklyReview
	if err := s.db.Where("user_id = ? AND week_start_date = ?", userID, week).
		First(&stored).Error; err != nil {
		return nil, fmt.Errorf("reload weekly review: %w", err)
	}

	return &stored, nil
}

// ListActions 返回用户的全部行动项，按创建时间倒序
func (s *ReviewService) ListActions(userID uint) ([]db.ActionItem, error) {
	if userID == 0 {
		return nil, ErrNoUser
	}

	var items []db.ActionItem
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list action items: %w", err)
	}
	return items, nil
}

// AddAction 创建一条行动项，初始状态为 pending
func (s *ReviewService) AddAction(userID uint, input ActionInput) (*db.ActionItem, error) {
	if userID == 0 {
		return nil, ErrNoUser
	}

	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, ErrEmptyActionDescription
	}

	item := db.ActionItem{
		UserID:         userID,
		WeeklyReviewID: input.WeeklyReviewID,
		Description:    description,
		Status:         db.ActionPending,
		DueDate:        input.DueDate,
	}

	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("create action item: %w", err)
	}
	return &item, nil
}

// UpdateActionStatus 更新行动项状态
func (s *ReviewService) UpdateActionStatus(userID, actionID uint, status string) (*db.ActionItem, error) {
	if userID == 0 {
		return nil, ErrNoUser
	}

	normalized := strings.TrimSpace(strings.ToLower(status))
	switch normalized {
	case db.ActionPending, db.ActionInProgress, db.ActionCompleted:
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidActionStatus, status)
	}

	var item db.ActionItem
	if err := s.db.Where("id = ? AND user_id = ?", actionID, userID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActionNotFound
		}
		return nil, fmt.Errorf("find action item: %w", err)
	}

	item.Status = normalized
	if err := s.db.Save(&item).Error; err != nil {
		return nil, fmt.Errorf("update action item: %w", err)
	}
	return &item, nil
}

func encodeStringList(values []string) (datatypes.JSON, error) {
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}

	data, err := json.Marshal(cleaned)
	if err != nil {
		return nil, fmt.Errorf("encode list: %w", err)
	}
	return datatypes.JSON(data), nil
}
