package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/architect/internal/db"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VisionService 负责用户愿景档案的读写，每个用户至多一份
type VisionService struct {
	db *gorm.DB
}

// VisionInput 定义保存愿景时可配置的字段
type VisionInput struct {
	HigherSelf string
	CoreValues []string
	Goals      []db.VisionGoal
}

// NewVisionService 构造 VisionService
func NewVisionService(gdb *gorm.DB) *VisionService {
	return &VisionService{db: gdb}
}

// Get 返回用户的愿景档案；尚未创建时返回 nil 而非错误
func (s *VisionService) Get(userID uint) (*db.Vision, error) {
	if userID == 0 {
		return nil, ErrNoUser
	}

	var vision db.Vision
	if err := s.db.Where("user_id = ?", userID).First(&vision).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get vision: %w", err)
	}
	return &vision, nil
}

// Upsert 以 user_id 为冲突键幂等保存愿景档案
// 目标条目缺少 ID 时补一个，便于前端做稳定的列表键
func (s *VisionService) Upsert(userID uint, input VisionInput) (*db.Vision, error) {
	if userID == 0 {
		return nil, ErrNoUser
	}

	values := make([]string, 0, len(input.CoreValues))
	for _, v := range input.CoreValues {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			values = append(values, trimmed)
		}
	}

	goals := make([]db.VisionGoal, 0, len(input.Goals))
	for _, g := range input.Goals {
		title := strings.TrimSpace(g.Title)
		if title == "" {
			continue
		}
		if strings.TrimSpace(g.ID) == "" {
			g.ID = uuid.NewString()
		}
		g.Title = title
		goals = append(goals, g)
	}

	valuesJSON, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("encode core values: %w", err)
	}
	goalsJSON, err := json.Marshal(goals)
	if err != nil {
		return nil, fmt.Errorf("encode goals: %w", err)
	}

	record := db.Vision{
		UserID:     userID,
		HigherSelf: strings.TrimSpace(input.HigherSelf),
		CoreValues: datatypes.JSON(valuesJSON),
		Goals:      datatypes.JSON(goalsJSON),
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"higher_self", "core_values", "goals", "updated_at"}),
	}).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("upsert vision: %w", err)
	}

	var stored db.Vision
	if err := s.db.Where("user_id = ?", userID).First(&stored).Error; err != nil {
		return nil, fmt.Errorf("reload vision: %w", err)
	}

	return &stored, nil
}
