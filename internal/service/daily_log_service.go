package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/architect/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNoUser 在未提供用户上下文时返回，所有数据操作都以此为前置守卫
	ErrNoUser = errors.New("no user in context")
	// ErrSystemNotFound 在目标系统不存在或不属于当前用户时返回
	ErrSystemNotFound = errors.New("system not found")
	// ErrInvalidTrackerIdentity 在日志身份缺失或同时给出两种身份时返回
	ErrInvalidTrackerIdentity = errors.New("log must reference exactly one tracker identity")
	// ErrInvalidPrescriptiveKey 在内置系统键不在枚举内时返回
	ErrInvalidPrescriptiveKey = errors.New("invalid prescriptive system key")
	// ErrInvalidTrackerType 在系统类型不是 BINARY/NUMERIC 时返回
	ErrInvalidTrackerType = errors.New("invalid tracker type")
	// ErrEmptySystemName 在系统名称为空时返回
	ErrEmptySystemName = errors.New("system name is required")
	// ErrRestDay 在休息日提交训练打卡时返回
	ErrRestDay = errors.New("no workout scheduled for this day")
)

// DailyLogService 负责单日视图的读取与打卡写入
// 写入遵循“先写库、再整页重载”的约定，不做本地乐观更新
type DailyLogService struct {
	db *gorm.DB
}

// LogInput 定义一次打卡的输入对象
// SystemID 与 PrescriptiveKey 必须恰好给出一个；日期由当前选中日强制指定
type LogInput struct {
	SystemID        *uint
	PrescriptiveKey string
	ValueBoolean    *bool
	ValueNumeric    *int
}

// DailyLog 是单日视图里的一条日志，自建系统的日志会联结系统名称与类型
type DailyLog struct {
	db.Log
	SystemName  string
	TrackerType string
}

// DayView 是某个日历日的只读投影，所有日期变更或写入后整体重算
type DayView struct {
	Date    time.Time
	Logs    []DailyLog
	Systems []db.System
}

// WorkoutSubmission 描述一次按动作提交的训练打卡结果
// 只有整体完成态发生翻转时才落一条写入
type WorkoutSubmission struct {
	Completed bool
	Wrote     bool
	Log       *db.Log
}

// NewDailyLogService 构造 DailyLogService
func NewDailyLogService(gdb *gorm.DB) *DailyLogService {
	return &DailyLogService{db: gdb}
}

// LoadDay 拉取用户的全部系统与指定日期的全部日志，并在内存中完成联结
// 任一查询失败则整体失败，不产生部分结果
func (s *DailyLogService) LoadDay(userID uint, date time.Time) (*DayView, error) {
	if userID == 0 {
		return nil, ErrNoUser
	}

	day := NormalizeDate(date)

	var systems []db.System
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&systems).Error; err != nil {
		return nil, fmt.Errorf("list systems: %w", err)
	}

	var logs []db.Log
	if err := s.db.Where("user_id = ? AND log_date = ?", userID, day).
		Order("created_at ASC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}

	systemByID := make(map[uint]db.System, len(systems))
	for _, sys := range systems {
		systemByID[sys.ID] = sys
	}

	combined := make([]DailyLog, 0, len(logs))
	for _, entry := range logs {
		item := DailyLog{Log: entry}
		if entry.SystemID != nil {
			if sys, ok := systemByID[*entry.SystemID]; ok {
				item.SystemName = sys.Name
				item.TrackerType = sys.TrackerType
			}
		}
		combined = append(combined, item)
	}

	return &DayView{Date: day, Logs: combined, Systems: systems}, nil
}

// UpsertLog 以 (用户, 身份, 日期) 为冲突键幂等写入一条日志
// 调用方给出的日期一律被当前选中日覆盖，保证与活动日一致
func (s *DailyLogService) UpsertLog(userID uint, date time.Time, input LogInput) (*db.Log, error) {
	if userID == 0 {
		return nil, ErrNoUser
	}

	hasSystem := input.SystemID != nil && *input.SystemID != 0
	key := strings.TrimSpace(strings.ToUpper(input.PrescriptiveKey))
	hasKey := key != ""

	if hasSystem == hasKey {
		return nil, ErrInvalidTrackerIdentity
	}
	if hasKey && !db.IsPrescriptiveKey(key) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPrescriptiveKey, key)
	}

	day := NormalizeDate(date)

	record := db.Log{
		UserID:       userID,
		LogDate:      day,
		ValueBoolean: input.ValueBoolean,
		ValueNumeric: input.ValueNumeric,
	}

	var conflictColumns []clause.Column
	if hasSystem {
		var system db.System
		if err := s.db.Where("id = ? AND user_id = ?", *input.SystemID, userID).
			First(&system).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrSystemNotFound
			}
			return nil, fmt.Errorf("find system: %w", err)
		}
		record.SystemID = input.SystemID
		conflictColumns = []clause.Column{{Name: "user_id"}, {Name: "system_id"}, {Name: "log_date"}}
	} else {
		record.PrescriptiveKey = &key
		conflictColumns = []clause.Column{{Name: "user_id"}, {Name: "prescriptive_system_key"}, {Name: "log_date"}}
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns:   conflictColumns,
		DoUpdates: clause.AssignmentColumns([]string{"value_boolean", "value_numeric", "updated_at"}),
	}).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("upsert log: %w", err)
	}

	// 冲突更新后重新取回存储行，避免沿用插入尝试残留的主键
	query := s.db.Where("user_id = ? AND log_date = ?", userID, day)
	if hasSystem {
		query = query.Where("system_id = ?", *input.SystemID)
	} else {
		query = query.Where("prescriptive_system_key = ?", key)
	}

	var stored db.Log
	if err := query.First(&stored).Error; err != nil {
		return nil, fmt.Errorf("reload log: %w", err)
	}

	return &stored, nil
}

// AddSystem 为当前用户创建一个自建系统
func (s *DailyLogService) AddSystem(userID uint, name, trackerType string) (*db.System, error) {
	if userID == 0 {
		return nil, ErrNoUser
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrEmptySystemName
	}

	kind := strings.TrimSpace(strings.ToUpper(trackerType))
	if kind != db.TrackerBinary && kind != db.TrackerNumeric {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTrackerType, trackerType)
	}

	system := db.System{
		UserID:      userID,
		Name:        trimmed,
		TrackerType: kind,
	}

	if err := s.db.Create(&system).Error; err != nil {
		return nil, fmt.Errorf("create system: %w", err)
	}

	return &system, nil
}

// ReadingStreak 统计以选中日为锚点的连续阅读天数
// 选中日已有合格记录则从当天起算，否则从前一天起算；两者皆无记为 0
func (s *DailyLogService) ReadingStreak(userID uint, date time.Time) (int, error) {
	if userID == 0 {
		return 0, ErrNoUser
	}

	var logs []db.Log
	if err := s.db.Where("user_id = ? AND prescriptive_system_key = ?", userID, db.KeyReading).
		Where("value_numeric > 0 OR value_boolean = ?", true).
		Order("log_date DESC").
		Find(&logs).Error; err != nil {
		return 0, fmt.Errorf("list reading logs: %w", err)
	}

	qualified := make(map[string]struct{}, len(logs))
	for _, entry := range logs {
		qualified[entry.LogDate.Format(DateLayout)] = struct{}{}
	}

	anchor := NormalizeDate(date)
	if _, ok := qualified[anchor.Format(DateLayout)]; !ok {
		anchor = anchor.AddDate(0, 0, -1)
		if _, ok := qualified[anchor.Format(DateLayout)]; !ok {
			return 0, nil
		}
	}

	streak := 0
	for {
		if _, ok := qualified[anchor.Format(DateLayout)]; !ok {
			break
		}
		streak++
		anchor = anchor.AddDate(0, 0, -1)
	}

	return streak, nil
}

// CompleteWorkout 按动作集合提交训练打卡
// 整体完成态 = 当天安排的每个动作都被勾选；只有该布尔值相对已存日志发生变化才写库
func (s *DailyLogService) CompleteWorkout(userID uint, date time.Time, checked []string) (*WorkoutSubmission, error) {
	if userID == 0 {
		return nil, ErrNoUser
	}

	workout := WorkoutFor(date)
	if workout == nil {
		return nil, ErrRestDay
	}

	checkedSet := make(map[string]struct{}, len(checked))
	for _, name := range checked {
		checkedSet[strings.TrimSpace(name)] = struct{}{}
	}

	completed := true
	for _, exercise := range workout.Exercises {
		if _, ok := checkedSet[exercise.Name]; !ok {
			completed = false
			break
		}
	}

	day := NormalizeDate(date)

	var existing db.Log
	prior := false
	err := s.db.Where("user_id = ? AND prescriptive_system_key = ? AND log_date = ?", userID, db.KeyWorkout, day).
		First(&existing).Error
	switch {
	case err == nil:
		prior = existing.ValueBoolean != nil && *existing.ValueBoolean
	case errors.Is(err, gorm.ErrRecordNotFound):
		// 尚无日志时视为未完成
	default:
		return nil, fmt.Errorf("find workout log: %w", err)
	}

	if completed == prior {
		return &WorkoutSubmission{Completed: completed}, nil
	}

	entry, err := s.UpsertLog(userID, day, LogInput{
		PrescriptiveKey: db.KeyWorkout,
		ValueBoolean:    &completed,
	})
	if err != nil {
		return nil, err
	}

	return &WorkoutSubmission{Completed: completed, Wrote: true, Log: entry}, nil
}
