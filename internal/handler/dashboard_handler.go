package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/architect/internal/db"
	"github.com/architect/internal/service"
	"github.com/gin-gonic/gin"
)

type logPayload struct {
	Date            string `json:"date"`
	SystemID        *uint  `json:"system_id"`
	PrescriptiveKey string `json:"prescriptive_system_key"`
	ValueBoolean    *bool  `json:"value_boolean"`
	ValueNumeric    string `json:"value_numeric"` // 文本框原文，服务端负责解析
}

type systemPayload struct {
	Date        string `json:"date"`
	Name        string `json:"name"`
	TrackerType string `json:"tracker_type"`
}

type workoutPayload struct {
	Date    string   `json:"date"`
	Checked []string `json:"checked"`
}

// GetDay 返回选中日的完整面板数据：日志、系统与当日内容安排
// 负载回显请求日期，客户端据此丢弃晚到的过期响应
func (a *API) GetDay(c *gin.Context) {
	date, ok := parseDateQuery(c, "date")
	if !ok {
		return
	}

	userID := currentUserID(c)
	view, err := a.dailyLogs.LoadDay(userID, date)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取当日数据失败")
		return
	}

	c.JSON(http.StatusOK, a.dayToPayload(view))
}

// UpsertLog 幂等写入一条打卡并返回刷新后的当日视图
func (a *API) UpsertLog(c *gin.Context) {
	var payload logPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	date, ok := parseDateField(c, payload.Date)
	if !ok {
		return
	}

	input := service.LogInput{
		SystemID:        payload.SystemID,
		PrescriptiveKey: payload.PrescriptiveKey,
		ValueBoolean:    payload.ValueBoolean,
	}

	// 数值输入以原文传入，解析失败在落库前直接拒绝
	if raw := strings.TrimSpace(payload.ValueNumeric); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "请输入有效的数字")
			return
		}
		if value < 0 && strings.EqualFold(payload.PrescriptiveKey, db.KeyReading) {
			respondError(c, http.StatusBadRequest, "页数不能为负")
			return
		}
		positive := value > 0
		input.ValueNumeric = &value
		input.ValueBoolean = &positive
	}

	userID := currentUserID(c)
	if _, err := a.dailyLogs.UpsertLog(userID, date, input); err != nil {
		handleDailyLogError(c, err)
		return
	}

	a.respondWithDay(c, userID, date)
}

// CreateSystem 新建自定义系统并返回刷新后的当日视图
func (a *API) CreateSystem(c *gin.Context) {
	var payload systemPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	date, ok := parseDateField(c, payload.Date)
	if !ok {
		return
	}

	userID := currentUserID(c)
	system, err := a.dailyLogs.AddSystem(userID, payload.Name, payload.TrackerType)
	if err != nil {
		handleDailyLogError(c, err)
		return
	}

	view, err := a.dailyLogs.LoadDay(userID, date)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取当日数据失败")
		return
	}

	response := a.dayToPayload(view)
	response["system"] = systemToPayload(*system)
	c.JSON(http.StatusOK, response)
}

// SubmitWorkoutExercises 按动作集合提交训练打卡
// 只有整体完成态翻转时才产生写入，部分勾选不触发请求落库
func (a *API) SubmitWorkoutExercises(c *gin.Context) {
	var payload workoutPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	date, ok := parseDateField(c, payload.Date)
	if !ok {
		return
	}

	userID := currentUserID(c)
	result, err := a.dailyLogs.CompleteWorkout(userID, date, payload.Checked)
	if err != nil {
		if errors.Is(err, service.ErrRestDay) {
			respondError(c, http.StatusBadRequest, "今天是休息日，没有训练安排")
			return
		}
		handleDailyLogError(c, err)
		return
	}

	response := gin.H{
		"date":      service.FormatDate(date),
		"completed": result.Completed,
		"wrote":     result.Wrote,
	}
	if result.Log != nil {
		response["log"] = logRowToPayload(*result.Log)
	}
	c.JSON(http.StatusOK, response)
}

// GetReadingStreak 返回以选中日为锚点的连续阅读天数
func (a *API) GetReadingStreak(c *gin.Context) {
	date, ok := parseDateQuery(c, "date")
	if !ok {
		return
	}

	streak, err := a.dailyLogs.ReadingStreak(currentUserID(c), date)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "计算阅读连胜失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":   service.FormatDate(date),
		"streak": streak,
	})
}

// ShuffleMeal 随机换一道不同于当前的简餐，仅影响本次展示
func (a *API) ShuffleMeal(c *gin.Context) {
	date, ok := parseDateQuery(c, "date")
	if !ok {
		return
	}

	current := service.MealIndexFor(date)
	if raw := c.Query("current"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			current = parsed
		}
	}

	index := service.ShuffleMealIndex(current)
	c.JSON(http.StatusOK, gin.H{
		"date":  service.FormatDate(date),
		"index": index,
		"meal":  service.Meals[index],
	})
}

func (a *API) respondWithDay(c *gin.Context, userID uint, date time.Time) {
	view, err := a.dailyLogs.LoadDay(userID, date)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取当日数据失败")
		return
	}
	c.JSON(http.StatusOK, a.dayToPayload(view))
}

func (a *API) dayToPayload(view *service.DayView) gin.H {
	logs := make([]gin.H, 0, len(view.Logs))
	for _, entry := range view.Logs {
		logs = append(logs, logToPayload(entry))
	}

	systems := make([]gin.H, 0, len(view.Systems))
	for _, system := range view.Systems {
		systems = append(systems, systemToPayload(system))
	}

	today := service.NormalizeDate(time.Now())

	assignments := gin.H{
		"meal":      gin.H{"index": service.MealIndexFor(view.Date), "meal": service.MealFor(view.Date)},
		"mission":   service.MissionFor(view.Date),
		"rest_day":  true,
		"rest_hint": service.RestDayMessage,
	}
	if workout := service.WorkoutFor(view.Date); workout != nil {
		assignments["workout"] = workout
		assignments["rest_day"] = false
		delete(assignments, "rest_hint")
	}

	payload := gin.H{
		"date":        service.FormatDate(view.Date),
		"prev_date":   service.FormatDate(view.Date.AddDate(0, 0, -1)),
		"next_date":   service.FormatDate(view.Date.AddDate(0, 0, 1)),
		"today":       service.FormatDate(today),
		"is_today":    view.Date.Equal(today),
		"logs":        logs,
		"systems":     systems,
		"assignments": assignments,
	}

	if len(view.Systems) == 0 {
		payload["empty_state"] = "还没有自定义系统，点击右下角创建第一个吧"
	}

	return payload
}

func logToPayload(entry service.DailyLog) gin.H {
	item := logRowToPayload(entry.Log)
	if entry.SystemName != "" {
		item["system_name"] = entry.SystemName
		item["tracker_type"] = entry.TrackerType
	}
	return item
}

func logRowToPayload(entry db.Log) gin.H {
	item := gin.H{
		"id":       entry.ID,
		"log_date": entry.LogDate.Format(service.DateLayout),
	}
	if entry.SystemID != nil {
		item["system_id"] = *entry.SystemID
	}
	if entry.PrescriptiveKey != nil {
		item["prescriptive_system_key"] = *entry.PrescriptiveKey
	}
	if entry.ValueBoolean != nil {
		item["value_boolean"] = *entry.ValueBoolean
	}
	if entry.ValueNumeric != nil {
		item["value_numeric"] = *entry.ValueNumeric
	}
	return item
}

func systemToPayload(system db.System) gin.H {
	return gin.H{
		"id":           system.ID,
		"name":         system.Name,
		"tracker_type": system.TrackerType,
		"created_at":   system.CreatedAt.Format(time.RFC3339),
	}
}

func handleDailyLogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoUser):
		respondError(c, http.StatusUnauthorized, "请先登录")
	case errors.Is(err, service.ErrSystemNotFound):
		respondError(c, http.StatusNotFound, "系统不存在")
	case errors.Is(err, service.ErrInvalidTrackerIdentity):
		respondError(c, http.StatusBadRequest, "日志必须且只能关联一个系统")
	case errors.Is(err, service.ErrInvalidPrescriptiveKey):
		respondError(c, http.StatusBadRequest, "无效的内置系统键")
	case errors.Is(err, service.ErrInvalidTrackerType):
		respondError(c, http.StatusBadRequest, "无效的记录类型")
	case errors.Is(err, service.ErrEmptySystemName):
		respondError(c, http.StatusBadRequest, "系统名称不能为空")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
