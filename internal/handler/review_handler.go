package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/architect/internal/db"
	"github.com/architect/internal/service"
	"github.com/gin-gonic/gin"
)

type reviewPayload struct {
	Week          string   `json:"week"`
	Wins          []string `json:"wins"`
	Challenges    []string `json:"challenges"`
	Learnings     []string `json:"learnings"`
	NextWeekFocus string   `json:"next_week_focus"`
	Rating        *int     `json:"rating"`
}

type actionPayload struct {
	WeeklyReviewID *uint  `json:"weekly_review_id"`
	Description    string `json:"description"`
	DueDate        string `json:"due_date"`
}

// GetWeeklyReview 返回包含指定日期那一周的复盘，尚未填写时 review 为 null
func (a *API) GetWeeklyReview(c *gin.Context) {
	date, ok := parseDateQuery(c, "week")
	if !ok {
		return
	}

	review, err := a.reviews.GetWeek(currentUserID(c), date)
	if err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			c.JSON(http.StatusOK, gin.H{
				"week_start": service.FormatDate(service.WeekStart(date)),
				"review":     nil,
			})
			return
		}
		respondError(c, http.StatusInternalServerError, "获取周复盘失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"week_start": service.FormatDate(review.WeekStartDate),
		"review":     reviewToPayload(*review),
	})
}

// UpsertWeeklyReview 幂等保存一周复盘
func (a *API) UpsertWeeklyReview(c *gin.Context) {
	var payload reviewPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	date, ok := parseDateField(c, payload.Week)
	if !ok {
		return
	}

	review, err := a.reviews.UpsertWeek(currentUserID(c), date, service.ReviewInput{
		Wins:          payload.Wins,
		Challenges:    payload.Challenges,
		Learnings:     payload.Learnings,
		NextWeekFocus: payload.NextWeekFocus,
		Rating:        payload.Rating,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidRating) {
			respondError(c, http.StatusBadRequest, "评分需在 1 到 5 之间")
			return
		}
		respondError(c, http.StatusInternalServerError, "保存周复盘失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"week_start": service.FormatDate(review.WeekStartDate),
		"review":     reviewToPayload(*review),
	})
}

// ListActionItems 返回当前用户的全部行动项
func (a *API) ListActionItems(c *gin.Context) {
	items, err := a.reviews.ListActions(currentUserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取行动项失败")
		return
	}

	payload := make([]gin.H, 0, len(items))
	for _, item := range items {
		payload = append(payload, actionToPayload(item))
	}
	c.JSON(http.StatusOK, gin.H{"actions": payload})
}

// CreateActionItem 创建一条行动项
func (a *API) CreateActionItem(c *gin.Context) {
	var payload actionPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	input := service.ActionInput{
		WeeklyReviewID: payload.WeeklyReviewID,
		Description:    payload.Description,
	}

	if payload.DueDate != "" {
		due, err := service.ParseDate(payload.DueDate)
		if err != nil {
			respondError(c, http.StatusBadRequest, "无效的截止日期")
			return
		}
		input.DueDate = &due
	}

	item, err := a.reviews.AddAction(currentUserID(c), input)
	if err != nil {
		if errors.Is(err, service.ErrEmptyActionDescription) {
			respondError(c, http.StatusBadRequest, "行动项描述不能为空")
			return
		}
		respondError(c, http.StatusInternalServerError, "创建行动项失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"action": actionToPayload(*item)})
}

// UpdateActionItemStatus 更新行动项状态
func (a *API) UpdateActionItemStatus(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的行动项ID")
		return
	}

	var payload struct {
		Status string `json:"status"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	item, updateErr := a.reviews.UpdateActionStatus(currentUserID(c), id, payload.Status)
	if updateErr != nil {
		switch {
		case errors.Is(updateErr, service.ErrActionNotFound):
			respondError(c, http.StatusNotFound, "行动项不存在")
		case errors.Is(updateErr, service.ErrInvalidActionStatus):
			respondError(c, http.StatusBadRequest, "无效的行动项状态")
		default:
			respondError(c, http.StatusInternalServerError, "更新行动项失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"action": actionToPayload(*item)})
}

func reviewToPayload(review db.WeeklyReview) gin.H {
	return gin.H{
		"id":              review.ID,
		"week_start_date": service.FormatDate(review.WeekStartDate),
		"wins":            decodeStringList(review.Wins),
		"challenges":      decodeStringList(review.Challenges),
		"learnings":       decodeStringList(review.Learnings),
		"next_week_focus": review.NextWeekFocus,
		"rating":          review.Rating,
	}
}

func actionToPayload(item db.ActionItem) gin.H {
	payload := gin.H{
		"id":          item.ID,
		"description": item.Description,
		"status":      item.Status,
		"created_at":  item.CreatedAt.Format(time.RFC3339),
	}
	if item.WeeklyReviewID != nil {
		payload["weekly_review_id"] = *item.WeeklyReviewID
	}
	if item.DueDate != nil {
		payload["due_date"] = service.FormatDate(*item.DueDate)
	}
	return payload
}

func decodeStringList(raw []byte) []string {
	values := []string{}
	if len(raw) == 0 {
		return values
	}
	// 存量 JSON 损坏时降级为空列表，但留下日志便于排查
	if err := json.Unmarshal(raw, &values); err != nil {
		log.Printf("decode string list: %v", err)
		return []string{}
	}
	return values
}
