package handler

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"

	"github.com/architect/internal/db"
	"github.com/architect/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

type visionPayload struct {
	HigherSelf string          `json:"higher_self"`
	CoreValues []string        `json:"core_values"`
	Goals      []db.VisionGoal `json:"goals"`
}

// GetVision 返回当前用户的愿景档案，HigherSelf 同时给出渲染后的安全 HTML
func (a *API) GetVision(c *gin.Context) {
	vision, err := a.visions.Get(currentUserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取愿景失败")
		return
	}
	if vision == nil {
		c.JSON(http.StatusOK, gin.H{"vision": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"vision": visionToPayload(*vision)})
}

// UpsertVision 幂等保存当前用户的愿景档案
func (a *API) UpsertVision(c *gin.Context) {
	var payload visionPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	vision, err := a.visions.Upsert(currentUserID(c), service.VisionInput{
		HigherSelf: payload.HigherSelf,
		CoreValues: payload.CoreValues,
		Goals:      payload.Goals,
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "保存愿景失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"vision": visionToPayload(*vision)})
}

func visionToPayload(vision db.Vision) gin.H {
	// 存量 JSON 损坏时降级为空列表，但留下日志便于排查
	var values []string
	if len(vision.CoreValues) > 0 {
		if err := json.Unmarshal(vision.CoreValues, &values); err != nil {
			log.Printf("decode vision core values: %v", err)
			values = nil
		}
	}

	var goals []db.VisionGoal
	if len(vision.Goals) > 0 {
		if err := json.Unmarshal(vision.Goals, &goals); err != nil {
			log.Printf("decode vision goals: %v", err)
			goals = nil
		}
	}

	return gin.H{
		"higher_self":      vision.HigherSelf,
		"higher_self_html": renderMarkdown(vision.HigherSelf),
		"core_values":      values,
		"goals":            goals,
	}
}

// renderMarkdown 将 Markdown 渲染为经过净化的 HTML
func renderMarkdown(source string) string {
	if source == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(source), &buf); err != nil {
		return ""
	}
	return sanitizer.Sanitize(buf.String())
}
