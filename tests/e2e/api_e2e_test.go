package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/architect/internal/db"
	"github.com/architect/internal/router"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type e2eSuite struct {
	handler http.Handler
	client  *localClient
	baseURL string
}

type localClient struct {
	handler http.Handler
	jar     http.CookieJar
}

func newLocalClient(handler http.Handler) *localClient {
	jar, _ := cookiejar.New(nil)
	return &localClient{handler: handler, jar: jar}
}

func (c *localClient) Do(req *http.Request) (*http.Response, error) {
	if c.jar != nil {
		for _, cookie := range c.jar.Cookies(req.URL) {
			req.AddCookie(cookie)
		}
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	resp := w.Result()
	if c.jar != nil {
		c.jar.SetCookies(req.URL, resp.Cookies())
	}
	return resp, nil
}

func TestE2E_DashboardFlow(t *testing.T) {
	suite := newE2ESuite(t)
	suite.signUp(t)

	t.Run("auth", suite.testAuth)
	t.Run("empty day view", suite.testEmptyDayView)
	t.Run("custom systems", suite.testCustomSystems)
	t.Run("numeric validation", suite.testNumericValidation)
	t.Run("workout aggregate", suite.testWorkoutAggregate)
	t.Run("reading streak", suite.testReadingStreak)
	t.Run("diet shuffle", suite.testDietShuffle)
	t.Run("vision", suite.testVision)
	t.Run("weekly review", suite.testWeeklyReview)
}

func newE2ESuite(t *testing.T) *e2eSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if err := gdb.AutoMigrate(
		&db.User{},
		&db.System{},
		&db.Log{},
		&db.Vision{},
		&db.WeeklyReview{},
		&db.ActionItem{},
	); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	db.DB = gdb

	engine := router.SetupRouter("test-session-secret")

	return &e2eSuite{
		handler: engine,
		client:  newLocalClient(engine),
		baseURL: "https://example.test",
	}
}

func (s *e2eSuite) signUp(t *testing.T) {
	t.Helper()
	status, body := s.doJSON(t, http.MethodPost, "/auth/signup", map[string]any{
		"email":    "e2e@example.com",
		"password": "e2e-secret",
	})
	if status != http.StatusOK {
		t.Fatalf("signup failed with status %d: %v", status, body)
	}
}

func (s *e2eSuite) doJSON(t *testing.T, method, path string, payload any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, s.baseURL+path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}

	body := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("failed to decode response %q: %v", string(raw), err)
		}
	}
	return resp.StatusCode, body
}

func (s *e2eSuite) testAuth(t *testing.T) {
	status, body := s.doJSON(t, http.MethodGet, "/auth/me", nil)
	if status != http.StatusOK {
		t.Fatalf("me failed with status %d: %v", status, body)
	}
	user, _ := body["user"].(map[string]any)
	if user == nil || user["email"] != "e2e@example.com" {
		t.Fatalf("unexpected me payload: %v", body)
	}
	if id, _ := user["id"].(string); id == "" {
		t.Fatalf("expected public id in payload: %v", user)
	}

	if status, _ := s.doJSON(t, http.MethodPost, "/auth/login", map[string]any{
		"email":    "e2e@example.com",
		"password": "wrong",
	}); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", status)
	}

	if status, _ := s.doJSON(t, http.MethodPost, "/auth/signup", map[string]any{
		"email":    "e2e@example.com",
		"password": "another-secret",
	}); status != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate signup, got %d", status)
	}

	if status, _ := s.doJSON(t, http.MethodPost, "/auth/logout", nil); status != http.StatusOK {
		t.Fatalf("logout failed with status %d", status)
	}
	if status, _ := s.doJSON(t, http.MethodGet, "/api/day", nil); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", status)
	}

	if status, _ := s.doJSON(t, http.MethodPost, "/auth/login", map[string]any{
		"email":    "e2e@example.com",
		"password": "e2e-secret",
	}); status != http.StatusOK {
		t.Fatalf("login failed with status %d", status)
	}
}

func (s *e2eSuite) testEmptyDayView(t *testing.T) {
	// 2026-03-10 是周二：休息日
	status, body := s.doJSON(t, http.MethodGet, "/api/day?date=2026-03-10", nil)
	if status != http.StatusOK {
		t.Fatalf("day view failed with status %d: %v", status, body)
	}

	if body["date"] != "2026-03-10" {
		t.Fatalf("expected date echo, got %v", body["date"])
	}
	if body["prev_date"] != "2026-03-09" || body["next_date"] != "2026-03-11" {
		t.Fatalf("unexpected navigation dates: %v", body)
	}
	if _, ok := body["empty_state"]; !ok {
		t.Fatalf("expected empty state hint, got %v", body)
	}

	assignments, _ := body["assignments"].(map[string]any)
	if assignments == nil {
		t.Fatalf("expected assignments, got %v", body)
	}
	if restDay, _ := assignments["rest_day"].(bool); !restDay {
		t.Fatalf("expected rest day on tuesday, got %v", assignments)
	}
	if _, ok := assignments["workout"]; ok {
		t.Fatalf("rest day must not carry a workout: %v", assignments)
	}
	if _, ok := assignments["mission"]; !ok {
		t.Fatalf("expected social mission: %v", assignments)
	}
	if _, ok := assignments["meal"]; !ok {
		t.Fatalf("expected meal suggestion: %v", assignments)
	}
}

func (s *e2eSuite) testCustomSystems(t *testing.T) {
	if status, _ := s.doJSON(t, http.MethodPost, "/api/systems", map[string]any{
		"date": "2026-03-10",
		"name": "   ",
	}); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty system name, got %d", status)
	}

	status, body := s.doJSON(t, http.MethodPost, "/api/systems", map[string]any{
		"date":         "2026-03-10",
		"name":         "每日冥想",
		"tracker_type": "BINARY",
	})
	if status != http.StatusOK {
		t.Fatalf("create system failed with status %d: %v", status, body)
	}

	system, _ := body["system"].(map[string]any)
	if system == nil {
		t.Fatalf("expected created system in payload: %v", body)
	}
	systemID := system["id"].(float64)

	// 切换两次，始终只有一条日志且保留最新值
	for _, value := range []bool{true, false} {
		status, body = s.doJSON(t, http.MethodPost, "/api/logs", map[string]any{
			"date":          "2026-03-10",
			"system_id":     systemID,
			"value_boolean": value,
		})
		if status != http.StatusOK {
			t.Fatalf("binary log failed with status %d: %v", status, body)
		}
	}

	logs, _ := body["logs"].([]any)
	found := 0
	for _, raw := range logs {
		entry, _ := raw.(map[string]any)
		if entry["system_id"] == systemID {
			found++
			if entry["system_name"] != "每日冥想" {
				t.Fatalf("expected joined system name, got %v", entry)
			}
			if value, _ := entry["value_boolean"].(bool); value {
				t.Fatalf("expected latest value false, got %v", entry)
			}
		}
	}
	if found != 1 {
		t.Fatalf("expected exactly one log for the system, got %d", found)
	}
}

func (s *e2eSuite) testNumericValidation(t *testing.T) {
	for _, bad := range []string{"abc", "-5"} {
		status, _ := s.doJSON(t, http.MethodPost, "/api/logs", map[string]any{
			"date":                    "2026-03-10",
			"prescriptive_system_key": "READING",
			"value_numeric":           bad,
		})
		if status != http.StatusBadRequest {
			t.Fatalf("input %q: expected 400, got %d", bad, status)
		}
	}

	status, body := s.doJSON(t, http.MethodPost, "/api/logs", map[string]any{
		"date":                    "2026-03-10",
		"prescriptive_system_key": "READING",
		"value_numeric":           "0",
	})
	if status != http.StatusOK {
		t.Fatalf("zero pages rejected with status %d: %v", status, body)
	}
	if entry := findPrescriptiveLog(body, "READING"); entry == nil {
		t.Fatal("expected reading log in day view")
	} else if value, _ := entry["value_boolean"].(bool); value {
		t.Fatalf("zero pages must yield value_boolean false: %v", entry)
	}

	status, body = s.doJSON(t, http.MethodPost, "/api/logs", map[string]any{
		"date":                    "2026-03-10",
		"prescriptive_system_key": "READING",
		"value_numeric":           "12",
	})
	if status != http.StatusOK {
		t.Fatalf("valid pages rejected with status %d: %v", status, body)
	}
	entry := findPrescriptiveLog(body, "READING")
	if entry == nil {
		t.Fatal("expected reading log in day view")
	}
	if value, _ := entry["value_boolean"].(bool); !value {
		t.Fatalf("positive pages must yield value_boolean true: %v", entry)
	}
	if pages, _ := entry["value_numeric"].(float64); pages != 12 {
		t.Fatalf("expected 12 pages, got %v", entry)
	}
}

func (s *e2eSuite) testWorkoutAggregate(t *testing.T) {
	// 2026-03-09 是周一：训练A
	status, body := s.doJSON(t, http.MethodPost, "/api/workout/exercises", map[string]any{
		"date":    "2026-03-09",
		"checked": []string{"深蹲"},
	})
	if status != http.StatusOK {
		t.Fatalf("partial submission failed with status %d: %v", status, body)
	}
	if wrote, _ := body["wrote"].(bool); wrote {
		t.Fatalf("partial check must not write: %v", body)
	}

	status, body = s.doJSON(t, http.MethodPost, "/api/workout/exercises", map[string]any{
		"date":    "2026-03-09",
		"checked": []string{"深蹲", "卧推", "杠铃划船"},
	})
	if status != http.StatusOK {
		t.Fatalf("full submission failed with status %d: %v", status, body)
	}
	if wrote, _ := body["wrote"].(bool); !wrote {
		t.Fatalf("aggregate flip must write: %v", body)
	}
	if completed, _ := body["completed"].(bool); !completed {
		t.Fatalf("expected completed true: %v", body)
	}

	status, body = s.doJSON(t, http.MethodPost, "/api/workout/exercises", map[string]any{
		"date":    "2026-03-09",
		"checked": []string{"深蹲", "卧推", "杠铃划船"},
	})
	if status != http.StatusOK {
		t.Fatalf("repeat submission failed with status %d: %v", status, body)
	}
	if wrote, _ := body["wrote"].(bool); wrote {
		t.Fatalf("unchanged aggregate must not write: %v", body)
	}

	// 休息日直接拒绝
	if status, _ := s.doJSON(t, http.MethodPost, "/api/workout/exercises", map[string]any{
		"date":    "2026-03-10",
		"checked": []string{"深蹲"},
	}); status != http.StatusBadRequest {
		t.Fatalf("expected 400 on rest day, got %d", status)
	}
}

func (s *e2eSuite) testReadingStreak(t *testing.T) {
	for _, date := range []string{"2026-03-08", "2026-03-09"} {
		if status, body := s.doJSON(t, http.MethodPost, "/api/logs", map[string]any{
			"date":                    date,
			"prescriptive_system_key": "READING",
			"value_numeric":           "10",
		}); status != http.StatusOK {
			t.Fatalf("log for %s failed with status %d: %v", date, status, body)
		}
	}

	// 2026-03-10 已在数值校验用例中记录 12 页，连续三天
	status, body := s.doJSON(t, http.MethodGet, "/api/reading/streak?date=2026-03-10", nil)
	if status != http.StatusOK {
		t.Fatalf("streak failed with status %d: %v", status, body)
	}
	if streak, _ := body["streak"].(float64); streak != 3 {
		t.Fatalf("expected streak 3, got %v", body)
	}

	// 次日尚未记录时锚点回落到前一天
	status, body = s.doJSON(t, http.MethodGet, "/api/reading/streak?date=2026-03-11", nil)
	if status != http.StatusOK {
		t.Fatalf("streak failed with status %d: %v", status, body)
	}
	if streak, _ := body["streak"].(float64); streak != 3 {
		t.Fatalf("expected streak 3 anchored on yesterday, got %v", body)
	}
}

func (s *e2eSuite) testDietShuffle(t *testing.T) {
	status, body := s.doJSON(t, http.MethodGet, "/api/day?date=2026-03-10", nil)
	if status != http.StatusOK {
		t.Fatalf("day view failed with status %d: %v", status, body)
	}
	assignments := body["assignments"].(map[string]any)
	meal := assignments["meal"].(map[string]any)
	current := int(meal["index"].(float64))

	for i := 0; i < 5; i++ {
		status, body = s.doJSON(t, http.MethodGet, fmt.Sprintf("/api/diet/shuffle?date=2026-03-10&current=%d", current), nil)
		if status != http.StatusOK {
			t.Fatalf("shuffle failed with status %d: %v", status, body)
		}
		if index := int(body["index"].(float64)); index == current {
			t.Fatalf("shuffle returned the current meal index %d", index)
		}
	}
}

func (s *e2eSuite) testVision(t *testing.T) {
	status, body := s.doJSON(t, http.MethodGet, "/api/vision", nil)
	if status != http.StatusOK {
		t.Fatalf("vision get failed with status %d: %v", status, body)
	}
	if body["vision"] != nil {
		t.Fatalf("expected null vision before save, got %v", body)
	}

	status, body = s.doJSON(t, http.MethodPut, "/api/vision", map[string]any{
		"higher_self": "每天都要 **更好一点**。",
		"core_values": []string{"自律", "好奇心"},
		"goals":       []map[string]any{{"title": "读完 12 本书", "description": "每月一本"}},
	})
	if status != http.StatusOK {
		t.Fatalf("vision save failed with status %d: %v", status, body)
	}

	vision, _ := body["vision"].(map[string]any)
	if vision == nil {
		t.Fatalf("expected vision payload: %v", body)
	}
	if html, _ := vision["higher_self_html"].(string); !strings.Contains(html, "<strong>") {
		t.Fatalf("expected rendered markdown, got %q", vision["higher_self_html"])
	}
	goals, _ := vision["goals"].([]any)
	if len(goals) != 1 {
		t.Fatalf("expected 1 goal, got %v", vision)
	}
	if goal, _ := goals[0].(map[string]any); goal["id"] == "" {
		t.Fatalf("expected generated goal id: %v", goals)
	}
}

func (s *e2eSuite) testWeeklyReview(t *testing.T) {
	status, body := s.doJSON(t, http.MethodPut, "/api/reviews", map[string]any{
		"week":   "2026-03-11",
		"wins":   []string{"坚持了晨跑"},
		"rating": 4,
	})
	if status != http.StatusOK {
		t.Fatalf("review save failed with status %d: %v", status, body)
	}
	if body["week_start"] != "2026-03-09" {
		t.Fatalf("expected week start 2026-03-09, got %v", body["week_start"])
	}

	status, body = s.doJSON(t, http.MethodGet, "/api/reviews?week=2026-03-15", nil)
	if status != http.StatusOK {
		t.Fatalf("review get failed with status %d: %v", status, body)
	}
	review, _ := body["review"].(map[string]any)
	if review == nil {
		t.Fatalf("expected review for the same week: %v", body)
	}

	if status, _ := s.doJSON(t, http.MethodPost, "/api/reviews/actions", map[string]any{
		"description": "   ",
	}); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty description, got %d", status)
	}

	status, body = s.doJSON(t, http.MethodPost, "/api/reviews/actions", map[string]any{
		"description": "整理下周训练计划",
		"due_date":    "2026-03-16",
	})
	if status != http.StatusOK {
		t.Fatalf("action create failed with status %d: %v", status, body)
	}
	action, _ := body["action"].(map[string]any)
	if action == nil || action["status"] != "pending" {
		t.Fatalf("unexpected action payload: %v", body)
	}
	actionID := int(action["id"].(float64))

	status, body = s.doJSON(t, http.MethodPut, fmt.Sprintf("/api/reviews/actions/%d/status", actionID), map[string]any{
		"status": "completed",
	})
	if status != http.StatusOK {
		t.Fatalf("action status update failed with status %d: %v", status, body)
	}
	if updated, _ := body["action"].(map[string]any); updated["status"] != "completed" {
		t.Fatalf("expected completed status: %v", body)
	}

	if status, _ := s.doJSON(t, http.MethodPut, fmt.Sprintf("/api/reviews/actions/%d/status", actionID), map[string]any{
		"status": "done",
	}); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid status, got %d", status)
	}
}

func findPrescriptiveLog(body map[string]any, key string) map[string]any {
	logs, _ := body["logs"].([]any)
	for _, raw := range logs {
		entry, _ := raw.(map[string]any)
		if entry["prescriptive_system_key"] == key {
			return entry
		}
	}
	return nil
}
