package service

import "time"

// DateLayout 是日历日在存储与线上传输时的统一格式，不携带时间与时区
const DateLayout = "2006-01-02"

// NormalizeDate 将任意时间归一为 UTC 零点的日历日
// 所有日期运算都基于无时区的日历日，避免本地时区引入的偏移
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate 按 DateLayout 解析日历日
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

// FormatDate 按 DateLayout 序列化日历日
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// WeekStart 返回给定日期所在周的周一
func WeekStart(t time.Time) time.Time {
	day := NormalizeDate(t)
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return day.AddDate(0, 0, -weekday+1)
}
