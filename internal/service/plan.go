package service

import (
	"math/rand"
	"time"
)

// Exercise 描述一组训练动作
type Exercise struct {
	Name string `json:"name"`
	Sets string `json:"sets"`
	Reps string `json:"reps"`
}

// Workout 是某一天的训练安排
type Workout struct {
	Name      string     `json:"name"`
	Exercises []Exercise `json:"exercises"`
}

// Meal 是一条简餐建议
type Meal struct {
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
}

// Mission 是一条社交任务
type Mission struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// WorkoutA 周一/周五的力量日安排
var WorkoutA = Workout{
	Name: "训练A：力量",
	Exercises: []Exercise{
		{Name: "深蹲", Sets: "3", Reps: "5-8"},
		{Name: "卧推", Sets: "3", Reps: "5-8"},
		{Name: "杠铃划船", Sets: "3", Reps: "5-8"},
	},
}

// WorkoutB 周三的爆发与核心日安排
var WorkoutB = Workout{
	Name: "训练B：爆发与核心",
	Exercises: []Exercise{
		{Name: "深蹲", Sets: "3", Reps: "5-8"},
		{Name: "推举", Sets: "3", Reps: "5-8"},
		{Name: "硬拉", Sets: "1", Reps: "5"},
	},
}

// RestDayMessage 在休息日展示的提示文案
const RestDayMessage = "今天是休息日：去散散步或做些轻度拉伸，好好恢复。"

// Meals 固定的简餐轮换表
var Meals = []Meal{
	{Name: "鸡胸肉糙米饭配西兰花", Ingredients: []string{"鸡胸肉", "糙米", "西兰花", "生抽"}},
	{Name: "红扁豆汤", Ingredients: []string{"红扁豆", "蔬菜高汤", "胡萝卜", "芹菜", "洋葱", "香料"}},
	{Name: "燕麦粥配浆果坚果", Ingredients: []string{"燕麦片", "混合浆果", "杏仁", "奇亚籽", "牛奶或水"}},
	{Name: "菠菜炒蛋", Ingredients: []string{"鸡蛋", "新鲜菠菜", "全麦吐司（可选）", "盐和黑胡椒"}},
	{Name: "全麦金枪鱼三明治", Ingredients: []string{"金枪鱼罐头", "希腊酸奶或蛋黄酱", "芹菜", "全麦面包", "生菜"}},
	{Name: "黑豆汉堡", Ingredients: []string{"黑豆罐头", "面包糠", "洋葱", "香料", "全麦汉堡胚"}},
	{Name: "藜麦蔬菜沙拉", Ingredients: []string{"藜麦", "黄瓜", "番茄", "彩椒", "柠檬油醋汁"}},
}

// Missions 固定的社交任务轮换表
var Missions = []Mission{
	{ID: "sm01", Description: "向同事问一个关于周末的开放式问题，并认真倾听对方的回答。"},
	{ID: "sm02", Description: "给某人一句真诚且具体的称赞，比如“会上那个方案真的很聪明”。"},
	{ID: "sm03", Description: "结账时与收银员对视，微笑着说一句“祝你今天愉快”。"},
	{ID: "sm04", Description: "在团队会议上复述他人的观点以表明你理解了，比如“如果我没听错，你的意思是……”。"},
	{ID: "sm05", Description: "向一个平时不常交流的人分享一个小小的正面观察。"},
	{ID: "sm06", Description: "给很久没联系的老朋友发一条简单的“想起你了”。"},
	{ID: "sm07", Description: "具体地感谢某人为你做的一件事，无论多小。"},
	{ID: "sm08", Description: "对话时有意识地保持舒适时长的眼神接触。"},
	{ID: "sm09", Description: "向别人请求一个小的、无压力的帮助或建议。"},
	{ID: "sm10", Description: "看到机会时主动帮别人一把，不等对方开口。"},
	{ID: "sm11", Description: "在社交或工作场合主动向新面孔自我介绍。"},
	{ID: "sm12", Description: "练习积极倾听：先总结对方说了什么，再给出自己的想法。"},
	{ID: "sm13", Description: "结合话题分享一段简短、得体的个人经历。"},
	{ID: "sm14", Description: "与人意见不同时，平和而尊重地表达你的不同看法。"},
	{ID: "sm15", Description: "用总结要点或约定后续的方式得体地结束一段对话。"},
}

// WorkoutFor 返回给定日期的训练安排；休息日返回 nil
// 仅依赖星期：周一/周五 → 训练A，周三 → 训练B，其余休息
func WorkoutFor(date time.Time) *Workout {
	switch date.Weekday() {
	case time.Monday, time.Friday:
		return &WorkoutA
	case time.Wednesday:
		return &WorkoutB
	default:
		return nil
	}
}

// MealIndexFor 由年内序数取模得到当天的简餐下标，同一天反复调用结果稳定
func MealIndexFor(date time.Time) int {
	return date.YearDay() % len(Meals)
}

// MealFor 返回给定日期的简餐建议
func MealFor(date time.Time) Meal {
	return Meals[MealIndexFor(date)]
}

// ShuffleMealIndex 随机挑选一个不同于 current 的简餐下标
// 换一换只影响当次展示，不落库，日期切换后回到确定性选择
func ShuffleMealIndex(current int) int {
	if len(Meals) <= 1 {
		return 0
	}
	if current < 0 || current >= len(Meals) {
		return rand.Intn(len(Meals))
	}
	next := rand.Intn(len(Meals) - 1)
	if next >= current {
		next++
	}
	return next
}

// MissionFor 返回给定日期的社交任务
func MissionFor(date time.Time) Mission {
	return Missions[date.YearDay()%len(Missions)]
}
