package handler

import (
	"github.com/architect/internal/service"
	"gorm.io/gorm"
)

// API 聚合各 HTTP 处理器共享的依赖
type API struct {
	db        *gorm.DB
	dailyLogs *service.DailyLogService
	visions   *service.VisionService
	reviews   *service.ReviewService
}

// NewAPI 构造处理器集合并初始化各业务服务
func NewAPI(gdb *gorm.DB) *API {
	return &API{
		db:        gdb,
		dailyLogs: service.NewDailyLogService(gdb),
		visions:   service.NewVisionService(gdb),
		reviews:   service.NewReviewService(gdb),
	}
}
